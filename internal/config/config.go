// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	custom_errors "commit-watcher/internal/errors"
)

const (
	FormatEmbed = "embed"
	FormatText  = "text"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	WebhookURL      string        `mapstructure:"DISCORD_WEBHOOK_URL"`
	WebhookUsername string        `mapstructure:"WEBHOOK_USERNAME"`
	WebhookToken    string        `mapstructure:"WEBHOOK_TOKEN"`
	NotifyFormat    string        `mapstructure:"NOTIFY_FORMAT"`
	CommitURL       string        `mapstructure:"COMMIT_URL"`
	PollInterval    time.Duration `mapstructure:"POLL_INTERVAL"`
	HTTPTimeout     time.Duration `mapstructure:"HTTP_TIMEOUT"`
	UserAgent       string        `mapstructure:"USER_AGENT"`
	Keywords        []string      `mapstructure:"KEYWORDS"`
	StatusAddr      string        `mapstructure:"STATUS_ADDR"`
}

// LoadConfig reads configuration from a .env file in the working directory
// and/or environment variables. Environment variables win.
func LoadConfig() (*Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, dir string) (*Config, error) {
	// Every key needs a default, otherwise AutomaticEnv values are invisible to Unmarshal.
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DISCORD_WEBHOOK_URL", "")
	v.SetDefault("WEBHOOK_USERNAME", "")
	v.SetDefault("WEBHOOK_TOKEN", "")
	v.SetDefault("NOTIFY_FORMAT", FormatEmbed)
	v.SetDefault("COMMIT_URL", "https://commits.facepunch.com/r/rust_reboot")
	v.SetDefault("POLL_INTERVAL", "50s")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("USER_AGENT", "commit-watcher/1.0")
	v.SetDefault("KEYWORDS", "")
	v.SetDefault("STATUS_ADDR", "")

	v.SetConfigFile(filepath.Join(dir, ".env"))
	v.SetConfigType("env")
	_ = v.ReadInConfig() // Ignore error if file not found

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Keywords = splitKeywords(cfg.Keywords)
	cfg.NotifyFormat = strings.ToLower(strings.TrimSpace(cfg.NotifyFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields that have no safe default.
func (c *Config) Validate() error {
	if c.WebhookURL == "" {
		return custom_errors.MissingConfig("DISCORD_WEBHOOK_URL")
	}
	if c.CommitURL == "" {
		return custom_errors.MissingConfig("COMMIT_URL")
	}
	if c.PollInterval <= 0 {
		return errors.New("POLL_INTERVAL must be a positive duration (e.g. 50s)")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be a positive duration (e.g. 30s)")
	}
	switch c.NotifyFormat {
	case FormatEmbed, FormatText:
	default:
		return fmt.Errorf("NOTIFY_FORMAT must be %q or %q, got %q", FormatEmbed, FormatText, c.NotifyFormat)
	}
	return nil
}

// splitKeywords flattens values that may still hold comma separated entries
// (a single env var arrives as one element).
func splitKeywords(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, k := range strings.Split(r, ",") {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
	}
	return out
}
