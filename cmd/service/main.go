// cmd/service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"commit-watcher/internal/api"
	"commit-watcher/internal/config"
	"commit-watcher/internal/filter"
	"commit-watcher/internal/notifier"
	"commit-watcher/internal/poller"
	"commit-watcher/internal/source"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration; a missing webhook URL stops us here
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully", "source_url", cfg.CommitURL, "poll_interval", cfg.PollInterval.String())

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize application components
	p, err := buildPoller(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create poller: %w", err)
	}

	// 5. Run the poller and the optional status API until shutdown
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.Start(gctx)
		return nil
	})
	if cfg.StatusAddr != "" {
		srv := &http.Server{
			Addr:              cfg.StatusAddr,
			Handler:           api.NewRouter(p, cfg.CommitURL, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("Status API listening", "addr", cfg.StatusAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status API: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	logger.Info("Application started. Waiting for shutdown signal...")
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Shutdown signal received. Exiting.")
	return nil
}

// buildPoller wires the fetcher, notifier and keyword filter from cfg.
func buildPoller(cfg *config.Config, logger *slog.Logger) (*poller.Poller, error) {
	fetcher := source.NewClient(cfg.CommitURL, logger.With("component", "source"),
		source.WithTimeout(cfg.HTTPTimeout),
		source.WithUserAgent(cfg.UserAgent),
	)

	discord := notifier.NewDiscordNotifier(cfg.WebhookURL, logger.With("component", "notifier"),
		notifier.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		notifier.WithFormat(cfg.NotifyFormat),
		notifier.WithUsername(cfg.WebhookUsername),
		notifier.WithSourceURL(cfg.CommitURL),
		notifier.WithBearerToken(cfg.WebhookToken),
	)

	var keywords *filter.KeywordFilter
	if len(cfg.Keywords) > 0 {
		keywords = filter.New(cfg.Keywords)
	}

	return poller.NewPoller(fetcher, discord, keywords, logger.With("component", "poller"), cfg.PollInterval)
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
