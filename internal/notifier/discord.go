// internal/notifier/discord.go
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	custom_errors "commit-watcher/internal/errors"
	"commit-watcher/internal/model"
)

// Payload formats.
const (
	FormatEmbed = "embed"
	FormatText  = "text"
)

// Discord limits on message sizes.
const (
	maxContentLen     = 2000
	maxDescriptionLen = 4096
	maxTitleLen       = 256
	maxAuthorLen      = 256
)

// DiscordNotifier posts commits to a Discord-compatible webhook.
type DiscordNotifier struct {
	webhookURL string
	sourceURL  string
	username   string
	format     string
	token      string
	http       *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a DiscordNotifier.
type Option func(*DiscordNotifier)

// WithFormat selects FormatEmbed or FormatText.
func WithFormat(format string) Option {
	return func(n *DiscordNotifier) {
		n.format = format
	}
}

// WithUsername overrides the webhook's display name.
func WithUsername(username string) Option {
	return func(n *DiscordNotifier) {
		n.username = username
	}
}

// WithSourceURL sets the link attached to the embed author.
func WithSourceURL(url string) Option {
	return func(n *DiscordNotifier) {
		n.sourceURL = url
	}
}

// WithBearerToken authenticates webhook calls with a static bearer token.
func WithBearerToken(token string) Option {
	return func(n *DiscordNotifier) {
		n.token = token
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(n *DiscordNotifier) {
		n.http = hc
	}
}

// WithClock overrides the delivery-time clock.
func WithClock(now func() time.Time) Option {
	return func(n *DiscordNotifier) {
		n.now = now
	}
}

// NewDiscordNotifier creates a notifier for webhookURL.
func NewDiscordNotifier(webhookURL string, logger *slog.Logger, opts ...Option) *DiscordNotifier {
	n := &DiscordNotifier{
		webhookURL: webhookURL,
		format:     FormatEmbed,
		http:       &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(n)
	}

	if n.token != "" {
		// oauth2.NewClient builds on top of the client stored in the context.
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, n.http)
		authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: n.token}))
		authed.Timeout = n.http.Timeout
		n.http = authed
	}
	return n
}

type webhookPayload struct {
	Username string  `json:"username,omitempty"`
	Content  string  `json:"content,omitempty"`
	Embeds   []embed `json:"embeds,omitempty"`
}

type embed struct {
	Author      *embedAuthor `json:"author,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Thumbnail   *embedImage  `json:"thumbnail,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type embedAuthor struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type embedImage struct {
	URL string `json:"url"`
}

// Notify delivers a single message for c. There is no retry: any transport
// failure or non-2xx response is returned as a *errors.DeliveryError.
func (n *DiscordNotifier) Notify(ctx context.Context, c model.Commit) error {
	body, err := json.Marshal(n.buildPayload(c))
	if err != nil {
		return &custom_errors.DeliveryError{CommitID: c.ID, Err: fmt.Errorf("failed to marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return &custom_errors.DeliveryError{CommitID: c.ID, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return &custom_errors.DeliveryError{CommitID: c.ID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		n.logger.Debug("Webhook rejected notification", "commit_id", c.ID, "status", resp.StatusCode, "body", string(snippet))
		return &custom_errors.DeliveryError{CommitID: c.ID, StatusCode: resp.StatusCode}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (n *DiscordNotifier) buildPayload(c model.Commit) webhookPayload {
	p := webhookPayload{Username: n.username}
	delivered := n.now()

	if n.format == FormatText {
		p.Content = textContent(c, delivered)
		return p
	}

	e := embed{
		Author:      &embedAuthor{Name: truncate(c.Author, maxAuthorLen), URL: n.sourceURL},
		Title:       truncate(c.Title(), maxTitleLen),
		Description: truncate(c.Message, maxDescriptionLen),
		Timestamp:   delivered.UTC().Format(time.RFC3339),
	}
	if c.AvatarURL != "" {
		e.Thumbnail = &embedImage{URL: c.AvatarURL}
	}
	p.Embeds = []embed{e}
	return p
}

// textContent renders the author and a relative timestamp marker for the
// delivery time, then a fenced block with the title and message.
func textContent(c model.Commit, delivered time.Time) string {
	header := fmt.Sprintf("**%s** <t:%d:R>\n```\n%s\n", c.Author, delivered.Unix(), c.Title())
	footer := "\n```"
	// Keep the fence intact when the message itself contains one.
	msg := strings.ReplaceAll(c.Message, "```", "`\u200b``")
	budget := maxContentLen - runeLen(header) - runeLen(footer)
	if budget < 0 {
		budget = 0
	}
	return header + truncate(msg, budget) + footer
}

func runeLen(s string) int {
	return len([]rune(s))
}

// truncate shortens s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return string(r[:limit])
	}
	return string(r[:limit-1]) + "…"
}
