// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	custom_errors "commit-watcher/internal/errors"
	"commit-watcher/internal/filter"
	"commit-watcher/internal/model"
	"commit-watcher/internal/source"
	"commit-watcher/internal/tracker"
)

// Fetcher retrieves the raw feed page.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Notifier delivers a notification for a single commit.
type Notifier interface {
	Notify(ctx context.Context, c model.Commit) error
}

// Outcome describes what a single poll cycle did.
type Outcome int

const (
	OutcomeNoRecord Outcome = iota
	OutcomeUnchanged
	OutcomeFiltered
	OutcomeNotified
	OutcomeDeliveryFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoRecord:
		return "no_record"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeFiltered:
		return "filtered"
	case OutcomeNotified:
		return "notified"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	default:
		return "unknown"
	}
}

// Poller owns the poll -> extract -> dedupe -> filter -> notify pipeline.
// It runs on a single goroutine; only Stats and the tracker are safe to read
// from elsewhere.
type Poller struct {
	fetcher  Fetcher
	notifier Notifier
	filter   *filter.KeywordFilter
	tracker  *tracker.Tracker
	extract  func([]byte) (*model.Commit, error)
	interval time.Duration
	logger   *slog.Logger
	stats    *statsRecorder
	now      func() time.Time
}

// NewPoller creates a new Poller. A nil filter notifies every new commit.
func NewPoller(fetcher Fetcher, notifier Notifier, keywords *filter.KeywordFilter, logger *slog.Logger, interval time.Duration) (*Poller, error) {
	if fetcher == nil {
		return nil, errors.New("poller: fetcher is required")
	}
	if notifier == nil {
		return nil, errors.New("poller: notifier is required")
	}
	if interval <= 0 {
		return nil, errors.New("poller: interval must be positive")
	}

	return &Poller{
		fetcher:  fetcher,
		notifier: notifier,
		filter:   keywords,
		tracker:  tracker.New(),
		extract:  source.Extract,
		interval: interval,
		logger:   logger,
		stats:    newStatsRecorder(),
		now:      time.Now,
	}, nil
}

// Start runs the poller until ctx is cancelled: one baseline fetch, then a
// poll cycle followed by a fixed sleep, forever. There is no backoff.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting commit poller", "interval", p.interval.String(), "filtered", p.filter.Enabled(), "keywords", p.filter.Keywords())

	p.Initialize(ctx)

	for {
		if ctx.Err() != nil {
			p.logger.Info("Poller shutting down", "reason", ctx.Err())
			return
		}

		p.RunCycle(ctx)

		timer := time.NewTimer(p.interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("Poller shutting down", "reason", ctx.Err())
			return
		}
	}
}

// Initialize sets the tracker baseline from the live page without notifying.
// If the page cannot be read the baseline stays at 0.
func (p *Poller) Initialize(ctx context.Context) {
	commit, ok := p.latest(ctx)
	if ok {
		p.tracker.Baseline(commit.ID)
		p.stats.recordCommit(*commit)
	}
	p.logger.Info("Initialized with latest commit ID", "commit_id", p.tracker.LastSeen())
}

// RunCycle performs a single fetch and acts on the result.
func (p *Poller) RunCycle(ctx context.Context) Outcome {
	outcome := p.runCycle(ctx)
	p.stats.recordCycle(p.now(), outcome)
	return outcome
}

func (p *Poller) runCycle(ctx context.Context) Outcome {
	commit, ok := p.latest(ctx)
	if !ok {
		return OutcomeNoRecord
	}
	if !p.tracker.IsNew(*commit) {
		p.logger.Debug("No new commit", "commit_id", commit.ID, "last_seen_id", p.tracker.LastSeen())
		return OutcomeUnchanged
	}

	previous := p.tracker.LastSeen()
	// Advance before filtering so a filtered commit is never evaluated again.
	p.tracker.Advance(*commit)
	p.stats.recordCommit(*commit)

	logger := p.logger.With("commit_id", commit.ID, "previous_id", previous)
	logger.Info("New commit found", "author", commit.Author, "repo", commit.Repo, "branch", commit.Branch)

	if !p.filter.Passes(*commit) {
		logger.Info("Commit did not match keywords, skipping notification")
		return OutcomeFiltered
	}

	logger.Info("Sending notification for new commit")
	if err := p.notifier.Notify(ctx, *commit); err != nil {
		logger.Error("Failed to deliver notification", "error", err)
		return OutcomeDeliveryFailed
	}
	return OutcomeNotified
}

// latest fetches and extracts the newest commit. Every failure is logged and
// collapsed into "no record this cycle".
func (p *Poller) latest(ctx context.Context) (*model.Commit, bool) {
	doc, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.stats.recordFailure(failureFetch)
		if !errors.Is(err, context.Canceled) {
			p.logger.Error("Error fetching commit page", "error", err)
		}
		return nil, false
	}

	commit, err := p.extract(doc)
	switch {
	case err == nil:
		return commit, true
	case errors.Is(err, custom_errors.ErrNoCommit):
		p.stats.recordFailure(failureEmpty)
		p.logger.Warn("Could not find commit information on the page")
	default:
		p.stats.recordFailure(failureParse)
		p.logger.Error("Error parsing commit details", "error", err)
	}
	return nil, false
}

// LastSeenID returns the tracker's current baseline.
func (p *Poller) LastSeenID() int64 {
	return p.tracker.LastSeen()
}

// Keywords returns the active keyword set, empty when unfiltered.
func (p *Poller) Keywords() []string {
	return p.filter.Keywords()
}

// Stats returns a snapshot of the poller's counters.
func (p *Poller) Stats() Stats {
	return p.stats.snapshot()
}
