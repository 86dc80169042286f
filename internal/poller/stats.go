// internal/poller/stats.go
package poller

import (
	"sync"
	"time"

	"commit-watcher/internal/model"
)

type failureKind int

const (
	failureFetch failureKind = iota
	failureParse
	failureEmpty
)

// Stats is a point-in-time view of the poller's counters.
type Stats struct {
	StartedAt      time.Time     `json:"started_at"`
	LastPollAt     *time.Time    `json:"last_poll_at,omitempty"`
	Cycles         int64         `json:"cycles"`
	FetchErrors    int64         `json:"fetch_errors"`
	ParseErrors    int64         `json:"parse_errors"`
	EmptyPages     int64         `json:"empty_pages"`
	NewCommits     int64         `json:"new_commits"`
	Notified       int64         `json:"notified"`
	Filtered       int64         `json:"filtered"`
	DeliveryErrors int64         `json:"delivery_errors"`
	LastOutcome    string        `json:"last_outcome,omitempty"`
	LatestCommit   *model.Commit `json:"latest_commit,omitempty"`
}

type statsRecorder struct {
	mu sync.Mutex
	s  Stats
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{s: Stats{StartedAt: time.Now().UTC()}}
}

func (r *statsRecorder) recordCycle(at time.Time, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at = at.UTC()
	r.s.LastPollAt = &at
	r.s.Cycles++
	r.s.LastOutcome = o.String()
	switch o {
	case OutcomeFiltered:
		r.s.NewCommits++
		r.s.Filtered++
	case OutcomeNotified:
		r.s.NewCommits++
		r.s.Notified++
	case OutcomeDeliveryFailed:
		r.s.NewCommits++
		r.s.DeliveryErrors++
	}
}

func (r *statsRecorder) recordFailure(kind failureKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch kind {
	case failureFetch:
		r.s.FetchErrors++
	case failureParse:
		r.s.ParseErrors++
	case failureEmpty:
		r.s.EmptyPages++
	}
}

func (r *statsRecorder) recordCommit(c model.Commit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.LatestCommit = &c
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.s
	if out.LatestCommit != nil {
		c := *out.LatestCommit
		out.LatestCommit = &c
	}
	if out.LastPollAt != nil {
		t := *out.LastPollAt
		out.LastPollAt = &t
	}
	return out
}
