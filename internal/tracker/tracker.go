// internal/tracker/tracker.go
package tracker

import (
	"sync"

	"commit-watcher/internal/model"
)

// Tracker remembers the highest commit id seen by this process. It is never
// persisted: a restart re-baselines from the live page.
//
// The poller is the only writer. The mutex exists so the status API can read
// LastSeen from another goroutine.
type Tracker struct {
	mu       sync.RWMutex
	lastSeen int64
}

// New returns a Tracker with a zero baseline.
func New() *Tracker {
	return &Tracker{}
}

// Baseline sets the starting id without notifying anything. It never moves
// the tracker backwards.
func (t *Tracker) Baseline(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id > t.lastSeen {
		t.lastSeen = id
	}
}

// IsNew reports whether c has a strictly greater id than anything seen so far.
func (t *Tracker) IsNew(c model.Commit) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return c.ID > t.lastSeen
}

// Advance records c as seen if it is new and reports whether the tracker moved.
// Whether c is later filtered out or fails delivery does not matter.
func (t *Tracker) Advance(c model.Commit) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c.ID <= t.lastSeen {
		return false
	}
	t.lastSeen = c.ID
	return true
}

// LastSeen returns the highest id seen so far.
func (t *Tracker) LastSeen() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastSeen
}
