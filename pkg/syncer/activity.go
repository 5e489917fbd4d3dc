package syncer

import (
	"sync"
	"time"
)

// DefaultStaleAfter is how long a user may be idle before the lists are reloaded.
const DefaultStaleAfter = time.Hour

// ActivityTracker remembers the last user activity and decides when the lists went stale.
type ActivityTracker struct {
	mu         sync.Mutex
	now        func() time.Time
	staleAfter time.Duration
	last       time.Time
	seen       bool
}

// NewActivityTracker creates a tracker. now may be nil to use the wall clock.
func NewActivityTracker(now func() time.Time, staleAfter time.Duration) *ActivityTracker {
	if now == nil {
		now = time.Now
	}

	return &ActivityTracker{now: now, staleAfter: staleAfter}
}

// Touch records an activity and reports whether the gap since the previous one exceeded the
// threshold. The first activity never does.
func (a *ActivityTracker) Touch() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	stale := a.seen && now.Sub(a.last) > a.staleAfter

	a.last = now
	a.seen = true

	return stale
}
