package discover

import (
	"sync"
	"time"
)

// Throttle limits how often each requester's orphan scan may run. It is a
// per-process registry: state resets on restart and does not coordinate
// across instances, which is a best-effort staleness tradeoff rather than
// a correctness guarantee.
//
// The clock is injected so tests can control time, and the map is bounded
// so a flood of distinct requesters cannot grow it without limit.
type Throttle struct {
	mu         sync.Mutex
	window     time.Duration
	maxEntries int
	now        func() time.Time
	lastScan   map[string]time.Time
}

// NewThrottle creates a throttle. A nil now uses the wall clock.
func NewThrottle(window time.Duration, maxEntries int, now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &Throttle{
		window:     window,
		maxEntries: maxEntries,
		now:        now,
		lastScan:   make(map[string]time.Time),
	}
}

// Allow reports whether a scan for requester may run now, recording the
// scan time when it may.
func (t *Throttle) Allow(requester string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if last, ok := t.lastScan[requester]; ok && now.Sub(last) < t.window {
		return false
	}
	if len(t.lastScan) >= t.maxEntries {
		t.evictLocked(now)
	}
	t.lastScan[requester] = now
	return true
}

// Prune drops entries outside the window and returns how many were removed.
func (t *Throttle) Prune() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pruneLocked(t.now())
}

func (t *Throttle) pruneLocked(now time.Time) int {
	removed := 0
	for requester, last := range t.lastScan {
		if now.Sub(last) >= t.window {
			delete(t.lastScan, requester)
			removed++
		}
	}
	return removed
}

// evictLocked makes room for one more entry: expired entries go first,
// then the single oldest entry if everything is still fresh.
func (t *Throttle) evictLocked(now time.Time) {
	if t.pruneLocked(now) > 0 {
		return
	}
	var oldestKey string
	var oldest time.Time
	for requester, last := range t.lastScan {
		if oldestKey == "" || last.Before(oldest) {
			oldestKey = requester
			oldest = last
		}
	}
	if oldestKey != "" {
		delete(t.lastScan, oldestKey)
	}
}

// Len returns the number of tracked requesters.
func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lastScan)
}
