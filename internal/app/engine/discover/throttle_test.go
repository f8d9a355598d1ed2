package discover

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for throttle tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestThrottle_Allow(t *testing.T) {
	clock := newFakeClock()
	th := NewThrottle(10*time.Second, 100, clock.Now)

	if !th.Allow("alice") {
		t.Fatal("first scan was throttled")
	}
	if th.Allow("alice") {
		t.Error("second scan inside window was allowed")
	}

	clock.Advance(9 * time.Second)
	if th.Allow("alice") {
		t.Error("scan just inside window was allowed")
	}

	clock.Advance(time.Second)
	if !th.Allow("alice") {
		t.Error("scan after window elapsed was throttled")
	}
}

func TestThrottle_PerRequester(t *testing.T) {
	clock := newFakeClock()
	th := NewThrottle(10*time.Second, 100, clock.Now)

	if !th.Allow("alice") {
		t.Fatal("alice's scan was throttled")
	}
	if !th.Allow("bob") {
		t.Error("bob's scan was throttled by alice's entry")
	}
}

func TestThrottle_Prune(t *testing.T) {
	clock := newFakeClock()
	th := NewThrottle(10*time.Second, 100, clock.Now)

	th.Allow("alice")
	clock.Advance(5 * time.Second)
	th.Allow("bob")

	clock.Advance(5 * time.Second)
	// alice's entry is now 10s old (expired), bob's 5s old.
	if removed := th.Prune(); removed != 1 {
		t.Errorf("Prune() removed %d entries, want 1", removed)
	}
	if th.Len() != 1 {
		t.Errorf("Len() = %d after prune, want 1", th.Len())
	}
}

func TestThrottle_BoundedEntries(t *testing.T) {
	clock := newFakeClock()
	th := NewThrottle(10*time.Second, 3, clock.Now)

	th.Allow("a")
	clock.Advance(time.Second)
	th.Allow("b")
	clock.Advance(time.Second)
	th.Allow("c")
	clock.Advance(time.Second)

	// Registry is full and nothing has expired; the oldest entry ("a")
	// must be evicted to make room.
	th.Allow("d")
	if th.Len() != 3 {
		t.Errorf("Len() = %d, want bounded at 3", th.Len())
	}
	if !th.Allow("a") {
		t.Error("evicted requester was still throttled")
	}
}

func TestNewThrottle_Defaults(t *testing.T) {
	th := NewThrottle(10*time.Second, 0, nil)
	if th.maxEntries != 10000 {
		t.Errorf("default maxEntries = %d, want 10000", th.maxEntries)
	}
	if th.now == nil {
		t.Error("nil clock not replaced with wall clock")
	}
}
