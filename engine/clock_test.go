package engine

import (
	"sync"
	"time"
)

// fakeClock makes TTL and eviction ordering deterministic.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// byteLenSizer sizes string values by raw length so tests can reason
// about the size ceiling directly.
func byteLenSizer(value string) (int64, error) {
	return int64(len(value)), nil
}
