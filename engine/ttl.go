package engine

import (
	"go.uber.org/zap"
)

// SweepExpired purges every expired entry store-wide and returns the
// number removed. The maintenance scheduler runs it on SweepInterval so
// entries that are never read again still get reclaimed; lazy checks on
// Get/Has cover the hot path in between. Each purge counts as an
// eviction, same as an expired read.
func (e *Engine[T]) SweepExpired() int {
	now := e.clock.Now()

	e.mu.Lock()

	var expired []string
	for key, ent := range e.data {
		if ent.expired(now) {
			expired = append(expired, key)
		}
	}

	for _, key := range expired {
		e.removeEntryUnsafe(key)
	}

	e.mu.Unlock()

	if len(expired) > 0 {
		e.stats.Evictions(uint64(len(expired)))
		e.logger.Debug("TTL sweep completed", zap.Int("expired_entries", len(expired)))
	}

	return len(expired)
}
