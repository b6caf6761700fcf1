package engine

import (
	"sort"

	"go.uber.org/zap"
)

// Two eviction policies cover the two admission limits. Size pressure
// ranks every entry by a hybrid score and removes the highest-scoring
// ones; count pressure is a plain LRU removing the single coldest
// entry. Both run under the write lock held by Set.

type evictionCandidate struct {
	key   string
	score float64
}

// evictBySizeUnsafe frees at least `needed` bytes, or as much as the
// candidate pool allows. The hybrid score is
//
//	accessCount + secondsSinceLastAccess
//
// so entries that are both heavily accessed and long idle go first.
// That ordering is the engine's contract; it intentionally does not
// protect hot entries the way a textbook LFU would.
func (e *Engine[T]) evictBySizeUnsafe(needed int64, skip string) int64 {
	now := e.clock.Now()

	candidates := make([]evictionCandidate, 0, len(e.data))
	for key := range e.data {
		if key == skip {
			continue
		}

		var score float64
		if m := e.meta[key]; m != nil {
			score = float64(m.AccessCount) + now.Sub(m.LastAccessedAt).Seconds()
		}

		candidates = append(candidates, evictionCandidate{key: key, score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var freed int64
	evicted := 0
	for _, candidate := range candidates {
		if freed >= needed {
			break
		}

		freed += e.data[candidate.key].sizeBytes
		e.removeEntryUnsafe(candidate.key)
		e.stats.Eviction()
		evicted++
	}

	if evicted > 0 {
		e.logger.Debug("Size-pressure eviction",
			zap.Int("evicted", evicted),
			zap.Int64("freed_bytes", freed),
			zap.Int64("needed_bytes", needed))
	}

	return freed
}

// evictByCountUnsafe removes the entry with the oldest last access,
// independent of access count. Returns false when nothing is evictable.
func (e *Engine[T]) evictByCountUnsafe(skip string) bool {
	var victim string
	var found bool

	for key := range e.data {
		if key == skip {
			continue
		}

		if !found {
			victim = key
			found = true
			continue
		}

		current, prior := e.meta[key], e.meta[victim]
		if current != nil && prior != nil && current.LastAccessedAt.Before(prior.LastAccessedAt) {
			victim = key
		}
	}

	if !found {
		return false
	}

	e.removeEntryUnsafe(victim)
	e.stats.Eviction()

	e.logger.Debug("Count-pressure eviction", zap.String("key", victim))
	return true
}
