package engine

import (
	"go.uber.org/zap"
)

// The tag index is a reverse map tag -> set(keys), kept consistent with
// entry tag sets inside the same critical section as every insert and
// delete, so invalidation never scans the whole store.

func (e *Engine[T]) indexTagsUnsafe(key string, tags []string) {
	for _, tag := range tags {
		keys := e.tagIndex[tag]
		if keys == nil {
			keys = make(map[string]struct{})
			e.tagIndex[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

func (e *Engine[T]) unindexTagsUnsafe(key string, tags []string) {
	for _, tag := range tags {
		keys, exists := e.tagIndex[tag]
		if !exists {
			continue
		}

		delete(keys, key)
		if len(keys) == 0 {
			delete(e.tagIndex, tag)
		}
	}
}

// InvalidateByTags removes every live entry whose tag set intersects
// the given tags and reports how many were removed.
func (e *Engine[T]) InvalidateByTags(tags ...string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	matched := make(map[string]struct{})
	for _, tag := range tags {
		for key := range e.tagIndex[tag] {
			matched[key] = struct{}{}
		}
	}

	for key := range matched {
		e.removeEntryUnsafe(key)
	}

	if len(matched) > 0 {
		e.logger.Debug("Invalidated by tags",
			zap.Strings("tags", tags),
			zap.Int("removed", len(matched)))
	}

	return len(matched)
}
