package engine

import (
	"go.uber.org/zap"

	"github.com/finpulse/fincache/snapshot"
	"github.com/finpulse/fincache/types"
)

// Persist writes the current live state through the snapshot adapter.
// It is best-effort: failures are logged, never raised, so persistence
// trouble can't become a correctness problem for callers. A no-op when
// no snapshot store was injected.
func (e *Engine[T]) Persist() {
	if e.adapter == nil {
		return
	}

	doc := e.buildDocument()

	if err := e.adapter.Save(e.ctx, doc); err != nil {
		e.logger.Error("Snapshot persist failed", zap.Error(err))
		return
	}

	e.logger.Debug("Snapshot persisted", zap.Int("entries", len(doc.Entries)))
}

// Load restores a previously persisted snapshot. Startup calls it once;
// anything wrong with the snapshot degrades to an empty store. Entries
// already expired relative to the current clock are skipped; cumulative
// statistics come back as-is.
func (e *Engine[T]) Load() {
	if e.adapter == nil {
		return
	}

	doc, err := e.adapter.Load(e.ctx)
	if err != nil {
		switch {
		case types.IsError(err, types.ErrSnapshotStale),
			types.IsError(err, types.ErrSnapshotVersionMismatch):
			e.logger.Info("Discarding snapshot", zap.Error(err))
		default:
			e.logger.Warn("Snapshot load failed, starting empty", zap.Error(err))
		}
		return
	}
	if doc == nil {
		e.logger.Debug("No snapshot available")
		return
	}

	now := e.clock.Now()
	restored := 0

	e.mu.Lock()
	for _, record := range doc.Entries {
		ent := &entry[T]{
			value:      record.Value,
			sizeBytes:  record.SizeBytes,
			insertedAt: record.InsertedAt,
			ttl:        record.TTL,
			tags:       record.Tags,
		}
		if ent.expired(now) {
			continue
		}

		if _, exists := e.data[record.Key]; exists {
			e.removeEntryUnsafe(record.Key)
		}

		meta := record.Meta
		e.data[record.Key] = ent
		e.meta[record.Key] = &meta
		e.indexTagsUnsafe(record.Key, ent.tags)
		e.totalSize += ent.sizeBytes
		restored++
	}
	e.mu.Unlock()

	e.stats.Restore(doc.Hits, doc.Misses, doc.Evictions)

	e.logger.Info("Snapshot restored",
		zap.Int("restored_entries", restored),
		zap.Int("skipped_expired", len(doc.Entries)-restored))
}

func (e *Engine[T]) buildDocument() *snapshot.Document[T] {
	now := e.clock.Now()
	hits, misses, evictions := e.stats.Counters()

	e.mu.RLock()
	defer e.mu.RUnlock()

	doc := &snapshot.Document[T]{
		Entries:   make([]snapshot.EntryRecord[T], 0, len(e.data)),
		Hits:      hits,
		Misses:    misses,
		Evictions: evictions,
	}

	for key, ent := range e.data {
		if ent.expired(now) {
			continue
		}

		record := snapshot.EntryRecord[T]{
			Key:        key,
			Value:      ent.value,
			SizeBytes:  ent.sizeBytes,
			InsertedAt: ent.insertedAt,
			TTL:        ent.ttl,
			Tags:       ent.tags,
		}
		if m := e.meta[key]; m != nil {
			record.Meta = *m
		}

		doc.Entries = append(doc.Entries, record)
	}

	return doc
}
