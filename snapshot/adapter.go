package snapshot

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/finpulse/fincache/types"
	"github.com/finpulse/fincache/utils"
)

// schemaVersion is the envelope layout version, independent of the
// caller-supplied cache version.
const schemaVersion = 1

// EntryRecord is one live entry together with its access metadata.
type EntryRecord[T any] struct {
	Key        string               `json:"key"`
	Value      T                    `json:"value"`
	SizeBytes  int64                `json:"size_bytes"`
	InsertedAt time.Time            `json:"inserted_at"`
	TTL        time.Duration        `json:"ttl"`
	Tags       []string             `json:"tags,omitempty"`
	Meta       types.AccessMetadata `json:"meta"`
}

// Document is the full serializable store state: live entries plus the
// cumulative counters, which are restored as-is.
type Document[T any] struct {
	Entries   []EntryRecord[T] `json:"entries"`
	Hits      uint64           `json:"hits"`
	Misses    uint64           `json:"misses"`
	Evictions uint64           `json:"evictions"`
}

type envelope struct {
	SchemaVersion int       `json:"schema_version"`
	CacheVersion  string    `json:"cache_version"`
	EngineID      string    `json:"engine_id"`
	CreatedAt     time.Time `json:"created_at"`
	Checksum      string    `json:"checksum"`
	Payload       []byte    `json:"payload"`
}

// Adapter writes and reads compressed, checksummed snapshots through an
// injected durable key-value medium.
type Adapter[T any] struct {
	store        types.SnapshotStore
	key          string
	cacheVersion string
	engineID     string
	maxAge       time.Duration
	clock        types.Clock
}

func NewAdapter[T any](store types.SnapshotStore, key, cacheVersion, engineID string, maxAge time.Duration, clock types.Clock) *Adapter[T] {
	if key == "" {
		key = "fincache:snapshot"
	}
	if clock == nil {
		clock = utils.SystemClock()
	}

	return &Adapter[T]{
		store:        store,
		key:          key,
		cacheVersion: cacheVersion,
		engineID:     engineID,
		maxAge:       maxAge,
		clock:        clock,
	}
}

func (a *Adapter[T]) Save(ctx context.Context, doc *Document[T]) error {
	payload, err := utils.Marshal(doc)
	if err != nil {
		return types.Errorf(types.ErrSnapshot, "encode: %v", err)
	}

	var compressed bytes.Buffer
	writer := brotli.NewWriterLevel(&compressed, brotli.BestSpeed)
	if _, err = writer.Write(payload); err != nil {
		return types.Errorf(types.ErrSnapshot, "compress: %v", err)
	}
	if err = writer.Close(); err != nil {
		return types.Errorf(types.ErrSnapshot, "compress: %v", err)
	}

	sum := blake2b.Sum256(compressed.Bytes())

	env := envelope{
		SchemaVersion: schemaVersion,
		CacheVersion:  a.cacheVersion,
		EngineID:      a.engineID,
		CreatedAt:     a.clock.Now(),
		Checksum:      hex.EncodeToString(sum[:]),
		Payload:       compressed.Bytes(),
	}

	blob, err := utils.Marshal(&env)
	if err != nil {
		return types.Errorf(types.ErrSnapshot, "encode envelope: %v", err)
	}

	if err = a.store.Set(ctx, a.key, blob); err != nil {
		return errors.Wrap(err, "write snapshot")
	}

	return nil
}

// Load reads the snapshot back. A missing snapshot returns (nil, nil);
// sentinel errors distinguish staleness, version mismatch and corruption
// so the engine can log the right thing, but every failure mode is
// non-fatal to the caller.
func (a *Adapter[T]) Load(ctx context.Context) (*Document[T], error) {
	blob, err := a.store.Get(ctx, a.key)
	if err != nil {
		if types.IsError(err, types.ErrSnapshotNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read snapshot")
	}

	var env envelope
	if err = utils.Unmarshal(blob, &env); err != nil {
		return nil, types.Errorf(types.ErrSnapshot, "decode envelope: %v", err)
	}

	if env.SchemaVersion != schemaVersion {
		return nil, types.Errorf(types.ErrSnapshotVersionMismatch, "schema %d", env.SchemaVersion)
	}

	if env.CacheVersion != a.cacheVersion {
		return nil, types.Errorf(types.ErrSnapshotVersionMismatch, "cache version %q, want %q", env.CacheVersion, a.cacheVersion)
	}

	if a.maxAge > 0 && a.clock.Now().Sub(env.CreatedAt) > a.maxAge {
		return nil, types.Errorf(types.ErrSnapshotStale, "created at %s", env.CreatedAt.Format(time.RFC3339))
	}

	sum := blake2b.Sum256(env.Payload)
	if hex.EncodeToString(sum[:]) != env.Checksum {
		return nil, types.ErrSnapshotChecksum
	}

	payload, err := io.ReadAll(brotli.NewReader(bytes.NewReader(env.Payload)))
	if err != nil {
		return nil, types.Errorf(types.ErrSnapshot, "decompress: %v", err)
	}

	var doc Document[T]
	if err = utils.Unmarshal(payload, &doc); err != nil {
		return nil, types.Errorf(types.ErrSnapshot, "decode document: %v", err)
	}

	return &doc, nil
}

// Drop removes the snapshot from the medium.
func (a *Adapter[T]) Drop(ctx context.Context) error {
	return a.store.Remove(ctx, a.key)
}
