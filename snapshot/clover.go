package snapshot

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/ostafen/clover"

	"github.com/finpulse/fincache/types"
)

type CloverConfig struct {
	Path       string `yaml:"path" json:"path"`
	Collection string `yaml:"collection" json:"collection"`
}

// CloverStore keeps snapshots in an embedded clover collection, one
// document per snapshot key. Blobs are stored base64-encoded since
// clover documents are JSON-shaped.
type CloverStore struct {
	db         *clover.DB
	collection string
}

func NewCloverStore(config *CloverConfig) (*CloverStore, error) {
	if config == nil {
		config = &CloverConfig{}
	}

	collection := config.Collection
	if collection == "" {
		collection = "snapshots"
	}

	db, err := clover.Open(config.Path)
	if err != nil {
		return nil, types.WrapError(err, "failed to open clover store")
	}

	exists, err := db.HasCollection(collection)
	if err != nil {
		db.Close()
		return nil, types.WrapError(err, "failed to check snapshot collection")
	}

	if !exists {
		if err = db.CreateCollection(collection); err != nil {
			db.Close()
			return nil, types.WrapError(err, "failed to create snapshot collection")
		}
	}

	return &CloverStore{db: db, collection: collection}, nil
}

func (s *CloverStore) Get(_ context.Context, key string) ([]byte, error) {
	doc, err := s.db.Query(s.collection).Where(clover.Field("key").Eq(key)).FindFirst()
	if err != nil {
		return nil, types.WrapError(err, "failed to query snapshot")
	}

	if doc == nil {
		return nil, types.ErrSnapshotNotFound
	}

	encoded, ok := doc.Get("blob").(string)
	if !ok {
		return nil, types.Errorf(types.ErrSnapshot, "malformed snapshot document for key %q", key)
	}

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, types.Errorf(types.ErrSnapshot, "failed to decode snapshot blob: %v", err)
	}

	return blob, nil
}

func (s *CloverStore) Set(ctx context.Context, key string, blob []byte) error {
	if err := s.Remove(ctx, key); err != nil {
		return err
	}

	doc := clover.NewDocument()
	doc.Set("key", key)
	doc.Set("blob", base64.StdEncoding.EncodeToString(blob))
	doc.Set("updated_at", time.Now().UnixNano())

	if err := s.db.Insert(s.collection, doc); err != nil {
		return types.WrapError(err, "failed to insert snapshot")
	}

	return nil
}

func (s *CloverStore) Remove(_ context.Context, key string) error {
	err := s.db.Query(s.collection).Where(clover.Field("key").Eq(key)).Delete()
	if err != nil {
		return types.WrapError(err, "failed to delete snapshot")
	}
	return nil
}

func (s *CloverStore) Close() error {
	return s.db.Close()
}
