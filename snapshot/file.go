package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/finpulse/fincache/types"
)

type FileConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// FileStore keeps each snapshot key as a file under a directory.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated snapshot behind.
type FileStore struct {
	dir string
}

func NewFileStore(config *FileConfig) (*FileStore, error) {
	if config == nil || config.Dir == "" {
		return nil, types.Errorf(types.ErrSnapshot, "file store requires a directory")
	}

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, types.WrapError(err, "failed to create snapshot directory")
	}

	return &FileStore{dir: config.Dir}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrSnapshotNotFound
		}
		return nil, types.WrapError(err, "failed to read snapshot file")
	}
	return data, nil
}

func (s *FileStore) Set(_ context.Context, key string, blob []byte) error {
	path := s.path(key)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, blob, 0644); err != nil {
		return types.WrapError(err, "failed to write snapshot file")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return types.WrapError(err, "failed to replace snapshot file")
	}

	return nil
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return types.WrapError(err, "failed to remove snapshot file")
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, key)

	return filepath.Join(s.dir, sanitized+".snap")
}
