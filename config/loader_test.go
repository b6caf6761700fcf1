package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpulse/fincache/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestDefaults(t *testing.T) {
	config := NewLoader().Defaults()

	assert.Equal(t, "fincache", config.Name)
	assert.Equal(t, 1*time.Hour, config.Cache.DefaultTTL)
	assert.Equal(t, int64(64<<20), config.Cache.MaxSizeBytes)
	assert.Equal(t, 10000, config.Cache.MaxEntries)
	assert.Equal(t, 5*time.Minute, config.Cache.SweepInterval)
	assert.False(t, config.Snapshot.Enabled)
	assert.Equal(t, 9091, config.Metrics.Port)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
name: dashboard-cache
version: "1.2.0"
cache:
  default_ttl: 30s
  max_entries: 500
snapshot:
  enabled: true
  type: file
  interval: 2m
  config:
    dir: /var/lib/fincache
`)

	config, err := NewLoader().LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "dashboard-cache", config.Name)
	assert.Equal(t, "1.2.0", config.Version)
	assert.Equal(t, 30*time.Second, config.Cache.DefaultTTL)
	assert.Equal(t, 500, config.Cache.MaxEntries)

	// untouched fields keep their defaults
	assert.Equal(t, int64(64<<20), config.Cache.MaxSizeBytes)
	assert.Equal(t, "v1", config.Cache.CacheVersion)

	assert.True(t, config.Snapshot.Enabled)
	assert.Equal(t, "file", config.Snapshot.Type)
	assert.Equal(t, 2*time.Minute, config.Snapshot.Interval)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := NewLoader().LoadFromFile("")
	assert.ErrorIs(t, err, types.ErrConfigNotFound)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader().LoadFromFile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "name: [unclosed")

	_, err := NewLoader().LoadFromFile(path)
	assert.ErrorIs(t, err, types.ErrConfigParseFailed)
}

func TestLoadValidationFailure(t *testing.T) {
	// snapshot enabled without a store type
	path := writeConfig(t, `
name: dashboard-cache
version: "1.0.0"
snapshot:
  enabled: true
`)

	_, err := NewLoader().LoadFromFile(path)
	assert.ErrorIs(t, err, types.ErrConfigValidateFailed)
}

func TestLoadRejectsNegativeLimits(t *testing.T) {
	path := writeConfig(t, `
name: dashboard-cache
version: "1.0.0"
cache:
  max_entries: -5
`)

	_, err := NewLoader().LoadFromFile(path)
	assert.ErrorIs(t, err, types.ErrConfigValidateFailed)
}
