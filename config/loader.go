package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/finpulse/fincache/types"
)

type Loader struct {
	validator *validator.Validate
}

func NewLoader() *Loader {
	return &Loader{
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// LoadFromFile reads a YAML config, overlaying it on the defaults and
// validating the result.
func (l *Loader) LoadFromFile(configPath string) (*types.Config, error) {
	if configPath == "" {
		return nil, types.ErrConfigNotFound
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, types.WrapError(err, "file not found: "+configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, types.WrapError(err, "failed to read config file")
	}

	config := l.Defaults()

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, types.Errorf(types.ErrConfigParseFailed, "%v", err)
	}

	if err := l.validator.Struct(config); err != nil {
		return nil, types.Errorf(types.ErrConfigValidateFailed, "%v", err)
	}

	return config, nil
}

func (l *Loader) Defaults() *types.Config {
	return &types.Config{
		Name:    "fincache",
		Version: "dev",
		Cache: &types.CacheConfig{
			DefaultTTL:     1 * time.Hour,
			MaxSizeBytes:   64 << 20,
			MaxEntries:     10000,
			CacheVersion:   "v1",
			SweepInterval:  5 * time.Minute,
			SnapshotMaxAge: 1 * time.Hour,
		},
		Logger: &types.LoggerConfig{
			Level: "info",
		},
		Snapshot: &types.SnapshotConfig{
			Enabled: false,
			Key:     "fincache:snapshot",
		},
		Metrics: &types.MetricsConfig{
			Enabled:   false,
			Host:      "localhost",
			Port:      9091,
			Path:      "/metrics",
			Namespace: "fincache",
		},
	}
}
