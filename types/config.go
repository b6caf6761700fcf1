package types

import (
	"time"
)

type Config struct {
	Name     string          `yaml:"name" json:"name" validate:"required"`
	Version  string          `yaml:"version" json:"version" validate:"required"`
	Cache    *CacheConfig    `yaml:"cache" json:"cache"`
	Logger   *LoggerConfig   `yaml:"logger" json:"logger"`
	Snapshot *SnapshotConfig `yaml:"snapshot" json:"snapshot"`
	Metrics  *MetricsConfig  `yaml:"metrics" json:"metrics"`
}

type CacheConfig struct {
	DefaultTTL     time.Duration `yaml:"default_ttl" json:"default_ttl" validate:"min=0"`
	MaxSizeBytes   int64         `yaml:"max_size_bytes" json:"max_size_bytes" validate:"min=0"`
	MaxEntries     int           `yaml:"max_entries" json:"max_entries" validate:"min=0"`
	CacheVersion   string        `yaml:"cache_version" json:"cache_version"`
	SweepInterval  time.Duration `yaml:"sweep_interval" json:"sweep_interval" validate:"min=0"`
	SnapshotMaxAge time.Duration `yaml:"snapshot_max_age" json:"snapshot_max_age" validate:"min=0"`
}

type LoggerConfig struct {
	Level  string      `yaml:"level" json:"level"`
	Config interface{} `yaml:"config" json:"config"`
}

type SnapshotConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled"`
	Type     string        `yaml:"type" json:"type" validate:"required_if=Enabled true"`
	Key      string        `yaml:"key" json:"key"`
	Interval time.Duration `yaml:"interval" json:"interval" validate:"min=0"`
	Config   interface{}   `yaml:"config" json:"config"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port" validate:"omitempty,min=1,max=65535"`
	Path      string `yaml:"path" json:"path"`
	Namespace string `yaml:"namespace" json:"namespace"`
}
