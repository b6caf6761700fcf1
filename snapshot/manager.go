package snapshot

import (
	"context"

	"github.com/finpulse/fincache/types"
	"github.com/finpulse/fincache/utils"
)

type StoreCreator func(config interface{}) (types.SnapshotStore, error)

var customStoreCreators = make(map[string]StoreCreator)

// RegisterStore lets hosts plug in their own durable medium under a
// config type name.
func RegisterStore(name string, creator StoreCreator) {
	customStoreCreators[name] = creator
}

// NewStore builds the configured snapshot medium.
func NewStore(ctx context.Context, config *types.SnapshotConfig) (types.SnapshotStore, error) {
	if config == nil || !config.Enabled {
		return nil, nil
	}

	switch config.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		fileConfig := &FileConfig{}
		if err := utils.UnmarshalConfig(config.Config, fileConfig); err != nil {
			return nil, types.WrapError(err, "failed to unmarshal file store config")
		}
		return NewFileStore(fileConfig)
	case "clover":
		cloverConfig := &CloverConfig{}
		if err := utils.UnmarshalConfig(config.Config, cloverConfig); err != nil {
			return nil, types.WrapError(err, "failed to unmarshal clover store config")
		}
		return NewCloverStore(cloverConfig)
	case "sqlite":
		sqliteConfig := &SQLiteConfig{}
		if err := utils.UnmarshalConfig(config.Config, sqliteConfig); err != nil {
			return nil, types.WrapError(err, "failed to unmarshal sqlite store config")
		}
		return NewSQLiteStore(sqliteConfig)
	case "redis":
		redisConfig := &RedisConfig{}
		if err := utils.UnmarshalConfig(config.Config, redisConfig); err != nil {
			return nil, types.WrapError(err, "failed to unmarshal redis store config")
		}
		return NewRedisStore(ctx, redisConfig)
	default:
		if creator, exists := customStoreCreators[config.Type]; exists {
			return creator(config.Config)
		}
		return nil, types.Errorf(types.ErrSnapshotStoreTypeUnknown, "type: %s", config.Type)
	}
}
