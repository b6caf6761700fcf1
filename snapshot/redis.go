package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finpulse/fincache/types"
)

type RedisConfig struct {
	Host         string        `yaml:"host" json:"host"`
	Port         int           `yaml:"port" json:"port"`
	Password     string        `yaml:"password" json:"password"`
	DB           int           `yaml:"db" json:"db"`
	KeyPrefix    string        `yaml:"key_prefix" json:"key_prefix"`
	DialTimeout  time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
}

// RedisStore keeps snapshots in redis. The dashboard deploys this when
// several backend replicas should warm up from the same snapshot.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(ctx context.Context, config *RedisConfig) (*RedisStore, error) {
	cfg := &RedisConfig{
		Host:         "localhost",
		Port:         6379,
		KeyPrefix:    "fincache",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	if config != nil {
		if config.Host != "" {
			cfg.Host = config.Host
		}
		if config.Port != 0 {
			cfg.Port = config.Port
		}
		if config.KeyPrefix != "" {
			cfg.KeyPrefix = config.KeyPrefix
		}
		if config.DialTimeout > 0 {
			cfg.DialTimeout = config.DialTimeout
		}
		if config.ReadTimeout > 0 {
			cfg.ReadTimeout = config.ReadTimeout
		}
		if config.WriteTimeout > 0 {
			cfg.WriteTimeout = config.WriteTimeout
		}
		cfg.Password = config.Password
		cfg.DB = config.DB
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, types.WrapError(err, "failed to connect to redis snapshot store")
	}

	return &RedisStore{client: client, prefix: cfg.KeyPrefix}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.prefixed(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, types.ErrSnapshotNotFound
		}
		return nil, types.WrapError(err, "failed to read snapshot from redis")
	}
	return blob, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, blob []byte) error {
	err := s.client.Set(ctx, s.prefixed(key), blob, 0).Err()
	if err != nil {
		return types.WrapError(err, "failed to write snapshot to redis")
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.prefixed(key)).Err()
	if err != nil {
		return types.WrapError(err, "failed to remove snapshot from redis")
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) prefixed(key string) string {
	return s.prefix + ":" + key
}
