// internal/storage/redis.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"atsctl/internal/common/config"
)

// RedisStore implements Store on a Redis backend so session state can
// be shared across processes. Scopes map to key prefixes with per-scope
// TTLs; TakeOnce on the handoff tier uses GETDEL so the read-and-remove
// is a single round trip.
type RedisStore struct {
	client     *redis.Client
	handoffTTL time.Duration
	sessionTTL time.Duration
}

// NewRedis creates a Redis-backed store and verifies the connection.
func NewRedis(ctx context.Context, cfg config.StorageConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{
		client:     client,
		handoffTTL: time.Duration(cfg.HandoffTTL) * time.Second,
		sessionTTL: time.Duration(cfg.SessionTTL) * time.Second,
	}, nil
}

func scopedKey(scope Scope, key string) string {
	return fmt.Sprintf("atsctl:%s:%s", scope, key)
}

func (s *RedisStore) ttl(scope Scope) time.Duration {
	if scope == ScopeHandoff {
		return s.handoffTTL
	}
	return s.sessionTTL
}

func (s *RedisStore) Peek(ctx context.Context, scope Scope, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, scopedKey(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s/%s: %w", scope, key, err)
	}
	return value, nil
}

func (s *RedisStore) TakeOnce(ctx context.Context, scope Scope, key string) ([]byte, error) {
	if scope != ScopeHandoff {
		return s.Peek(ctx, scope, key)
	}

	value, err := s.client.GetDel(ctx, scopedKey(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis getdel %s/%s: %w", scope, key, err)
	}
	return value, nil
}

func (s *RedisStore) Put(ctx context.Context, scope Scope, key string, value []byte) error {
	if err := s.client.Set(ctx, scopedKey(scope, key), value, s.ttl(scope)).Err(); err != nil {
		return fmt.Errorf("redis set %s/%s: %w", scope, key, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, scope Scope, key string) error {
	if err := s.client.Del(ctx, scopedKey(scope, key)).Err(); err != nil {
		return fmt.Errorf("redis del %s/%s: %w", scope, key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// New builds a Store from configuration, defaulting to the in-memory
// backend.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedis(ctx, cfg)
	case "", "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
