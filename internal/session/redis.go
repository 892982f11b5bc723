package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of *redis.Client the store uses.
type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps suspended imports in Redis with a key TTL, so any
// instance behind a load balancer can resume an import.
type RedisStore struct {
	client redisClient
	prefix string
	ttl    time.Duration
}

var _ core.StateStore = (*RedisStore)(nil)

func NewRedisStore(client redisClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// ConnectRedis parses url (redis://[:password@]host:port/db) and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Save(ctx context.Context, state *core.ImportState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode import %s: %w", state.ID, err)
	}
	if err := r.client.Set(ctx, r.key(state.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save import %s: %w", state.ID, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (*core.ImportState, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrImportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load import %s: %w", id, err)
	}
	return decode(id, data)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("delete import %s: %w", id, err)
	}
	return nil
}
