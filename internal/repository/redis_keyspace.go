package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type redisKeySpace struct {
	client *redis.Client
	prefix string
}

// NewRedisKeySpace returns a Redis-backed key space. Keys are stored as
// <prefix>session:<key>.
func NewRedisKeySpace(client *redis.Client, prefix string) KeySpace {
	return &redisKeySpace{client: client, prefix: prefix}
}

func (r *redisKeySpace) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *redisKeySpace) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *redisKeySpace) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = r.key(key)
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *redisKeySpace) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisKeySpace) key(key string) string {
	return r.prefix + "session:" + key
}
