package blobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisPrefix = "vaultkeeper:"
	scanBatch          = 100
)

// RedisRepository keeps blobs as plain string keys under a common prefix.
// Values never expire.
type RedisRepository struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisRepository(rdb redis.UniversalClient, prefix string) *RedisRepository {
	return &RedisRepository{rdb: rdb, prefix: prefix}
}

// ConnectRedis parses a redis:// URL and checks the server is reachable.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob[%s]: %w", key, err)
	}
	return v, nil
}

func (r *RedisRepository) Put(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to put blob[%s]: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) PutMany(ctx context.Context, kv map[string][]byte) error {
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for k, v := range kv {
			p.Set(ctx, r.prefix+k, v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to put %d blobs: %w", len(kv), err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete blob[%s]: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, r.prefix+prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list blobs[%s*]: %w", prefix, err)
	}

	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs[%s*]: %w", prefix, err)
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// deleted between SCAN and MGET
			continue
		}
		result[strings.TrimPrefix(keys[i], r.prefix)] = []byte(s)
	}
	return result, nil
}
