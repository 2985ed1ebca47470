package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "comingsoon:"

// RedisStore keeps each table as a Redis set; SADD reports whether the email was new.
type RedisStore struct {
	client *redis.Client
}

// OpenRedis parses a redis:// URL and checks connectivity.
func OpenRedis(ctx context.Context, rawURL string) (*RedisStore, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, errors.New("storage: redis url is required")
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Name implements EmailStore.
func (s *RedisStore) Name() string { return "redis" }

// Ping checks the server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements EmailStore.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Insert implements EmailStore.
func (s *RedisStore) Insert(ctx context.Context, table Table, email string) error {
	if err := checkInsert(ctx, table, email); err != nil {
		return err
	}
	added, err := s.client.SAdd(ctx, redisKey(table), email).Result()
	if err != nil {
		return fmt.Errorf("storage: redis insert into %s: %w", table, err)
	}
	if added == 0 {
		return conflictError(table)
	}
	return nil
}

func redisKey(table Table) string {
	return redisKeyPrefix + string(table)
}
