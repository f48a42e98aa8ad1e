package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/nikolayk812/ecomall/internal/port"
)

const defaultKeyPrefix = "ecomall:session:"

// RedisStore keeps session values in redis, every write refreshes the TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ port.SessionStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive: %s", ttl)
	}

	return &RedisStore{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    ttl,
	}, nil
}

// NewRedisClient parses the URL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping: %w", err)
	}

	return client, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("client.Get: %w", err)
	}

	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}
	return nil
}
