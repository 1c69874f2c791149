package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces every key written by RedisStore
const DefaultRedisKeyPrefix = "review-memory"

// RedisStore keeps each partition entry as a plain string key
// "<prefix>:<partition>:<key>". Multi-key writes go through MULTI/EXEC.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the Redis server at redisURL
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, DefaultRedisKeyPrefix), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Client exposes the underlying client so other components (rate limiting) can share the connection
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) key(partition, key string) string {
	return s.prefix + ":" + partition + ":" + key
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, partition string, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	redisKeys := make([]string, len(keys))
	for i, key := range keys {
		redisKeys[i] = s.key(partition, key)
	}

	values, err := s.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read partition %s: %w", partition, err)
	}

	for i, value := range values {
		if value == nil {
			continue
		}
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected value type %T for key %s", value, keys[i])
		}
		out[keys[i]] = []byte(str)
	}
	return out, nil
}

// PutAll implements Store
func (s *RedisStore) PutAll(ctx context.Context, partition string, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, s.key(partition, key), value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write partition %s: %w", partition, err)
	}
	return nil
}

// DeleteAll implements Store
func (s *RedisStore) DeleteAll(ctx context.Context, partition string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	redisKeys := make([]string, len(keys))
	for i, key := range keys {
		redisKeys[i] = s.key(partition, key)
	}
	// DEL with several keys is a single atomic command
	if err := s.client.Del(ctx, redisKeys...).Err(); err != nil {
		return fmt.Errorf("failed to delete partition %s: %w", partition, err)
	}
	return nil
}

// Ping implements Store
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements Store
func (s *RedisStore) Close() error {
	return s.client.Close()
}
