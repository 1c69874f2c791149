package storage

import (
	"context"
	"errors"
	"fmt"
)

// Backend names accepted by New
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// ErrUnknownBackend is returned by New for an unsupported backend name
var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is a durable key-value store partitioned by an opaque partition key.
// Multi-key writes and deletes are applied atomically: a reader never observes
// a subset of the entries passed to a single PutAll or DeleteAll call.
type Store interface {
	// Get returns the values stored under keys in partition. Missing keys are absent from the map.
	Get(ctx context.Context, partition string, keys ...string) (map[string][]byte, error)

	// PutAll writes every entry in one atomic unit
	PutAll(ctx context.Context, partition string, entries map[string][]byte) error

	// DeleteAll removes keys from partition in one atomic unit. Deleting missing keys is not an error.
	DeleteAll(ctx context.Context, partition string, keys ...string) error

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}

// Options selects and configures a backend
type Options struct {
	Backend     string
	RedisURL    string
	DatabaseURL string
	SQLitePath  string
}

// New opens the backend named in opts
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisURL)
	case BackendPostgres:
		return NewPostgresStore(ctx, opts.DatabaseURL)
	case BackendSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
	}
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
