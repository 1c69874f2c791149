package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// runStoreContract exercises the behaviour every backend must share
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	t.Run("missing keys are absent", func(t *testing.T) {
		s := newStore(t)
		got, err := s.Get(context.Background(), "p-missing", "reviews", "stats")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Expected empty result, got %v", got)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		err := s.PutAll(ctx, "p-put", map[string][]byte{
			"reviews": []byte(`[1]`),
			"stats":   []byte(`{"totalReviews":1}`),
		})
		if err != nil {
			t.Fatalf("PutAll() error = %v", err)
		}

		got, err := s.Get(ctx, "p-put", "reviews", "stats")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got["reviews"]) != `[1]` {
			t.Errorf("Expected reviews [1], got %q", got["reviews"])
		}
		if string(got["stats"]) != `{"totalReviews":1}` {
			t.Errorf("Unexpected stats %q", got["stats"])
		}
	})

	t.Run("overwrite replaces value", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.PutAll(ctx, "p-over", map[string][]byte{"stats": []byte("a")}); err != nil {
			t.Fatalf("PutAll() error = %v", err)
		}
		if err := s.PutAll(ctx, "p-over", map[string][]byte{"stats": []byte("b")}); err != nil {
			t.Fatalf("PutAll() error = %v", err)
		}
		got, err := s.Get(ctx, "p-over", "stats")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got["stats"]) != "b" {
			t.Errorf("Expected b, got %q", got["stats"])
		}
	})

	t.Run("partitions are isolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.PutAll(ctx, "alice", map[string][]byte{"stats": []byte("alice")}); err != nil {
			t.Fatalf("PutAll() error = %v", err)
		}
		got, err := s.Get(ctx, "bob", "stats")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Expected bob to see nothing, got %v", got)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.PutAll(ctx, "p-del", map[string][]byte{"reviews": []byte("x"), "stats": []byte("y")}); err != nil {
			t.Fatalf("PutAll() error = %v", err)
		}
		for i := 0; i < 2; i++ {
			if err := s.DeleteAll(ctx, "p-del", "reviews", "stats"); err != nil {
				t.Fatalf("DeleteAll() #%d error = %v", i, err)
			}
		}
		got, err := s.Get(ctx, "p-del", "reviews", "stats")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Expected no entries after delete, got %v", got)
		}
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ping(context.Background()); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	value := []byte("abc")
	if err := s.PutAll(ctx, "p", map[string][]byte{"k": value}); err != nil {
		t.Fatalf("PutAll() error = %v", err)
	}
	value[0] = 'z'

	got, err := s.Get(ctx, "p", "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got["k"]) != "abc" {
		t.Errorf("Expected stored value to be isolated from caller buffer, got %q", got["k"])
	}
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.PutAll(ctx, "p", map[string][]byte{"k": []byte("v")}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		t.Helper()
		s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
		if err != nil {
			t.Fatalf("NewSQLiteStore() error = %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")

	s, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := s.PutAll(ctx, "alice", map[string][]byte{"stats": []byte(`{"totalReviews":3}`)}); err != nil {
		t.Fatalf("PutAll() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(ctx, "alice", "stats")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got["stats"]) != `{"totalReviews":3}` {
		t.Errorf("Expected persisted stats, got %q", got["stats"])
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set - requires a running Redis server")
	}
	runStoreContract(t, func(t *testing.T) Store {
		t.Helper()
		s, err := NewRedisStore(context.Background(), url)
		if err != nil {
			t.Fatalf("NewRedisStore() error = %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set - requires a running Postgres server")
	}
	runStoreContract(t, func(t *testing.T) Store {
		t.Helper()
		s, err := NewPostgresStore(context.Background(), url)
		if err != nil {
			t.Fatalf("NewPostgresStore() error = %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{"default is memory", Options{}, nil},
		{"memory", Options{Backend: BackendMemory}, nil},
		{"unknown", Options{Backend: "cassandra"}, ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := New(context.Background(), tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			_ = s.Close()
		})
	}
}
