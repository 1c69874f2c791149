package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/benvon/review-memory/internal/config"
	"github.com/benvon/review-memory/internal/storage"
)

const storeOpenTimeout = 30 * time.Second

// storeFlags override the storage settings taken from the environment
type storeFlags struct {
	backend     string
	redisURL    string
	databaseURL string
	sqlitePath  string
}

func (f *storeFlags) register(cmd *cobra.Command, prefix string) {
	suffix := func(env string) string { return " (default from " + env + ")" }
	if prefix != "" {
		suffix = func(string) string { return "" }
	}
	cmd.PersistentFlags().StringVar(&f.backend, prefix+"backend", "", "storage backend: memory, redis, postgres or sqlite"+suffix("STORAGE_BACKEND"))
	cmd.PersistentFlags().StringVar(&f.redisURL, prefix+"redis-url", "", "Redis URL"+suffix("REDIS_URL"))
	cmd.PersistentFlags().StringVar(&f.databaseURL, prefix+"database-url", "", "PostgreSQL URL"+suffix("DATABASE_URL"))
	cmd.PersistentFlags().StringVar(&f.sqlitePath, prefix+"sqlite-path", "", "SQLite file"+suffix("SQLITE_PATH"))
}

func (f *storeFlags) options(base storage.Options) storage.Options {
	opts := base
	if f.backend != "" {
		opts.Backend = f.backend
	}
	if f.redisURL != "" {
		opts.RedisURL = f.redisURL
	}
	if f.databaseURL != "" {
		opts.DatabaseURL = f.databaseURL
	}
	if f.sqlitePath != "" {
		opts.SQLitePath = f.sqlitePath
	}
	return opts
}

// baseOptions reads the server's storage settings so the CLI opens the same store by default
func baseOptions() (storage.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		return storage.Options{}, fmt.Errorf("failed to load config: %w", err)
	}
	return storage.Options{
		Backend:     cfg.StorageBackend,
		RedisURL:    cfg.RedisURL,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	}, nil
}

func openStore(ctx context.Context, opts storage.Options) (storage.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpenTimeout)
	defer cancel()

	store, err := storage.New(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", opts.Backend, err)
	}
	return store, nil
}

// withStore opens the store selected by the environment and flags, runs fn and closes it
func (a *app) withStore(cmd *cobra.Command, fn func(store storage.Store) error) error {
	base, err := baseOptions()
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), a.source.options(base))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.ui.warning("failed to close storage: %v", err)
		}
	}()
	return fn(store)
}
