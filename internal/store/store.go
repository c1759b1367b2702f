package store

import (
	"context"
	"fmt"

	"github.com/roach88/streakbot/internal/store/file"
	"github.com/roach88/streakbot/internal/store/postgres"
	"github.com/roach88/streakbot/internal/store/redis"
	"github.com/roach88/streakbot/internal/store/sqlite"
)

// Store reads and writes streak snapshots.
type Store interface {
	ReadStreaks(ctx context.Context) (map[string]int, error)
	WriteStreaks(ctx context.Context, streaks map[string]int) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Backends lists every supported backend.
var Backends = []string{BackendFile, BackendSQLite, BackendPostgres, BackendRedis}

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Path is the file or SQLite database location.
	Path string

	// DSN is the PostgreSQL connection string.
	DSN string

	// Redis connection and hash key.
	Addr     string
	Password string
	DB       int
	Key      string
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("open store: file backend requires a path")
		}
		return file.Open(opts.Path)
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("open store: sqlite backend requires a path")
		}
		return sqlite.Open(opts.Path)
	case BackendPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("open store: postgres backend requires a dsn")
		}
		pg, err := postgres.Connect(ctx, opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		return pg, nil
	case BackendRedis:
		if opts.Addr == "" {
			return nil, fmt.Errorf("open store: redis backend requires an address")
		}
		r, err := redis.Connect(ctx, redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
			Key:      opts.Key,
		})
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("open store: unknown backend %q: must be one of %v", opts.Backend, Backends)
	}
}
