package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_File(t *testing.T) {
	s, err := Open(context.Background(), Options{
		Backend: BackendFile,
		Path:    filepath.Join(t.TempDir(), "streaks.json"),
	})
	require.NoError(t, err)
	defer s.Close()

	roundTrip(t, s)
}

func TestOpen_SQLite(t *testing.T) {
	s, err := Open(context.Background(), Options{
		Backend: BackendSQLite,
		Path:    filepath.Join(t.TempDir(), "streaks.db"),
	})
	require.NoError(t, err)
	defer s.Close()

	roundTrip(t, s)
}

func TestOpen_MissingSettings(t *testing.T) {
	tests := []Options{
		{Backend: BackendFile},
		{Backend: BackendSQLite},
		{Backend: BackendPostgres},
		{Backend: BackendRedis},
	}
	for _, opts := range tests {
		t.Run(opts.Backend, func(t *testing.T) {
			_, err := Open(context.Background(), opts)
			assert.Error(t, err)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

// roundTrip checks the behavior every backend shares.
func roundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	got, err := s.ReadStreaks(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.WriteStreaks(ctx, map[string]int{"u1": 3, "u2": -2}))
	require.NoError(t, s.WriteStreaks(ctx, map[string]int{"u1": 4}))

	got, err = s.ReadStreaks(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"u1": 4, "u2": -2}, got)
}
