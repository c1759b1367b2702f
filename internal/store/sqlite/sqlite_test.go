package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='streaks'").Scan(&name)
	assert.NoError(t, err)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)
	// NORMAL = 1
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
}

func TestPragma_UserVersion(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.verifyPragma("user_version", "0"))
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 7")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version 7 is newer")
}

func TestReadStreaks_Empty(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ReadStreaks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestWriteStreaks_Upserts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteStreaks(ctx, map[string]int{"u1": 3, "u2": -2}))
	require.NoError(t, s.WriteStreaks(ctx, map[string]int{"u2": 1, "u3": -1}))

	got, err := s.ReadStreaks(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"u1": 3, "u2": 1, "u3": -1}, got)
}

func TestWriteStreaks_EmptyBatch(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.WriteStreaks(context.Background(), nil))
}

func TestWriteStreaks_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.WriteStreaks(ctx, map[string]int{"u1": 7}))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.ReadStreaks(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"u1": 7}, got)
}

func TestWriteStreaks_CanceledContextWritesNothing(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WriteStreaks(ctx, map[string]int{"u1": 1})
	require.Error(t, err)

	got, err := s.ReadStreaks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
