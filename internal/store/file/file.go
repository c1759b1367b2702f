// Package file stores streak snapshots as a JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store keeps streaks in a JSON file of the form {"member_id": streak}.
type Store struct {
	path string
}

// Open returns a store for path. The file is created on first write; its
// directory must already exist.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open streaks file: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open streaks file: %s is not a directory", dir)
	}
	return &Store{path: path}, nil
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// Close is a no-op; files are not held open between calls.
func (s *Store) Close() error {
	return nil
}

// ReadStreaks returns the stored snapshot, or an empty map if the file
// does not exist yet.
func (s *Store) ReadStreaks(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read streaks: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read streaks: %w", err)
	}

	streaks := map[string]int{}
	if err := json.Unmarshal(data, &streaks); err != nil {
		return nil, fmt.Errorf("read streaks: decode %s: %w", s.path, err)
	}
	return streaks, nil
}

// WriteStreaks merges the batch into the stored snapshot and replaces the
// file atomically.
func (s *Store) WriteStreaks(ctx context.Context, streaks map[string]int) error {
	merged, err := s.ReadStreaks(ctx)
	if err != nil {
		return fmt.Errorf("write streaks: %w", err)
	}
	for id, streak := range streaks {
		merged[id] = streak
	}

	// Map keys are emitted sorted, so the file diffs cleanly between runs.
	data, err := json.MarshalIndent(merged, "", "    ")
	if err != nil {
		return fmt.Errorf("write streaks: encode: %w", err)
	}
	data = append(data, '\n')

	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("write streaks: %w", err)
	}
	return nil
}

// writeAtomic writes data to a temp file beside path and renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // No-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
