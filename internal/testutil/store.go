package testutil

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore keeps a streak snapshot in memory.
type MemoryStore struct {
	mu      sync.Mutex
	streaks map[string]int
	writes  int

	ReadErr  error
	WriteErr error

	Log *CallLog
}

// NewMemoryStore creates a store holding a copy of initial.
func NewMemoryStore(log *CallLog, initial map[string]int) *MemoryStore {
	if log == nil {
		log = NewCallLog()
	}
	s := &MemoryStore{streaks: make(map[string]int), Log: log}
	maps.Copy(s.streaks, initial)
	return s
}

func (s *MemoryStore) ReadStreaks(ctx context.Context) (map[string]int, error) {
	s.Log.Record("read")
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	return s.Snapshot(), nil
}

// WriteStreaks replaces the snapshot wholesale.
func (s *MemoryStore) WriteStreaks(ctx context.Context, streaks map[string]int) error {
	s.Log.Record("write")
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaks = maps.Clone(streaks)
	if s.streaks == nil {
		s.streaks = make(map[string]int)
	}
	s.writes++
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Snapshot returns a copy of the stored streaks.
func (s *MemoryStore) Snapshot() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.streaks)
}

// Writes returns how many writes succeeded.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
