package memory

import (
	"context"
	"sync"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

// DirectoryStore holds the last snapshot in memory. Test/dev backend.
type DirectoryStore struct {
	mu      sync.RWMutex
	entries []types.DirectoryEntry
}

func NewDirectoryStore() *DirectoryStore {
	return &DirectoryStore{}
}

func (s *DirectoryStore) Replace(_ context.Context, entries []types.DirectoryEntry) error {
	cp := make([]types.DirectoryEntry, len(entries))
	copy(cp, entries)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = cp
	return nil
}

func (s *DirectoryStore) Load(_ context.Context) ([]types.DirectoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.DirectoryEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}
