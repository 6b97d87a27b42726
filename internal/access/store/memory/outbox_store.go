package memory

import (
	"context"
	"sync"
	"time"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/store"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

// OutboxStore is an in-memory FIFO outbox. It is intended for tests
// and dev environments; nothing survives a restart.
type OutboxStore struct {
	mu     sync.Mutex
	nextID int64
	items  []store.OutboxItem

	// FailEnqueue makes Enqueue return this error. Test-only hook for
	// exercising the degraded log-to-console-only path.
	FailEnqueue error
}

func NewOutboxStore() *OutboxStore {
	return &OutboxStore{nextID: 1}
}

func (s *OutboxStore) Enqueue(_ context.Context, ev types.AccessEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailEnqueue != nil {
		return s.FailEnqueue
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	s.items = append(s.items, store.OutboxItem{ID: s.nextID, Event: ev})
	s.nextID++
	return nil
}

func (s *OutboxStore) Pending(_ context.Context) ([]store.OutboxItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.OutboxItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *OutboxStore) Delete(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.items[:0]
	for _, it := range s.items {
		if _, ok := drop[it.ID]; !ok {
			kept = append(kept, it)
		}
	}
	s.items = kept
	return nil
}

func (s *OutboxStore) MarkAttempted(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bump := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		bump[id] = struct{}{}
	}
	for i := range s.items {
		if _, ok := bump[s.items[i].ID]; ok {
			s.items[i].Attempts++
		}
	}
	return nil
}
