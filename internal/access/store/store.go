// Package store defines the persistence boundary for the reader's two
// durable concerns: the outbox of undelivered events and the cached
// directory snapshot. Backends: sqlite (production) and memory
// (tests/dev).
package store

import (
	"context"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

// OutboxItem wraps an AccessEvent awaiting delivery. ID orders the
// queue (FIFO); Attempts counts failed delivery sweeps.
type OutboxItem struct {
	ID       int64
	Event    types.AccessEvent
	Attempts int
}

// OutboxStore is the durable queue of events not yet confirmed
// delivered. Enqueue must not lose the event if the process dies
// immediately after it returns.
type OutboxStore interface {
	Enqueue(ctx context.Context, ev types.AccessEvent) error
	// Pending returns all queued items in FIFO order.
	Pending(ctx context.Context) ([]OutboxItem, error)
	// Delete removes confirmed-delivered items.
	Delete(ctx context.Context, ids []int64) error
	// MarkAttempted bumps the attempt counter on items that failed a sweep.
	MarkAttempted(ctx context.Context, ids []int64) error
}

// DirectoryStore persists the last successful directory snapshot.
// Replace swaps the whole table in one transaction — the persisted
// snapshot is never a partial merge.
type DirectoryStore interface {
	Replace(ctx context.Context, entries []types.DirectoryEntry) error
	Load(ctx context.Context) ([]types.DirectoryEntry, error)
}
