// Package directory mirrors the remote collaborator directory.
//
// Resolve is the hot path used by the decision engine: it only ever
// inspects the in-memory map and never blocks on the network. Refresh
// is called by the delivery worker; it fetches the full directory
// unlocked, persists it, then swaps the map in one step. A failed
// fetch leaves the previous snapshot untouched.
package directory

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/store"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

// Fetcher retrieves the authoritative directory from the remote API.
type Fetcher interface {
	FetchDirectory(ctx context.Context) ([]types.DirectoryEntry, error)
}

type Cache struct {
	fetcher Fetcher
	persist store.DirectoryStore
	logger  *log.Logger

	mu          sync.RWMutex
	entries     map[string]types.DirectoryEntry
	lastRefresh time.Time
}

func New(fetcher Fetcher, persist store.DirectoryStore, logger *log.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		persist: persist,
		logger:  logger,
		entries: make(map[string]types.DirectoryEntry),
	}
}

// Seed loads the persisted snapshot into memory. Called once at
// startup, before the first Refresh, so the reader can make decisions
// while the remote is unreachable.
func (c *Cache) Seed(ctx context.Context) (int, error) {
	entries, err := c.persist.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load directory snapshot: %w", err)
	}
	m := make(map[string]types.DirectoryEntry, len(entries))
	for _, e := range entries {
		m[e.BadgeID] = e
	}

	c.mu.Lock()
	c.entries = m
	c.mu.Unlock()
	return len(m), nil
}

// Resolve looks up a badge in the current snapshot. The second return
// distinguishes "not registered at all" from "registered but
// unauthorized" — callers must check Authorized themselves.
func (c *Cache) Resolve(badgeID string) (types.DirectoryEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[badgeID]
	return e, ok
}

// Refresh fetches the full directory and, on success, replaces the
// whole mapping and the persisted snapshot. The fetch runs without any
// lock held. A persistence failure is logged loudly but does not undo
// the in-memory update: the persisted copy is a restart fallback, not
// the source of truth.
func (c *Cache) Refresh(ctx context.Context) (int, error) {
	entries, err := c.fetcher.FetchDirectory(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch directory: %w", err)
	}

	if err := c.persist.Replace(ctx, entries); err != nil {
		c.logger.Printf("SERIOUS: directory snapshot persist failed, cache will not survive restart: %v", err)
	}

	m := make(map[string]types.DirectoryEntry, len(entries))
	for _, e := range entries {
		m[e.BadgeID] = e
	}

	c.mu.Lock()
	c.entries = m
	c.lastRefresh = time.Now().UTC()
	c.mu.Unlock()
	return len(m), nil
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// LastRefresh reports when the last successful remote refresh
// completed; zero if none has succeeded yet.
func (c *Cache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefresh
}
