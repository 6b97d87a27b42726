package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev inserts a couple of directory entries so a dev reader is
// usable before its first successful remote sync. Existing rows are
// left alone — a real snapshot always wins over seed data.
func SeedDev(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC().UnixMilli()

	seed := []struct {
		badgeID    string
		name       string
		authorized int
	}{
		{"2677980090", "Joao Silva", 1},
		{"219403520343", "Maria Santos", 0},
	}

	for _, s := range seed {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO directory_cache(badge_id, name, authorized, updated_at_ms)
VALUES (?, ?, ?, ?);`, s.badgeID, s.name, s.authorized, now); err != nil {
			return fmt.Errorf("seed directory entry %s: %w", s.badgeID, err)
		}
	}

	return nil
}
