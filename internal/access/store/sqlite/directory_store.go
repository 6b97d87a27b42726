package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/GabrielViecili/RFID-and-distributed-systems/internal/db"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

type DirectoryStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewDirectoryStore(db *sql.DB, writer *dbpkg.Worker) *DirectoryStore {
	return &DirectoryStore{db: db, writer: writer}
}

// Replace swaps the entire persisted snapshot inside one transaction.
// A failure rolls back and leaves the previous snapshot intact.
func (s *DirectoryStore) Replace(ctx context.Context, entries []types.DirectoryEntry) error {
	nowMs := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM directory_cache;`); err != nil {
			return fmt.Errorf("Replace clear: %w", err)
		}
		for _, e := range entries {
			var authorized int
			if e.Authorized {
				authorized = 1
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO directory_cache(badge_id, name, authorized, updated_at_ms)
VALUES (?, ?, ?, ?);
`, e.BadgeID, e.Name, authorized, nowMs); err != nil {
				return fmt.Errorf("Replace insert %s: %w", e.BadgeID, err)
			}
		}
		return nil
	})
}

func (s *DirectoryStore) Load(ctx context.Context) ([]types.DirectoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT badge_id, name, authorized FROM directory_cache ORDER BY badge_id;
`)
	if err != nil {
		return nil, fmt.Errorf("Load query: %w", err)
	}
	defer rows.Close()

	var entries []types.DirectoryEntry
	for rows.Next() {
		var (
			e          types.DirectoryEntry
			authorized int
		)
		if err := rows.Scan(&e.BadgeID, &e.Name, &authorized); err != nil {
			return nil, fmt.Errorf("Load scan: %w", err)
		}
		e.Authorized = authorized != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Load rows: %w", err)
	}
	return entries, nil
}
