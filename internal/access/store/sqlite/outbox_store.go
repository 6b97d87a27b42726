package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/GabrielViecili/RFID-and-distributed-systems/internal/db"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/store"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

type OutboxStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewOutboxStore(db *sql.DB, writer *dbpkg.Worker) *OutboxStore {
	return &OutboxStore{db: db, writer: writer}
}

func (s *OutboxStore) Enqueue(ctx context.Context, ev types.AccessEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	occurredMs := ev.Timestamp.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO pending_events(event_id, badge_id, event_type, result, reason, occurred_at_ms)
VALUES (?, ?, ?, ?, ?, ?);
`, ev.EventID, ev.BadgeID, string(ev.Type), string(ev.Result), ev.Reason, occurredMs); err != nil {
			return fmt.Errorf("Enqueue insert: %w", err)
		}
		return nil
	})
}

func (s *OutboxStore) Pending(ctx context.Context) ([]store.OutboxItem, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, event_id, badge_id, event_type, result, reason, occurred_at_ms, attempts
FROM pending_events
ORDER BY id ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("Pending query: %w", err)
	}
	defer rows.Close()

	var items []store.OutboxItem
	for rows.Next() {
		var (
			it         store.OutboxItem
			evtType    string
			result     string
			occurredMs int64
		)
		if err := rows.Scan(
			&it.ID, &it.Event.EventID, &it.Event.BadgeID,
			&evtType, &result, &it.Event.Reason,
			&occurredMs, &it.Attempts,
		); err != nil {
			return nil, fmt.Errorf("Pending scan: %w", err)
		}
		it.Event.Type = types.EventType(evtType)
		it.Event.Result = types.Result(result)
		it.Event.Timestamp = time.UnixMilli(occurredMs).UTC()
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Pending rows: %w", err)
	}
	return items, nil
}

func (s *OutboxStore) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		q := fmt.Sprintf("DELETE FROM pending_events WHERE id IN (%s);", placeholders(len(ids)))
		if _, err := tx.ExecContext(ctx, q, idArgs(ids)...); err != nil {
			return fmt.Errorf("Delete: %w", err)
		}
		return nil
	})
}

func (s *OutboxStore) MarkAttempted(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		q := fmt.Sprintf("UPDATE pending_events SET attempts = attempts + 1 WHERE id IN (%s);", placeholders(len(ids)))
		if _, err := tx.ExecContext(ctx, q, idArgs(ids)...); err != nil {
			return fmt.Errorf("MarkAttempted: %w", err)
		}
		return nil
	})
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
