package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"certledger/pkg/platform/audit/outbox"
)

// maxBatch caps a single claim.
const maxBatch = 1000

const (
	insertEntry = `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	claimEntries = `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE processed_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED`

	markProcessed = `UPDATE outbox SET processed_at = $2 WHERE id = $1 AND processed_at IS NULL`

	countPending = `SELECT COUNT(*) FROM outbox WHERE processed_at IS NULL`

	deleteProcessed = `DELETE FROM outbox WHERE processed_at IS NOT NULL AND processed_at < $1`
)

// Store implements outbox.Store using PostgreSQL.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Append(ctx context.Context, entry *outbox.Entry) error {
	if _, err := s.db.ExecContext(ctx, insertEntry,
		entry.ID,
		entry.AggregateType,
		entry.AggregateID,
		entry.EventType,
		entry.Payload,
		entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ProcessBatch holds the row locks for the duration of fn so a second relay
// never produces the same entry concurrently.
func (s *Store) ProcessBatch(ctx context.Context, limit int, fn outbox.Handler) (processed int, err error) {
	if limit <= 0 {
		return 0, nil
	}
	if limit > maxBatch {
		limit = maxBatch
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	entries, err := claim(ctx, tx, limit)
	if err != nil {
		return 0, err
	}

	for _, entry := range entries {
		if fn(ctx, entry) != nil {
			continue
		}
		if _, err = tx.ExecContext(ctx, markProcessed, entry.ID, s.now()); err != nil {
			return 0, fmt.Errorf("mark outbox entry processed: %w", err)
		}
		processed++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outbox tx: %w", err)
	}
	return processed, nil
}

func claim(ctx context.Context, tx *sql.Tx, limit int) ([]*outbox.Entry, error) {
	rows, err := tx.QueryContext(ctx, claimEntries, limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox entries: %w", err)
	}
	defer rows.Close()

	var entries []*outbox.Entry
	for rows.Next() {
		var e outbox.Entry
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox entries: %w", err)
	}
	return entries, nil
}

func (s *Store) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, countPending).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending entries: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, deleteProcessed, before)
	if err != nil {
		return 0, fmt.Errorf("delete processed entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return n, nil
}

var _ outbox.Store = (*Store)(nil)
