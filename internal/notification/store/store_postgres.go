package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"certledger/internal/notification/models"
	"certledger/pkg/platform/sentinel"
)

const (
	insertNotification = `
		INSERT INTO notifications (id, request_id, kind, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	markNotificationSeen = `
		UPDATE notifications SET status = 'seen', seen_at = $2
		WHERE id = $1 AND status = 'pending'`

	listNotifications = `
		SELECT id, request_id, kind, message, status, created_at, seen_at
		FROM notifications
		WHERE (cardinality($1::text[]) = 0 OR status = ANY($1))
		  AND ($2 = '' OR request_id = $2)
		  AND (cardinality($3::text[]) = 0 OR kind = ANY($3))
		ORDER BY created_at ASC, id ASC`
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, item *models.NotificationItem) error {
	result, err := s.db.ExecContext(ctx, insertNotification,
		item.ID,
		item.RequestID,
		string(item.Kind),
		item.Message,
		string(item.Status),
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("notification %s exists: %w", item.ID, sentinel.ErrConflict)
	}
	return nil
}

func (s *PostgresStore) MarkSeen(ctx context.Context, id string, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, markNotificationSeen, id, at)
	if err != nil {
		return false, fmt.Errorf("mark notification seen: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.NotificationItem, error) {
	rows, err := s.db.QueryContext(ctx, listNotifications,
		pq.Array(optional(string(filter.Status))),
		filter.RequestID,
		pq.Array(optional(string(filter.Kind))),
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]*models.NotificationItem, 0)
	for rows.Next() {
		var (
			item         models.NotificationItem
			kind, status string
			seenAt       sql.NullTime
		)
		if err := rows.Scan(&item.ID, &item.RequestID, &kind, &item.Message, &status, &item.CreatedAt, &seenAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		item.Kind = models.Kind(kind)
		item.Status = models.Status(status)
		if seenAt.Valid {
			t := seenAt.Time
			item.SeenAt = &t
		}
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// optional turns an empty filter value into an empty array.
func optional(v string) []string {
	if v == "" {
		return []string{}
	}
	return []string{v}
}

var _ Store = (*PostgresStore)(nil)
