// Package store persists notification items.
package store

import (
	"context"
	"time"

	"certledger/internal/notification/models"
)

type Store interface {
	Append(ctx context.Context, item *models.NotificationItem) error
	// MarkSeen flips a pending item to seen. It reports whether anything changed;
	// unknown ids are not an error.
	MarkSeen(ctx context.Context, id string, at time.Time) (bool, error)
	// List returns matching items ordered by createdAt, then id.
	List(ctx context.Context, filter models.Filter) ([]*models.NotificationItem, error)
}
