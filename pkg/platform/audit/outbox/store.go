package outbox

import (
	"context"
	"time"
)

// Handler publishes one entry. A nil return marks the entry processed.
type Handler func(ctx context.Context, entry *Entry) error

// Store defines the outbox persistence operations.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds a new entry to the outbox.
	Append(ctx context.Context, entry *Entry) error

	// ProcessBatch claims up to limit unprocessed entries, oldest first, and
	// hands each to fn. Entries fn accepts are marked processed; rejected
	// entries stay pending for the next batch. Claimed rows are locked so
	// concurrent relays skip them. Returns the number of entries marked.
	ProcessBatch(ctx context.Context, limit int, fn Handler) (int, error)

	// CountPending returns the number of unprocessed entries.
	CountPending(ctx context.Context) (int64, error)

	// DeleteProcessedBefore removes processed entries older than before.
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
