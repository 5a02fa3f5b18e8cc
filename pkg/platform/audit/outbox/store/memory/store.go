package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"certledger/pkg/platform/audit/outbox"
)

// Store is an in-memory outbox for tests and single-process runs.
type Store struct {
	mu      sync.Mutex
	entries []*outbox.Entry
	now     func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) Append(_ context.Context, entry *outbox.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	s.entries = append(s.entries, &cp)
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].CreatedAt.Before(s.entries[j].CreatedAt)
	})
	return nil
}

// ProcessBatch holds the store lock while fn runs.
func (s *Store) ProcessBatch(ctx context.Context, limit int, fn outbox.Handler) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	processed := 0
	claimed := 0
	for _, e := range s.entries {
		if claimed >= limit {
			break
		}
		if !e.IsPending() {
			continue
		}
		claimed++
		cp := *e
		if fn(ctx, &cp) != nil {
			continue
		}
		at := s.now()
		e.ProcessedAt = &at
		processed++
	}
	return processed, nil
}

func (s *Store) CountPending(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.entries {
		if e.IsPending() {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	var removed int64
	for _, e := range s.entries {
		if e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed, nil
}

var _ outbox.Store = (*Store)(nil)
