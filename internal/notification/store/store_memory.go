package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"certledger/internal/notification/models"
	"certledger/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	items []*models.NotificationItem
	byID  map[string]*models.NotificationItem
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{byID: make(map[string]*models.NotificationItem)}
}

func (s *InMemoryStore) Append(_ context.Context, item *models.NotificationItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[item.ID]; exists {
		return fmt.Errorf("notification %s exists: %w", item.ID, sentinel.ErrConflict)
	}
	cp := item.Clone()
	s.items = append(s.items, cp)
	s.byID[cp.ID] = cp
	return nil
}

func (s *InMemoryStore) MarkSeen(_ context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byID[id]
	if !ok || item.Status == models.StatusSeen {
		return false, nil
	}
	item.Status = models.StatusSeen
	item.SeenAt = &at
	return true, nil
}

func (s *InMemoryStore) List(_ context.Context, filter models.Filter) ([]*models.NotificationItem, error) {
	s.mu.RLock()
	out := make([]*models.NotificationItem, 0, len(s.items))
	for _, item := range s.items {
		if filter.Matches(item) {
			out = append(out, item.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return models.Less(out[i], out[j]) })
	return out, nil
}

var _ Store = (*InMemoryStore)(nil)
