package store

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"certledger/internal/review/models"
	"certledger/pkg/platform/sentinel"
)

const shardCount = 32

// InMemoryStore keeps requests in a map. Execute serializes writers per
// request through a fixed set of shard locks.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*models.MintRequest
	// slots maps SlotKey to the request id holding it.
	slots  map[string]string
	shards [shardCount]sync.Mutex
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		requests: make(map[string]*models.MintRequest),
		slots:    make(map[string]string),
	}
}

func (s *InMemoryStore) shard(requestID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(requestID))
	return &s.shards[h.Sum32()%shardCount]
}

func (s *InMemoryStore) Create(_ context.Context, req *models.MintRequest) error {
	if req == nil {
		return fmt.Errorf("mint request is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[req.RequestID]; exists {
		return fmt.Errorf("request %s exists: %w", req.RequestID, sentinel.ErrConflict)
	}
	if req.Status.HoldsSlot() {
		if holder, taken := s.slots[req.SlotKey()]; taken {
			return fmt.Errorf("slot held by %s: %w", holder, sentinel.ErrConflict)
		}
		s.slots[req.SlotKey()] = req.RequestID
	}
	s.requests[req.RequestID] = req.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, requestID string) (*models.MintRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if req, ok := s.requests[requestID]; ok {
		return req.Clone(), nil
	}
	return nil, fmt.Errorf("request not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter) ([]*models.MintRequest, error) {
	s.mu.RLock()
	out := make([]*models.MintRequest, 0, len(s.requests))
	for _, req := range s.requests {
		if filter.Matches(req) {
			out = append(out, req.Clone())
		}
	}
	s.mu.RUnlock()

	sortRequests(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *InMemoryStore) Execute(_ context.Context, requestID string, validate ValidateFunc, mutate MutateFunc) (*models.MintRequest, error) {
	lock := s.shard(requestID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	current, ok := s.requests[requestID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("request not found: %w", sentinel.ErrNotFound)
	}

	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	working.Version = current.Version + 1

	s.mu.Lock()
	if current.Status.HoldsSlot() && !working.Status.HoldsSlot() {
		if s.slots[current.SlotKey()] == requestID {
			delete(s.slots, current.SlotKey())
		}
	}
	s.requests[requestID] = working
	s.mu.Unlock()

	return working.Clone(), nil
}

func sortRequests(reqs []*models.MintRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].SubmittedAt.Equal(reqs[j].SubmittedAt) {
			return reqs[i].SubmittedAt.Before(reqs[j].SubmittedAt)
		}
		return reqs[i].RequestID < reqs[j].RequestID
	})
}

var _ Store = (*InMemoryStore)(nil)
