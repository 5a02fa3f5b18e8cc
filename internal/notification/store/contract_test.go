package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"

	"certledger/internal/notification/models"
	"certledger/pkg/platform/sentinel"
)

type contractSuite struct {
	suite.Suite
	newStore func() Store
	store    Store
	base     time.Time
}

func (s *contractSuite) SetupTest() {
	s.store = s.newStore()
	s.base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *contractSuite) item(id, requestID string, kind models.Kind, offset time.Duration) *models.NotificationItem {
	return &models.NotificationItem{
		ID:        id,
		RequestID: requestID,
		Kind:      kind,
		Message:   string(kind) + " " + requestID,
		Status:    models.StatusPending,
		CreatedAt: s.base.Add(offset),
	}
}

func (s *contractSuite) TestAppendRejectsDuplicateID() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, s.item("N1", "R1", models.KindSubmitted, 0)))
	err := s.store.Append(ctx, s.item("N1", "R1", models.KindSubmitted, 0))
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *contractSuite) TestListOrderedByCreatedThenID() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, s.item("N3", "R1", models.KindSubmitted, time.Second)))
	s.Require().NoError(s.store.Append(ctx, s.item("N2", "R2", models.KindSubmitted, 0)))
	s.Require().NoError(s.store.Append(ctx, s.item("N1", "R1", models.KindReminder, time.Second)))

	all, err := s.store.List(ctx, models.Filter{})
	s.Require().NoError(err)
	s.Equal([]string{"N2", "N1", "N3"}, itemIDs(all))

	forRequest, err := s.store.List(ctx, models.Filter{RequestID: "R1"})
	s.Require().NoError(err)
	s.Equal([]string{"N1", "N3"}, itemIDs(forRequest))

	reminders, err := s.store.List(ctx, models.Filter{Kind: models.KindReminder, Status: models.StatusPending})
	s.Require().NoError(err)
	s.Equal([]string{"N1"}, itemIDs(reminders))
	s.Equal("reminder R1", reminders[0].Message)
	s.True(reminders[0].CreatedAt.Equal(s.base.Add(time.Second)))
}

func (s *contractSuite) TestMarkSeen() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, s.item("N1", "R1", models.KindSubmitted, 0)))
	at := s.base.Add(time.Minute)

	changed, err := s.store.MarkSeen(ctx, "N1", at)
	s.Require().NoError(err)
	s.True(changed)

	changed, err = s.store.MarkSeen(ctx, "N1", at.Add(time.Minute))
	s.Require().NoError(err)
	s.False(changed)

	changed, err = s.store.MarkSeen(ctx, "missing", at)
	s.Require().NoError(err)
	s.False(changed)

	seen, err := s.store.List(ctx, models.Filter{Status: models.StatusSeen})
	s.Require().NoError(err)
	s.Require().Len(seen, 1)
	s.Require().NotNil(seen[0].SeenAt)
	s.True(seen[0].SeenAt.Equal(at))

	pending, err := s.store.List(ctx, models.Filter{Status: models.StatusPending})
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *contractSuite) TestConcurrentMarkSeenChangesOnce() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, s.item("N1", "R1", models.KindSubmitted, 0)))

	var changes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := s.store.MarkSeen(ctx, "N1", s.base); err == nil && ok {
				changes.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), changes.Load())
}

func itemIDs(items []*models.NotificationItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
