package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"certledger/internal/notification/metrics"
	"certledger/internal/notification/models"
	"certledger/internal/notification/store"
	dErrors "certledger/pkg/domain-errors"
	audit "certledger/pkg/platform/audit"
	auditmemory "certledger/pkg/platform/audit/store/memory"
	"certledger/pkg/platform/audit/publisher"
	"certledger/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	audit   *auditmemory.InMemoryStore
	metrics *metrics.Metrics
	service *Service
	ctx     context.Context
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	svc, err := New(s.store,
		WithMetrics(s.metrics),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
	)
	s.Require().NoError(err)
	s.service = svc
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) TestAppendAssignsIdentity() {
	item, err := s.service.Append(s.ctx, models.NotificationItem{
		RequestID: "R1",
		Kind:      models.KindSubmitted,
		Message:   "new request",
		Status:    models.StatusSeen,
	})
	s.Require().NoError(err)
	s.NotEmpty(item.ID)
	s.Equal(s.now, item.CreatedAt)
	s.Equal(models.StatusPending, item.Status)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Appended.WithLabelValues("submitted")))
}

func (s *ServiceSuite) TestAppendKeepsGivenIDAndTime() {
	at := s.now.Add(-time.Hour)
	item, err := s.service.Append(s.ctx, models.NotificationItem{ID: "N1", RequestID: "R1", Kind: models.KindReminder, CreatedAt: at})
	s.Require().NoError(err)
	s.Equal("N1", item.ID)
	s.Equal(at, item.CreatedAt)
}

func (s *ServiceSuite) TestAppendValidates() {
	_, err := s.service.Append(s.ctx, models.NotificationItem{Kind: models.KindSubmitted})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.Append(s.ctx, models.NotificationItem{RequestID: "R1", Kind: "digest"})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestMarkSeenIsIdempotent() {
	item, err := s.service.Append(s.ctx, models.NotificationItem{RequestID: "R1", Kind: models.KindSubmitted})
	s.Require().NoError(err)

	admin := requestcontext.WithAdminAddress(s.ctx, "0xadmin")
	s.Require().NoError(s.service.MarkSeen(admin, item.ID))
	s.Require().NoError(s.service.MarkSeen(admin, item.ID))
	s.Require().NoError(s.service.MarkSeen(admin, "unknown"))
	s.Require().NoError(s.service.MarkSeen(admin, ""))

	items, err := s.service.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(models.StatusSeen, items[0].Status)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Seen))

	events, err := s.audit.ListRecent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventNotificationSeen), events[0].Action)
	s.Equal("0xadmin", events[0].ActorID)
}

func (s *ServiceSuite) TestListIsOrderedAndFiltered() {
	for i, kind := range []models.Kind{models.KindSubmitted, models.KindReminder, models.KindMintFailed} {
		_, err := s.service.Append(s.ctx, models.NotificationItem{
			RequestID: "R1",
			Kind:      kind,
			CreatedAt: s.now.Add(time.Duration(3-i) * time.Minute),
		})
		s.Require().NoError(err)
	}

	items, err := s.service.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Require().Len(items, 3)
	s.Equal(models.KindMintFailed, items[0].Kind)
	s.Equal(models.KindSubmitted, items[2].Kind)

	failed, err := s.service.List(s.ctx, models.Filter{Kind: models.KindMintFailed})
	s.Require().NoError(err)
	s.Len(failed, 1)
}

type failingStore struct{ store.Store }

func (failingStore) List(context.Context, models.Filter) ([]*models.NotificationItem, error) {
	return nil, errors.New("connection refused")
}

func TestListStoreErrorIsInternal(t *testing.T) {
	svc, err := New(failingStore{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.List(context.Background(), models.Filter{})
	if !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error")
	}
}
