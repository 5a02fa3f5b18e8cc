// Package service is the admin notification queue.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"certledger/internal/notification/metrics"
	"certledger/internal/notification/models"
	"certledger/internal/notification/store"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/ids"
	audit "certledger/pkg/platform/audit"
	"certledger/pkg/requestcontext"
)

// AuditPublisher records notification handling.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store   store.Store
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func New(st store.Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("notification store is required")
	}
	s := &Service{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Append enqueues item. Missing id and createdAt are filled in; status is
// always pending.
func (s *Service) Append(ctx context.Context, item models.NotificationItem) (*models.NotificationItem, error) {
	if strings.TrimSpace(item.RequestID) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "requestId is required")
	}
	if _, err := models.ParseKind(string(item.Kind)); err != nil {
		return nil, err
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = requestcontext.Now(ctx)
	}
	if item.ID == "" {
		item.ID = ids.NewAt(item.CreatedAt)
	}
	item.Status = models.StatusPending
	item.SeenAt = nil

	if err := s.store.Append(ctx, &item); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append notification")
	}
	s.metrics.IncAppended(string(item.Kind))
	return &item, nil
}

// MarkSeen is idempotent: unknown and already seen ids succeed without change.
func (s *Service) MarkSeen(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	changed, err := s.store.MarkSeen(ctx, id, requestcontext.Now(ctx))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification seen")
	}
	if !changed {
		return nil
	}
	s.metrics.IncSeen()
	if s.auditor != nil {
		if err := s.auditor.Emit(ctx, audit.Event{
			Action:  string(audit.EventNotificationSeen),
			Subject: id,
			ActorID: requestcontext.AdminAddress(ctx),
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event", "action", audit.EventNotificationSeen, "error", err)
		}
	}
	return nil
}

// List returns matching items ordered by createdAt, then id.
func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.NotificationItem, error) {
	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return items, nil
}
