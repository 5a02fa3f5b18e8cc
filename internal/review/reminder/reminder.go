// Package reminder nudges admins about requests that have waited too long
// for a decision.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	nmodels "certledger/internal/notification/models"
	"certledger/internal/review/metrics"
	"certledger/internal/review/models"
)

const (
	DefaultSchedule = "@every 1h"
	DefaultAfter    = 24 * time.Hour
	sweepLimit      = 500
)

// Requests lists mint requests.
type Requests interface {
	List(ctx context.Context, filter models.ListFilter) ([]*models.MintRequest, error)
}

// Notifications reads and appends admin notifications.
type Notifications interface {
	List(ctx context.Context, filter nmodels.Filter) ([]*nmodels.NotificationItem, error)
	Append(ctx context.Context, item nmodels.NotificationItem) (*nmodels.NotificationItem, error)
}

// Sweeper appends one reminder per stale pending request. A request that
// already has an unseen reminder is skipped.
type Sweeper struct {
	requests      Requests
	notifications Notifications
	after         time.Duration
	now           func() time.Time
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

type Option func(*Sweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

// WithAfter sets how long a request may stay pending before a reminder.
func WithAfter(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.after = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

func New(requests Requests, notifications Notifications, opts ...Option) (*Sweeper, error) {
	if requests == nil || notifications == nil {
		return nil, errors.New("requests and notifications are required")
	}
	s := &Sweeper{
		requests:      requests,
		notifications: notifications,
		after:         DefaultAfter,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sweep runs one pass and returns the number of reminders appended.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	stale, err := s.requests.List(ctx, models.ListFilter{
		Status:          models.StatusPending,
		SubmittedBefore: now.Add(-s.after),
		Limit:           sweepLimit,
	})
	if err != nil {
		return 0, fmt.Errorf("list stale requests: %w", err)
	}

	sent := 0
	for _, req := range stale {
		open, err := s.notifications.List(ctx, nmodels.Filter{
			RequestID: req.RequestID,
			Kind:      nmodels.KindReminder,
			Status:    nmodels.StatusPending,
		})
		if err != nil {
			return sent, fmt.Errorf("list reminders for %s: %w", req.RequestID, err)
		}
		if len(open) > 0 {
			continue
		}
		waited := now.Sub(req.SubmittedAt).Truncate(time.Minute)
		if _, err := s.notifications.Append(ctx, nmodels.NotificationItem{
			RequestID: req.RequestID,
			Kind:      nmodels.KindReminder,
			Message:   fmt.Sprintf("Request from %s for %s has been pending for %s", req.DisplayName, req.Course.ID, waited),
			CreatedAt: now,
		}); err != nil {
			return sent, fmt.Errorf("append reminder for %s: %w", req.RequestID, err)
		}
		sent++
	}
	s.metrics.AddReminders(sent)
	return sent, nil
}

// Run schedules Sweep on the cron spec until ctx is done, then waits for a
// running sweep to finish.
func (s *Sweeper) Run(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		sent, err := s.Sweep(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "reminder sweep failed", "sent", sent, "error", err)
			return
		}
		if sent > 0 {
			s.logger.InfoContext(ctx, "reminder sweep finished", "sent", sent)
		}
	}); err != nil {
		return fmt.Errorf("schedule reminder sweep %q: %w", schedule, err)
	}

	s.logger.InfoContext(ctx, "reminder sweep scheduled", "schedule", schedule, "after", s.after)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
