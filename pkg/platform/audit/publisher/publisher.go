// Package publisher delivers audit events to a store, either inline or
// through a bounded asynchronous buffer.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "certledger/pkg/platform/audit"
	"certledger/pkg/platform/audit/metrics"
	"certledger/pkg/requestcontext"
)

const drainTimeout = 5 * time.Second

// Publisher captures structured audit events. Without WithAsyncBuffer every
// Emit writes through to the store.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	buffer  int

	events    chan audit.Event
	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

type Option func(*Publisher)

// WithAsyncBuffer queues events on a channel of size n drained by a
// background goroutine. Emit never blocks; a full buffer drops the event.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer > 0 {
		p.events = make(chan audit.Event, p.buffer)
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit stamps the event with time, category and request id, then stores or
// enqueues it.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if p.events == nil {
		if err := p.store.Append(ctx, event); err != nil {
			p.metrics.IncStoreErrors()
			return err
		}
		p.metrics.IncEmitted(event.Action)
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.metrics.IncDropped()
		return nil
	}
	select {
	case p.events <- event:
		p.metrics.IncEmitted(event.Action)
	default:
		p.metrics.IncDropped()
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"subject", event.Subject,
		)
	}
	return nil
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for event := range p.events {
		p.persist(event)
	}
}

func (p *Publisher) persist(event audit.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := p.store.Append(ctx, event); err != nil {
		p.metrics.IncStoreErrors()
		p.logger.Error("failed to persist audit event",
			"action", event.Action,
			"subject", event.Subject,
			"error", err,
		)
	}
}

// Close stops accepting events and waits for the buffer to drain.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.events == nil {
			return
		}
		p.mu.Lock()
		p.closed = true
		close(p.events)
		p.mu.Unlock()
		p.wg.Wait()
	})
}
