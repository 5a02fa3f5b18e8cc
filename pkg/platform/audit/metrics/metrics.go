package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the audit publisher.
type Metrics struct {
	Emitted     *prometheus.CounterVec
	Dropped     prometheus.Counter
	StoreErrors prometheus.Counter
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Emitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_audit_events_emitted_total",
			Help: "Audit events accepted by the publisher, by action",
		}, []string{"action"}),
		Dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "certledger_audit_events_dropped_total",
			Help: "Audit events dropped because the async buffer was full",
		}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "certledger_audit_store_errors_total",
			Help: "Audit events the store failed to persist",
		}),
	}
}

func (m *Metrics) IncEmitted(action string) {
	if m == nil {
		return
	}
	m.Emitted.WithLabelValues(action).Inc()
}

func (m *Metrics) IncDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) IncStoreErrors() {
	if m == nil {
		return
	}
	m.StoreErrors.Inc()
}
