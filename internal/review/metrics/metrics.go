package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the mint request workflow.
type Metrics struct {
	Submitted          prometheus.Counter
	Decisions          *prometheus.CounterVec
	Mints              *prometheus.CounterVec
	MintDuration       prometheus.Histogram
	CASRetries         prometheus.Counter
	NotificationErrors prometheus.Counter
	RemindersSent      prometheus.Counter
	Reconciliations    *prometheus.CounterVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "certledger_review_requests_submitted_total",
			Help: "Mint requests accepted for review",
		}),
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_review_decisions_total",
			Help: "Admin decisions recorded, by outcome",
		}, []string{"outcome"}),
		Mints: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_review_mints_total",
			Help: "Mint attempts by outcome (minted or the failure code)",
		}, []string{"outcome"}),
		MintDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "certledger_review_mint_duration_seconds",
			Help:    "Duration of a mint from claim to recorded result",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		CASRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "certledger_review_cas_retries_total",
			Help: "Conditional writes retried after losing to a concurrent writer",
		}),
		NotificationErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "certledger_review_notification_errors_total",
			Help: "Admin notifications that could not be appended",
		}),
		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "certledger_review_reminders_sent_total",
			Help: "Reminder notifications appended for stale pending requests",
		}),
		Reconciliations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_review_reconciliations_total",
			Help: "Held mints resolved by an operator, by outcome (minted or released)",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncSubmitted() {
	if m == nil {
		return
	}
	m.Submitted.Inc()
}

func (m *Metrics) IncDecision(outcome string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveMint(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Mints.WithLabelValues(outcome).Inc()
	m.MintDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncCASRetry() {
	if m == nil {
		return
	}
	m.CASRetries.Inc()
}

func (m *Metrics) IncNotificationError() {
	if m == nil {
		return
	}
	m.NotificationErrors.Inc()
}

func (m *Metrics) AddReminders(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RemindersSent.Add(float64(n))
}

func (m *Metrics) IncReconciliation(outcome string) {
	if m == nil {
		return
	}
	m.Reconciliations.WithLabelValues(outcome).Inc()
}
