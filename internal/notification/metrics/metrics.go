package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Appended *prometheus.CounterVec
	Seen     prometheus.Counter
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Appended: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_notification_appended_total",
			Help: "Notifications appended to the admin queue, by kind",
		}, []string{"kind"}),
		Seen: factory.NewCounter(prometheus.CounterOpts{
			Name: "certledger_notification_seen_total",
			Help: "Notifications transitioned from pending to seen",
		}),
	}
}

func (m *Metrics) IncAppended(kind string) {
	if m == nil {
		return
	}
	m.Appended.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncSeen() {
	if m == nil {
		return
	}
	m.Seen.Inc()
}
