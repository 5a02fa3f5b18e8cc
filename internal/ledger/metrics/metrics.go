package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments ledger RPC traffic.
type Metrics struct {
	RPCDuration *prometheus.HistogramVec
	RPCErrors   *prometheus.CounterVec
	CircuitOpen prometheus.Gauge
}

// New creates and registers ledger metrics with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers ledger metrics with reg. Tests pass a fresh registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RPCDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "certledger_ledger_rpc_duration_seconds",
			Help:    "Duration of ledger JSON-RPC calls",
			Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		RPCErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_ledger_rpc_errors_total",
			Help: "Ledger JSON-RPC failures by method and category",
		}, []string{"method", "category"}),
		CircuitOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "certledger_ledger_circuit_open",
			Help: "1 while the ledger circuit breaker is open",
		}),
	}
}

func (m *Metrics) ObserveRPC(method string, seconds float64) {
	if m == nil {
		return
	}
	m.RPCDuration.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) IncrementRPCError(method, category string) {
	if m == nil {
		return
	}
	m.RPCErrors.WithLabelValues(method, category).Inc()
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitOpen.Set(1)
		return
	}
	m.CircuitOpen.Set(0)
}
