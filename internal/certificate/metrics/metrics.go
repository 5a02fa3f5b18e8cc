package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers credential listing and verification.
type Metrics struct {
	DecodeSkipped   *prometheus.CounterVec
	Verifications   *prometheus.CounterVec
	ListDuration    prometheus.Histogram
	VerifyDuration  prometheus.Histogram
	ListedPageCount prometheus.Histogram
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DecodeSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_certificate_decode_skipped_total",
			Help: "Ledger objects skipped while decoding credentials, by reason",
		}, []string{"reason"}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_certificate_verifications_total",
			Help: "Credential verifications by outcome (valid, invalid, absent)",
		}, []string{"outcome"}),
		ListDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "certledger_certificate_list_duration_seconds",
			Help:    "Duration of wallet credential listings including all pages",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		VerifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "certledger_certificate_verify_duration_seconds",
			Help:    "Duration of single credential verifications",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		ListedPageCount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "certledger_certificate_list_pages",
			Help:    "Ledger pages fetched per wallet listing",
			Buckets: []float64{1, 2, 3, 5, 10, 20},
		}),
	}
}

func (m *Metrics) IncrementSkipped(reason string) {
	if m == nil {
		return
	}
	m.DecodeSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementVerification(outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
}

// ObserveList records a listing that started at start and fetched pages pages.
func (m *Metrics) ObserveList(start time.Time, pages int) {
	if m == nil {
		return
	}
	m.ListDuration.Observe(time.Since(start).Seconds())
	m.ListedPageCount.Observe(float64(pages))
}

func (m *Metrics) ObserveVerify(start time.Time) {
	if m == nil {
		return
	}
	m.VerifyDuration.Observe(time.Since(start).Seconds())
}
