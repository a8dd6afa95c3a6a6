package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "tcgfun"

var openDurationBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics holds the simulator's Prometheus collectors.
type Metrics struct {
	Openings        *prometheus.CounterVec
	OpenDuration    *prometheus.HistogramVec
	CardsDrawn      *prometheus.CounterVec
	Diagnostics     *prometheus.CounterVec
	RuleValidations *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the simulator collectors on a fresh registry.
//
// Postcondition: Returns Metrics whose Handler serves only these collectors
// plus the Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return NewMetricsWithRegistry(reg, reg)
}

// NewMetricsWithRegistry registers the collectors on reg. gatherer backs
// Handler and may be nil when the caller serves metrics itself.
//
// Precondition: reg must be non-nil and must not already hold these collectors.
func NewMetricsWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Openings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "openings_total",
				Help:      "Product openings by product type and outcome",
			},
			[]string{"product_type", "outcome"},
		),
		OpenDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "open_duration_seconds",
				Help:      "Latency of product openings including catalog reads",
				Buckets:   openDurationBuckets,
			},
			[]string{"product_type"},
		),
		CardsDrawn: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cards_drawn_total",
				Help:      "Cards produced by openings by product type",
			},
			[]string{"product_type"},
		),
		Diagnostics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "draw_diagnostics_total",
				Help:      "Diagnostics reported by openings by kind and severity",
			},
			[]string{"kind", "severity"},
		),
		RuleValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "rule_validations_total",
				Help:      "Guarantee rule validations by outcome",
			},
			[]string{"outcome"},
		),
		gatherer: gatherer,
	}
}

// ObserveOpening records one finished opening.
func (m *Metrics) ObserveOpening(productType, outcome string, cards int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Openings.WithLabelValues(productType, outcome).Inc()
	m.OpenDuration.WithLabelValues(productType).Observe(elapsed.Seconds())
	if cards > 0 {
		m.CardsDrawn.WithLabelValues(productType).Add(float64(cards))
	}
}

// ObserveDiagnostic counts one reported diagnostic.
func (m *Metrics) ObserveDiagnostic(kind, severity string) {
	if m == nil {
		return
	}
	m.Diagnostics.WithLabelValues(kind, severity).Inc()
}

// ObserveRuleValidation counts one rule validation.
func (m *Metrics) ObserveRuleValidation(valid bool) {
	if m == nil {
		return
	}
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	m.RuleValidations.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
