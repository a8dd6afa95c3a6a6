package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveOpening(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg, reg)

	m.ObserveOpening("box", "ok", 289, 3*time.Millisecond)
	m.ObserveOpening("box", "ok", 289, 2*time.Millisecond)
	m.ObserveOpening("pack", "error", 0, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Openings.WithLabelValues("box", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Openings.WithLabelValues("pack", "error")))
	assert.Equal(t, float64(578), testutil.ToFloat64(m.CardsDrawn.WithLabelValues("box")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.OpenDuration))
}

func TestMetrics_DiagnosticsAndValidations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg, reg)

	m.ObserveDiagnostic("unsatisfiable", "warning")
	m.ObserveRuleValidation(true)
	m.ObserveRuleValidation(false)
	m.ObserveRuleValidation(false)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Diagnostics.WithLabelValues("unsatisfiable", "warning")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RuleValidations.WithLabelValues("valid")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.RuleValidations.WithLabelValues("invalid")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOpening("pack", "ok", 12, time.Millisecond)
		m.ObserveDiagnostic("emptyPack", "warning")
		m.ObserveRuleValidation(true)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveOpening("case", "ok", 10, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tcgfun_openings_total{outcome="ok",product_type="case"} 1`)
}
