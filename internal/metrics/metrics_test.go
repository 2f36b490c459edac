package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveScore(t *testing.T) {
	m := New()
	m.ObserveScore("adhd", "adhd-low", 4, 32)
	m.ObserveScore("adhd", "adhd-low", 6, 32)
	m.ObserveError("invalid_option")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.scored.WithLabelValues("adhd", "adhd-low")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("invalid_option")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `selfcheck_scored_total{assessment="adhd",band="adhd-low"} 2`)
	assert.Contains(t, string(body), "selfcheck_total_score_ratio_bucket")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveScore("x", "y", 1, 2)
	m.ObserveError("z")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
