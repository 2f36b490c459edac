package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg    *prometheus.Registry
	scored *prometheus.CounterVec
	totals *prometheus.HistogramVec
	errors *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		scored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "selfcheck",
			Name:      "scored_total",
			Help:      "Assessments scored, by assessment and selected band.",
		}, []string{"assessment", "band"}),
		totals: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "selfcheck",
			Name:      "total_score_ratio",
			Help:      "Total score as a fraction of the maximum reachable score.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"assessment"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "selfcheck",
			Name:      "scoring_errors_total",
			Help:      "Scoring calls rejected, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.scored, m.totals, m.errors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *Metrics) ObserveScore(assessmentID, bandID string, total, maxTotal int) {
	if m == nil {
		return
	}
	m.scored.WithLabelValues(assessmentID, bandID).Inc()
	if maxTotal > 0 {
		m.totals.WithLabelValues(assessmentID).Observe(float64(total) / float64(maxTotal))
	}
}

func (m *Metrics) ObserveError(reason string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(reason).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
