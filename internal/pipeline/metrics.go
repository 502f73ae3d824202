package pipeline

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// #region metrics

// Metrics counts analysis outcomes. It is safe for concurrent use.
type Metrics struct {
	runs     *prometheus.CounterVec
	metrics  *prometheus.CounterVec
	systems  *prometheus.CounterVec
	variance *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the analysis collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "industry_benchmark",
			Name:      "analyses_total",
			Help:      "Completed analyses by classification method and primary category.",
		}, []string{"method", "category"}),
		metrics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "industry_benchmark",
			Name:      "metric_decisions_total",
			Help:      "Metric eligibility decisions by metric and outcome.",
		}, []string{"metric", "eligible"}),
		systems: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "industry_benchmark",
			Name:      "system_matches_total",
			Help:      "Expected-system comparisons by match status.",
		}, []string{"status"}),
		variance: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "industry_benchmark",
			Name:      "variance_outcomes_total",
			Help:      "Metric variance outcomes by category and whether a comparison took place.",
		}, []string{"category", "comparable"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "industry_benchmark",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one classify plus report run.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
	}
}

func (m *Metrics) observe(res Result, seconds float64) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(res.Classification.Method), res.Classification.PrimaryCategory).Inc()
	for _, c := range res.Report.Metrics {
		m.metrics.WithLabelValues(c.MetricID, strconv.FormatBool(c.Eligible)).Inc()
		m.variance.WithLabelValues(string(c.VarianceCategory), strconv.FormatBool(c.VarianceCategory.Comparable())).Inc()
	}
	for _, s := range res.Report.Systems {
		m.systems.WithLabelValues(string(s.Status)).Inc()
	}
	m.duration.Observe(seconds)
}

// #endregion metrics
