package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(submissionLatency, submissionAnomalies, fieldsUnfilledTotal) }

var submissionLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "submission_duration_seconds",
		Help:    "End-to-end submission driver latency per provider.",
		Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
	},
	[]string{"provider", "success"},
)

var submissionAnomalies = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "submission_anomalies_total",
		Help: "Anomalies detected during submission, labeled by kind.",
	},
	[]string{"kind"}, // captcha|takeover|stalled
)

var fieldsUnfilledTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "submission_fields_unfilled_total",
		Help: "Form fields no selector candidate matched, per provider.",
	},
	[]string{"provider"},
)

func ObserveSubmission(provider string, seconds float64, success bool) {
	submissionLatency.WithLabelValues(norm(provider), strconv.FormatBool(success)).Observe(seconds)
}

func IncAnomaly(kind string) {
	submissionAnomalies.WithLabelValues(norm(kind)).Inc()
}

func AddUnfilledFields(provider string, n int) {
	if n > 0 {
		fieldsUnfilledTotal.WithLabelValues(norm(provider)).Add(float64(n))
	}
}
