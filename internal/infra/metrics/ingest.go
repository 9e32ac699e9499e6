package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(ingestJobsTotal, ingestSourceErrors) }

var ingestJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ingest_jobs_total",
		Help: "Jobs seen by ingestion, labeled by source and result.",
	},
	[]string{"source", "result"}, // inserted|updated|invalid
)

var ingestSourceErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ingest_source_errors_total",
		Help: "Fetch failures per job source.",
	},
	[]string{"source"},
)

func IncIngest(source, result string) {
	ingestJobsTotal.WithLabelValues(norm(source), norm(result)).Inc()
}

func IncSourceError(source string) {
	ingestSourceErrors.WithLabelValues(norm(source)).Inc()
}
