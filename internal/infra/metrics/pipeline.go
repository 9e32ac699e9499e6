package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(jobsProcessedTotal, jobsFilteredTotal, queuePausesTotal, queueRunsTotal)
}

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_jobs_processed_total",
		Help: "Jobs that left the queue, labeled by outcome.",
	},
	[]string{"outcome"}, // submitted|rejected|skipped|failed|dry_run
)

var jobsFilteredTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_jobs_filtered_total",
		Help: "Filter engine verdicts, labeled by rule and status.",
	},
	[]string{"rule", "status"},
)

var queuePausesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "queue_pauses_total",
		Help: "Times the queue paused, labeled by cause.",
	},
	[]string{"cause"}, // captcha|takeover|failure_streak|operator
)

var queueRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "queue_runs_total",
		Help: "ProcessQueue invocations, labeled by result.",
	},
	[]string{"result"}, // completed|paused|stopped|rejected_reentrant
)

func IncJobOutcome(outcome string) {
	jobsProcessedTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncFiltered(rule, status string) {
	jobsFilteredTotal.WithLabelValues(norm(rule), norm(status)).Inc()
}

func IncQueuePause(cause string) {
	queuePausesTotal.WithLabelValues(norm(cause)).Inc()
}

func IncQueueRun(result string) {
	queueRunsTotal.WithLabelValues(norm(result)).Inc()
}
