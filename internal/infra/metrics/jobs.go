package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsFinishedTotal, jobsDeletedTotal, syncRequestsTotal) }

var jobsFinishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "transcription_jobs_finished_total",
		Help: "Total number of transcription jobs reaching a terminal state, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var jobsDeletedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "transcription_jobs_deleted_total",
		Help: "Total number of jobs removed, labeled by trigger.",
	},
	[]string{"trigger"}, // 'manual', 'retention'
)

var syncRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "transcription_sync_requests_total",
		Help: "Total number of synchronous transcription requests, labeled by outcome.",
	},
	[]string{"outcome"}, // 'ok', 'timeout', 'error'
)

func IncJobFinished(status string) {
	jobsFinishedTotal.WithLabelValues(status).Inc()
}

func IncJobDeleted(trigger string) {
	jobsDeletedTotal.WithLabelValues(trigger).Inc()
}

func IncSyncRequest(outcome string) {
	syncRequestsTotal.WithLabelValues(outcome).Inc()
}
