package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(engineCallLatency) }

var engineCallLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "transcription_engine_call_seconds",
		Help:    "Transcription engine call latency distribution in seconds.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	},
	[]string{"success"},
)

func ObserveEngineCall(seconds float64, success bool) {
	label := "false"
	if success {
		label = "true"
	}
	engineCallLatency.WithLabelValues(label).Observe(seconds)
}
