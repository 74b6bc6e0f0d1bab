package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	JobsStarted      = prometheus.NewCounter(prometheus.CounterOpts{Name: "disinfo_jobs_started_total", Help: "Background jobs started"})
	JobStartFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "disinfo_job_start_failures_total", Help: "Rejected or failed job starts"})
	SchedulerTicks   = prometheus.NewCounter(prometheus.CounterOpts{Name: "disinfo_scheduler_ticks_total", Help: "Scheduler loop polls"})
	QueueBuilds      = prometheus.NewCounter(prometheus.CounterOpts{Name: "disinfo_review_queue_builds_total", Help: "Review queue rebuilds"})
	QueueSize        = prometheus.NewGauge(prometheus.GaugeOpts{Name: "disinfo_review_queue_size", Help: "Items in the last built review queue"})
	LabelsRecorded   = prometheus.NewCounter(prometheus.CounterOpts{Name: "disinfo_labels_recorded_total", Help: "Manual labels appended"})
	InferenceResults = prometheus.NewCounter(prometheus.CounterOpts{Name: "disinfo_inference_results_total", Help: "Classifier results appended to the inference log"})
)

// Handler exposes the /metrics HTTP handler with a singleton registration.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			JobsStarted,
			JobStartFailures,
			SchedulerTicks,
			QueueBuilds,
			QueueSize,
			LabelsRecorded,
			InferenceResults,
		)
	})
	return promhttp.Handler()
}
