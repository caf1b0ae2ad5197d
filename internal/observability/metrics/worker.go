package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	deleteTotal   *prometheus.CounterVec
	sweepTotal    *prometheus.CounterVec
	sweepDuration *prometheus.HistogramVec
	sweepRemoved  *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	deleteTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dagent",
			Subsystem: "worker",
			Name:      "upload_delete_total",
			Help:      "Total upload blob deletions by reason and status.",
		},
		[]string{"service", "reason", "status"},
	)
	sweepTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dagent",
			Subsystem: "worker",
			Name:      "sweep_total",
			Help:      "Total retention sweeps by status.",
		},
		[]string{"service", "status"},
	)
	sweepDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dagent",
			Subsystem: "worker",
			Name:      "sweep_duration_seconds",
			Help:      "Retention sweep duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	sweepRemoved := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dagent",
			Subsystem: "worker",
			Name:      "sweep_removed_uploads",
			Help:      "Distribution of uploads removed per sweep.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
		[]string{"service"},
	)

	registry.MustRegister(deleteTotal, sweepTotal, sweepDuration, sweepRemoved)

	return &WorkerMetrics{
		registry:      registry,
		deleteTotal:   deleteTotal,
		sweepTotal:    sweepTotal,
		sweepDuration: sweepDuration,
		sweepRemoved:  sweepRemoved,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) RecordDelete(service, reason string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.deleteTotal.WithLabelValues(service, reason, status).Inc()
}

func (m *WorkerMetrics) RecordSweep(service string, removed int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.sweepTotal.WithLabelValues(service, status).Inc()
	m.sweepDuration.WithLabelValues(service).Observe(duration.Seconds())
	if err == nil {
		m.sweepRemoved.WithLabelValues(service).Observe(float64(removed))
	}
}
