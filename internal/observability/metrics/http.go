package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	ingestTotal    *prometheus.CounterVec
	ingestDuration *prometheus.HistogramVec
	analysisTotal  *prometheus.CounterVec
	cacheEntries   prometheus.Gauge
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dagent",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dagent",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dagent",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	ingestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dagent",
			Subsystem: "ingest",
			Name:      "uploads_total",
			Help:      "Total file upload attempts by category and status.",
		},
		[]string{"service", "category", "status"},
	)
	ingestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dagent",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Upload parse duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "category"},
	)
	analysisTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dagent",
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Total completed analysis requests by outcome.",
		},
		[]string{"service", "outcome"},
	)
	cacheEntries := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dagent",
			Subsystem: "analysis",
			Name:      "cache_entries",
			Help:      "Current number of cached analysis results.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		ingestTotal,
		ingestDuration,
		analysisTotal,
		cacheEntries,
	)

	return &HTTPServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		ingestTotal:     ingestTotal,
		ingestDuration:  ingestDuration,
		analysisTotal:   analysisTotal,
		cacheEntries:    cacheEntries,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses session-scoped routes to one series per route.
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/v1/sessions/") {
		return path
	}
	rest := strings.TrimPrefix(path, "/v1/sessions/")
	_, suffix, found := strings.Cut(rest, "/")
	if !found {
		return "/v1/sessions/{session_id}"
	}
	return "/v1/sessions/{session_id}/" + suffix
}

func (m *HTTPServerMetrics) RecordIngest(service, category, status string, duration time.Duration) {
	if category == "" {
		category = "unknown"
	}
	m.ingestTotal.WithLabelValues(service, category, status).Inc()
	if status == "ok" {
		m.ingestDuration.WithLabelValues(service, category).Observe(duration.Seconds())
	}
}

func (m *HTTPServerMetrics) RecordAnalysis(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.analysisTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) SetCacheEntries(count int) {
	m.cacheEntries.Set(float64(count))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
