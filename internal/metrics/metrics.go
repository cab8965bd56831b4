package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics records outbound HTTP client activity. It satisfies the HTTP
// client's MetricsCollector interface.
type HTTPMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestCount    *prometheus.CounterVec
	requestErrors   *prometheus.CounterVec
}

// NewHTTPMetrics registers the HTTP client metrics with the given registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)
	return &HTTPMetrics{
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jobdispatch",
			Subsystem: "http_client",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobdispatch",
			Subsystem: "http_client",
			Name:      "requests_total",
			Help:      "Total outbound HTTP requests.",
		}, []string{"method", "path", "status"}),
		requestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobdispatch",
			Subsystem: "http_client",
			Name:      "request_errors_total",
			Help:      "Outbound HTTP requests that failed before a response.",
		}, []string{"method", "path"}),
	}
}

func (m *HTTPMetrics) RecordRequestDuration(method, path string, statusCode int, duration time.Duration) {
	m.requestDuration.WithLabelValues(method, path, strconv.Itoa(statusCode)).Observe(duration.Seconds())
}

func (m *HTTPMetrics) RecordRequestCount(method, path string, statusCode int) {
	m.requestCount.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
}

func (m *HTTPMetrics) RecordRequestError(method, path string) {
	m.requestErrors.WithLabelValues(method, path).Inc()
}

// DispatchMetrics counts terminal dispatch outcomes per submission path. It
// satisfies the dispatch router's Observer interface.
type DispatchMetrics struct {
	outcomes *prometheus.CounterVec
}

// NewDispatchMetrics registers the dispatch outcome counter.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	return &DispatchMetrics{
		outcomes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobdispatch",
			Subsystem: "dispatch",
			Name:      "outcomes_total",
			Help:      "Terminal dispatch outcomes by submission path.",
		}, []string{"path", "outcome"}),
	}
}

func (m *DispatchMetrics) ObserveDispatch(path, outcome string) {
	m.outcomes.WithLabelValues(path, outcome).Inc()
}
