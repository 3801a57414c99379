package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Fetch pipeline metrics
	FetchRequestsTotal *prometheus.CounterVec
	FetchDuration      *prometheus.HistogramVec
	FetchErrorsTotal   *prometheus.CounterVec
	RecordsReturned    *prometheus.HistogramVec
	RecordsInvalid     *prometheus.CounterVec
	ExtractionFailures *prometheus.CounterVec
	MomentumScores     *prometheus.HistogramVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds).
// Upstream calls with web search routinely take tens of seconds.
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

// countBuckets are histogram buckets for the number of records in a batch
var countBuckets = []float64{0, 1, 5, 10, 15, 25, 50, 100}

// scoreBuckets are histogram buckets for momentum scores (0 to 100)
var scoreBuckets = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

var (
	globalMetrics *Metrics
	metricsMu     sync.RWMutex
)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		// Fetch pipeline metrics
		FetchRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ipo_radar",
				Subsystem: "fetch",
				Name:      "requests_total",
				Help:      "Total number of fetch pipeline runs",
			},
			[]string{"domain"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ipo_radar",
				Subsystem: "fetch",
				Name:      "duration_seconds",
				Help:      "Duration of fetch pipeline runs in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"domain", "status"},
		),
		FetchErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ipo_radar",
				Subsystem: "fetch",
				Name:      "errors_total",
				Help:      "Total number of failed fetch pipeline runs",
			},
			[]string{"domain", "error_type"},
		),
		RecordsReturned: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ipo_radar",
				Subsystem: "fetch",
				Name:      "records",
				Help:      "Number of records returned per fetch",
				Buckets:   countBuckets,
			},
			[]string{"domain"},
		),
		RecordsInvalid: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ipo_radar",
				Subsystem: "fetch",
				Name:      "records_invalid_total",
				Help:      "Total number of records failing local validation",
			},
			[]string{"domain", "dropped"},
		),
		ExtractionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ipo_radar",
				Subsystem: "extract",
				Name:      "failures_total",
				Help:      "Total number of response extraction failures by reason",
			},
			[]string{"domain", "reason"},
		),
		MomentumScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ipo_radar",
				Subsystem: "stocks",
				Name:      "momentum_score",
				Help:      "Distribution of momentum scores returned by the model",
				Buckets:   scoreBuckets,
			},
			[]string{"signal"},
		),

		// External API metrics
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ipo_radar",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ipo_radar",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ipo_radar",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ipo_radar",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ipo_radar",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ipo_radar",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		// Circuit breaker metrics
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ipo_radar",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ipo_radar",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance on the default registry
func InitMetrics() *Metrics {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance, registering it on the
// default registry on first use
func GetMetrics() *Metrics {
	metricsMu.RLock()
	m := globalMetrics
	metricsMu.RUnlock()
	if m != nil {
		return m
	}

	metricsMu.Lock()
	defer metricsMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = NewMetrics(nil)
	}
	return globalMetrics
}

// SetMetrics replaces the global metrics instance (useful for testing)
func SetMetrics(m *Metrics) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = m
}

// RecordFetchRequest records a fetch pipeline run
func (m *Metrics) RecordFetchRequest(domain string) {
	m.FetchRequestsTotal.WithLabelValues(domain).Inc()
}

// RecordFetchDuration records the duration of a fetch pipeline run
func (m *Metrics) RecordFetchDuration(domain, status string, duration time.Duration) {
	m.FetchDuration.WithLabelValues(domain, status).Observe(duration.Seconds())
}

// RecordFetchError records a failed fetch pipeline run
func (m *Metrics) RecordFetchError(domain, errorType string) {
	m.FetchErrorsTotal.WithLabelValues(domain, errorType).Inc()
}

// RecordRecords records the number of records returned by a fetch
func (m *Metrics) RecordRecords(domain string, count int) {
	m.RecordsReturned.WithLabelValues(domain).Observe(float64(count))
}

// RecordInvalidRecords records records that failed validation
func (m *Metrics) RecordInvalidRecords(domain string, count int, dropped bool) {
	if count == 0 {
		return
	}
	label := "false"
	if dropped {
		label = "true"
	}
	m.RecordsInvalid.WithLabelValues(domain, label).Add(float64(count))
}

// RecordExtractionFailure records a response extraction failure
func (m *Metrics) RecordExtractionFailure(domain, reason string) {
	m.ExtractionFailures.WithLabelValues(domain, reason).Inc()
}

// RecordMomentumScore records a momentum score for a stock pick
func (m *Metrics) RecordMomentumScore(signal string, score float64) {
	m.MomentumScores.WithLabelValues(signal).Observe(score)
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveFetch records the fetch duration and status
func (t *Timer) ObserveFetch(domain, status string) {
	t.metrics.RecordFetchDuration(domain, status, time.Since(t.start))
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
