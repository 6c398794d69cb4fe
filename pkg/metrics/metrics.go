package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry prometheus.Gatherer

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// External API metrics
	ExternalAPICalls    *prometheus.CounterVec
	ExternalAPIDuration *prometheus.HistogramVec
	ExternalAPIFailures *prometheus.CounterVec
	ExternalAPICache    *prometheus.CounterVec

	// Dashboard metrics
	DashboardFallbacks  *prometheus.CounterVec
	DashboardSummaries  *prometheus.CounterVec
	DashboardRecords    prometheus.Counter
	DashboardInsights   *prometheus.CounterVec
	SummaryBuildSeconds prometheus.Histogram
}

// New registers every collector on the default registry.
func New() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewWithRegistry registers on reg, which keeps tests isolated from each other.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	return newMetrics(reg, reg)
}

func newMetrics(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Registry: gatherer,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		ExternalAPICalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_calls_total",
				Help: "Total number of external API calls",
			},
			[]string{"api", "status"},
		),

		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "external_api_duration_seconds",
				Help:    "External API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"api"},
		),

		ExternalAPIFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_failures_total",
				Help: "Total number of external API failures",
			},
			[]string{"api", "error_type"},
		),

		ExternalAPICache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_cache_total",
				Help: "Lookups in the upstream response cache",
			},
			[]string{"api", "result"},
		),

		DashboardFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_fallback_total",
				Help: "Times the sample payload replaced live ads data",
			},
			[]string{"reason"},
		),

		DashboardSummaries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_summaries_total",
				Help: "Total number of dashboard summaries computed",
			},
			[]string{"source"},
		),

		DashboardRecords: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_records_summarized_total",
				Help: "Total number of insight records fed into summaries",
			},
		),

		DashboardInsights: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_insights_total",
				Help: "Advisory messages emitted, by type",
			},
			[]string{"type"},
		),

		SummaryBuildSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dashboard_summary_build_seconds",
				Help:    "Time spent aggregating one record set",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// External API call metrics
func (m *Metrics) RecordExternalAPICall(api, status string, duration time.Duration) {
	m.ExternalAPICalls.WithLabelValues(api, status).Inc()
	m.ExternalAPIDuration.WithLabelValues(api).Observe(duration.Seconds())
}

func (m *Metrics) RecordExternalAPIFailure(api, errorType string) {
	m.ExternalAPIFailures.WithLabelValues(api, errorType).Inc()
}

// RecordCacheLookup counts a cache hit or miss for api.
func (m *Metrics) RecordCacheLookup(api string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ExternalAPICache.WithLabelValues(api, result).Inc()
}

func (m *Metrics) RecordFallback(reason string) {
	m.DashboardFallbacks.WithLabelValues(reason).Inc()
}

// RecordSummary tracks one aggregation run over records from source.
func (m *Metrics) RecordSummary(source string, records int, duration time.Duration) {
	m.DashboardSummaries.WithLabelValues(source).Inc()
	m.DashboardRecords.Add(float64(records))
	m.SummaryBuildSeconds.Observe(duration.Seconds())
}

func (m *Metrics) RecordInsight(insightType string) {
	m.DashboardInsights.WithLabelValues(insightType).Inc()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
