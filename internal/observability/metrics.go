package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency. Narrate requests include three upstream calls, so p95 tracks provider latency.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation during generation slowdowns.
	HTTPRequestsInFlight prometheus.Gauge

	// Provider call rate by provider (geocode, weather, generation) and status label.
	ProviderCallsTotal *prometheus.CounterVec

	// Provider latency. Watch for: generation p95 well above geocode/weather.
	ProviderDuration *prometheus.HistogramVec

	// Provider failures by stable category (timeout, invalid_api_key, parsing, ...).
	ProviderErrorsTotal *prometheus.CounterVec

	// Narrate outcomes: success, location_not_found, generation_unavailable, error.
	NarrationsTotal *prometheus.CounterVec

	// Precipitation class of every successful summary.
	PrecipitationTotal *prometheus.CounterVec

	// Recovered handler panics. Should stay at zero.
	PanicsRecoveredTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	ProviderCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "providerCallsTotal",
			Help: "Total number of outbound provider calls",
		},
		[]string{"provider", "status"},
	)
	ProviderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "providerDurationSeconds",
			Help:    "Outbound provider latency in seconds (per call)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "status"},
	)
	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "providerErrorsTotal",
			Help: "Outbound provider failures by category",
		},
		[]string{"provider", "category"},
	)
	NarrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narrationsTotal",
			Help: "Narrate requests by outcome",
		},
		[]string{"outcome"},
	)
	PrecipitationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "precipitationClassificationsTotal",
			Help: "Precipitation class of successful summaries",
		},
		[]string{"class"},
	)
	PanicsRecoveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "panicsRecoveredTotal",
			Help: "Handler panics recovered at the HTTP boundary",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		ProviderCallsTotal, ProviderDuration, ProviderErrorsTotal,
		NarrationsTotal, PrecipitationTotal, PanicsRecoveredTotal,
	)
}

// RecordProviderCall records one outbound call with its status label and elapsed time.
func RecordProviderCall(provider, status string, elapsed time.Duration) {
	ProviderCallsTotal.WithLabelValues(provider, status).Inc()
	ProviderDuration.WithLabelValues(provider, status).Observe(elapsed.Seconds())
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
