// Package metrics provides Prometheus metrics for the iris dashboard.
// It covers predictions, chart rendering, artifact state and HTTP traffic,
// all exposed on the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the dashboard.
type Metrics struct {
	// Prediction metrics
	MLPredictions *prometheus.CounterVec // Predictions by species
	MLFailures    prometheus.Counter     // Failed predictions
	MLLatency     prometheus.Histogram   // Scaler + classifier latency in seconds
	MLModelAge    prometheus.Gauge       // Seconds since the model was trained

	// Artifact metrics
	ArtifactsLoaded prometheus.Gauge // 1 once artifacts are usable, 0 after a failed load

	// Chart metrics
	ChartRenders     prometheus.Counter   // PNG scatter plots rendered
	ChartCacheHits   prometheus.Counter   // PNG requests served from cache
	ChartCacheMisses prometheus.Counter   // PNG requests that needed a render
	ChartRenderTime  prometheus.Histogram // Render duration in seconds

	// HTTP and session metrics
	HTTPRequests   *prometheus.CounterVec // Requests by route and status class
	SessionsActive prometheus.Gauge       // Open websocket sessions
	SessionEvents  *prometheus.CounterVec // Websocket events by control
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics on a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		MLPredictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iris_predictions_total",
			Help: "Total number of predictions by species",
		}, []string{"species"}),
		MLFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "iris_prediction_failures_total",
			Help: "Total number of failed predictions",
		}),
		MLLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "iris_prediction_latency_seconds",
			Help:    "Prediction latency in seconds (scaler and classifier)",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		MLModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "iris_model_age_seconds",
			Help: "Seconds since the loaded model was trained",
		}),
		ArtifactsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "iris_artifacts_loaded",
			Help: "Whether the scaler and model are loaded (1) or failed to load (0)",
		}),
		ChartRenders: factory.NewCounter(prometheus.CounterOpts{
			Name: "iris_chart_renders_total",
			Help: "Total number of scatter plots rendered",
		}),
		ChartCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "iris_chart_cache_hits_total",
			Help: "Scatter plot requests served from the cache",
		}),
		ChartCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "iris_chart_cache_misses_total",
			Help: "Scatter plot requests that required a render",
		}),
		ChartRenderTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "iris_chart_render_seconds",
			Help:    "Scatter plot render duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iris_http_requests_total",
			Help: "HTTP requests by route and status class",
		}, []string{"route", "code"}),
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "iris_sessions_active",
			Help: "Number of open websocket sessions",
		}),
		SessionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iris_session_events_total",
			Help: "Websocket control events by control name",
		}, []string{"control"}),
	}
}

// SetArtifactsLoaded records the outcome of the one artifact load.
func (m *Metrics) SetArtifactsLoaded(ok bool) {
	if ok {
		m.ArtifactsLoaded.Set(1)
		return
	}
	m.ArtifactsLoaded.Set(0)
}
