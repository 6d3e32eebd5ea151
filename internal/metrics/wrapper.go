package metrics

import "github.com/prometheus/client_golang/prometheus"

// Interfaces for metrics to avoid circular imports
type MetricsCounter interface {
	Inc()
}

type MetricsGauge interface {
	Set(float64)
	Add(float64)
}

type MetricsHistogram interface {
	Observe(float64)
}

// MetricsWrapper adapts Metrics to the narrow interfaces used by the
// predictor and the dashboard.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

// MLPredictionsInc counts one successful prediction of species.
func (w *MetricsWrapper) MLPredictionsInc(species string) {
	w.m.MLPredictions.WithLabelValues(species).Inc()
}

func (w *MetricsWrapper) MLFailuresInc() {
	w.m.MLFailures.Inc()
}

func (w *MetricsWrapper) MLLatencyObserve(v float64) {
	w.m.MLLatency.Observe(v)
}

func (w *MetricsWrapper) MLModelAgeSet(v float64) {
	w.m.MLModelAge.Set(v)
}

func (w *MetricsWrapper) ChartRenders() MetricsCounter {
	return &CounterWrapper{w.m.ChartRenders}
}

func (w *MetricsWrapper) ChartCacheHits() MetricsCounter {
	return &CounterWrapper{w.m.ChartCacheHits}
}

func (w *MetricsWrapper) ChartCacheMisses() MetricsCounter {
	return &CounterWrapper{w.m.ChartCacheMisses}
}

func (w *MetricsWrapper) ChartRenderTime() MetricsHistogram {
	return &HistogramWrapper{w.m.ChartRenderTime}
}

func (w *MetricsWrapper) SessionsActive() MetricsGauge {
	return &GaugeWrapper{w.m.SessionsActive}
}

func (w *MetricsWrapper) SessionEventsInc(control string) {
	w.m.SessionEvents.WithLabelValues(control).Inc()
}

func (w *MetricsWrapper) HTTPRequestsInc(route, code string) {
	w.m.HTTPRequests.WithLabelValues(route, code).Inc()
}

func (w *MetricsWrapper) SetArtifactsLoaded(ok bool) {
	w.m.SetArtifactsLoaded(ok)
}

type CounterWrapper struct {
	c prometheus.Counter
}

func (cw *CounterWrapper) Inc() {
	cw.c.Inc()
}

type GaugeWrapper struct {
	g prometheus.Gauge
}

func (gw *GaugeWrapper) Set(v float64) {
	gw.g.Set(v)
}

func (gw *GaugeWrapper) Add(v float64) {
	gw.g.Add(v)
}

type HistogramWrapper struct {
	h prometheus.Histogram
}

func (hw *HistogramWrapper) Observe(v float64) {
	hw.h.Observe(v)
}
