package ml

import "sync"

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu          sync.Mutex
	predictions map[string]int
	failures    int
	latencySum  float64
	latencies   int
	modelAge    float64
}

func (m *MockMetrics) MLPredictionsInc(species string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.predictions == nil {
		m.predictions = make(map[string]int)
	}
	m.predictions[species]++
}

func (m *MockMetrics) MLFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) MLLatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
	m.latencies++
}

func (m *MockMetrics) MLModelAgeSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelAge = v
}

// Predictions returns the number of successful predictions of a species.
func (m *MockMetrics) Predictions(species string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predictions[species]
}

// Failures returns the number of failed predictions.
func (m *MockMetrics) Failures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures
}

// Latencies returns how many latency observations were recorded.
func (m *MockMetrics) Latencies() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latencies
}

// ModelAge returns the last model age set.
func (m *MockMetrics) ModelAge() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modelAge
}
