package dashboard

import (
	"os"
	"path/filepath"
	"testing"

	"iris-app/internal/dataset"
	"iris-app/internal/metrics"
	"iris-app/internal/ml"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

type testEnv struct {
	res      *Resources
	server   *Server
	metrics  *metrics.Metrics
	registry *prometheus.Registry
}

func modelsSource(model string) ml.FileSource {
	return ml.FileSource{
		ScalerPath: filepath.Join("..", "..", "models", "scaler.json"),
		ModelPath:  filepath.Join("..", "..", "models", model),
	}
}

func newTestEnv(t *testing.T, source ml.ArtifactSource) *testEnv {
	t.Helper()

	ds, err := dataset.Load()
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(registry)
	wrapper := metrics.NewWrapper(m)

	charts, err := NewChartRenderer(480, 360, 4, wrapper)
	require.NoError(t, err)

	res := NewResources(ds, ml.NewLoader(source), charts, wrapper)
	srv, err := NewServer(res, Options{Port: 0, Gatherer: registry})
	require.NoError(t, err)

	return &testEnv{res: res, server: srv, metrics: m, registry: registry}
}
