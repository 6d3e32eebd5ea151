package dashboard

import (
	"bytes"
	"testing"

	"iris-app/internal/dataset"
	"iris-app/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load()
	require.NoError(t, err)
	return ds
}

func TestBuildScatter_NeedsTwoColumns(t *testing.T) {
	ds := loadDataset(t)
	sel := NewSelection(ds.Columns())

	require.NoError(t, sel.Set(nil))
	spec, ok := BuildScatter(ds, sel)
	assert.False(t, ok)
	assert.Nil(t, spec)

	require.NoError(t, sel.Set([]string{dataset.PetalLength}))
	spec, ok = BuildScatter(ds, sel)
	assert.False(t, ok)
	assert.Nil(t, spec)
}

func TestBuildScatter_TwoColumns(t *testing.T) {
	ds := loadDataset(t)
	sel := NewSelection(ds.Columns())
	require.NoError(t, sel.Set([]string{dataset.PetalWidth, dataset.SepalLength}))

	spec, ok := BuildScatter(ds, sel)
	require.True(t, ok)

	assert.Equal(t, dataset.PetalWidth, spec.X)
	assert.Equal(t, dataset.SepalLength, spec.Y)
	assert.Equal(t, dataset.PetalWidth+"|"+dataset.SepalLength, spec.Key())

	require.Len(t, spec.Series, 3)
	total := 0
	for i, s := range spec.Series {
		assert.Len(t, s.X, 50)
		assert.Len(t, s.Y, 50)
		total += len(s.X)
		assert.Equal(t, ds.LabelNames()[i], s.Species)
	}
	assert.Equal(t, ds.Len(), total)
	assert.Equal(t, "Setosa", spec.Series[0].Label)

	// First row of the table: 5.1, 3.5, 1.4, 0.2 (setosa).
	assert.Equal(t, 0.2, spec.Series[0].X[0])
	assert.Equal(t, 5.1, spec.Series[0].Y[0])
}

func TestBuildScatter_NilInputs(t *testing.T) {
	_, ok := BuildScatter(nil, nil)
	assert.False(t, ok)
}

func TestChartRenderer_PNGIsCached(t *testing.T) {
	ds := loadDataset(t)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	r, err := NewChartRenderer(400, 300, 2, metrics.NewWrapper(m))
	require.NoError(t, err)

	spec, ok := BuildScatter(ds, NewSelection(ds.Columns()))
	require.True(t, ok)

	first, err := r.PNG(spec)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(first, []byte("\x89PNG\r\n\x1a\n")))

	second, err := r.PNG(spec)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartRenders))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartCacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartCacheHits))
	assert.Equal(t, 1, r.Cached())
}

func TestChartRenderer_Eviction(t *testing.T) {
	ds := loadDataset(t)
	r, err := NewChartRenderer(300, 240, 1, nil)
	require.NoError(t, err)

	sel := NewSelection(ds.Columns())
	a, _ := BuildScatter(ds, sel)
	require.NoError(t, sel.Set([]string{dataset.PetalLength, dataset.PetalWidth}))
	b, _ := BuildScatter(ds, sel)

	_, err = r.PNG(a)
	require.NoError(t, err)
	_, err = r.PNG(b)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Cached())
}

func TestNewChartRenderer_InvalidSize(t *testing.T) {
	_, err := NewChartRenderer(300, 240, 0, nil)
	assert.Error(t, err)
}
