package ml

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource wraps a source and counts reads.
type countingSource struct {
	ArtifactSource
	mu    sync.Mutex
	reads int
}

func (c *countingSource) ReadScaler() ([]byte, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.ArtifactSource.ReadScaler()
}

func shippedSource(model string) FileSource {
	return FileSource{
		ScalerPath: filepath.Join("..", "..", "models", "scaler.json"),
		ModelPath:  filepath.Join("..", "..", "models", model),
	}
}

func TestLoader_LoadsOnce(t *testing.T) {
	src := &countingSource{ArtifactSource: shippedSource("model.json")}
	loader := NewLoader(src)

	first, err := loader.Load()
	require.NoError(t, err)
	second, err := loader.Load()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, src.reads)
	assert.Equal(t, 1, loader.Attempts())
	assert.Equal(t, "2024.05.1", first.Metadata.Version)
}

func TestLoader_ConcurrentLoad(t *testing.T) {
	loader := NewLoader(shippedSource("tree.json"))

	var wg sync.WaitGroup
	results := make([]*Artifacts, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = loader.Load()
		}(i)
	}
	wg.Wait()

	for _, a := range results {
		assert.Same(t, results[0], a)
	}
	assert.Equal(t, 1, loader.Attempts())
}

func TestLoader_MissingFile(t *testing.T) {
	loader := NewLoader(FileSource{
		ScalerPath: filepath.Join(t.TempDir(), "missing.json"),
		ModelPath:  filepath.Join(t.TempDir(), "missing.json"),
	})

	_, err := loader.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	// The failure is cached, not retried.
	_, err2 := loader.Load()
	assert.Equal(t, err, err2)
	assert.Equal(t, 1, loader.Attempts())
}

func TestLoadArtifacts_CorruptModel(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte("\x80\x04\x95joblib pickle"), 0o600))

	src := shippedSource("model.json")
	src.ModelPath = modelPath

	_, err := LoadArtifacts(src)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLoadArtifacts_FeatureNameMismatch(t *testing.T) {
	dir := t.TempDir()
	scalerPath := filepath.Join(dir, "scaler.json")
	scaler := `{"kind": "standard_scaler", "feature_names": ["a","b","c","d"], "mean": [0,0,0,0], "scale": [1,1,1,1]}`
	require.NoError(t, os.WriteFile(scalerPath, []byte(scaler), 0o600))

	src := shippedSource("model.json")
	src.ScalerPath = scalerPath

	_, err := LoadArtifacts(src)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestLoader_ShortMetadataFeatures(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	model := `{"kind": "logistic_regression",
		"metadata": {"features": ["sepal length (cm)"], "classes": ["setosa", "versicolor", "virginica"]},
		"coef": [[1,1,1,1],[1,1,1,1],[1,1,1,1]], "intercept": [0,0,0]}`
	require.NoError(t, os.WriteFile(modelPath, []byte(model), 0o600))

	src := shippedSource("model.json")
	src.ModelPath = modelPath
	loader := NewLoader(src)

	artifacts, err := loader.Load()
	assert.Nil(t, artifacts)
	assert.ErrorIs(t, err, ErrSchema)

	artifacts, err = loader.Load()
	assert.Nil(t, artifacts)
	assert.ErrorIs(t, err, ErrSchema)
	assert.Equal(t, 1, loader.Attempts())
}

func TestLoader_PanickingSourceBecomesError(t *testing.T) {
	loader := NewLoader(panicSource{})

	_, err := loader.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)

	_, again := loader.Load()
	assert.Equal(t, err, again)
}

type panicSource struct{}

func (panicSource) ReadScaler() ([]byte, error) { panic("boom") }
func (panicSource) ReadModel() ([]byte, error)  { return nil, nil }
func (panicSource) String() string              { return "panic" }

func TestFileSource_String(t *testing.T) {
	src := FileSource{ScalerPath: "s.json", ModelPath: "m.json"}
	assert.Equal(t, "files(scaler=s.json, model=m.json)", src.String())
}
