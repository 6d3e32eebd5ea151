package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultInput = Input{SepalLength: 5.1, SepalWidth: 3.5, PetalLength: 1.4, PetalWidth: 0.2}

func newShippedPredictor(t *testing.T, model string, metrics MetricsInterface) *Predictor {
	t.Helper()
	artifacts, err := LoadArtifacts(shippedSource(model))
	require.NoError(t, err)
	p, err := NewWithMetrics(artifacts, metrics)
	require.NoError(t, err)
	return p
}

func TestPredictor_GoldenDefaults(t *testing.T) {
	for _, model := range []string{"model.json", "tree.json"} {
		t.Run(model, func(t *testing.T) {
			p := newShippedPredictor(t, model, nil)

			pred, err := p.Predict(defaultInput)
			require.NoError(t, err)

			assert.Equal(t, 0, pred.Class)
			assert.Equal(t, "setosa", pred.Species)
			assert.Equal(t, "Setosa", pred.Label)
			assert.Equal(t, "setosa.svg", pred.Image)
			assert.Equal(t, defaultInput, pred.Input)
			assert.Len(t, pred.Scaled, NumFeatures)
		})
	}
}

func TestPredictor_KnownPoints(t *testing.T) {
	p := newShippedPredictor(t, "model.json", nil)

	tests := []struct {
		in   Input
		want int
	}{
		{Input{6.0, 2.9, 4.5, 1.5}, 1},
		{Input{6.9, 3.1, 5.4, 2.1}, 2},
		{Input{4.0, 2.0, 1.0, 0.1}, 0},
		{Input{8.0, 5.0, 7.0, 3.0}, 2},
	}
	for _, tt := range tests {
		pred, err := p.Predict(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, pred.Class, "input %+v", tt.in)
	}
}

func TestPredictor_Probabilities(t *testing.T) {
	p := newShippedPredictor(t, "model.json", nil)
	pred, err := p.Predict(defaultInput)
	require.NoError(t, err)

	require.Len(t, pred.Probabilities, NumClasses)
	sum := 0.0
	for _, v := range pred.Probabilities {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, pred.Probabilities[0], 0.9)

	tree := newShippedPredictor(t, "tree.json", nil)
	pred, err = tree.Predict(defaultInput)
	require.NoError(t, err)
	assert.Nil(t, pred.Probabilities)
}

// Every point of a coarse grid over the slider ranges yields a valid class,
// and repeating the call gives the same class.
func TestPredictor_SliderGrid(t *testing.T) {
	for _, model := range []string{"model.json", "tree.json"} {
		t.Run(model, func(t *testing.T) {
			p := newShippedPredictor(t, model, nil)
			for sl := 4.0; sl <= 8.0+1e-9; sl += 0.4 {
				for sw := 2.0; sw <= 5.0+1e-9; sw += 0.3 {
					for pl := 1.0; pl <= 7.0+1e-9; pl += 0.3 {
						for pw := 0.1; pw <= 3.0+1e-9; pw += 0.2 {
							in := Input{sl, sw, pl, pw}
							first, err := p.Predict(in)
							require.NoError(t, err)
							require.GreaterOrEqual(t, first.Class, 0)
							require.Less(t, first.Class, NumClasses)

							again, err := p.Predict(in)
							require.NoError(t, err)
							require.Equal(t, first.Class, again.Class)
						}
					}
				}
			}
		})
	}
}

func TestPredictor_Metrics(t *testing.T) {
	metrics := &MockMetrics{}
	p := newShippedPredictor(t, "model.json", metrics)

	assert.Greater(t, metrics.ModelAge(), 0.0)

	for i := 0; i < 3; i++ {
		_, err := p.Predict(defaultInput)
		require.NoError(t, err)
	}
	_, err := p.Predict(Input{math.NaN(), 3, 1, 0.2})
	assert.ErrorIs(t, err, ErrInput)

	assert.Equal(t, 3, metrics.Predictions("setosa"))
	assert.Equal(t, 1, metrics.Failures())
	assert.Equal(t, 4, metrics.Latencies())
}

func TestPredictor_NilSafety(t *testing.T) {
	var p *Predictor
	_, err := p.Predict(defaultInput)
	assert.Error(t, err)

	_, err = New(nil)
	assert.Error(t, err)

	_, err = New(&Artifacts{})
	assert.Error(t, err)
}

func TestPredictor_Concurrency(t *testing.T) {
	p := newShippedPredictor(t, "model.json", &MockMetrics{})

	done := make(chan int, 10)
	for i := 0; i < 10; i++ {
		go func() {
			class := -1
			for j := 0; j < 100; j++ {
				pred, err := p.Predict(defaultInput)
				if err != nil {
					class = -1
					break
				}
				class = pred.Class
			}
			done <- class
		}()
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0, <-done)
	}
}

func TestSpecies(t *testing.T) {
	all := AllSpecies()
	require.Len(t, all, NumClasses)
	assert.Equal(t, Species{Class: 0, Key: "setosa", Name: "Setosa", Image: "setosa.svg"}, all[0])
	assert.Equal(t, Species{Class: 1, Key: "versicolor", Name: "Versicolor", Image: "versicolor.svg"}, all[1])
	assert.Equal(t, Species{Class: 2, Key: "virginica", Name: "Virginica", Image: "virginica.svg"}, all[2])

	_, err := SpeciesFor(3)
	assert.Error(t, err)
	_, err = SpeciesFor(-1)
	assert.Error(t, err)

	s, ok := SpeciesByKey("virginica")
	assert.True(t, ok)
	assert.Equal(t, 2, s.Class)
	_, ok = SpeciesByKey("rose")
	assert.False(t, ok)
}
