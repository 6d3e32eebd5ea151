package dashboard

import (
	"fmt"
	"sync"

	"iris-app/internal/dataset"
	"iris-app/internal/metrics"
	"iris-app/internal/ml"

	"github.com/rs/zerolog/log"
)

// Resources is the read-only context shared by every handler: the
// reference dataset, its statistics, the artifact loader and the chart
// renderer. Handlers receive it explicitly instead of reaching for globals.
type Resources struct {
	Dataset *dataset.Dataset
	Summary dataset.Summary
	Loader  *ml.Loader
	Charts  *ChartRenderer
	Metrics *metrics.MetricsWrapper

	predictorOnce sync.Once
	predictor     ml.PredictorInterface
	predictorErr  error
}

// NewResources precomputes the statistics table. metrics may be nil.
func NewResources(ds *dataset.Dataset, loader *ml.Loader, charts *ChartRenderer, m *metrics.MetricsWrapper) *Resources {
	return &Resources{
		Dataset: ds,
		Summary: dataset.Describe(ds),
		Loader:  loader,
		Charts:  charts,
		Metrics: m,
	}
}

// Predictor returns the predictor built from the loaded artifacts. A load
// failure is permanent for the process and reported as ErrUnavailable.
func (r *Resources) Predictor() (ml.PredictorInterface, error) {
	r.predictorOnce.Do(func() {
		artifacts, err := r.Loader.Load()
		if err == nil {
			var mi ml.MetricsInterface
			if r.Metrics != nil {
				mi = r.Metrics
			}
			var p *ml.Predictor
			if p, err = ml.NewWithMetrics(artifacts, mi); err == nil {
				r.predictor = p
			}
		}
		if err != nil {
			r.predictorErr = fmt.Errorf("%w: %w", ErrUnavailable, err)
			log.Error().Err(err).Msg("prediction view disabled")
		}
		if r.Metrics != nil {
			r.Metrics.SetArtifactsLoaded(err == nil)
		}
	})
	return r.predictor, r.predictorErr
}

// Predict snaps in to the slider grid and runs it through the scaler and
// classifier. Nothing is cached between calls.
func (r *Resources) Predict(in ml.Input) (ml.Prediction, error) {
	snapped, err := SnapInput(in)
	if err != nil {
		return ml.Prediction{}, err
	}
	p, err := r.Predictor()
	if err != nil {
		return ml.Prediction{}, err
	}
	return p.Predict(snapped)
}

// NewSelection returns a selection over the dataset's columns with the
// default first two chosen.
func (r *Resources) NewSelection() *Selection {
	return NewSelection(r.Dataset.Columns())
}
