package ml

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// MetricsInterface defines metrics methods needed by the predictor
type MetricsInterface interface {
	MLPredictionsInc(species string)
	MLFailuresInc()
	MLLatencyObserve(float64)
	MLModelAgeSet(float64)
}

// Input holds the four raw measurements in centimeters.
type Input struct {
	SepalLength float64 `json:"sepal_length"`
	SepalWidth  float64 `json:"sepal_width"`
	PetalLength float64 `json:"petal_length"`
	PetalWidth  float64 `json:"petal_width"`
}

// Vector returns the measurements in dataset column order.
func (in Input) Vector() []float64 {
	return []float64{in.SepalLength, in.SepalWidth, in.PetalLength, in.PetalWidth}
}

// Prediction is the outcome of one scaler + classifier pass.
type Prediction struct {
	Class         int       `json:"class"`
	Species       string    `json:"species"`
	Label         string    `json:"label"`
	Image         string    `json:"image"`
	Probabilities []float64 `json:"probabilities,omitempty"`
	Scaled        []float64 `json:"scaled"`
	Input         Input     `json:"input"`
}

var _ PredictorInterface = (*Predictor)(nil)

// Predictor chains the loaded scaler and classifier.
type Predictor struct {
	artifacts *Artifacts
	metrics   MetricsInterface
}

func New(artifacts *Artifacts) (*Predictor, error) {
	return NewWithMetrics(artifacts, nil)
}

func NewWithMetrics(artifacts *Artifacts, metrics MetricsInterface) (*Predictor, error) {
	if artifacts == nil || artifacts.Scaler == nil || artifacts.Classifier == nil {
		return nil, errors.New("predictor requires a scaler and a classifier")
	}

	if metrics != nil && !artifacts.Metadata.TrainedAt.IsZero() {
		metrics.MLModelAgeSet(time.Since(artifacts.Metadata.TrainedAt).Seconds())
	}

	return &Predictor{artifacts: artifacts, metrics: metrics}, nil
}

// Metadata returns the loaded model's metadata.
func (p *Predictor) Metadata() ModelMetadata {
	return p.artifacts.Metadata
}

// Predict scales in and classifies it. The result depends only on in and
// the loaded artifacts.
func (p *Predictor) Predict(in Input) (Prediction, error) {
	if p == nil {
		return Prediction{}, fmt.Errorf("predictor is nil")
	}

	start := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.MLLatencyObserve(time.Since(start).Seconds())
		}
	}()

	pred, err := p.predict(in)
	if err != nil {
		if p.metrics != nil {
			p.metrics.MLFailuresInc()
		}
		log.Error().Err(err).Interface("input", in).Msg("prediction failed")
		return Prediction{}, err
	}

	if p.metrics != nil {
		p.metrics.MLPredictionsInc(pred.Species)
	}

	log.Debug().
		Interface("input", in).
		Int("class", pred.Class).
		Str("species", pred.Species).
		Msg("prediction successful")

	return pred, nil
}

func (p *Predictor) predict(in Input) (Prediction, error) {
	x := in.Vector()
	for i, v := range x {
		if !finite(v) {
			return Prediction{}, fmt.Errorf("%w: feature %d is not finite", ErrInput, i)
		}
	}

	scaled, err := p.artifacts.Scaler.Transform(x)
	if err != nil {
		return Prediction{}, fmt.Errorf("scale input: %w", err)
	}

	class, err := p.artifacts.Classifier.Predict(scaled)
	if err != nil {
		return Prediction{}, fmt.Errorf("classify input: %w", err)
	}

	species, err := SpeciesFor(class)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: classifier returned %v", ErrSchema, err)
	}

	pred := Prediction{
		Class:   class,
		Species: species.Key,
		Label:   species.Name,
		Image:   species.Image,
		Scaled:  scaled,
		Input:   in,
	}

	if pc, ok := p.artifacts.Classifier.(ProbabilisticClassifier); ok {
		proba, err := pc.PredictProba(scaled)
		if err != nil {
			return Prediction{}, fmt.Errorf("class probabilities: %w", err)
		}
		pred.Probabilities = proba
	}

	return pred, nil
}
