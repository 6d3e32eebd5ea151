package ml

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const scalerKind = "standard_scaler"

var _ Transformer = (*StandardScaler)(nil)

// StandardScaler is a pre-fit per-feature standardization:
// z = (x - mean) / scale.
type StandardScaler struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

type scalerFile struct {
	Kind string `json:"kind"`
	StandardScaler
}

// DecodeScaler parses and validates a serialized scaler.
func DecodeScaler(data []byte) (*StandardScaler, error) {
	var f scalerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: scaler: %v", ErrFormat, err)
	}
	if f.Kind == "" {
		return nil, fmt.Errorf("%w: scaler kind missing", ErrFormat)
	}
	if f.Kind != scalerKind {
		return nil, fmt.Errorf("%w: scaler kind %q not supported", ErrSchema, f.Kind)
	}

	s := f.StandardScaler
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *StandardScaler) validate() error {
	if len(s.Mean) != NumFeatures || len(s.Scale) != NumFeatures {
		return fmt.Errorf("%w: scaler expects %d means and scales, got %d and %d",
			ErrSchema, NumFeatures, len(s.Mean), len(s.Scale))
	}
	if len(s.FeatureNames) != 0 && len(s.FeatureNames) != NumFeatures {
		return fmt.Errorf("%w: scaler has %d feature names", ErrSchema, len(s.FeatureNames))
	}
	for i := range s.Mean {
		if !finite(s.Mean[i]) {
			return fmt.Errorf("%w: scaler mean %d is not finite", ErrSchema, i)
		}
		if !finite(s.Scale[i]) || s.Scale[i] < 0 {
			return fmt.Errorf("%w: scaler scale %d is invalid: %v", ErrSchema, i, s.Scale[i])
		}
	}
	return nil
}

// Transform standardizes x. A zero scale leaves the centered value as is.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("%w: expected %d features, got %d", ErrInput, len(s.Mean), len(x))
	}

	scale := make([]float64, len(s.Scale))
	for i, v := range s.Scale {
		if v == 0 {
			v = 1
		}
		scale[i] = v
	}

	out := make([]float64, len(x))
	floats.SubTo(out, x, s.Mean)
	floats.Div(out, scale)
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
