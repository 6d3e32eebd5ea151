package dashboard

import (
	"fmt"
	"math"

	"iris-app/internal/ml"
)

// Slider describes one bounded numeric input of the prediction view.
type Slider struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Step    float64 `json:"step"`
}

// Slider keys match the JSON field names of ml.Input.
const (
	SliderSepalLength = "sepal_length"
	SliderSepalWidth  = "sepal_width"
	SliderPetalLength = "petal_length"
	SliderPetalWidth  = "petal_width"
)

var sliders = [ml.NumFeatures]Slider{
	{Key: SliderSepalLength, Label: "Sepal length", Min: 4.0, Max: 8.0, Default: 5.1, Step: 0.1},
	{Key: SliderSepalWidth, Label: "Sepal width", Min: 2.0, Max: 5.0, Default: 3.5, Step: 0.1},
	{Key: SliderPetalLength, Label: "Petal length", Min: 1.0, Max: 7.0, Default: 1.4, Step: 0.1},
	{Key: SliderPetalWidth, Label: "Petal width", Min: 0.1, Max: 3.0, Default: 0.2, Step: 0.1},
}

// Sliders returns the four slider specs in feature order.
func Sliders() []Slider {
	return append([]Slider(nil), sliders[:]...)
}

// SliderByKey finds a slider spec by key.
func SliderByKey(key string) (Slider, bool) {
	for _, s := range sliders {
		if s.Key == key {
			return s, true
		}
	}
	return Slider{}, false
}

// tolerance absorbs float noise from clients that compute values like
// 0.1*3 before sending them.
const tolerance = 1e-9

// Snap validates v against the slider bounds and rounds it to the nearest
// step. Values outside [Min, Max] are rejected rather than clamped.
func (s Slider) Snap(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s is not a number", ErrOutOfRange, s.Key)
	}
	if v < s.Min-tolerance || v > s.Max+tolerance {
		return 0, fmt.Errorf("%w: %s=%g outside [%g, %g]", ErrOutOfRange, s.Key, v, s.Min, s.Max)
	}

	steps := math.Round((v - s.Min) / s.Step)
	snapped := s.Min + steps*s.Step
	// Trim binary noise so 4.0+11*0.1 reports as 5.1.
	snapped = math.Round(snapped*1e6) / 1e6
	return math.Min(math.Max(snapped, s.Min), s.Max), nil
}

// DefaultInput is the prediction input with every slider at its default.
func DefaultInput() ml.Input {
	return ml.Input{
		SepalLength: sliders[0].Default,
		SepalWidth:  sliders[1].Default,
		PetalLength: sliders[2].Default,
		PetalWidth:  sliders[3].Default,
	}
}

// SnapInput applies Snap to every field of in.
func SnapInput(in ml.Input) (ml.Input, error) {
	values := in.Vector()
	for i, s := range sliders {
		v, err := s.Snap(values[i])
		if err != nil {
			return ml.Input{}, err
		}
		values[i] = v
	}
	return ml.Input{
		SepalLength: values[0],
		SepalWidth:  values[1],
		PetalLength: values[2],
		PetalWidth:  values[3],
	}, nil
}

// withValue returns in with the field for slider key replaced by v.
func withValue(in ml.Input, key string, v float64) (ml.Input, error) {
	switch key {
	case SliderSepalLength:
		in.SepalLength = v
	case SliderSepalWidth:
		in.SepalWidth = v
	case SliderPetalLength:
		in.PetalLength = v
	case SliderPetalWidth:
		in.PetalWidth = v
	default:
		return in, fmt.Errorf("%w: %q", ErrUnknownControl, key)
	}
	return in, nil
}
