// Package ml provides species prediction for the Iris dashboard. It loads a
// pre-fit feature scaler and classifier from serialized artifacts, validates
// their schema, and chains them into a predictor that maps four flower
// measurements to a species.
//
// Artifacts are read at most once per Loader; the prediction itself is never
// cached and depends only on the input and the loaded artifacts.
package ml

// PredictorInterface defines the interface used by the interaction surface.
// Implementations must be safe for concurrent use.
type PredictorInterface interface {
	// Predict maps raw measurements to a species. It returns an error only
	// when the input cannot be transformed or classified.
	Predict(in Input) (Prediction, error)
}

// Transformer maps a raw feature vector into the space the classifier was
// trained on.
type Transformer interface {
	Transform(x []float64) ([]float64, error)
}

// Classifier maps a normalized feature vector to a class index.
type Classifier interface {
	Predict(x []float64) (int, error)
	NumFeatures() int
	NumClasses() int
}

// ProbabilisticClassifier is a Classifier that can also report per-class
// probabilities.
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(x []float64) ([]float64, error)
}
