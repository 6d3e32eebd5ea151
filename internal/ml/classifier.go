package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// NumFeatures is the length of every input vector.
	NumFeatures = 4
	// NumClasses is the number of species the classifier distinguishes.
	NumClasses = 3
)

const (
	kindDecisionTree       = "decision_tree"
	kindLogisticRegression = "logistic_regression"
)

// ModelMetadata describes a serialized classifier.
type ModelMetadata struct {
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	Features  []string  `json:"features"`
	Classes   []string  `json:"classes"`
}

type modelHeader struct {
	Kind     string        `json:"kind"`
	Metadata ModelMetadata `json:"metadata"`
}

// DecodeClassifier parses a serialized classifier, dispatching on its kind,
// and validates it against the expected feature and class counts.
func DecodeClassifier(data []byte) (Classifier, ModelMetadata, error) {
	var header modelHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, ModelMetadata{}, fmt.Errorf("%w: model: %v", ErrFormat, err)
	}

	var (
		clf Classifier
		err error
	)
	switch header.Kind {
	case kindDecisionTree:
		clf, err = decodeDecisionTree(data)
	case kindLogisticRegression:
		clf, err = decodeLogisticRegression(data)
	case "":
		return nil, ModelMetadata{}, fmt.Errorf("%w: model kind missing", ErrFormat)
	default:
		return nil, ModelMetadata{}, fmt.Errorf("%w: model kind %q not supported", ErrSchema, header.Kind)
	}
	if err != nil {
		return nil, ModelMetadata{}, err
	}

	if clf.NumFeatures() != NumFeatures {
		return nil, ModelMetadata{}, fmt.Errorf("%w: model takes %d features, want %d", ErrSchema, clf.NumFeatures(), NumFeatures)
	}
	if clf.NumClasses() != NumClasses {
		return nil, ModelMetadata{}, fmt.Errorf("%w: model has %d classes, want %d", ErrSchema, clf.NumClasses(), NumClasses)
	}
	if n := len(header.Metadata.Features); n != 0 && n != NumFeatures {
		return nil, ModelMetadata{}, fmt.Errorf("%w: metadata lists %d features", ErrSchema, n)
	}
	if n := len(header.Metadata.Classes); n != 0 && n != NumClasses {
		return nil, ModelMetadata{}, fmt.Errorf("%w: metadata lists %d classes", ErrSchema, n)
	}

	return clf, header.Metadata, nil
}

// TreeNode is one node of a flattened binary decision tree. Internal nodes
// send x[Feature] <= Threshold to Left, everything else to Right.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Class     int     `json:"class"`
	Leaf      bool    `json:"leaf"`
}

// DecisionTree is a flattened tree; node 0 is the root and children always
// come after their parent.
type DecisionTree struct {
	nodes     []TreeNode
	nFeatures int
	nClasses  int
}

type decisionTreeFile struct {
	NFeatures int        `json:"n_features"`
	NClasses  int        `json:"n_classes"`
	Nodes     []TreeNode `json:"nodes"`
}

func decodeDecisionTree(data []byte) (*DecisionTree, error) {
	var f decisionTreeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decision tree: %v", ErrFormat, err)
	}
	return NewDecisionTree(f.Nodes, f.NFeatures, f.NClasses)
}

// NewDecisionTree validates the node table and returns a ready tree.
func NewDecisionTree(nodes []TreeNode, nFeatures, nClasses int) (*DecisionTree, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: decision tree has no nodes", ErrSchema)
	}
	for i, n := range nodes {
		if n.Leaf {
			if n.Class < 0 || n.Class >= nClasses {
				return nil, fmt.Errorf("%w: node %d class %d out of range", ErrSchema, i, n.Class)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return nil, fmt.Errorf("%w: node %d feature %d out of range", ErrSchema, i, n.Feature)
		}
		if !finite(n.Threshold) {
			return nil, fmt.Errorf("%w: node %d threshold is not finite", ErrSchema, i)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(nodes) {
				return nil, fmt.Errorf("%w: node %d child %d out of range", ErrSchema, i, child)
			}
		}
	}
	return &DecisionTree{nodes: nodes, nFeatures: nFeatures, nClasses: nClasses}, nil
}

func (t *DecisionTree) NumFeatures() int { return t.nFeatures }
func (t *DecisionTree) NumClasses() int  { return t.nClasses }

// Predict walks the tree from the root to a leaf.
func (t *DecisionTree) Predict(x []float64) (int, error) {
	if len(x) != t.nFeatures {
		return 0, fmt.Errorf("%w: expected %d features, got %d", ErrInput, t.nFeatures, len(x))
	}
	idx := 0
	for {
		node := t.nodes[idx]
		if node.Leaf {
			return node.Class, nil
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// LogisticRegression is a multinomial linear model: the class with the
// highest score coef·x + intercept wins.
type LogisticRegression struct {
	coef      *mat.Dense
	intercept *mat.VecDense
}

type logisticRegressionFile struct {
	NFeatures int         `json:"n_features"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

func decodeLogisticRegression(data []byte) (*LogisticRegression, error) {
	var f logisticRegressionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: logistic regression: %v", ErrFormat, err)
	}
	return NewLogisticRegression(f.Coef, f.Intercept)
}

// NewLogisticRegression validates shapes and values and builds the model.
func NewLogisticRegression(coef [][]float64, intercept []float64) (*LogisticRegression, error) {
	if len(coef) == 0 || len(coef[0]) == 0 {
		return nil, fmt.Errorf("%w: logistic regression has no coefficients", ErrSchema)
	}
	if len(intercept) != len(coef) {
		return nil, fmt.Errorf("%w: %d intercepts for %d classes", ErrSchema, len(intercept), len(coef))
	}

	rows, cols := len(coef), len(coef[0])
	flat := make([]float64, 0, rows*cols)
	for i, row := range coef {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: coefficient row %d has %d values, want %d", ErrSchema, i, len(row), cols)
		}
		for _, v := range row {
			if !finite(v) {
				return nil, fmt.Errorf("%w: coefficient row %d is not finite", ErrSchema, i)
			}
		}
		flat = append(flat, row...)
	}
	for i, v := range intercept {
		if !finite(v) {
			return nil, fmt.Errorf("%w: intercept %d is not finite", ErrSchema, i)
		}
	}

	return &LogisticRegression{
		coef:      mat.NewDense(rows, cols, flat),
		intercept: mat.NewVecDense(rows, append([]float64(nil), intercept...)),
	}, nil
}

func (m *LogisticRegression) NumFeatures() int {
	_, c := m.coef.Dims()
	return c
}

func (m *LogisticRegression) NumClasses() int {
	r, _ := m.coef.Dims()
	return r
}

func (m *LogisticRegression) scores(x []float64) ([]float64, error) {
	if len(x) != m.NumFeatures() {
		return nil, fmt.Errorf("%w: expected %d features, got %d", ErrInput, m.NumFeatures(), len(x))
	}
	var s mat.VecDense
	s.MulVec(m.coef, mat.NewVecDense(len(x), append([]float64(nil), x...)))
	s.AddVec(&s, m.intercept)
	return mat.Col(nil, 0, &s), nil
}

// Predict returns the index of the highest-scoring class.
func (m *LogisticRegression) Predict(x []float64) (int, error) {
	s, err := m.scores(x)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(s), nil
}

// PredictProba returns the softmax of the class scores.
func (m *LogisticRegression) PredictProba(x []float64) ([]float64, error) {
	s, err := m.scores(x)
	if err != nil {
		return nil, err
	}
	maxScore := floats.Max(s)
	for i := range s {
		s[i] = math.Exp(s[i] - maxScore)
	}
	floats.Scale(1/floats.Sum(s), s)
	return s, nil
}
