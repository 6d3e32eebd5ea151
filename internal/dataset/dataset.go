// Package dataset provides the bundled Iris reference dataset: 150 flower
// measurements with their species labels. The table is parsed once per
// process and shared read-only afterwards.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
)

//go:embed iris.csv
var irisCSV []byte

// NumFeatures is the number of measurement columns per row.
const NumFeatures = 4

// Column names in table order.
const (
	SepalLength = "sepal length (cm)"
	SepalWidth  = "sepal width (cm)"
	PetalLength = "petal length (cm)"
	PetalWidth  = "petal width (cm)"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrMalformed     = errors.New("malformed dataset")
)

// Dataset is the immutable reference table. Features[i] and Labels[i]
// describe the same flower; LabelNames maps a label to its species name.
type Dataset struct {
	columns    []string
	features   [][NumFeatures]float64
	labels     []int
	labelNames []string
}

// Row is one line of the combined table: measurements plus species name.
type Row struct {
	Features [NumFeatures]float64 `json:"features"`
	Label    int                  `json:"label"`
	Species  string               `json:"species"`
}

var (
	loadOnce sync.Once
	loaded   *Dataset
	loadErr  error
)

// Load returns the reference dataset, parsing it on the first call only.
// Every later call returns the same instance.
func Load() (*Dataset, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(bytes.NewReader(irisCSV), []string{"setosa", "versicolor", "virginica"})
		if loadErr != nil {
			log.Error().Err(loadErr).Msg("reference dataset unavailable")
			return
		}
		log.Debug().Int("rows", loaded.Len()).Msg("reference dataset loaded")
	})
	return loaded, loadErr
}

// Parse reads a CSV table with a header of four feature columns followed by
// an integer target column.
func Parse(r io.Reader, labelNames []string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = NumFeatures + 1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformed, err)
	}

	ds := &Dataset{
		columns:    append([]string(nil), header[:NumFeatures]...),
		labelNames: append([]string(nil), labelNames...),
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}

		var row [NumFeatures]float64
		for i := 0; i < NumFeatures; i++ {
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %q: %v", ErrMalformed, line, ds.columns[i], err)
			}
			row[i] = v
		}

		label, err := strconv.Atoi(record[NumFeatures])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d target: %v", ErrMalformed, line, err)
		}
		if label < 0 || label >= len(labelNames) {
			return nil, fmt.Errorf("%w: line %d: label %d has no name", ErrMalformed, line, label)
		}

		ds.features = append(ds.features, row)
		ds.labels = append(ds.labels, label)
	}

	if len(ds.features) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformed)
	}

	return ds, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.features)
}

// Columns returns the feature column names in table order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// LabelNames returns the species names indexed by label.
func (d *Dataset) LabelNames() []string {
	return append([]string(nil), d.labelNames...)
}

// Labels returns a copy of the per-row integer labels.
func (d *Dataset) Labels() []int {
	return append([]int(nil), d.labels...)
}

// ColumnIndex returns the position of a feature column.
func (d *Dataset) ColumnIndex(name string) (int, error) {
	for i, c := range d.columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// Column returns a copy of one feature column.
func (d *Dataset) Column(name string) ([]float64, error) {
	idx, err := d.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(d.features))
	for i, row := range d.features {
		values[i] = row[idx]
	}
	return values, nil
}

// Rows returns the combined table of measurements and species names.
func (d *Dataset) Rows() []Row {
	rows := make([]Row, len(d.features))
	for i, f := range d.features {
		rows[i] = Row{
			Features: f,
			Label:    d.labels[i],
			Species:  d.labelNames[d.labels[i]],
		}
	}
	return rows
}
