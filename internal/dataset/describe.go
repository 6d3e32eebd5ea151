package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary holds the descriptive statistics of one feature column.
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"25%"`
	Median float64 `json:"50%"`
	Q75    float64 `json:"75%"`
	Max    float64 `json:"max"`
}

// Summary is the statistics table, one entry per column in table order.
type Summary struct {
	Columns []ColumnSummary `json:"columns"`
}

// StatNames lists the table rows in display order.
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max for every feature column.
func Describe(d *Dataset) Summary {
	summary := Summary{Columns: make([]ColumnSummary, 0, NumFeatures)}
	for _, name := range d.columns {
		values, _ := d.Column(name)
		summary.Columns = append(summary.Columns, describeColumn(name, values))
	}
	return summary
}

func describeColumn(name string, values []float64) ColumnSummary {
	mean, std := stat.MeanStdDev(values, nil)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return ColumnSummary{
		Column: name,
		Count:  len(values),
		Mean:   mean,
		Std:    std,
		Min:    floats.Min(sorted),
		Q25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q75:    quantile(sorted, 0.75),
		Max:    floats.Max(sorted),
	}
}

// quantile interpolates linearly between the two closest ranks of sorted
// data. gonum's stat.Quantile only offers the empirical and LinInterp
// estimators, neither of which is this one.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Values returns the statistics of a column in StatNames order.
func (c ColumnSummary) Values() []float64 {
	return []float64{float64(c.Count), c.Mean, c.Std, c.Min, c.Q25, c.Median, c.Q75, c.Max}
}
