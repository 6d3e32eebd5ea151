package dashboard

import (
	"bytes"
	"fmt"
	"time"

	"iris-app/internal/dataset"
	"iris-app/internal/metrics"
	"iris-app/internal/ml"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ScatterSeries holds the points of one species.
type ScatterSeries struct {
	Species string    `json:"species"`
	Label   string    `json:"label"`
	X       []float64 `json:"x"`
	Y       []float64 `json:"y"`
}

// ScatterSpec is a two-column scatter plot of the reference dataset, keyed
// by its x and y columns.
type ScatterSpec struct {
	X      string          `json:"x"`
	Y      string          `json:"y"`
	Series []ScatterSeries `json:"series"`
}

// Key identifies the chart by its column pair, in order.
func (s *ScatterSpec) Key() string {
	return s.X + "|" + s.Y
}

// BuildScatter returns the chart for sel when exactly two columns are
// selected; x is the first column and y the second. Any other selection
// yields no chart and no error.
func BuildScatter(ds *dataset.Dataset, sel *Selection) (*ScatterSpec, bool) {
	if ds == nil || sel == nil || sel.Len() != MaxSelected {
		return nil, false
	}
	cols := sel.Columns()
	xs, err := ds.Column(cols[0])
	if err != nil {
		return nil, false
	}
	ys, err := ds.Column(cols[1])
	if err != nil {
		return nil, false
	}

	names := ds.LabelNames()
	spec := &ScatterSpec{X: cols[0], Y: cols[1], Series: make([]ScatterSeries, len(names))}
	for i, name := range names {
		label := name
		if sp, ok := ml.SpeciesByKey(name); ok {
			label = sp.Name
		}
		spec.Series[i] = ScatterSeries{Species: name, Label: label}
	}
	for i, label := range ds.Labels() {
		series := &spec.Series[label]
		series.X = append(series.X, xs[i])
		series.Y = append(series.Y, ys[i])
	}
	return spec, true
}

var speciesColors = map[string]drawing.Color{
	"setosa":     drawing.ColorFromHex("6a5acd"),
	"versicolor": drawing.ColorFromHex("e67e22"),
	"virginica":  drawing.ColorFromHex("27ae60"),
}

// pointStyle draws dots only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

// ChartRenderer turns scatter specs into PNGs and keeps the most recently
// used ones. Rendering is deterministic, so a cached image is always valid.
type ChartRenderer struct {
	width   int
	height  int
	cache   *lru.Cache[string, []byte]
	metrics *metrics.MetricsWrapper
}

// NewChartRenderer creates a renderer with an LRU of cacheSize images.
// metrics may be nil.
func NewChartRenderer(width, height, cacheSize int, m *metrics.MetricsWrapper) (*ChartRenderer, error) {
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create chart cache: %w", err)
	}
	return &ChartRenderer{width: width, height: height, cache: cache, metrics: m}, nil
}

// PNG returns the rendered image for spec, from cache when possible.
func (r *ChartRenderer) PNG(spec *ScatterSpec) ([]byte, error) {
	if img, ok := r.cache.Get(spec.Key()); ok {
		if r.metrics != nil {
			r.metrics.ChartCacheHits().Inc()
		}
		return img, nil
	}
	if r.metrics != nil {
		r.metrics.ChartCacheMisses().Inc()
	}

	start := time.Now()
	img, err := r.render(spec)
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.ChartRenders().Inc()
		r.metrics.ChartRenderTime().Observe(time.Since(start).Seconds())
	}
	log.Debug().Str("chart", spec.Key()).Int("bytes", len(img)).Dur("took", time.Since(start)).Msg("scatter rendered")

	r.cache.Add(spec.Key(), img)
	return img, nil
}

// Cached reports how many images are held.
func (r *ChartRenderer) Cached() int {
	return r.cache.Len()
}

func (r *ChartRenderer) render(spec *ScatterSpec) ([]byte, error) {
	series := make([]chart.Series, 0, len(spec.Series))
	for _, s := range spec.Series {
		if len(s.X) == 0 {
			continue
		}
		col, ok := speciesColors[s.Species]
		if !ok {
			col = chart.ColorAlternateGray
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Label,
			XValues: s.X,
			YValues: s.Y,
			Style:   pointStyle(col),
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("scatter %s has no points", spec.Key())
	}

	ch := chart.Chart{
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: spec.X},
		YAxis:      chart.YAxis{Name: spec.Y},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render scatter %s: %w", spec.Key(), err)
	}
	return buf.Bytes(), nil
}
