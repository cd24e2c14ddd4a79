package charts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/google/uuid"
	chart "github.com/wcharczuk/go-chart/v2"
)

// Kind is a supported chart type.
type Kind string

const (
	KindLine    Kind = "line"
	KindBar     Kind = "bar"
	KindScatter Kind = "scatter"
	KindPie     Kind = "pie"
)

// ParseKind validates a user-provided chart kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindLine, KindBar, KindScatter, KindPie:
		return Kind(strings.ToLower(s)), nil
	default:
		return "", &domain.RenderError{Kind: s, Err: domain.ErrUnsupportedKind}
	}
}

// Handle references a rendered chart image on disk.
type Handle struct {
	// Path is the image location, owned by the renderer that produced it.
	Path string
	// Name is the logical file name.
	Name string
	// Substituted counts y-values that were not numeric-coercible and were
	// rendered as 0. The substitution itself is silent; strict callers can
	// inspect this to surface it.
	Substituted int
}

// Config controls the rendered image geometry.
type Config struct {
	Width  int
	Height int
}

func DefaultConfig() Config {
	return Config{Width: 800, Height: 500}
}

// Renderer draws aggregated tables as PNG files in a fixed directory.
// Renders within a session are sequential; unique file names are the only
// collision discipline the shared directory needs.
type Renderer struct {
	dir    string
	config Config
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir, config: DefaultConfig()}
}

func NewRendererWithConfig(dir string, config Config) *Renderer {
	return &Renderer{dir: dir, config: config}
}

type point struct {
	label string
	value float64
}

// Render draws the table's xCol/yCol pair as the requested kind and writes a
// uniquely named PNG. Backend failures of any sort come back as a typed
// RenderError; no file is left behind on failure.
func (r *Renderer) Render(kind Kind, t *domain.Table, xCol, yCol string) (*Handle, error) {
	switch kind {
	case KindLine, KindBar, KindScatter, KindPie:
	default:
		return nil, &domain.RenderError{Kind: string(kind), Err: domain.ErrUnsupportedKind}
	}

	points, substituted, err := extractPoints(t, xCol, yCol)
	if err != nil {
		return nil, &domain.RenderError{Kind: string(kind), Err: err}
	}
	if kind == KindPie {
		points = sumByLabel(points)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, &domain.RenderError{Kind: string(kind), Err: fmt.Errorf("failed to create chart dir: %w", err)}
	}

	name := fmt.Sprintf("%s_%s_by_%s_%s.png", kind, xCol, yCol, uuid.NewString())
	path := filepath.Join(r.dir, name)

	if err := r.draw(kind, points, path); err != nil {
		_ = os.Remove(path)
		return nil, &domain.RenderError{Kind: string(kind), Err: err}
	}

	return &Handle{Path: path, Name: name, Substituted: substituted}, nil
}

// Remove deletes a chart file, best-effort. Missing files are not an error.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// extractPoints coerces xCol to text labels and yCol to numbers, substituting
// 0 for non-coercible y-values and counting the substitutions.
func extractPoints(t *domain.Table, xCol, yCol string) ([]point, int, error) {
	if t == nil || t.IsEmpty() {
		return nil, 0, fmt.Errorf("table is empty")
	}
	xi, ok := t.Column(xCol)
	if !ok {
		return nil, 0, fmt.Errorf("x column %q not found", xCol)
	}
	yi, ok := t.Column(yCol)
	if !ok {
		return nil, 0, fmt.Errorf("y column %q not found", yCol)
	}

	points := make([]point, 0, len(t.Rows))
	substituted := 0
	for _, row := range t.Rows {
		p := point{label: row[xi].Display()}
		if row[yi].IsNum {
			p.value = row[yi].Num
		} else {
			substituted++
		}
		points = append(points, p)
	}
	return points, substituted, nil
}

// sumByLabel re-aggregates values per label. Pie slices need summation
// semantics no matter how the input table was produced.
func sumByLabel(points []point) []point {
	sums := make(map[string]int)
	var out []point
	for _, p := range points {
		if i, exists := sums[p.label]; exists {
			out[i].value += p.value
			continue
		}
		sums[p.label] = len(out)
		out = append(out, p)
	}
	return out
}

// draw dispatches to the chart backend. The backend panics on some degenerate
// inputs, so the call is fenced and converted to an error.
func (r *Renderer) draw(kind Kind, points []point, path string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("chart backend failure: %v", rec)
		}
	}()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	switch kind {
	case KindBar:
		return r.barChart(points).Render(chart.PNG, f)
	case KindPie:
		return r.pieChart(points).Render(chart.PNG, f)
	default:
		return r.xyChart(kind, points).Render(chart.PNG, f)
	}
}

func (r *Renderer) barChart(points []point) chart.BarChart {
	bars := make([]chart.Value, 0, len(points))
	for _, p := range points {
		bars = append(bars, chart.Value{Label: p.label, Value: p.value})
	}
	return chart.BarChart{
		Width:    r.config.Width,
		Height:   r.config.Height,
		BarWidth: 40,
		Bars:     bars,
	}
}

func (r *Renderer) pieChart(points []point) chart.PieChart {
	values := make([]chart.Value, 0, len(points))
	for _, p := range points {
		values = append(values, chart.Value{Label: p.label, Value: p.value})
	}
	return chart.PieChart{
		Width:  r.config.Width,
		Height: r.config.Height,
		Values: values,
	}
}

// xyChart plots line and scatter kinds over a categorical x axis: positions
// are the row indexes and the labels become axis ticks.
func (r *Renderer) xyChart(kind Kind, points []point) chart.Chart {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	ticks := make([]chart.Tick, len(points))
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = p.value
		ticks[i] = chart.Tick{Value: float64(i), Label: p.label}
	}

	style := chart.Style{}
	if kind == KindScatter {
		style = chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    5,
		}
	}

	return chart.Chart{
		Width:  r.config.Width,
		Height: r.config.Height,
		XAxis:  chart.XAxis{Ticks: ticks},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style:   style,
			},
		},
	}
}
