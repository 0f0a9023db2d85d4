package plot_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/njchilds90/gosymplot/backend"
	"github.com/njchilds90/gosymplot/backend/gonumplot"
	"github.com/njchilds90/gosymplot/backend/plotly"
	"github.com/njchilds90/gosymplot/expr"
	"github.com/njchilds90/gosymplot/plot"
	"github.com/njchilds90/gosymplot/render"
	"github.com/njchilds90/gosymplot/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(t *testing.T, e string, opts ...series.Option) *series.Series {
	t.Helper()
	opts = append([]series.Option{series.WithN(20), series.WithAdaptive(false)}, opts...)
	s, err := series.New(series.Line2D, []expr.Expr{expr.MustParse(e)},
		[]series.Range{series.RangeF("x", -5, 5)}, opts...)
	require.NoError(t, err)
	return s
}

func TestProcessSeries_LazyCapabilityCheck(t *testing.T) {
	surf, err := series.New(series.Surface, []expr.Expr{expr.MustParse("x*y")},
		[]series.Range{series.RangeF("x", 0, 1), series.RangeF("y", 0, 1)})
	require.NoError(t, err)

	p := plot.New(gonumplot.New(), render.Settings{}, surf)
	assert.Equal(t, 1, p.Len())

	_, err = p.Fig()
	var ce *backend.CapabilityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "surface", ce.Feature)
	assert.True(t, errors.Is(err, backend.ErrNotImplemented))
}

// noStreams draws 2D vector fields as arrows only.
type noStreams struct{ *plotly.Backend }

func (noStreams) Capabilities() backend.Capabilities {
	return backend.Capabilities{Kinds: []series.Kind{series.Vector2D}}
}

func TestProcessSeries_StreamlinesUnsupported(t *testing.T) {
	v, err := series.New(series.Vector2D, []expr.Expr{expr.MustParse("-y"), expr.MustParse("x")},
		[]series.Range{series.RangeF("x", -1, 1), series.RangeF("y", -1, 1)}, series.WithStreamlines(true))
	require.NoError(t, err)

	evaluated := false
	p := plot.New(noStreams{plotly.New()}, render.Settings{}, v).WithEvaluator(
		func(i int, s *series.Series, params map[string]float64) (*series.Data, error) {
			evaluated = true
			return s.Evaluate(params)
		})
	err = p.ProcessSeries()
	var ce *backend.CapabilityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "2d streamlines", ce.Feature)
	assert.False(t, evaluated)
}

func TestAdd(t *testing.T) {
	left := plot.New(plotly.New(), render.Settings{Title: "left", Legend: render.Bool(false)}, line(t, "sin(x)")).
		WithOptions(render.NewOptions("line_kw", render.NewOptions("color", "red")))
	right := plot.New(gonumplot.New(), render.Settings{XLabel: "x", Legend: render.Bool(false)}, line(t, "cos(x)")).
		WithOptions(render.NewOptions("line_kw", render.NewOptions("width", 2)))

	sum := left.Add(right)
	assert.Equal(t, plotly.Name, sum.Backend().Name())
	assert.NotSame(t, left.Backend(), sum.Backend())

	ss := sum.Series()
	require.Len(t, ss, 2)
	assert.Equal(t, "sin(x)", ss[0].Label())
	assert.Equal(t, "cos(x)", ss[1].Label())

	st := sum.Settings()
	assert.Equal(t, "left", st.Title)
	assert.Equal(t, "x", st.XLabel)
	require.NotNil(t, st.Legend)
	assert.True(t, *st.Legend)

	kw := sum.Options().Sub("line_kw")
	c, _ := kw.Get("color")
	w, _ := kw.Get("width")
	assert.Equal(t, "red", c)
	assert.Equal(t, 2, w)

	// the inputs are untouched
	assert.Equal(t, 1, left.Len())
	_, ok := left.Options().Sub("line_kw").Get("width")
	assert.False(t, ok)
}

func TestAdd_DropsEvaluator(t *testing.T) {
	calls := 0
	left := plot.New(plotly.New(), render.Settings{Show: render.Bool(false)}, line(t, "x")).
		WithEvaluator(func(i int, s *series.Series, params map[string]float64) (*series.Data, error) {
			calls++
			return s.Evaluate(params)
		})
	sum := left.Add(plot.New(plotly.New(), render.Settings{}, line(t, "x + 1")))
	require.NoError(t, sum.ProcessSeries())
	assert.Zero(t, calls)

	require.NoError(t, left.ProcessSeries())
	assert.Equal(t, 1, calls)
}

func TestAdd_SingleSeriesKeepsLegend(t *testing.T) {
	empty := plot.New(plotly.New(), render.Settings{})
	sum := empty.Add(plot.New(plotly.New(), render.Settings{}, line(t, "x")))
	assert.Nil(t, sum.Settings().Legend)
}

func TestShow_Headless(t *testing.T) {
	p := plot.New(plotly.New(), render.Settings{Show: render.Bool(false)}, line(t, "x"))
	var buf bytes.Buffer
	require.NoError(t, p.Show(&buf))
	assert.Zero(t, buf.Len())
	fig, err := p.Fig()
	require.NoError(t, err)
	assert.NotNil(t, fig)

	shown := plot.New(plotly.New(), render.Settings{}, line(t, "x"))
	require.NoError(t, shown.Show(&buf))
	assert.NotZero(t, buf.Len())
}

func TestSave(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "fig.json")
	require.NoError(t, plot.New(plotly.New(), render.Settings{}, line(t, "x")).Save(jsonPath))
	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data"`)

	pngPath := filepath.Join(dir, "fig.png")
	require.NoError(t, plot.New(gonumplot.New(), render.Settings{}, line(t, "x")).Save(pngPath))
	raw, err = os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))
}

func TestUpdate_OnlyIndices(t *testing.T) {
	calls := map[int]int{}
	p := plot.New(plotly.New(), render.Settings{}, line(t, "x"), line(t, "x^2"), line(t, "x^3")).
		WithEvaluator(func(i int, s *series.Series, params map[string]float64) (*series.Data, error) {
			calls[i]++
			return s.Evaluate(params)
		})
	require.NoError(t, p.Update(nil))
	assert.Equal(t, map[int]int{0: 1, 1: 1, 2: 1}, calls)

	require.NoError(t, p.Update([]int{2}))
	assert.Equal(t, map[int]int{0: 1, 1: 1, 2: 2}, calls)
	assert.Error(t, p.Update([]int{3}))
	assert.NotNil(t, p.Data(0))
	assert.Nil(t, p.Data(9))
}

func TestParams(t *testing.T) {
	s, err := series.New(series.Line2D, []expr.Expr{expr.MustParse("a*x")},
		[]series.Range{series.RangeF("x", 0, 1)}, series.WithInteractive(true), series.WithN(3))
	require.NoError(t, err)

	p := plot.New(plotly.New(), render.Settings{}, s)
	assert.True(t, errors.Is(p.ProcessSeries(), series.ErrMissingValue))

	a := 2.0
	p.WithParams(func() map[string]float64 { return map[string]float64{"a": a} })
	require.NoError(t, p.ProcessSeries())
	assert.Equal(t, 2.0, p.Data(0).Curve.Y[2])

	a = 3
	require.NoError(t, p.Update([]int{0}))
	assert.Equal(t, 3.0, p.Data(0).Curve.Y[2])
}

func TestNoBackend(t *testing.T) {
	assert.ErrorIs(t, plot.New(nil, render.Settings{}).ProcessSeries(), plot.ErrNoBackend)
}
