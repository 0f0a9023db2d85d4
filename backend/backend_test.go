package backend_test

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/njchilds90/gosymplot/backend"
	"github.com/njchilds90/gosymplot/expr"
	"github.com/njchilds90/gosymplot/render"
	"github.com/njchilds90/gosymplot/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stub struct{ caps backend.Capabilities }

func (s *stub) Name() string                              { return "stub" }
func (s *stub) Capabilities() backend.Capabilities        { return s.caps }
func (s *stub) Palette() backend.Palette                  { return backend.Palette{} }
func (s *stub) Process(*backend.Document) error           { return nil }
func (s *stub) Update(*backend.Document, []int) error     { return nil }
func (s *stub) Fig() interface{}                          { return nil }
func (s *stub) Show(io.Writer) error                      { return nil }
func (s *stub) Clone() backend.Backend                    { return &stub{caps: s.caps} }

var x, y = expr.S("x"), expr.S("y")

func mustSeries(t *testing.T, kind series.Kind, exprs []expr.Expr, ranges []series.Range, opts ...series.Option) *series.Series {
	t.Helper()
	s, err := series.New(kind, exprs, ranges, opts...)
	require.NoError(t, err)
	return s
}

func TestCheck(t *testing.T) {
	line := mustSeries(t, series.Line2D, []expr.Expr{x}, []series.Range{series.RangeF("x", 0, 1)})
	vec := mustSeries(t, series.Vector2D, []expr.Expr{y, x},
		[]series.Range{series.RangeF("x", -1, 1), series.RangeF("y", -1, 1)}, series.WithStreamlines(true))

	b := &stub{caps: backend.Capabilities{Kinds: []series.Kind{series.Line2D}}}
	assert.NoError(t, backend.Check(b, []*series.Series{line}))

	err := backend.Check(b, []*series.Series{line, vec})
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrNotImplemented))
	var ce *backend.CapabilityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "stub", ce.Backend)
	assert.Equal(t, "vector2d", ce.Feature)

	b.caps.Kinds = append(b.caps.Kinds, series.Vector2D)
	err = backend.Check(b, []*series.Series{vec})
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "2d streamlines", ce.Feature)

	b.caps.Streamlines2D = true
	assert.NoError(t, backend.Check(b, []*series.Series{vec}))
}

func TestCheck_ThreeDColoring(t *testing.T) {
	z := expr.S("z")
	dc := mustSeries(t, series.ComplexDomainColoring, []expr.Expr{z},
		[]series.Range{series.NewRange("z", expr.MustParse("-1 - I"), expr.MustParse("1 + I"))},
		series.WithThreeD(true))
	b := &stub{caps: backend.Capabilities{Kinds: []series.Kind{series.ComplexDomainColoring}}}
	assert.ErrorIs(t, backend.Check(b, []*series.Series{dc}), backend.ErrNotImplemented)
	b.caps.Kinds = append(b.caps.Kinds, series.Surface)
	assert.NoError(t, backend.Check(b, []*series.Series{dc}))
}

func TestValidate(t *testing.T) {
	b := &stub{caps: backend.Capabilities{Kinds: series.AllKinds()}}
	line := mustSeries(t, series.Line2D, []expr.Expr{x}, []series.Range{series.RangeF("x", 0, 1)})
	assert.Error(t, backend.Validate(b, nil))
	assert.Error(t, backend.Validate(b, &backend.Document{Series: []*series.Series{line}}))
	assert.NoError(t, backend.Validate(b, &backend.Document{Series: []*series.Series{line}, Data: []*series.Data{{}}}))
}

func TestPalette(t *testing.T) {
	p := backend.Palette{Colors: []string{"red", "green", "blue"}, Colormaps: []string{"viridis"}}
	assert.Equal(t, "red", p.Color(0))
	assert.Equal(t, "red", p.Color(3))
	assert.Equal(t, "blue", p.Color(5))
	assert.Equal(t, "viridis", p.Colormap(7))
	assert.Empty(t, backend.Palette{}.Color(1))
}

func TestNewConfig(t *testing.T) {
	def := backend.Palette{Colors: []string{"a", "b", "c", "d"}}
	c := backend.NewConfig("test", def)
	assert.NotNil(t, c.Logger)
	assert.Len(t, c.Palette.Colors, 4)

	c = backend.NewConfig("test", def, backend.WithColors("red", "green"), backend.WithSize(4, 3))
	assert.Equal(t, []string{"red", "green"}, c.Palette.Colors)
	assert.Equal(t, [2]float64{4, 3}, c.Size)
	assert.Len(t, def.Colors, 4)
}

func TestDocumentLegend(t *testing.T) {
	line := mustSeries(t, series.Line2D, []expr.Expr{x}, []series.Range{series.RangeF("x", 0, 1)})
	d := &backend.Document{Series: []*series.Series{line}}
	assert.False(t, d.LegendOn())
	d.Series = append(d.Series, line)
	assert.True(t, d.LegendOn())
	d.Settings.Legend = render.Bool(false)
	assert.False(t, d.LegendOn())
}

func TestStyleOf(t *testing.T) {
	kw := render.NewOptions("line_kw", render.NewOptions("color", "red", "linewidth", "3"))
	s := mustSeries(t, series.Line2D, []expr.Expr{x}, []series.Range{series.RangeF("x", 0, 1)},
		series.WithRenderingKW(kw))
	st := backend.StyleOf(s, backend.KWKey(s))
	assert.Equal(t, "red", st.Color)
	assert.Equal(t, 3.0, st.Width)

	surf := mustSeries(t, series.Surface, []expr.Expr{expr.MulOf(x, y)},
		[]series.Range{series.RangeF("x", 0, 1), series.RangeF("y", 0, 1)},
		series.WithRenderingKW(render.NewOptions("surface_kw", map[string]interface{}{"colormap": "viridis"})))
	assert.Equal(t, "surface_kw", backend.KWKey(surf))
	assert.Equal(t, "viridis", backend.StyleOf(surf, "surface_kw").Colormap)
	assert.True(t, backend.SolidColor(surf))
}

func TestDocumentStyle(t *testing.T) {
	own := mustSeries(t, series.Line2D, []expr.Expr{x}, []series.Range{series.RangeF("x", 0, 1)},
		series.WithRenderingKW(render.NewOptions("line_kw", render.NewOptions("color", "red"))))
	bare := mustSeries(t, series.Line2D, []expr.Expr{x}, []series.Range{series.RangeF("x", 0, 1)})
	d := &backend.Document{
		Series:  []*series.Series{own, bare},
		Options: render.NewOptions("line_kw", render.NewOptions("color", "blue", "width", 2)),
	}
	assert.Equal(t, backend.Style{Color: "red", Width: 2}, d.Style(0))
	assert.Equal(t, backend.Style{Color: "blue", Width: 2}, d.Style(1))

	d.Options = nil
	assert.Equal(t, backend.Style{}, d.Style(1))
}

func TestSplitNaN(t *testing.T) {
	nan := math.NaN()
	xs := []float64{0, 1, 2, 3, 4, 5}
	ys := []float64{0, nan, 2, 3, math.Inf(1), 5}
	assert.Equal(t, [][2]int{{0, 1}, {2, 4}, {5, 6}}, backend.SplitNaN(xs, ys))
	assert.Equal(t, [][2]int{{0, 6}}, backend.SplitNaN(xs, nil))
	assert.Nil(t, backend.SplitNaN([]float64{nan}))
}

func TestGridHelpers(t *testing.T) {
	g := [][]float64{{1, 2, 3}, {4, 5, 6}}
	assert.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, backend.Transpose(g))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, backend.Flatten(g))
	assert.Nil(t, backend.Transpose(nil))
}

func TestAssign(t *testing.T) {
	r := []series.Range{series.RangeF("x", 0, 1)}
	l1 := mustSeries(t, series.Line2D, []expr.Expr{x}, r)
	p := mustSeries(t, series.Parametric2D, []expr.Expr{x, x}, r, series.WithUseCM(true))
	l2 := mustSeries(t, series.Line2D, []expr.Expr{expr.MulOf(x, x)}, r)
	colors, cmaps := backend.Assign([]*series.Series{l1, p, l2})
	assert.Equal(t, []int{0, -1, 1}, colors)
	assert.Equal(t, []int{-1, 0, -1}, cmaps)
}
