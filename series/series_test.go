package series_test

import (
	"errors"
	"math"
	"testing"

	"github.com/njchilds90/gosymplot/expr"
	"github.com/njchilds90/gosymplot/geom"
	"github.com/njchilds90/gosymplot/render"
	"github.com/njchilds90/gosymplot/series"
	"github.com/sgostarter/i/commerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	x = expr.S("x")
	y = expr.S("y")
	z = expr.S("z")
	a = expr.S("a")
)

func rng(sym string, lo, hi float64) series.Range { return series.RangeF(sym, lo, hi) }

// ============================================================
// construction
// ============================================================

func TestNew_ArityMismatch(t *testing.T) {
	_, err := series.New(series.Line2D, []expr.Expr{x, y}, []series.Range{rng("x", 0, 1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, series.ErrArity))
	assert.True(t, errors.Is(err, commerr.ErrInvalidArgument))

	_, err = series.New(series.Surface, []expr.Expr{x}, []series.Range{rng("x", 0, 1)})
	assert.ErrorIs(t, err, series.ErrArity)

	_, err = series.New(series.Surface, []expr.Expr{x}, []series.Range{rng("x", 0, 1), rng("x", 0, 2)})
	assert.ErrorIs(t, err, series.ErrArity)

	_, err = series.New(series.ComplexPoints, nil, nil)
	assert.ErrorIs(t, err, series.ErrArity)
}

func TestNew_FreeSymbolNeedsInteractive(t *testing.T) {
	e := expr.MulOf(a, x)
	_, err := series.New(series.Line2D, []expr.Expr{e}, []series.Range{rng("x", 0, 1)})
	assert.ErrorIs(t, err, series.ErrFreeSymbol)

	s, err := series.New(series.Line2D, []expr.Expr{e}, []series.Range{rng("x", 0, 1)}, series.WithInteractive(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, s.Params())
	assert.True(t, s.DependsOn("a"))
	assert.False(t, s.DependsOn("x"))
}

func TestNew_RangeBoundParameters(t *testing.T) {
	r := series.NewRange("x", expr.N(0), a)
	s, err := series.New(series.Line2D, []expr.Expr{expr.SinOf(x)}, []series.Range{r}, series.WithInteractive(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, s.Params())
}

func TestNew_DefaultLabels(t *testing.T) {
	cases := []struct {
		kind   series.Kind
		exprs  []expr.Expr
		ranges []series.Range
		opts   []series.Option
		want   string
	}{
		{series.Line2D, []expr.Expr{expr.SinOf(x)}, []series.Range{rng("x", -5, 5)}, nil, "sin(x)"},
		{series.Parametric2D, []expr.Expr{expr.CosOf(x), expr.SinOf(x)}, []series.Range{rng("x", 0, 1)}, nil,
			"(cos(x), sin(x))"},
		{series.Parametric3D, []expr.Expr{expr.CosOf(x), expr.SinOf(x), x}, []series.Range{rng("x", 0, 1)}, nil,
			"(cos(x), sin(x), x)"},
		{series.Vector3D, []expr.Expr{z, y, x}, []series.Range{rng("x", 0, 1), rng("y", 0, 1), rng("z", 0, 1)}, nil,
			"(z, y, x)"},
		{series.ComplexLine, []expr.Expr{expr.SqrtOf(x)}, []series.Range{rng("x", -1, 1)}, nil, "re(sqrt(x))"},
		{series.ComplexLine, []expr.Expr{expr.SqrtOf(x)}, []series.Range{rng("x", -1, 1)},
			[]series.Option{series.WithPart(series.PartImag)}, "im(sqrt(x))"},
		{series.ComplexLine, []expr.Expr{expr.SqrtOf(x)}, []series.Range{rng("x", -1, 1)},
			[]series.Option{series.WithPart(series.PartAbsArg)}, "abs(sqrt(x))"},
		{series.Line2D, []expr.Expr{x}, []series.Range{rng("x", 0, 1)},
			[]series.Option{series.WithLabel("custom")}, "custom"},
	}
	for _, c := range cases {
		s, err := series.New(c.kind, c.exprs, c.ranges, c.opts...)
		require.NoError(t, err, c.want)
		assert.Equal(t, c.want, s.Label())
	}
}

func TestNew_Flags(t *testing.T) {
	line, err := series.New(series.Line2D, []expr.Expr{x}, []series.Range{rng("x", 0, 1)})
	require.NoError(t, err)
	assert.True(t, line.Adaptive())
	assert.Equal(t, 1000, line.N()[0])
	assert.False(t, line.Is3D())

	il, err := series.New(series.Line2D, []expr.Expr{x}, []series.Range{rng("x", 0, 1)},
		series.WithInteractive(true), series.WithAdaptive(true))
	require.NoError(t, err)
	assert.False(t, il.Adaptive())
	assert.Equal(t, 1000, il.N()[0])

	surf, err := series.New(series.Surface, []expr.Expr{expr.MulOf(x, y)}, []series.Range{rng("x", 0, 1), rng("y", 0, 1)})
	require.NoError(t, err)
	assert.True(t, surf.Is3D())
	assert.Equal(t, [3]int{50, 50, 50}, surf.N())

	isurf, err := series.New(series.Surface, []expr.Expr{expr.MulOf(x, y)}, []series.Range{rng("x", 0, 1), rng("y", 0, 1)},
		series.WithInteractive(true))
	require.NoError(t, err)
	assert.Equal(t, 10, isurf.N()[0])

	vec, err := series.New(series.Vector2D, []expr.Expr{x, y}, []series.Range{rng("x", 0, 1), rng("y", 0, 1)})
	require.NoError(t, err)
	assert.True(t, vec.Is2DVector())
	assert.False(t, vec.Is3DVector())
	assert.Equal(t, 25, vec.N()[0])
	assert.Equal(t, 1.0, vec.Scale())

	dc, err := series.New(series.ComplexDomainColoring, []expr.Expr{z},
		[]series.Range{series.NewRange("z", expr.MustParse("-1 - I"), expr.MustParse("1 + I"))}, series.WithThreeD(true))
	require.NoError(t, err)
	assert.True(t, dc.Is3D())
	assert.True(t, dc.IsComplex())
	assert.Equal(t, 20, dc.PhaseRes())
}

func TestNew_DomainColoringNeedsComplexRange(t *testing.T) {
	_, err := series.New(series.ComplexDomainColoring, []expr.Expr{z}, []series.Range{rng("z", -1, 1)})
	assert.ErrorIs(t, err, series.ErrInvalidOption)
}

func TestNew_UnknownOptionsAreNotErrors(t *testing.T) {
	_, err := series.New(series.Line2D, []expr.Expr{x}, []series.Range{rng("x", 0, 1)},
		series.WithRenderingKW(render.NewOptions("adapt", true, "color", "red")))
	assert.NoError(t, err)
}

// ============================================================
// lines
// ============================================================

func TestEvaluate_UniformLine(t *testing.T) {
	s, err := series.New(series.Line2D, []expr.Expr{expr.MulOf(expr.N(2), x)}, []series.Range{rng("x", -1, 1)},
		series.WithAdaptive(false), series.WithN(5))
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	assert.Equal(t, series.Line2D, d.Kind)
	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, d.Curve.X)
	assert.Equal(t, []float64{-2, -1, 0, 1, 2}, d.Curve.Y)
	assert.Nil(t, d.Curve.Param)
}

func TestEvaluate_PointFailuresAreNaN(t *testing.T) {
	s, err := series.New(series.Line2D, []expr.Expr{expr.PowOf(x, expr.N(-1))}, []series.Range{rng("x", -1, 1)},
		series.WithAdaptive(false), series.WithN(3))
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	assert.Equal(t, -1.0, d.Curve.Y[0])
	assert.True(t, math.IsNaN(d.Curve.Y[1]))
	assert.Equal(t, 1.0, d.Curve.Y[2])
}

func TestEvaluate_AdaptiveStraightLineStopsAtMinDepth(t *testing.T) {
	s, err := series.New(series.Line2D, []expr.Expr{x}, []series.Range{rng("x", 0, 1)})
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	// 64 leaves, each adding its midpoint and right end
	assert.Equal(t, 129, d.Curve.Len())
	for i := 1; i < d.Curve.Len(); i++ {
		assert.Less(t, d.Curve.X[i-1], d.Curve.X[i])
	}
}

func TestEvaluate_SampleCount(t *testing.T) {
	uniform, err := series.New(series.Line2D, []expr.Expr{expr.SinOf(x)}, []series.Range{rng("x", -5, 5)},
		series.WithAdaptive(false))
	require.NoError(t, err)
	d, err := uniform.Evaluate(nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, d.Curve.Len())

	// adaptive sampling ignores n
	s, err := series.New(series.Line2D, []expr.Expr{x}, []series.Range{rng("x", 0, 1)}, series.WithN(50))
	require.NoError(t, err)
	d, err = s.Evaluate(nil)
	require.NoError(t, err)
	assert.Equal(t, 129, d.Curve.Len())
}

func TestEvaluate_AdaptiveRefinesCurvature(t *testing.T) {
	s, err := series.New(series.Line2D, []expr.Expr{expr.SinOf(expr.MulOf(expr.N(20), x))}, []series.Range{rng("x", 0, 1)})
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	assert.Greater(t, d.Curve.Len(), 129)

	again, err := series.New(series.Line2D, []expr.Expr{expr.SinOf(expr.MulOf(expr.N(20), x))}, []series.Range{rng("x", 0, 1)})
	require.NoError(t, err)
	d2, err := again.Evaluate(nil)
	require.NoError(t, err)
	assert.Equal(t, d.Curve.X, d2.Curve.X)
	assert.Equal(t, d.Curve.Y, d2.Curve.Y)
}

func TestEvaluate_AdaptiveDepthBounds(t *testing.T) {
	s, err := series.New(series.Line2D, []expr.Expr{expr.SinOf(expr.MulOf(expr.N(50), x))}, []series.Range{rng("x", 0, 1)},
		series.WithDepth(7))
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, d.Curve.Len(), 257)
}

func TestEvaluate_Parametric(t *testing.T) {
	s, err := series.New(series.Parametric3D, []expr.Expr{expr.CosOf(x), expr.SinOf(x), x},
		[]series.Range{rng("x", 0, 1)}, series.WithAdaptive(false), series.WithN(4))
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	require.Len(t, d.Curve.Z, 4)
	assert.Equal(t, d.Curve.Param, d.Curve.Z)
	assert.InDelta(t, 1.0, d.Curve.X[0], 1e-12)
}

func TestEvaluate_LogScale(t *testing.T) {
	s, err := series.New(series.Line2D, []expr.Expr{x}, []series.Range{rng("x", 1, 100)},
		series.WithAdaptive(false), series.WithN(3), series.WithXScale("log"))
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 10, 100}, d.Curve.X, 1e-9)

	bad, err := series.New(series.Line2D, []expr.Expr{x}, []series.Range{rng("x", -1, 100)}, series.WithXScale("log"))
	require.NoError(t, err)
	_, err = bad.Evaluate(nil)
	assert.ErrorIs(t, err, series.ErrInvalidRange)
}

// ============================================================
// parameters and cache
// ============================================================

func TestEvaluate_Parameters(t *testing.T) {
	s, err := series.New(series.Line2D, []expr.Expr{expr.MulOf(a, x)},
		[]series.Range{series.NewRange("x", expr.N(0), a)}, series.WithInteractive(true), series.WithN(3))
	require.NoError(t, err)

	_, err = s.Evaluate(nil)
	assert.ErrorIs(t, err, series.ErrMissingValue)

	d, err := s.Evaluate(map[string]float64{"a": 2, "unused": 9})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, d.Curve.X)
	assert.Equal(t, []float64{0, 2, 4}, d.Curve.Y)

	again, err := s.Evaluate(map[string]float64{"a": 2})
	require.NoError(t, err)
	assert.Same(t, d, again)

	other, err := s.Evaluate(map[string]float64{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, other.Curve.X)

	_, err = s.Evaluate(map[string]float64{"a": 0})
	assert.ErrorIs(t, err, series.ErrInvalidRange)
}

func TestSnapshot_OnlyOwnParameters(t *testing.T) {
	s, err := series.New(series.Line2D, []expr.Expr{expr.MulOf(a, x)}, []series.Range{rng("x", 0, 1)},
		series.WithInteractive(true))
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(map[string]float64{"a": 1, "b": 2}), s.Snapshot(map[string]float64{"a": 1, "b": 3}))
	assert.NotEqual(t, s.Snapshot(map[string]float64{"a": 1}), s.Snapshot(map[string]float64{"a": 2}))
}

// ============================================================
// grids
// ============================================================

func TestEvaluate_SurfaceShape(t *testing.T) {
	s, err := series.New(series.Surface, []expr.Expr{expr.AddOf(x, y)}, []series.Range{rng("x", 0, 1), rng("y", 0, 3)},
		series.WithN(2, 4))
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	n1, n2 := d.Grid.Shape()
	assert.Equal(t, 2, n1)
	assert.Equal(t, 4, n2)
	assert.Equal(t, 4.0, d.Grid.Z[1][3])
	assert.Equal(t, 1.0, d.Grid.Z[0][1])
}

func TestEvaluate_AdaptiveSurfaceTicks(t *testing.T) {
	s, err := series.New(series.Contour, []expr.Expr{expr.SinOf(expr.MulOf(expr.N(10), x, y))},
		[]series.Range{rng("x", 0, 1), rng("y", 0, 1)}, series.WithN(9), series.WithAdaptive(true))
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	n1, _ := d.Grid.Shape()
	assert.GreaterOrEqual(t, n1, 9)
	assert.Equal(t, 0.0, d.Grid.Xs[0])
	assert.Equal(t, 1.0, d.Grid.Xs[n1-1])
}

func TestEvaluate_ParametricSurface(t *testing.T) {
	u, v := expr.S("u"), expr.S("v")
	s, err := series.New(series.ParametricSurface, []expr.Expr{u, v, expr.MulOf(u, v)},
		[]series.Range{rng("u", 0, 1), rng("v", 0, 2)}, series.WithN(3))
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	require.Len(t, d.Mesh.Z, 3)
	require.Len(t, d.Mesh.Z[0], 3)
	assert.Equal(t, 2.0, d.Mesh.Z[2][2])
}

func TestFinite(t *testing.T) {
	lo, hi := series.Finite([][]float64{{math.NaN(), 1}, {-2, 3}})
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 3.0, hi)
	lo, _ = series.Finite([][]float64{{math.NaN()}})
	assert.True(t, math.IsNaN(lo))
}

// ============================================================
// implicit
// ============================================================

func TestEvaluate_ImplicitRaster(t *testing.T) {
	s, err := series.New(series.Implicit2D, []expr.Expr{expr.Gt(x, y)}, []series.Range{rng("x", -1, 1), rng("y", -1, 1)},
		series.WithN(3))
	require.NoError(t, err)
	assert.False(t, s.IsEquality())
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	assert.False(t, d.Grid.Equality)
	assert.Equal(t, 1.0, d.Grid.Z[2][0])
	assert.Equal(t, 0.0, d.Grid.Z[0][2])
	assert.Equal(t, 0.0, d.Grid.Z[1][1])
}

func TestEvaluate_ImplicitEquality(t *testing.T) {
	circle := expr.Eq(expr.AddOf(expr.PowOf(x, expr.N(2)), expr.PowOf(y, expr.N(2))), expr.N(1))
	s, err := series.New(series.Implicit2D, []expr.Expr{circle}, []series.Range{rng("x", -1, 1), rng("y", -1, 1)},
		series.WithN(3))
	require.NoError(t, err)
	assert.True(t, s.IsEquality())
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	assert.True(t, d.Grid.Equality)
	assert.Equal(t, -1.0, d.Grid.Z[1][1])
	assert.Equal(t, 1.0, d.Grid.Z[0][0])

	// a bare expression is read as expr == 0
	bare, err := series.New(series.Implicit2D, []expr.Expr{expr.AddOf(x, y)}, []series.Range{rng("x", -1, 1), rng("y", -1, 1)})
	require.NoError(t, err)
	assert.True(t, bare.IsEquality())
}

func TestEvaluate_ImplicitAdaptive(t *testing.T) {
	s, err := series.New(series.Implicit2D, []expr.Expr{expr.Gt(x, expr.N(0))}, []series.Range{rng("x", -1, 1), rng("y", -1, 1)},
		series.WithAdaptive(true))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Depth())
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	require.NotEmpty(t, d.Rects)
	var area float64
	for _, r := range d.Rects {
		assert.GreaterOrEqual(t, r.X0, 0.0)
		area += (r.X1 - r.X0) * (r.Y1 - r.Y0)
	}
	assert.InDelta(t, 2.0, area, 1e-9)
}

// ============================================================
// vectors
// ============================================================

func TestEvaluate_Vector2D(t *testing.T) {
	s, err := series.New(series.Vector2D, []expr.Expr{expr.Neg(y), x}, []series.Range{rng("x", -1, 1), rng("y", -1, 1)},
		series.WithN(3), series.WithScale(2))
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	f := d.Field2D
	require.NotNil(t, f)
	assert.Equal(t, 1.0, f.U[0][0])
	assert.Equal(t, -1.0, f.V[0][0])
	assert.InDelta(t, math.Sqrt2, f.Mag[0][0], 1e-12)
	assert.Equal(t, 0.0, f.Mag[1][1])
	assert.Equal(t, 2.0, f.Scale)
}

func TestEvaluate_Vector3D(t *testing.T) {
	s, err := series.New(series.Vector3D, []expr.Expr{x, y, z},
		[]series.Range{rng("x", 0, 1), rng("y", 0, 1), rng("z", 0, 1)}, series.WithN(3))
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	assert.Equal(t, [3]int{3, 3, 3}, d.Field3D.Shape)
	assert.Len(t, d.Field3D.W, 27)
	assert.Equal(t, d.Field3D.Z, d.Field3D.W)
}

func TestEvaluate_Streamlines(t *testing.T) {
	mk := func() *series.Series {
		s, err := series.New(series.Vector2D, []expr.Expr{expr.Neg(y), x}, []series.Range{rng("x", -1, 1), rng("y", -1, 1)},
			series.WithStreamlines(true))
		require.NoError(t, err)
		return s
	}
	d, err := mk().Evaluate(nil)
	require.NoError(t, err)
	require.NotEmpty(t, d.Streams)
	assert.Nil(t, d.Field2D)
	for _, c := range d.Streams {
		require.GreaterOrEqual(t, c.Len(), 2)
		for i := range c.X {
			assert.LessOrEqual(t, math.Abs(c.X[i]), 1.0)
			assert.LessOrEqual(t, math.Abs(c.Y[i]), 1.0)
			assert.Greater(t, c.Param[i], 0.0)
		}
	}
	d2, err := mk().Evaluate(nil)
	require.NoError(t, err)
	assert.Equal(t, d.Streams, d2.Streams)
}

func TestEvaluate_Streamlines3D(t *testing.T) {
	s, err := series.New(series.Vector3D, []expr.Expr{expr.N(1), expr.N(0), expr.N(0)},
		[]series.Range{rng("x", 0, 1), rng("y", 0, 1), rng("z", 0, 1)}, series.WithStreamlines(true))
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	assert.Len(t, d.Streams, 64)
	for _, c := range d.Streams {
		require.NotNil(t, c.Z)
		// flow along x keeps y and z fixed
		assert.Equal(t, c.Y[0], c.Y[c.Len()-1])
		assert.Equal(t, c.Z[0], c.Z[c.Len()-1])
	}
}

// ============================================================
// complex
// ============================================================

func TestEvaluate_ComplexLine(t *testing.T) {
	mk := func(p series.Part) *series.Data {
		s, err := series.New(series.ComplexLine, []expr.Expr{expr.SqrtOf(x)}, []series.Range{rng("x", -4, 4)},
			series.WithN(3), series.WithPart(p))
		require.NoError(t, err)
		d, err := s.Evaluate(nil)
		require.NoError(t, err)
		return d
	}
	re := mk(series.PartReal)
	assert.InDeltaSlice(t, []float64{0, 0, 2}, re.Curve.Y, 1e-12)
	im := mk(series.PartImag)
	assert.InDeltaSlice(t, []float64{2, 0, 0}, im.Curve.Y, 1e-12)
	abs := mk(series.PartAbsArg)
	assert.InDelta(t, 2, abs.Curve.Y[0], 1e-12)
	assert.InDelta(t, math.Pi/2, abs.Curve.Param[0], 1e-12)
}

func TestEvaluate_DomainColoring(t *testing.T) {
	r := series.NewRange("z", expr.MustParse("-1 - I"), expr.MustParse("1 + I"))
	s, err := series.New(series.ComplexDomainColoring, []expr.Expr{z}, []series.Range{r},
		series.WithN(3), series.WithThreeD(true))
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	img := d.Image
	require.NotNil(t, img)
	assert.Equal(t, []float64{-1, 0, 1}, img.Xs)
	assert.Equal(t, 0.0, img.Mag[1][1])
	assert.InDelta(t, math.Sqrt2, img.Mag[2][2], 1e-12)
	assert.InDelta(t, math.Pi/4, img.Arg[2][2], 1e-12)
	assert.Equal(t, [3]uint8{}, img.RGB[1][1])
	require.NotNil(t, d.Grid)
	assert.Equal(t, img.Mag, d.Grid.Z)
}

func TestDomainColor_PhaseBands(t *testing.T) {
	assert.Equal(t, series.DomainColor(1, 0.01, 4), series.DomainColor(1, 0.02, 4))
	assert.NotEqual(t, series.DomainColor(1, 0.01, 4), series.DomainColor(1, 2, 4))
	assert.Equal(t, [3]uint8{}, series.DomainColor(math.NaN(), 0, 4))
}

func TestEvaluate_ComplexPoints(t *testing.T) {
	s, err := series.New(series.ComplexPoints, []expr.Expr{expr.MustParse("1 + 2*I"), expr.N(3)}, nil)
	require.NoError(t, err)
	d, err := s.Evaluate(nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, d.Curve.X)
	assert.Equal(t, []float64{2, 0}, d.Curve.Y)
}

// ============================================================
// geometry
// ============================================================

func TestEvaluate_Geometry(t *testing.T) {
	c, err := series.NewGeometry(geom.Circle{Center: geom.PtF(0, 0), Radius: expr.N(1)})
	require.NoError(t, err)
	assert.Equal(t, "Circle(Point(0, 0), 1)", c.Label())
	d, err := c.Evaluate(nil)
	require.NoError(t, err)
	assert.Len(t, d.Curve.X, 100)
	assert.True(t, d.Closed)
	assert.True(t, d.Filled)

	seg, err := series.NewGeometry(geom.Segment{P1: geom.PtF(0, 0), P2: geom.PtF(1, 1)})
	require.NoError(t, err)
	d, err = seg.Evaluate(nil)
	require.NoError(t, err)
	assert.False(t, d.Filled)

	_, err = series.NewGeometry(geom.Circle{Center: geom.PtF(0, 0), Radius: a})
	assert.ErrorIs(t, err, series.ErrFreeSymbol)

	param, err := series.NewGeometry(geom.Circle{Center: geom.PtF(0, 0), Radius: a}, series.WithInteractive(true),
		series.WithFilled(false))
	require.NoError(t, err)
	d, err = param.Evaluate(map[string]float64{"a": 2})
	require.NoError(t, err)
	assert.InDelta(t, 2, d.Curve.X[0], 1e-12)
	assert.False(t, d.Filled)
}

func TestKinds(t *testing.T) {
	for _, k := range series.AllKinds() {
		got, ok := series.ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	assert.Contains(t, series.KnownKeys(series.Line2D), "adaptive")
	assert.Contains(t, series.KnownKeys(series.Vector2D), "streamlines")
}
