package plotly

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"github.com/njchilds90/gosymplot/backend"
	"github.com/njchilds90/gosymplot/expr"
	"github.com/njchilds90/gosymplot/render"
	"github.com/njchilds90/gosymplot/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, ss ...*series.Series) *backend.Document {
	t.Helper()
	d := &backend.Document{Series: ss}
	for _, s := range ss {
		data, err := s.Evaluate(nil)
		require.NoError(t, err)
		d.Data = append(d.Data, data)
	}
	return d
}

func mustNew(t *testing.T, kind series.Kind, exprs []string, ranges []series.Range, opts ...series.Option) *series.Series {
	t.Helper()
	es := make([]expr.Expr, len(exprs))
	for i, e := range exprs {
		es[i] = expr.MustParse(e)
	}
	s, err := series.New(kind, es, ranges, opts...)
	require.NoError(t, err)
	return s
}

func lines(t *testing.T, exprs ...string) []*series.Series {
	var out []*series.Series
	for _, e := range exprs {
		out = append(out, mustNew(t, series.Line2D, []string{e}, []series.Range{series.RangeF("x", -5, 5)},
			series.WithN(20), series.WithAdaptive(false)))
	}
	return out
}

func lineColors(fig *grob.Fig) map[interface{}]struct{} {
	out := map[interface{}]struct{}{}
	for _, tr := range fig.Data {
		if sc, ok := tr.(*grob.Scatter); ok && sc.Line != nil {
			out[sc.Line.Color] = struct{}{}
		}
	}
	return out
}

func TestProcess_ColorLoop(t *testing.T) {
	ss := lines(t, "x", "x + 1", "x + 2", "x + 3", "x + 4", "x + 5")

	b := New()
	require.NoError(t, b.Process(doc(t, ss...)))
	fig := b.Fig().(*grob.Fig)
	require.Len(t, fig.Data, 6)
	assert.Len(t, lineColors(fig), 6)

	child := New(backend.WithColors("red", "green", "blue"))
	require.NoError(t, child.Process(doc(t, ss...)))
	assert.Len(t, lineColors(child.Fig().(*grob.Fig)), 3)
}

func TestProcess_LineKWOverrides(t *testing.T) {
	s := mustNew(t, series.Line2D, []string{"x"}, []series.Range{series.RangeF("x", 0, 1)},
		series.WithRenderingKW(render.NewOptions("line_kw", map[string]interface{}{"color": "red", "width": 4})))
	b := New()
	require.NoError(t, b.Process(doc(t, s)))
	sc := b.Fig().(*grob.Fig).Data[0].(*grob.Scatter)
	assert.Equal(t, grob.Color("red"), sc.Line.Color)
	assert.Equal(t, "x", sc.Name)
}

func TestShow_JSON(t *testing.T) {
	b := New()
	var buf bytes.Buffer
	assert.Error(t, b.Show(&buf))

	s := mustNew(t, series.Line2D, []string{"log(x)"}, []series.Range{series.RangeF("x", -1, 1)},
		series.WithN(3), series.WithAdaptive(false))
	d := doc(t, s)
	d.Settings = render.Settings{Title: "logs", XScale: "log", XLim: render.Lim(0.1, 1)}
	require.NoError(t, b.Process(d))
	require.NoError(t, b.Show(&buf))

	var out struct {
		Data []struct {
			Y []interface{} `json:"y"`
		} `json:"data"`
		Layout map[string]interface{} `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Data, 1)
	// log(-1) is undefined and becomes a gap
	assert.Nil(t, out.Data[0].Y[0])
	assert.Equal(t, 0.0, out.Data[0].Y[2])
	assert.NotNil(t, out.Layout["title"])
}

func TestProcess_AllKinds(t *testing.T) {
	xy := []series.Range{series.RangeF("x", -2, 2), series.RangeF("y", -2, 2)}
	xyz := append(xy, series.RangeF("z", -2, 2))
	ss := []*series.Series{
		mustNew(t, series.Parametric3D, []string{"cos(t)", "sin(t)", "t"}, []series.Range{series.RangeF("t", 0, 6)},
			series.WithUseCM(true), series.WithN(10), series.WithAdaptive(false)),
		mustNew(t, series.Surface, []string{"x*y"}, xy, series.WithN(5, 5)),
		mustNew(t, series.ParametricSurface, []string{"u", "v", "u*v"},
			[]series.Range{series.RangeF("u", 0, 1), series.RangeF("v", 0, 1)}, series.WithN(4, 4)),
		mustNew(t, series.Contour, []string{"x*y"}, xy, series.WithN(5, 5)),
		mustNew(t, series.Implicit2D, []string{"x > y"}, xy, series.WithN(5, 5)),
		mustNew(t, series.Implicit2D, []string{"x > y"}, xy, series.WithAdaptive(true), series.WithDepth(0)),
		mustNew(t, series.Implicit2D, []string{"x == y"}, xy, series.WithN(5, 5)),
		mustNew(t, series.Vector2D, []string{"-y", "x"}, xy, series.WithN(4, 4)),
		mustNew(t, series.Vector2D, []string{"-y", "x"}, xy, series.WithStreamlines(true)),
		mustNew(t, series.Vector3D, []string{"-y", "x", "z"}, xyz, series.WithN(3, 3, 3)),
		mustNew(t, series.Vector3D, []string{"-y", "x", "1"}, xyz, series.WithStreamlines(true)),
		mustNew(t, series.ComplexDomainColoring, []string{"z"},
			[]series.Range{series.NewRange("z", expr.MustParse("-1 - I"), expr.MustParse("1 + I"))},
			series.WithN(4, 4), series.WithThreeD(true)),
		mustNew(t, series.ComplexPoints, []string{"1 + I", "2"}, nil),
	}
	b := New()
	require.NoError(t, b.Process(doc(t, ss...)))
	for i := range ss {
		assert.Equal(t, 1, b.TraceCount(i), "series %d", i)
	}
	fig := b.Fig().(*grob.Fig)
	assert.IsType(t, &grob.Scatter3d{}, fig.Data[0])
	assert.IsType(t, &grob.Surface{}, fig.Data[1])
	assert.IsType(t, &grob.Heatmap{}, fig.Data[4])
	assert.IsType(t, &grob.Contour{}, fig.Data[6])
	assert.IsType(t, &grob.Cone{}, fig.Data[9])
	assert.IsType(t, &grob.Scatter3d{}, fig.Data[10])

	var buf bytes.Buffer
	require.NoError(t, b.Show(&buf))
	assert.True(t, json.Valid(buf.Bytes()))
}

func TestUpdate_ReplacesOnlyIndices(t *testing.T) {
	b := New()
	d := doc(t, lines(t, "x", "x^2")...)
	require.NoError(t, b.Update(d, nil))
	first := b.Fig().(*grob.Fig).Data[0]
	second := b.Fig().(*grob.Fig).Data[1]

	require.NoError(t, b.Update(d, []int{1}))
	fig := b.Fig().(*grob.Fig)
	assert.Same(t, first, fig.Data[0])
	assert.NotSame(t, second, fig.Data[1])
	assert.Error(t, b.Update(d, []int{-1}))
}

func TestPhaseScale(t *testing.T) {
	s := phaseScale(4)
	require.Len(t, s, 5)
	assert.Equal(t, 0.0, s[0][0])
	assert.Equal(t, 1.0, s[4][0])
}

func TestValues(t *testing.T) {
	v := values([]float64{1, math.NaN(), math.Inf(-1)})
	assert.Equal(t, []interface{}{1.0, nil, nil}, v)
	assert.Nil(t, values(nil))
}
