package ascii

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

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

func line(t *testing.T, e string, lo, hi float64) *series.Series {
	t.Helper()
	s, err := series.New(series.Line2D, []expr.Expr{expr.MustParse(e)},
		[]series.Range{series.RangeF("x", lo, hi)}, series.WithN(40), series.WithAdaptive(false))
	require.NoError(t, err)
	return s
}

func TestProcess_Draws(t *testing.T) {
	b := New(backend.WithSize(40, 10))
	assert.Nil(t, b.Fig())
	d := doc(t, line(t, "sin(x)", -3, 3), line(t, "cos(x)", -3, 3))
	d.Settings = render.Settings{Title: "waves"}
	require.NoError(t, b.Process(d))

	out, ok := b.Fig().(string)
	require.True(t, ok)
	assert.Contains(t, out, "waves")
	assert.Contains(t, out, "sin(x)")
	assert.Len(t, b.columns, 40)

	var buf bytes.Buffer
	require.NoError(t, b.Show(&buf))
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestProcess_Unsupported(t *testing.T) {
	s, err := series.New(series.Parametric2D, []expr.Expr{expr.S("t"), expr.S("t")},
		[]series.Range{series.RangeF("t", 0, 1)})
	require.NoError(t, err)
	assert.True(t, errors.Is(New().Process(doc(t, s)), backend.ErrNotImplemented))
}

func TestProcess_NothingFinite(t *testing.T) {
	b := New()
	err := b.Process(doc(t, line(t, "log(x)", -2, -1)))
	assert.Error(t, err)
	assert.Nil(t, b.Fig())
}

func TestColumns_UnionOfExtents(t *testing.T) {
	d := doc(t, line(t, "x", 0, 1), line(t, "x", 2, 4))
	cols := columns(d, 5)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, cols)

	d.Settings.XLim = render.Lim(1, 100)
	d.Settings.XScale = "log"
	cols = columns(d, 3)
	assert.InDelta(t, 10, cols[1], 1e-9)
}

func TestResample(t *testing.T) {
	nan := math.NaN()
	row := resample([]float64{0, 1, 2, 3}, []float64{0, 10, nan, 30}, []float64{-1, 0, 0.5, 1, 1.5, 3, 4})
	assert.True(t, math.IsNaN(row[0]))
	assert.Equal(t, 0.0, row[1])
	assert.Equal(t, 5.0, row[2])
	assert.Equal(t, 10.0, row[3])
	assert.True(t, math.IsNaN(row[4]))
	assert.Equal(t, 30.0, row[5])
	assert.True(t, math.IsNaN(row[6]))
	assert.True(t, math.IsNaN(finite(math.Inf(1))))
}

func TestUpdate(t *testing.T) {
	b := New(backend.WithSize(20, 5))
	d := doc(t, line(t, "x", 0, 1), line(t, "x^2", 0, 1))
	require.NoError(t, b.Update(d, nil))
	first := b.rows[0]

	require.NoError(t, b.Update(d, []int{1}))
	assert.Same(t, &first[0], &b.rows[0][0])
	assert.Error(t, b.Update(d, []int{3}))

	// a new extent moves the columns and redraws everything
	d2 := doc(t, line(t, "x", 0, 2), line(t, "x^2", 0, 1))
	require.NoError(t, b.Update(d2, []int{0}))
	assert.Equal(t, 2.0, b.columns[len(b.columns)-1])
	assert.NotSame(t, &first[0], &b.rows[0][0])
}
