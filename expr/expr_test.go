package expr_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/njchilds90/gosymplot/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	x = expr.S("x")
	y = expr.S("y")
)

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	assert.Equal(t, "42", expr.N(42).String())
}

func TestNum_Rational(t *testing.T) {
	assert.Equal(t, "1/3", expr.F(1, 3).String())
	assert.Equal(t, `\frac{2}{5}`, expr.F(2, 5).LaTeX())
	assert.Equal(t, `-\frac{2}{5}`, expr.F(-2, 5).LaTeX())
}

func TestNum_FloatPrintsShort(t *testing.T) {
	assert.Equal(t, "0.1", expr.NFloat(0.1).String())
	assert.Equal(t, "1/2", expr.NFloat(0.5).String())
}

// ============================================================
// Add / Mul / Pow tests
// ============================================================

func TestAdd_CollectsLikeTerms(t *testing.T) {
	assert.Equal(t, "2*x", expr.AddOf(x, x).String())
	assert.Equal(t, "0", expr.AddOf(x, expr.Neg(x)).String())
}

func TestAdd_NumberLast(t *testing.T) {
	assert.Equal(t, "x + 3", expr.AddOf(expr.N(3), x).String())
}

func TestAdd_NegativeTermsPrintMinus(t *testing.T) {
	assert.Equal(t, "x - y", expr.AddOf(x, expr.Neg(y)).String())
	assert.Equal(t, "x - 1", expr.AddOf(x, expr.N(-1)).String())
}

func TestMul_Coefficients(t *testing.T) {
	assert.Equal(t, "6*x", expr.MulOf(expr.N(2), x, expr.N(3)).String())
	assert.Equal(t, "0", expr.MulOf(expr.N(0), x).String())
	assert.Equal(t, "-x", expr.Neg(x).String())
	assert.Equal(t, "2*pi", expr.MulOf(expr.N(2), expr.Pi).String())
}

func TestMul_DivisionPrintsSlash(t *testing.T) {
	assert.Equal(t, "x/y", expr.Div(x, y).String())
	assert.Equal(t, "1/x", expr.Div(expr.N(1), x).String())
}

func TestPow_Rules(t *testing.T) {
	assert.Equal(t, "x^2", expr.PowOf(x, expr.N(2)).String())
	assert.Equal(t, "x", expr.PowOf(x, expr.N(1)).String())
	assert.Equal(t, "1", expr.PowOf(x, expr.N(0)).String())
	assert.Equal(t, "8", expr.PowOf(expr.N(2), expr.N(3)).String())
	assert.Equal(t, "1/4", expr.PowOf(expr.N(2), expr.N(-2)).String())
	assert.Equal(t, "sqrt(x)", expr.SqrtOf(x).String())
	assert.Equal(t, `\sqrt{x}`, expr.SqrtOf(x).LaTeX())
}

func TestSub_ReplacesSymbol(t *testing.T) {
	e := expr.AddOf(expr.PowOf(x, expr.N(2)), y)
	got := expr.Subs(e, map[string]expr.Expr{"x": expr.N(3), "y": expr.N(1)})
	assert.Equal(t, "10", got.String())
}

func TestEqual(t *testing.T) {
	assert.True(t, expr.AddOf(x, y).Equal(expr.AddOf(y, x)))
	assert.False(t, expr.AddOf(x, y).Equal(expr.AddOf(x, expr.N(1))))
}

// ============================================================
// Func tests
// ============================================================

func TestFunc_Identities(t *testing.T) {
	assert.Equal(t, "0", expr.SinOf(expr.N(0)).String())
	assert.Equal(t, "1", expr.CosOf(expr.N(0)).String())
	assert.Equal(t, "x", expr.LnOf(expr.ExpOf(x)).String())
	assert.Equal(t, "abs(x)", expr.AbsOf(expr.Neg(x)).String())
	assert.Equal(t, "3", expr.AbsOf(expr.N(-3)).String())
	assert.Equal(t, "-2", expr.FloorOf(expr.F(-3, 2)).String())
	assert.Equal(t, "2", expr.CeilOf(expr.F(3, 2)).String())
}

func TestFunc_TranscendentalStaysSymbolic(t *testing.T) {
	assert.Equal(t, "sin(2)", expr.SinOf(expr.N(2)).String())
}

func TestFuncOf_Unknown(t *testing.T) {
	_, ok := expr.FuncOf("nope", x)
	assert.False(t, ok)
	f, ok := expr.FuncOf("log", x)
	require.True(t, ok)
	assert.Equal(t, "ln(x)", f.String())
}

func TestFunc_LaTeX(t *testing.T) {
	assert.Equal(t, `\sin\left(x\right)`, expr.SinOf(x).LaTeX())
	assert.Equal(t, `\left|x\right|`, expr.AbsOf(x).LaTeX())
	assert.Equal(t, `\alpha`, expr.S("alpha").LaTeX())
	assert.Equal(t, `x_{1}`, expr.S("x_1").LaTeX())
}

// ============================================================
// Free symbols
// ============================================================

func TestSortedSymbols(t *testing.T) {
	e := expr.MulOf(expr.S("b"), expr.SinOf(expr.S("a")), x)
	assert.Equal(t, []string{"a", "b", "x"}, expr.SortedSymbols(e))
	assert.Equal(t, []string{"a", "b", "x", "y"}, expr.SortedSymbols(e, y))
	assert.Empty(t, expr.SortedSymbols(expr.Pi))
}

func TestFreeSymbols_Relations(t *testing.T) {
	e := expr.And(expr.Gt(x, expr.N(0)), expr.Lt(y, expr.N(1)))
	assert.Len(t, expr.FreeSymbols(e), 2)
	assert.True(t, expr.HasSymbol(e, "y"))
	assert.False(t, expr.HasImaginary(e))
	assert.True(t, expr.HasImaginary(expr.MulOf(expr.I, x)))
}

// ============================================================
// Compile tests
// ============================================================

func TestCompile_Polynomial(t *testing.T) {
	f, err := expr.Compile(expr.AddOf(expr.PowOf(x, expr.N(2)), expr.MulOf(expr.N(2), y)), []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, 13.0, f([]float64{3, 2}))
}

func TestCompile_DomainErrorsAreNaN(t *testing.T) {
	inv, err := expr.Compile(expr.Div(expr.N(1), x), []string{"x"})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(inv([]float64{0})))
	assert.Equal(t, 0.5, inv([]float64{2}))

	ln, err := expr.Compile(expr.LnOf(x), []string{"x"})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(ln([]float64{-1})))

	sq, err := expr.Compile(expr.SqrtOf(x), []string{"x"})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(sq([]float64{-4})))
	assert.Equal(t, 2.0, sq([]float64{4}))
}

func TestCompile_OverflowIsNaN(t *testing.T) {
	f, err := expr.Compile(expr.ExpOf(x), []string{"x"})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f([]float64{1000})))
}

func TestCompile_UnboundSymbol(t *testing.T) {
	_, err := expr.Compile(expr.AddOf(x, y), []string{"x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, expr.ErrUnboundSymbol))
}

func TestCompile_RelationsAreZeroOne(t *testing.T) {
	f, err := expr.Compile(expr.And(expr.Gt(x, expr.N(0)), expr.Le(y, expr.N(1))), []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, f([]float64{1, 1}))
	assert.Equal(t, 0.0, f([]float64{-1, 1}))

	g, err := expr.Compile(expr.Not(expr.Gt(x, expr.N(0))), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, g([]float64{-1}))
}

func TestCompile_ImaginaryIntermediate(t *testing.T) {
	// I^2 is real
	f, err := expr.Compile(expr.MulOf(expr.PowOf(expr.I, expr.N(2)), x), []string{"x"})
	require.NoError(t, err)
	assert.InDelta(t, -3.0, f([]float64{3}), 1e-12)

	g, err := expr.Compile(expr.ExpOf(expr.MulOf(expr.I, x)), []string{"x"})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(g([]float64{1})))

	h, err := expr.Compile(expr.ReOf(expr.ExpOf(expr.MulOf(expr.I, x))), []string{"x"})
	require.NoError(t, err)
	assert.InDelta(t, math.Cos(1), h([]float64{1}), 1e-12)
}

func TestCompileComplex(t *testing.T) {
	z := expr.S("z")
	f, err := expr.CompileComplex(expr.PowOf(z, expr.N(2)), []string{"z"})
	require.NoError(t, err)
	got := f([]complex128{complex(1, 1)})
	assert.InDelta(t, 0.0, real(got), 1e-12)
	assert.InDelta(t, 2.0, imag(got), 1e-12)

	inv, err := expr.CompileComplex(expr.Div(expr.N(1), z), []string{"z"})
	require.NoError(t, err)
	got = inv([]complex128{0})
	assert.True(t, math.IsNaN(real(got)))
}

func TestEvalFloat(t *testing.T) {
	v, err := expr.EvalFloat(expr.MulOf(expr.N(2), expr.Pi), nil)
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Pi, v, 1e-15)

	v, err = expr.EvalFloat(expr.AddOf(x, expr.N(1)), map[string]float64{"x": 2})
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

// ============================================================
// Parse tests
// ============================================================

func TestParse_Precedence(t *testing.T) {
	cases := map[string]string{
		"x^2":           "x^2",
		"x**2":          "x^2",
		"-x^2":          "-x^2",
		"2x":            "2*x",
		"3(x+1)":        "3*(x + 1)",
		"x/y":           "x/y",
		"0.5":           "1/2",
		"sin(x)":        "sin(x)",
		"log(x)":        "ln(x)",
		"sqrt(x)":       "sqrt(x)",
		"x - y":         "x - y",
		"2^-1":          "1/2",
		"x > 0 & y < 1": "(x > 0) & (y < 1)",
	}
	for src, want := range cases {
		e, err := expr.Parse(src)
		require.NoError(t, err, src)
		assert.Equal(t, want, e.String(), src)
	}
}

func TestParse_Constants(t *testing.T) {
	e, err := expr.Parse("exp(I*pi)")
	require.NoError(t, err)
	assert.True(t, expr.HasImaginary(e))
	v, err := expr.EvalComplex(e, nil)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, real(v), 1e-12)
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{"", "x +", "(x", "foo(x)", "x $ y", "x != y"} {
		_, err := expr.Parse(src)
		assert.True(t, errors.Is(err, expr.ErrParse), src)
	}
}

// ============================================================
// JSON Serialization tests
// ============================================================

func TestFromJSON_RoundTrip(t *testing.T) {
	for _, src := range []string{"x^2 + sin(y) - 1", "x > 0 | ~(y <= 1)", "exp(I*x)", "x == 2*y"} {
		original := expr.MustParse(src)
		j, err := expr.ToJSON(original)
		require.NoError(t, err)
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(j), &m))
		back, err := expr.FromJSON(m)
		require.NoError(t, err)
		assert.True(t, original.Equal(back), "%s != %s", original, back)
	}
}

func TestFromJSON_Errors(t *testing.T) {
	_, err := expr.FromJSON(map[string]interface{}{"type": "pow", "base": map[string]interface{}{"type": "sym", "name": "x"}})
	assert.Error(t, err)
	_, err = expr.FromJSON(map[string]interface{}{"type": "func", "name": "nope", "arg": map[string]interface{}{"type": "sym", "name": "x"}})
	assert.Error(t, err)
	_, err = expr.FromJSON(map[string]interface{}{"type": "bogus"})
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	e, err := expr.Decode("x + 1")
	require.NoError(t, err)
	assert.Equal(t, "x + 1", e.String())
	e, err = expr.Decode(2.5)
	require.NoError(t, err)
	assert.Equal(t, "5/2", e.String())
	_, err = expr.Decode(true)
	assert.Error(t, err)
}

// ============================================================
// Matrix tests
// ============================================================

func TestVector(t *testing.T) {
	v := expr.Vector(x, y)
	assert.Equal(t, 2, v.Rows())
	assert.Equal(t, 1, v.Cols())
	assert.Equal(t, "[[x], [y]]", v.String())
	assert.Len(t, v.Elements(), 2)
}
