package expr

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strings"
)

// ============================================================
// Numeric compilation
// ============================================================

// RealFunc evaluates a compiled expression. args follow the order of the
// vars slice given to Compile. A RealFunc never panics; failures at a point
// (domain errors, division by zero, overflow) yield NaN.
type RealFunc func(args []float64) float64

// ComplexFunc is the complex counterpart of RealFunc.
type ComplexFunc func(args []complex128) complex128

// imagTolerance decides when a complex intermediate result counts as real.
const imagTolerance = 1e-12

type realNode func(args []float64) float64
type complexNode func(args []complex128) complex128

var realFuncs = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"exp":   math.Exp,
	"ln":    math.Log,
	"abs":   math.Abs,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"sign": func(v float64) float64 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		case v == 0:
			return 0
		}
		return math.NaN()
	},
	"re":        func(v float64) float64 { return v },
	"im":        func(float64) float64 { return 0 },
	"conjugate": func(v float64) float64 { return v },
	"arg": func(v float64) float64 {
		if math.IsNaN(v) {
			return v
		}
		return math.Atan2(0, v)
	},
}

var complexFuncs = map[string]func(complex128) complex128{
	"sin":   cmplx.Sin,
	"cos":   cmplx.Cos,
	"tan":   cmplx.Tan,
	"exp":   cmplx.Exp,
	"ln":    cmplx.Log,
	"asin":  cmplx.Asin,
	"acos":  cmplx.Acos,
	"atan":  cmplx.Atan,
	"sinh":  cmplx.Sinh,
	"cosh":  cmplx.Cosh,
	"tanh":  cmplx.Tanh,
	"abs":   func(z complex128) complex128 { return complex(cmplx.Abs(z), 0) },
	"floor": func(z complex128) complex128 { return complex(math.Floor(real(z)), math.Floor(imag(z))) },
	"ceil":  func(z complex128) complex128 { return complex(math.Ceil(real(z)), math.Ceil(imag(z))) },
	"sign": func(z complex128) complex128 {
		if z == 0 {
			return 0
		}
		return z / complex(cmplx.Abs(z), 0)
	},
	"re":        func(z complex128) complex128 { return complex(real(z), 0) },
	"im":        func(z complex128) complex128 { return complex(imag(z), 0) },
	"arg":       func(z complex128) complex128 { return complex(cmplx.Phase(z), 0) },
	"conjugate": cmplx.Conj,
}

// Compile turns e into a real-valued closure over vars. Relations and
// logical combinations evaluate to 1 (true) or 0 (false). Expressions
// containing the imaginary unit are evaluated in complex arithmetic and
// yield NaN wherever the result has a non-negligible imaginary part.
func Compile(e Expr, vars []string) (RealFunc, error) {
	if err := checkBound(e, vars); err != nil {
		return nil, err
	}
	index := indexOf(vars)
	if HasImaginary(e) {
		c, err := buildComplex(e, index)
		if err != nil {
			return nil, err
		}
		return func(args []float64) (out float64) {
			defer func() {
				if recover() != nil {
					out = math.NaN()
				}
			}()
			z := make([]complex128, len(args))
			for i, a := range args {
				z[i] = complex(a, 0)
			}
			return realPart(c(z))
		}, nil
	}
	r, err := buildReal(e, index)
	if err != nil {
		return nil, err
	}
	return func(args []float64) (out float64) {
		defer func() {
			if recover() != nil {
				out = math.NaN()
			}
		}()
		return finite(r(args))
	}, nil
}

// CompileComplex turns e into a complex-valued closure over vars.
// Non-finite components become NaN.
func CompileComplex(e Expr, vars []string) (ComplexFunc, error) {
	if err := checkBound(e, vars); err != nil {
		return nil, err
	}
	c, err := buildComplex(e, indexOf(vars))
	if err != nil {
		return nil, err
	}
	return func(args []complex128) (out complex128) {
		defer func() {
			if recover() != nil {
				out = cmplx.NaN()
			}
		}()
		z := c(args)
		if cmplx.IsInf(z) || cmplx.IsNaN(z) {
			return complex(math.NaN(), math.NaN())
		}
		return z
	}, nil
}

// EvalFloat evaluates e with the given symbol values.
func EvalFloat(e Expr, values map[string]float64) (float64, error) {
	vars, args := flatten(values)
	f, err := Compile(e, vars)
	if err != nil {
		return math.NaN(), err
	}
	return f(args), nil
}

// EvalComplex evaluates e with the given real symbol values.
func EvalComplex(e Expr, values map[string]float64) (complex128, error) {
	vars, args := flatten(values)
	f, err := CompileComplex(e, vars)
	if err != nil {
		return cmplx.NaN(), err
	}
	z := make([]complex128, len(args))
	for i, a := range args {
		z[i] = complex(a, 0)
	}
	return f(z), nil
}

func flatten(values map[string]float64) ([]string, []float64) {
	vars := make([]string, 0, len(values))
	for k := range values {
		vars = append(vars, k)
	}
	sort.Strings(vars)
	args := make([]float64, len(vars))
	for i, k := range vars {
		args[i] = values[k]
	}
	return vars, args
}

func checkBound(e Expr, vars []string) error {
	index := indexOf(vars)
	var missing []string
	for _, s := range SortedSymbols(e) {
		if _, ok := index[s]; !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s in %s", ErrUnboundSymbol, strings.Join(missing, ", "), e.String())
	}
	return nil
}

func indexOf(vars []string) map[string]int {
	index := make(map[string]int, len(vars))
	for i, v := range vars {
		index[v] = i
	}
	return index
}

func finite(v float64) float64 {
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func realPart(z complex128) float64 {
	re, im := real(z), imag(z)
	if math.IsNaN(re) || math.IsNaN(im) || math.IsInf(re, 0) || math.IsInf(im, 0) {
		return math.NaN()
	}
	if math.Abs(im) > imagTolerance*math.Max(1, math.Abs(re)) {
		return math.NaN()
	}
	return re
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func buildReal(e Expr, index map[string]int) (realNode, error) {
	switch v := e.(type) {
	case *Num:
		f := v.Float64()
		return func([]float64) float64 { return f }, nil
	case *Sym:
		i := index[v.name]
		return func(args []float64) float64 { return args[i] }, nil
	case *Const:
		var f float64
		switch v.name {
		case "pi":
			f = math.Pi
		case "E":
			f = math.E
		default:
			return nil, fmt.Errorf("%w: %s in real context", ErrNotNumeric, v.name)
		}
		return func([]float64) float64 { return f }, nil
	case *Add:
		terms, err := buildRealSlice(v.terms, index)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 {
			s := 0.0
			for _, t := range terms {
				s += t(args)
			}
			return s
		}, nil
	case *Mul:
		factors, err := buildRealSlice(v.factors, index)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 {
			p := 1.0
			for _, f := range factors {
				p *= f(args)
			}
			return p
		}, nil
	case *Pow:
		base, err := buildReal(v.base, index)
		if err != nil {
			return nil, err
		}
		if en, ok := v.exp.(*Num); ok {
			ef := en.Float64()
			if en.Equal(F(1, 2)) {
				return func(args []float64) float64 { return math.Sqrt(base(args)) }, nil
			}
			if en.IsNegOne() {
				return func(args []float64) float64 {
					b := base(args)
					if b == 0 {
						return math.NaN()
					}
					return 1 / b
				}, nil
			}
			return func(args []float64) float64 { return realPow(base(args), ef) }, nil
		}
		exp, err := buildReal(v.exp, index)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 { return realPow(base(args), exp(args)) }, nil
	case *Func:
		fn, ok := realFuncs[v.name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown function %s", ErrNotNumeric, v.name)
		}
		arg, err := buildReal(v.arg, index)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 { return fn(arg(args)) }, nil
	case *Rel:
		lhs, err := buildReal(v.lhs, index)
		if err != nil {
			return nil, err
		}
		rhs, err := buildReal(v.rhs, index)
		if err != nil {
			return nil, err
		}
		var cmp func(a, b float64) bool
		switch v.op {
		case ">":
			cmp = func(a, b float64) bool { return a > b }
		case "<":
			cmp = func(a, b float64) bool { return a < b }
		case ">=":
			cmp = func(a, b float64) bool { return a >= b }
		case "<=":
			cmp = func(a, b float64) bool { return a <= b }
		default:
			cmp = func(a, b float64) bool { return a == b }
		}
		return func(args []float64) float64 { return boolFloat(cmp(lhs(args), rhs(args))) }, nil
	case *Logic:
		parts, err := buildRealSlice(v.args, index)
		if err != nil {
			return nil, err
		}
		switch v.op {
		case "not":
			return func(args []float64) float64 { return boolFloat(parts[0](args) == 0) }, nil
		case "or":
			return func(args []float64) float64 {
				for _, p := range parts {
					if p(args) != 0 {
						return 1
					}
				}
				return 0
			}, nil
		}
		return func(args []float64) float64 {
			for _, p := range parts {
				if p(args) == 0 {
					return 0
				}
			}
			return 1
		}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotNumeric, e)
}

func buildRealSlice(es []Expr, index map[string]int) ([]realNode, error) {
	out := make([]realNode, len(es))
	for i, e := range es {
		n, err := buildReal(e, index)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// realPow follows real-root conventions: a negative base with a
// non-integer exponent has no real value.
func realPow(b, e float64) float64 {
	if b == 0 && e < 0 {
		return math.NaN()
	}
	return math.Pow(b, e)
}

func buildComplex(e Expr, index map[string]int) (complexNode, error) {
	switch v := e.(type) {
	case *Num:
		z := complex(v.Float64(), 0)
		return func([]complex128) complex128 { return z }, nil
	case *Sym:
		i := index[v.name]
		return func(args []complex128) complex128 { return args[i] }, nil
	case *Const:
		var z complex128
		switch v.name {
		case "pi":
			z = complex(math.Pi, 0)
		case "E":
			z = complex(math.E, 0)
		default:
			z = complex(0, 1)
		}
		return func([]complex128) complex128 { return z }, nil
	case *Add:
		terms, err := buildComplexSlice(v.terms, index)
		if err != nil {
			return nil, err
		}
		return func(args []complex128) complex128 {
			var s complex128
			for _, t := range terms {
				s += t(args)
			}
			return s
		}, nil
	case *Mul:
		factors, err := buildComplexSlice(v.factors, index)
		if err != nil {
			return nil, err
		}
		return func(args []complex128) complex128 {
			p := complex(1, 0)
			for _, f := range factors {
				p *= f(args)
			}
			return p
		}, nil
	case *Pow:
		base, err := buildComplex(v.base, index)
		if err != nil {
			return nil, err
		}
		if en, ok := v.exp.(*Num); ok && en.IsInteger() {
			k := en.Float64()
			return func(args []complex128) complex128 { return complexIntPow(base(args), int(k)) }, nil
		}
		exp, err := buildComplex(v.exp, index)
		if err != nil {
			return nil, err
		}
		return func(args []complex128) complex128 {
			b, x := base(args), exp(args)
			if b == 0 {
				if real(x) > 0 {
					return 0
				}
				return cmplx.NaN()
			}
			return cmplx.Pow(b, x)
		}, nil
	case *Func:
		fn, ok := complexFuncs[v.name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown function %s", ErrNotNumeric, v.name)
		}
		arg, err := buildComplex(v.arg, index)
		if err != nil {
			return nil, err
		}
		return func(args []complex128) complex128 { return fn(arg(args)) }, nil
	case *Rel, *Logic:
		// comparisons are taken on real parts
		r, err := buildReal(e, map[string]int{})
		if err == nil && len(FreeSymbols(e)) == 0 {
			f := r(nil)
			return func([]complex128) complex128 { return complex(f, 0) }, nil
		}
		return nil, fmt.Errorf("%w: boolean expression in complex context", ErrNotNumeric)
	}
	return nil, fmt.Errorf("%w: %T", ErrNotNumeric, e)
}

func buildComplexSlice(es []Expr, index map[string]int) ([]complexNode, error) {
	out := make([]complexNode, len(es))
	for i, e := range es {
		n, err := buildComplex(e, index)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func complexIntPow(b complex128, k int) complex128 {
	if k < 0 {
		if b == 0 {
			return cmplx.NaN()
		}
		return 1 / complexIntPow(b, -k)
	}
	r := complex(1, 0)
	for k > 0 {
		if k&1 == 1 {
			r *= b
		}
		b *= b
		k >>= 1
	}
	return r
}
