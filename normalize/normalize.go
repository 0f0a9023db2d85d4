// Package normalize turns the loose positional arguments of the plotting
// entry points into canonical series arguments: expressions, ranges, a
// label and rendering options.
package normalize

import (
	"fmt"
	"math"
	"reflect"

	"github.com/njchilds90/gosymplot/expr"
	"github.com/njchilds90/gosymplot/render"
	"github.com/njchilds90/gosymplot/series"
	"github.com/sgostarter/i/commerr"
	"github.com/spf13/cast"
)

var (
	ErrTooManySymbols = fmt.Errorf("normalize: too many free symbols: %w", commerr.ErrInvalidArgument)
	ErrRangeMismatch  = fmt.Errorf("normalize: range symbol not in expression: %w", commerr.ErrInvalidArgument)
	ErrBadArgument    = fmt.Errorf("normalize: unsupported argument: %w", commerr.ErrInvalidArgument)
	ErrExprCount      = fmt.Errorf("normalize: wrong number of expressions: %w", commerr.ErrInvalidArgument)
)

// Range is a range literal with loosely typed parts. Symbol is a string
// or *expr.Sym; bounds are numbers or expressions.
type Range struct {
	Symbol   interface{}
	Min, Max interface{}
}

// R is shorthand for a Range literal.
func R(symbol, min, max interface{}) Range { return Range{Symbol: symbol, Min: min, Max: max} }

// Args is one normalized series argument tuple.
type Args struct {
	Exprs   []expr.Expr
	Ranges  []series.Range
	Label   string
	Options *render.Options
}

// Sympify converts numbers to expressions and range literals to
// series.Range, recursing into []interface{} groups. Strings, option maps
// and expressions pass through untouched.
func Sympify(args ...interface{}) ([]interface{}, error) {
	out := make([]interface{}, len(args))
	for i, a := range args {
		v, err := sympifyOne(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func sympifyOne(a interface{}) (interface{}, error) {
	switch v := a.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrBadArgument)
	case string, expr.Expr, *expr.Matrix, *render.Options, map[string]interface{}, series.Range:
		return v, nil
	case Range:
		return toRange(v.Symbol, v.Min, v.Max)
	case []expr.Expr:
		group := make([]interface{}, len(v))
		for i, e := range v {
			group[i] = e
		}
		return group, nil
	case []interface{}:
		if isRangeTuple(v) {
			return toRange(v[0], v[1], v[2])
		}
		return Sympify(v...)
	}
	return ToExpr(a)
}

// isRangeTuple matches {symbol, bound, bound} with numeric bounds. A
// triple with symbolic bounds, such as (x, y, z) or (t, t^2, t^3), stays
// a group; in a range position asRange still reads it as a range.
func isRangeTuple(v []interface{}) bool {
	_, ok := asRange(v)
	if !ok {
		return false
	}
	for _, b := range v[1:] {
		e, _ := ToExpr(b)
		if len(expr.FreeSymbols(e)) > 0 {
			return false
		}
	}
	return true
}

// asRange reads {symbol, bound, bound} as a range. Bounds must be
// numbers or expressions free of the range symbol.
func asRange(v []interface{}) (series.Range, bool) {
	if len(v) != 3 {
		return series.Range{}, false
	}
	sym, ok := v[0].(*expr.Sym)
	if !ok {
		return series.Range{}, false
	}
	for _, b := range v[1:] {
		if _, ok := b.(string); ok {
			return series.Range{}, false
		}
		e, err := ToExpr(b)
		if err != nil || expr.HasSymbol(e, sym.Name()) {
			return series.Range{}, false
		}
	}
	r, err := toRange(v[0], v[1], v[2])
	return r, err == nil
}

func toRange(sym, lo, hi interface{}) (series.Range, error) {
	var name string
	switch s := sym.(type) {
	case string:
		name = s
	case *expr.Sym:
		name = s.Name()
	default:
		return series.Range{}, fmt.Errorf("%w: range symbol %v", ErrBadArgument, sym)
	}
	min, err := ToExpr(lo)
	if err != nil {
		return series.Range{}, err
	}
	max, err := ToExpr(hi)
	if err != nil {
		return series.Range{}, err
	}
	return series.NewRange(name, min, max), nil
}

// ToExpr converts numbers of any Go numeric kind, complex numbers and
// expressions to an expression. Integral values stay exact.
func ToExpr(a interface{}) (expr.Expr, error) {
	switch v := a.(type) {
	case expr.Expr:
		return v, nil
	case complex128:
		return complexExpr(v), nil
	case complex64:
		return complexExpr(complex128(v)), nil
	case bool, string, nil:
		return nil, fmt.Errorf("%w: %v", ErrBadArgument, a)
	}
	switch reflect.ValueOf(a).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
	default:
		return nil, fmt.Errorf("%w: %T", ErrBadArgument, a)
	}
	f, err := cast.ToFloat64E(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	return floatExpr(f), nil
}

func floatExpr(f float64) expr.Expr {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return expr.N(int64(f))
	}
	return expr.NFloat(f)
}

func complexExpr(z complex128) expr.Expr {
	if imag(z) == 0 {
		return floatExpr(real(z))
	}
	return expr.AddOf(floatExpr(real(z)), expr.MulOf(floatExpr(imag(z)), expr.I))
}
