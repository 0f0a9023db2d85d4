package series

import (
	"fmt"
	"math"
	"sort"

	"github.com/njchilds90/gosymplot/expr"
)

// Range is a sampling domain for one symbol. Bounds may reference
// parameters and, for domain coloring, the imaginary unit.
type Range struct {
	Symbol   string
	Min, Max expr.Expr
}

func NewRange(symbol string, min, max expr.Expr) Range {
	return Range{Symbol: symbol, Min: min, Max: max}
}

// RangeF builds a range with float bounds.
func RangeF(symbol string, min, max float64) Range {
	return Range{Symbol: symbol, Min: expr.NFloat(min), Max: expr.NFloat(max)}
}

// DefaultRange is (symbol, -10, 10).
func DefaultRange(symbol string) Range {
	return Range{Symbol: symbol, Min: expr.N(-10), Max: expr.N(10)}
}

func (r Range) String() string {
	return fmt.Sprintf("(%s, %s, %s)", r.Symbol, r.Min, r.Max)
}

// Equal compares symbol and bounds structurally.
func (r Range) Equal(o Range) bool {
	return r.Symbol == o.Symbol && r.Min.Equal(o.Min) && r.Max.Equal(o.Max)
}

// IsComplex reports whether either bound contains the imaginary unit.
func (r Range) IsComplex() bool {
	return expr.HasImaginary(r.Min) || expr.HasImaginary(r.Max)
}

// FreeSymbols returns the parameters used by the bounds.
func (r Range) FreeSymbols() []string {
	return expr.SortedSymbols(r.Min, r.Max)
}

// Resolve evaluates the bounds. The lower bound must be strictly below
// the upper one.
func (r Range) Resolve(params map[string]float64) (float64, float64, error) {
	lo, err := expr.EvalFloat(r.Min, params)
	if err != nil {
		return 0, 0, fmt.Errorf("range %s: %w", r, err)
	}
	hi, err := expr.EvalFloat(r.Max, params)
	if err != nil {
		return 0, 0, fmt.Errorf("range %s: %w", r, err)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || lo >= hi {
		return 0, 0, fmt.Errorf("%w: %s resolves to [%g, %g]", ErrInvalidRange, r, lo, hi)
	}
	return lo, hi, nil
}

// ResolveComplex evaluates complex bounds. Real and imaginary parts are
// checked separately.
func (r Range) ResolveComplex(params map[string]float64) (complex128, complex128, error) {
	lo, err := expr.EvalComplex(r.Min, params)
	if err != nil {
		return 0, 0, fmt.Errorf("range %s: %w", r, err)
	}
	hi, err := expr.EvalComplex(r.Max, params)
	if err != nil {
		return 0, 0, fmt.Errorf("range %s: %w", r, err)
	}
	if !(real(lo) < real(hi)) || !(imag(lo) < imag(hi)) {
		return 0, 0, fmt.Errorf("%w: %s resolves to [%v, %v]", ErrInvalidRange, r, lo, hi)
	}
	return lo, hi, nil
}

func rangeSymbols(ranges []Range) []string {
	out := make([]string, len(ranges))
	for i, r := range ranges {
		out[i] = r.Symbol
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
