package normalize

import (
	"fmt"

	"github.com/njchilds90/gosymplot/expr"
	"github.com/njchilds90/gosymplot/render"
	"github.com/njchilds90/gosymplot/series"
)

type checkOptions struct {
	params map[string]struct{}
}

type CheckOption func(*checkOptions)

// WithParams names interactive parameters. They are never given a range.
func WithParams(names ...string) CheckOption {
	return func(o *checkOptions) {
		for _, n := range names {
			o.params[n] = struct{}{}
		}
	}
}

// block is the ranges/label/options tail of a group or of the whole call.
type block struct {
	ranges  []series.Range
	label   string
	options *render.Options
}

func (b block) empty() bool { return len(b.ranges) == 0 && b.label == "" && b.options == nil }

// CheckArguments partitions args into series argument tuples with nexpr
// expressions and npar ranges each.
//
// A flat call (e1, e2, ..., ranges..., label, options) yields one series
// per nexpr expressions, all sharing the trailing block. A grouped call
// passes one []interface{} per series; trailing items outside the groups
// form a shared block used by groups that lack their own.
func CheckArguments(args []interface{}, nexpr, npar int, opts ...CheckOption) ([]Args, error) {
	o := checkOptions{params: map[string]struct{}{}}
	for _, opt := range opts {
		opt(&o)
	}
	args, err := Sympify(args...)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no arguments", ErrBadArgument)
	}

	var groups [][]expr.Expr
	var blocks []block
	var shared block

	if _, grouped := args[0].([]interface{}); grouped {
		i := 0
		for ; i < len(args); i++ {
			g, ok := args[i].([]interface{})
			if !ok {
				break
			}
			if r, ok := asRange(g); ok && len(groups) > 0 && nexpr != len(g) {
				// a range with symbolic bounds shared by the groups
				shared.ranges = append(shared.ranges, r)
				continue
			}
			exprs, rest, err := splitExprs(g)
			if err != nil {
				return nil, err
			}
			b, err := parseBlock(rest)
			if err != nil {
				return nil, err
			}
			if len(exprs) == 0 {
				// a group of ranges only
				shared.ranges = append(shared.ranges, b.ranges...)
				continue
			}
			if len(exprs) != nexpr {
				return nil, fmt.Errorf("%w: want %d per series, got %d", ErrExprCount, nexpr, len(exprs))
			}
			groups = append(groups, exprs)
			blocks = append(blocks, b)
		}
		tail, err := parseBlock(args[i:])
		if err != nil {
			return nil, err
		}
		shared.ranges = append(shared.ranges, tail.ranges...)
		shared.label, shared.options = tail.label, tail.options
	} else {
		exprs, rest, err := splitExprs(args)
		if err != nil {
			return nil, err
		}
		if len(exprs) == 0 || len(exprs)%nexpr != 0 {
			return nil, fmt.Errorf("%w: %d expressions for %d per series", ErrExprCount, len(exprs), nexpr)
		}
		shared, err = parseBlock(rest)
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(exprs); i += nexpr {
			groups = append(groups, exprs[i:i+nexpr])
			blocks = append(blocks, block{})
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no expressions", ErrExprCount)
	}

	out := make([]Args, len(groups))
	for i, exprs := range groups {
		b := blocks[i]
		if len(b.ranges) == 0 {
			b.ranges = shared.ranges
		}
		if b.label == "" {
			b.label = shared.label
		}
		if b.options == nil {
			b.options = shared.options
		}
		free := freeSymbols(exprs, o.params)
		ranges, err := CreateRanges(free, b.ranges, npar)
		if err != nil {
			return nil, err
		}
		out[i] = Args{Exprs: exprs, Ranges: ranges, Label: b.label, Options: b.options}
	}
	return out, nil
}

// splitExprs takes the leading expressions of items. A nested list of
// expressions or a column vector counts as its elements. A range-shaped
// triple after the first expression ends the run.
func splitExprs(items []interface{}) ([]expr.Expr, []interface{}, error) {
	var exprs []expr.Expr
	for i, it := range items {
		switch v := it.(type) {
		case expr.Expr:
			exprs = append(exprs, v)
		case *expr.Matrix:
			if v.Cols() != 1 {
				return nil, nil, fmt.Errorf("%w: matrix must be a column vector", ErrBadArgument)
			}
			exprs = append(exprs, v.Elements()...)
		case []interface{}:
			if _, ok := asRange(v); ok && len(exprs) > 0 {
				return exprs, items[i:], nil
			}
			inner, rest, err := splitExprs(v)
			if err != nil {
				return nil, nil, err
			}
			if len(rest) > 0 || len(inner) == 0 {
				return nil, nil, fmt.Errorf("%w: nested group inside a series", ErrBadArgument)
			}
			exprs = append(exprs, inner...)
		default:
			return exprs, items[i:], nil
		}
	}
	return exprs, nil, nil
}

// parseBlock reads ranges, then an optional label, then optional options.
func parseBlock(items []interface{}) (block, error) {
	var b block
	stage := 0
	for _, it := range items {
		switch v := it.(type) {
		case series.Range:
			if stage > 0 {
				return b, fmt.Errorf("%w: range %s after label or options", ErrBadArgument, v)
			}
			b.ranges = append(b.ranges, v)
		case []interface{}:
			r, ok := asRange(v)
			if !ok || stage > 0 {
				return b, fmt.Errorf("%w: %v in range/label/options position", ErrBadArgument, v)
			}
			b.ranges = append(b.ranges, r)
		case string:
			if stage > 1 {
				return b, fmt.Errorf("%w: label %q after options", ErrBadArgument, v)
			}
			b.label, stage = v, 1
		case *render.Options:
			b.options, stage = v, 2
		case map[string]interface{}:
			b.options, stage = render.FromMap(v), 2
		default:
			return b, fmt.Errorf("%w: %T in range/label/options position", ErrBadArgument, it)
		}
	}
	return b, nil
}

func freeSymbols(exprs []expr.Expr, params map[string]struct{}) []string {
	var out []string
	for _, s := range expr.SortedSymbols(exprs...) {
		if _, ok := params[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// CreateRanges completes the user ranges to exactly npar ranges. Free
// symbols without a range get (sym, -10, 10) in sorted order; when the
// expressions have too few symbols, unused dummy symbols fill the rest.
func CreateRanges(free []string, ranges []series.Range, npar int) ([]series.Range, error) {
	if len(ranges) > npar {
		return nil, fmt.Errorf("%w: %d ranges given, at most %d allowed", ErrTooManySymbols, len(ranges), npar)
	}
	covered := map[string]struct{}{}
	for _, r := range ranges {
		covered[r.Symbol] = struct{}{}
	}
	var missing []string
	for _, s := range free {
		if _, ok := covered[s]; !ok {
			missing = append(missing, s)
		}
	}
	freeSet := map[string]struct{}{}
	for _, s := range free {
		freeSet[s] = struct{}{}
	}
	for _, r := range ranges {
		if _, ok := freeSet[r.Symbol]; !ok && len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s does not appear, %s has no range", ErrRangeMismatch, r.Symbol, missing[0])
		}
	}
	if len(ranges)+len(missing) > npar {
		return nil, fmt.Errorf("%w: %v need ranges but only %d are allowed", ErrTooManySymbols, free, npar)
	}

	out := append([]series.Range(nil), ranges...)
	for _, s := range missing {
		out = append(out, series.DefaultRange(s))
		covered[s] = struct{}{}
	}
	for _, d := range dummySymbols(covered, npar-len(out)) {
		out = append(out, series.DefaultRange(d))
	}
	return out, nil
}

var dummyCandidates = []string{"x", "y", "z", "u", "v", "w", "t"}

func dummySymbols(used map[string]struct{}, n int) []string {
	var out []string
	for _, c := range dummyCandidates {
		if len(out) == n {
			return out
		}
		if _, ok := used[c]; !ok {
			out = append(out, c)
		}
	}
	for i := 0; len(out) < n; i++ {
		name := fmt.Sprintf("_d%d", i)
		if _, ok := used[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
