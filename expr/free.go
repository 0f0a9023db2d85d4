package expr

import "sort"

// ============================================================
// Free symbols
// ============================================================

// FreeSymbols returns the set of symbol names in e.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

// SortedSymbols returns the union of the free symbols of every expression,
// sorted by name.
func SortedSymbols(es ...Expr) []string {
	set := map[string]struct{}{}
	for _, e := range es {
		collectSymbols(e, set)
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// HasSymbol reports whether name occurs in e.
func HasSymbol(e Expr, name string) bool {
	_, ok := FreeSymbols(e)[name]
	return ok
}

// HasImaginary reports whether the imaginary unit occurs in e.
func HasImaginary(e Expr) bool {
	switch v := e.(type) {
	case *Const:
		return v == I || v.name == "I"
	case *Add:
		return anyImaginary(v.terms)
	case *Mul:
		return anyImaginary(v.factors)
	case *Pow:
		return HasImaginary(v.base) || HasImaginary(v.exp)
	case *Func:
		return HasImaginary(v.arg)
	case *Rel:
		return HasImaginary(v.lhs) || HasImaginary(v.rhs)
	case *Logic:
		return anyImaginary(v.args)
	}
	return false
}

func anyImaginary(es []Expr) bool {
	for _, e := range es {
		if HasImaginary(e) {
			return true
		}
	}
	return false
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	case *Rel:
		collectSymbols(v.lhs, out)
		collectSymbols(v.rhs, out)
	case *Logic:
		for _, a := range v.args {
			collectSymbols(a, out)
		}
	}
}
