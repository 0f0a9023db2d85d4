// Package expr is the symbolic layer of gosymplot: a small deterministic
// expression tree with exact rational constants, printable as plain text or
// LaTeX, serializable to JSON, and compilable into numeric closures that the
// series samplers call once per sample point.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat) while building expressions
//   - Deterministic simplification and stable output, so labels are stable
//   - Numeric evaluation never panics: domain failures surface as NaN
package expr

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

var (
	// ErrUnboundSymbol is returned by the compilers when an expression uses a
	// symbol that is not in the variable list.
	ErrUnboundSymbol = errors.New("expr: unbound symbol")

	// ErrNotNumeric is returned when a boolean expression is compiled as a
	// number or vice versa.
	ErrNotNumeric = errors.New("expr: expression is not numeric")
)

// ============================================================
// Core Interface
// ============================================================

// Expr is a node of the expression tree. Expressions are immutable: every
// transformation returns a new tree.
type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num — exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("expr: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat converts f exactly. Non-finite values have no rational form and
// are rejected by the caller (see normalize.Sympify).
func NFloat(f float64) *Num {
	r := new(big.Rat)
	if r.SetFloat64(f) == nil {
		return N(0)
	}
	return &Num{val: r}
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	if n.val.Denom().BitLen() > 32 {
		// floats converted with NFloat have huge binary denominators
		return fmt.Sprintf("%g", n.Float64())
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() || n.val.Denom().BitLen() > 32 {
		return n.String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.val.RatString()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }

// ============================================================
// Sym — symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

// Symbols splits a comma or space separated list, "x, y, z", into symbols.
func Symbols(names string) []*Sym {
	fields := strings.FieldsFunc(names, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]*Sym, len(fields))
	for i, f := range fields {
		out[i] = S(f)
	}
	return out
}

func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}

func (s *Sym) LaTeX() string {
	if greek[s.name] {
		return "\\" + s.name
	}
	if i := strings.IndexByte(s.name, '_'); i > 0 && i < len(s.name)-1 {
		return s.name[:i] + "_{" + s.name[i+1:] + "}"
	}
	return s.name
}

func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

var greek = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"theta": true, "lambda": true, "mu": true, "nu": true, "omega": true,
	"phi": true, "psi": true, "rho": true, "sigma": true, "tau": true,
}

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	// like terms: coefficient * rest, keyed by the printed rest
	numAccum := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		c, rest := splitCoeff(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], c)
	}

	// symbols first (sorted), then compound terms in first-seen order
	sort.SliceStable(order, func(i, j int) bool {
		_, si := rests[order[i]].(*Sym)
		_, sj := rests[order[j]].(*Sym)
		if si && sj {
			return order[i] < order[j]
		}
		return si && !sj
	})

	result := []Expr{}
	for _, key := range order {
		c := coeffs[key]
		if c.IsZero() {
			continue
		}
		if c.IsOne() {
			result = append(result, rests[key])
		} else {
			result = append(result, MulOf(c, rests[key]))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

// splitCoeff separates the leading rational coefficient of a product.
func splitCoeff(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) < 2 {
		return N(1), e
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return N(1), e
	}
	if len(m.factors) == 2 {
		return c, m.factors[1]
	}
	return c, &Mul{factors: m.factors[1:]}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		s := t.String()
		if i > 0 {
			if strings.HasPrefix(s, "-") {
				sb.WriteString(" - ")
				s = s[1:]
			} else {
				sb.WriteString(" + ")
			}
		}
		sb.WriteString(s)
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		s := t.LaTeX()
		if i > 0 {
			if strings.HasPrefix(s, "-") {
				sb.WriteString(" - ")
				s = s[1:]
			} else {
				sb.WriteString(" + ")
			}
		}
		sb.WriteString(s)
	}
	return sb.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && equalSlices(a.terms, o.terms)
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "add", "terms": jsonSlice(a.terms)}
}
func (a *Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// Div returns a/b as a*b^-1.
func Div(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	others := []Expr{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
		} else {
			others = append(others, f)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Sort by printed form, computed once per factor.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: sortKey(e)}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	if coeff.IsOne() {
		if len(sorted) == 1 {
			return sorted[0]
		}
		return &Mul{factors: sorted}
	}
	return &Mul{factors: append([]Expr{coeff}, sorted...)}
}

// sortKey orders constants (pi, I) before symbols and symbols before calls.
func sortKey(e Expr) string {
	switch e.(type) {
	case *Const:
		return "0" + e.String()
	case *Sym:
		return "1" + e.String()
	case *Pow:
		return "2" + e.String()
	}
	return "3" + e.String()
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	var num, den []string
	sign := ""
	for i, f := range m.factors {
		if c, ok := f.(*Num); ok && i == 0 {
			switch {
			case c.IsNegOne():
				sign = "-"
				continue
			case c.IsNegative():
				sign = "-"
				f = numNeg(c)
			}
		}
		if p, ok := f.(*Pow); ok {
			if e, ok := p.exp.(*Num); ok && e.IsNegOne() {
				den = append(den, wrapFactor(p.base))
				continue
			}
		}
		num = append(num, wrapFactor(f))
	}
	if len(num) == 0 {
		num = []string{"1"}
	}
	s := sign + strings.Join(num, "*")
	if len(den) == 1 {
		s += "/" + den[0]
	} else if len(den) > 1 {
		s += "/(" + strings.Join(den, "*") + ")"
	}
	return s
}

func wrapFactor(f Expr) string {
	if _, isAdd := f.(*Add); isAdd {
		return "(" + f.String() + ")"
	}
	return f.String()
}

func (m *Mul) LaTeX() string {
	parts := make([]string, 0, len(m.factors))
	sign := ""
	for i, f := range m.factors {
		if c, ok := f.(*Num); ok && i == 0 && c.IsNegOne() {
			sign = "-"
			continue
		}
		if _, isAdd := f.(*Add); isAdd {
			parts = append(parts, "\\left("+f.LaTeX()+"\\right)")
		} else {
			parts = append(parts, f.LaTeX())
		}
	}
	return sign + strings.Join(parts, " ")
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && equalSlices(m.factors, o.factors)
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "mul", "factors": jsonSlice(m.factors)}
}
func (m *Mul) Factors() []Expr { return append([]Expr(nil), m.factors...) }

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	bn, baseIsNum := base.(*Num)
	if baseIsNum && bn.IsZero() {
		// 0^0 and 0^negative stay symbolic and evaluate to NaN.
		if expIsNum && (en.IsZero() || en.IsNegative()) {
			return &Pow{base: base, exp: exp}
		}
		return N(0)
	}
	if baseIsNum && bn.IsOne() {
		return N(1)
	}
	if baseIsNum && expIsNum && en.IsInteger() {
		e := en.val.Num().Int64()
		if e >= -20 && e <= 20 {
			result := N(1)
			k := e
			if k < 0 {
				k = -k
			}
			for i := int64(0); i < k; i++ {
				result = numMul(result, bn)
			}
			if e < 0 {
				return &Num{val: new(big.Rat).Inv(result.val)}
			}
			return result
		}
	}
	if inner, ok := base.(*Pow); ok {
		if ie, ok := inner.exp.(*Num); ok && ie.IsInteger() && expIsNum && en.IsInteger() {
			return PowOf(inner.base, MulOf(inner.exp, exp))
		}
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string {
	if e, ok := p.exp.(*Num); ok && e.Equal(F(1, 2)) {
		return "sqrt(" + p.base.String() + ")"
	}
	if e, ok := p.exp.(*Num); ok && e.IsNegOne() {
		switch p.base.(type) {
		case *Add, *Mul, *Pow:
			return "1/(" + p.base.String() + ")"
		}
		return "1/" + p.base.String()
	}
	baseStr := p.base.String()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "(" + baseStr + ")"
	case *Num:
		if p.base.(*Num).IsNegative() || !p.base.(*Num).IsInteger() {
			baseStr = "(" + baseStr + ")"
		}
	}
	expStr := p.exp.String()
	switch p.exp.(type) {
	case *Sym, *Const:
	case *Num:
		if !p.exp.(*Num).IsInteger() || p.exp.(*Num).IsNegative() {
			expStr = "(" + expStr + ")"
		}
	default:
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	if e, ok := p.exp.(*Num); ok && e.Equal(F(1, 2)) {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	if e, ok := p.exp.(*Num); ok && e.IsNegOne() {
		return "\\frac{1}{" + p.base.LaTeX() + "}"
	}
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// helpers
// ============================================================

func equalSlices(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func jsonSlice(es []Expr) []map[string]interface{} {
	out := make([]map[string]interface{}, len(es))
	for i, e := range es {
		out[i] = e.toJSON()
	}
	return out
}

// Simplify, String and LaTeX are the package-level forms of the methods.
func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

// Subs substitutes every name in values.
func Subs(e Expr, values map[string]Expr) Expr {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		e = e.Sub(name, values[name])
	}
	return e
}
