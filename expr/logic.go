package expr

import "strings"

// ============================================================
// Rel — binary relation
// ============================================================

// Rel compares two numeric expressions. It is boolean valued: compiled as a
// number it yields 1 when the relation holds and 0 otherwise.
type Rel struct {
	op       string
	lhs, rhs Expr
}

func relOf(op string, lhs, rhs Expr) *Rel {
	return &Rel{op: op, lhs: lhs.Simplify(), rhs: rhs.Simplify()}
}

func Gt(lhs, rhs Expr) *Rel { return relOf(">", lhs, rhs) }
func Lt(lhs, rhs Expr) *Rel { return relOf("<", lhs, rhs) }
func Ge(lhs, rhs Expr) *Rel { return relOf(">=", lhs, rhs) }
func Le(lhs, rhs Expr) *Rel { return relOf("<=", lhs, rhs) }

// Eq is an equality; implicit plots draw its zero set lhs - rhs = 0.
func Eq(lhs, rhs Expr) *Rel { return relOf("==", lhs, rhs) }

func (r *Rel) Simplify() Expr { return r }
func (r *Rel) Op() string     { return r.op }
func (r *Rel) LHS() Expr      { return r.lhs }
func (r *Rel) RHS() Expr      { return r.rhs }
func (r *Rel) IsEquality() bool {
	return r.op == "=="
}

// Residual returns lhs - rhs.
func (r *Rel) Residual() Expr { return AddOf(r.lhs, Neg(r.rhs)) }

func (r *Rel) String() string { return r.lhs.String() + " " + r.op + " " + r.rhs.String() }

func (r *Rel) LaTeX() string {
	op := map[string]string{">": ">", "<": "<", ">=": "\\geq", "<=": "\\leq", "==": "="}[r.op]
	return r.lhs.LaTeX() + " " + op + " " + r.rhs.LaTeX()
}

func (r *Rel) Sub(varName string, value Expr) Expr {
	return relOf(r.op, r.lhs.Sub(varName, value), r.rhs.Sub(varName, value))
}

func (r *Rel) Equal(other Expr) bool {
	o, ok := other.(*Rel)
	return ok && r.op == o.op && r.lhs.Equal(o.lhs) && r.rhs.Equal(o.rhs)
}

func (r *Rel) exprType() string { return "rel" }
func (r *Rel) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "rel", "op": r.op, "lhs": r.lhs.toJSON(), "rhs": r.rhs.toJSON()}
}

// ============================================================
// Logic — boolean combinations of relations
// ============================================================

type Logic struct {
	op   string // and, or, not
	args []Expr
}

func And(args ...Expr) Expr { return (&Logic{op: "and", args: args}).Simplify() }
func Or(args ...Expr) Expr  { return (&Logic{op: "or", args: args}).Simplify() }
func Not(arg Expr) Expr     { return (&Logic{op: "not", args: []Expr{arg}}).Simplify() }

func (g *Logic) Simplify() Expr {
	flat := make([]Expr, 0, len(g.args))
	for _, a := range g.args {
		s := a.Simplify()
		if inner, ok := s.(*Logic); ok && inner.op == g.op && g.op != "not" {
			flat = append(flat, inner.args...)
			continue
		}
		flat = append(flat, s)
	}
	if g.op == "not" {
		if inner, ok := flat[0].(*Logic); ok && inner.op == "not" {
			return inner.args[0]
		}
	} else if len(flat) == 1 {
		return flat[0]
	}
	return &Logic{op: g.op, args: flat}
}

func (g *Logic) Op() string       { return g.op }
func (g *Logic) Args() []Expr     { return append([]Expr(nil), g.args...) }
func (g *Logic) exprType() string { return "logic" }

func (g *Logic) String() string {
	if g.op == "not" {
		return "~(" + g.args[0].String() + ")"
	}
	sep := " & "
	if g.op == "or" {
		sep = " | "
	}
	parts := make([]string, len(g.args))
	for i, a := range g.args {
		parts[i] = "(" + a.String() + ")"
	}
	return strings.Join(parts, sep)
}

func (g *Logic) LaTeX() string {
	if g.op == "not" {
		return "\\neg\\left(" + g.args[0].LaTeX() + "\\right)"
	}
	sep := " \\wedge "
	if g.op == "or" {
		sep = " \\vee "
	}
	parts := make([]string, len(g.args))
	for i, a := range g.args {
		parts[i] = "\\left(" + a.LaTeX() + "\\right)"
	}
	return strings.Join(parts, sep)
}

func (g *Logic) Sub(varName string, value Expr) Expr {
	args := make([]Expr, len(g.args))
	for i, a := range g.args {
		args[i] = a.Sub(varName, value)
	}
	return (&Logic{op: g.op, args: args}).Simplify()
}

func (g *Logic) Equal(other Expr) bool {
	o, ok := other.(*Logic)
	return ok && g.op == o.op && equalSlices(g.args, o.args)
}

func (g *Logic) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "logic", "op": g.op, "args": jsonSlice(g.args)}
}

// IsBoolean reports whether e is a relation or a logical combination.
func IsBoolean(e Expr) bool {
	switch e.(type) {
	case *Rel, *Logic:
		return true
	}
	return false
}
