package expr

import (
	"math/big"
	"sort"
)

// ============================================================
// Func — named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr   { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr   { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr   { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr   { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr    { return funcOf("ln", arg).Simplify() }
func AbsOf(arg Expr) Expr   { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr  { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr  { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr  { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr  { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr  { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr  { return funcOf("tanh", arg).Simplify() }
func FloorOf(arg Expr) Expr { return funcOf("floor", arg).Simplify() }
func CeilOf(arg Expr) Expr  { return funcOf("ceil", arg).Simplify() }
func SignOf(arg Expr) Expr  { return funcOf("sign", arg).Simplify() }

// Complex parts. On a real argument re is the identity and im is zero.
func ReOf(arg Expr) Expr        { return funcOf("re", arg).Simplify() }
func ImOf(arg Expr) Expr        { return funcOf("im", arg).Simplify() }
func ArgOf(arg Expr) Expr       { return funcOf("arg", arg).Simplify() }
func ConjugateOf(arg Expr) Expr { return funcOf("conjugate", arg).Simplify() }

// FuncOf applies a function by name. ok is false for names the compilers do
// not know.
func FuncOf(name string, arg Expr) (Expr, bool) {
	if name == "log" {
		name = "ln"
	}
	if name == "sqrt" {
		return SqrtOf(arg), true
	}
	if _, known := realFuncs[name]; !known {
		return nil, false
	}
	return funcOf(name, arg).Simplify(), true
}

// FuncNames lists the function names accepted by FuncOf and Parse.
func FuncNames() []string {
	names := make([]string, 0, len(realFuncs)+2)
	for k := range realFuncs {
		names = append(names, k)
	}
	names = append(names, "log", "sqrt")
	sort.Strings(names)
	return names
}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		// only exact folds; transcendental values stay symbolic so labels
		// keep their printed form.
		switch f.name {
		case "abs":
			return &Num{val: new(big.Rat).Abs(n.val)}
		case "floor", "ceil":
			q := new(big.Int)
			m := new(big.Int)
			q.DivMod(n.val.Num(), n.val.Denom(), m)
			if f.name == "ceil" && m.Sign() != 0 {
				q.Add(q, big.NewInt(1))
			}
			return &Num{val: new(big.Rat).SetInt(q)}
		case "sign":
			return N(int64(n.val.Sign()))
		case "re", "conjugate":
			return n
		case "im":
			return N(0)
		}
	}
	switch f.name {
	case "sin", "tan", "sinh", "tanh", "asin", "atan":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cos", "cosh":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "ln":
		if n2, ok := arg.(*Num); ok && n2.IsOne() {
			return N(0)
		}
		if c, ok := arg.(*Const); ok && c.name == "E" {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if n2, ok := arg.(*Num); ok && n2.IsZero() {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "abs":
		if m, ok := arg.(*Mul); ok && len(m.factors) >= 1 {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegOne() {
				inner := m.factors[1:]
				if len(inner) == 1 {
					return AbsOf(inner[0])
				}
				return AbsOf(MulOf(inner...))
			}
		}
	case "conjugate":
		if inner, ok := arg.(*Func); ok && inner.name == "conjugate" {
			return inner.arg
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "ln", "sinh", "cosh", "tanh", "arg":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	case "floor":
		return "\\lfloor " + f.arg.LaTeX() + " \\rfloor"
	case "ceil":
		return "\\lceil " + f.arg.LaTeX() + " \\rceil"
	case "re":
		return "\\operatorname{Re}\\left(" + f.arg.LaTeX() + "\\right)"
	case "im":
		return "\\operatorname{Im}\\left(" + f.arg.LaTeX() + "\\right)"
	case "conjugate":
		return "\\overline{" + f.arg.LaTeX() + "}"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

// ============================================================
// Const — named constants
// ============================================================

type Const struct{ name string }

var (
	Pi = &Const{name: "pi"}
	E  = &Const{name: "E"}
	// I is the imaginary unit. Expressions containing it compile through
	// the complex evaluator.
	I = &Const{name: "I"}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

func (c *Const) LaTeX() string {
	switch c.name {
	case "pi":
		return "\\pi"
	case "E":
		return "e"
	}
	return "i"
}

func constByName(name string) (*Const, bool) {
	switch name {
	case "pi":
		return Pi, true
	case "E":
		return E, true
	case "I":
		return I, true
	}
	return nil, false
}
