package expr

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// ErrParse is returned by Parse for malformed input.
var ErrParse = errors.New("expr: parse error")

// ============================================================
// Parser
// ============================================================

// Parse reads an expression in the usual infix syntax:
//
//	sin(x)^2 + 3*x/2 - 1
//	x**2 + y**2 < 4 & x > 0
//	exp(I*t)
//
// Both ^ and ** denote powers. Relations (<, <=, >, >=, ==) combine with
// & (and), | (or) and ~ (not). The names pi, E and I are constants.
// Numbers are read exactly, so "0.1" is the rational 1/10.
func Parse(src string) (Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, src: src}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, p.errorf("unexpected %q", p.toks[p.pos].text)
	}
	return e, nil
}

// MustParse is Parse for inputs known to be valid; it panics on error.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

type tokKind int

const (
	tokNum tokKind = iota
	tokIdent
	tokOp
)

type token struct {
	kind tokKind
	text string
	pos  int
}

func tokenize(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			for i < len(rs) && (unicode.IsDigit(rs[i]) || rs[i] == '.') {
				i++
			}
			if i < len(rs) && (rs[i] == 'e' || rs[i] == 'E') {
				j := i + 1
				if j < len(rs) && (rs[j] == '+' || rs[j] == '-') {
					j++
				}
				if j < len(rs) && unicode.IsDigit(rs[j]) {
					i = j
					for i < len(rs) && unicode.IsDigit(rs[i]) {
						i++
					}
				}
			}
			toks = append(toks, token{kind: tokNum, text: string(rs[start:i]), pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[start:i]), pos: start})
		default:
			two := ""
			if i+1 < len(rs) {
				two = string(rs[i : i+2])
			}
			switch two {
			case "**", "<=", ">=", "==", "!=":
				if two == "!=" {
					return nil, fmt.Errorf("%w: %q at %d: != is not supported", ErrParse, src, i)
				}
				toks = append(toks, token{kind: tokOp, text: two, pos: i})
				i += 2
				continue
			}
			if !strings.ContainsRune("+-*/^()<>&|~,", r) {
				return nil, fmt.Errorf("%w: %q at %d: unexpected character %q", ErrParse, src, i, r)
			}
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
	src  string
}

func (p *parser) errorf(format string, args ...interface{}) error {
	at := len(p.src)
	if p.pos < len(p.toks) {
		at = p.toks[p.pos].pos
	}
	return fmt.Errorf("%w: %q at %d: %s", ErrParse, p.src, at, fmt.Sprintf(format, args...))
}

func (p *parser) peekOp(ops ...string) (string, bool) {
	if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if p.toks[p.pos].text == op {
			return op, true
		}
	}
	return "", false
}

func (p *parser) expect(op string) error {
	if _, ok := p.peekOp(op); !ok {
		if p.pos >= len(p.toks) {
			return p.errorf("expected %q, got end of input", op)
		}
		return p.errorf("expected %q, got %q", op, p.toks[p.pos].text)
	}
	p.pos++
	return nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.peekOp("|"); !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or(left, right)
	}
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.peekOp("&"); !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = And(left, right)
	}
}

func (p *parser) parseNot() (Expr, error) {
	if _, ok := p.peekOp("~"); ok {
		p.pos++
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not(inner), nil
	}
	return p.parseRel()
}

func (p *parser) parseRel() (Expr, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	op, ok := p.peekOp("<", "<=", ">", ">=", "==")
	if !ok {
		return left, nil
	}
	p.pos++
	right, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	return relOf(op, left, right), nil
}

func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp("+", "-")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			right = Neg(right)
		}
		left = AddOf(left, right)
	}
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp("*", "/")
		switch {
		case ok:
			p.pos++
		case p.implicitProduct():
			op = "*"
		default:
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "/" {
			left = Div(left, right)
		} else {
			left = MulOf(left, right)
		}
	}
}

// implicitProduct reports a number directly followed by a name or a
// parenthesis, as in 2x or 3(x+1).
func (p *parser) implicitProduct() bool {
	if p.pos == 0 || p.pos >= len(p.toks) || p.toks[p.pos-1].kind != tokNum {
		return false
	}
	next := p.toks[p.pos]
	return next.kind == tokIdent || (next.kind == tokOp && next.text == "(")
}

func (p *parser) parseUnary() (Expr, error) {
	if op, ok := p.peekOp("-", "+"); ok {
		p.pos++
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return Neg(inner), nil
		}
		return inner, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if _, ok := p.peekOp("^", "**"); ok {
		p.pos++
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

func (p *parser) parseAtom() (Expr, error) {
	if p.pos >= len(p.toks) {
		return nil, p.errorf("unexpected end of input")
	}
	t := p.toks[p.pos]
	switch t.kind {
	case tokNum:
		p.pos++
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, p.errorf("bad number %q", t.text)
		}
		return &Num{val: r}, nil
	case tokIdent:
		p.pos++
		if _, ok := p.peekOp("("); ok {
			p.pos++
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			f, ok := FuncOf(t.text, arg)
			if !ok {
				return nil, fmt.Errorf("%w: %q: unknown function %s", ErrParse, p.src, t.text)
			}
			return f, nil
		}
		if c, ok := constByName(t.text); ok {
			return c, nil
		}
		return S(t.text), nil
	}
	if t.text == "(" {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.errorf("unexpected %q", t.text)
}
