package expr

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ToMap returns the JSON object form of e.
func ToMap(e Expr) map[string]interface{} { return e.toJSON() }

// Decode accepts the loose forms found in plot documents and tool calls:
// an infix string, a JSON number, or an expression object.
func Decode(v interface{}) (Expr, error) {
	switch t := v.(type) {
	case string:
		return Parse(t)
	case float64:
		return NFloat(t), nil
	case int:
		return N(int64(t)), nil
	case map[string]interface{}:
		return FromJSON(t)
	case Expr:
		return t, nil
	}
	return nil, fmt.Errorf("%w: cannot decode %T as an expression", ErrParse, v)
}

func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subObjArray := func(field string) ([]Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			e, err := FromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = e
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		val, err := subString("value")
		if err != nil {
			return nil, err
		}
		r := new(big.Rat)
		if _, ok := r.SetString(val); !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		return &Num{val: r}, nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "const":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		c, ok := constByName(name)
		if !ok {
			return nil, fmt.Errorf("const: unknown constant %s", name)
		}
		return c, nil

	case "add":
		terms, err := subObjArray("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subObjArray("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := subObj("base")
		if err != nil {
			return nil, err
		}
		exp, err := subObj("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		arg, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		f, ok := FuncOf(name, arg)
		if !ok {
			return nil, fmt.Errorf("func: unknown function %s", name)
		}
		return f, nil

	case "rel":
		op, err := subString("op")
		if err != nil {
			return nil, err
		}
		switch op {
		case "<", "<=", ">", ">=", "==":
		default:
			return nil, fmt.Errorf("rel: unknown operator %s", op)
		}
		lhs, err := subObj("lhs")
		if err != nil {
			return nil, err
		}
		rhs, err := subObj("rhs")
		if err != nil {
			return nil, err
		}
		return relOf(op, lhs, rhs), nil

	case "logic":
		op, err := subString("op")
		if err != nil {
			return nil, err
		}
		args, err := subObjArray("args")
		if err != nil {
			return nil, err
		}
		switch {
		case op == "and" && len(args) > 0:
			return And(args...), nil
		case op == "or" && len(args) > 0:
			return Or(args...), nil
		case op == "not" && len(args) == 1:
			return Not(args[0]), nil
		}
		return nil, fmt.Errorf("logic: bad operator %s with %d args", op, len(args))
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}
