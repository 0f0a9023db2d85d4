package interactive

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/njchilds90/gosymplot/expr"
	"github.com/spf13/cast"
)

// DefaultStepCount is the number of positions of a control whose spec
// gives none.
const DefaultStepCount = 40

type Kind int

const (
	Numeric Kind = iota
	DiscreteLog
	Boolean
	Choice
)

var kindNames = [...]string{"numeric", "discrete-log", "boolean", "choice"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Control describes one user-adjustable parameter for a UI toolkit.
// Numeric controls use Bounds and Step; DiscreteLog and Choice controls
// offer exactly Choices. Booleans read as 0 or 1.
type Control struct {
	Symbol  string     `json:"symbol" yaml:"symbol"`
	Kind    Kind       `json:"kind" yaml:"kind"`
	Label   string     `json:"label" yaml:"label"`
	Default float64    `json:"default" yaml:"default"`
	Bounds  [2]float64 `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Step    float64    `json:"step,omitempty" yaml:"step,omitempty"`
	Integer bool       `json:"integer,omitempty" yaml:"integer,omitempty"`

	Choices      []float64 `json:"choices,omitempty" yaml:"choices,omitempty"`
	ChoiceLabels []string  `json:"choice_labels,omitempty" yaml:"choice_labels,omitempty"`
}

// accept validates v for the control and returns the value to store.
func (c Control) accept(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s = %v", ErrInvalidValue, c.Symbol, v)
	}
	switch c.Kind {
	case Boolean:
		if v != 0 && v != 1 {
			return 0, fmt.Errorf("%w: %s takes 0 or 1, got %v", ErrInvalidValue, c.Symbol, v)
		}
	case DiscreteLog, Choice:
		for _, ch := range c.Choices {
			if math.Abs(ch-v) <= 1e-9*math.Max(1, math.Abs(ch)) {
				return ch, nil
			}
		}
		return 0, fmt.Errorf("%w: %v is not a choice of %s", ErrInvalidValue, v, c.Symbol)
	case Numeric:
		if c.Integer && v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %s takes integers, got %v", ErrInvalidValue, c.Symbol, v)
		}
	}
	return v, nil
}

// Spec is a ready-made control specification. It is implemented by
// NumberControl, IntegerControl, BooleanControl and ChoiceControl.
type Spec interface {
	control(symbol string, o *options) (Control, error)
}

// NumberControl is a continuous control. A zero Step divides the bounds
// into DefaultStepCount positions.
type NumberControl struct {
	Default  float64
	Min, Max float64
	Step     float64
	Label    string
}

func (n NumberControl) control(symbol string, o *options) (Control, error) {
	if n.Max < n.Min {
		return Control{}, fmt.Errorf("%w: %s bounds (%v, %v)", ErrInvalidSpec, symbol, n.Min, n.Max)
	}
	step := n.Step
	if step <= 0 {
		step = linearStep(n.Min, n.Max, DefaultStepCount)
	}
	return Control{Symbol: symbol, Kind: Numeric, Label: o.label(symbol, n.Label), Default: n.Default,
		Bounds: [2]float64{n.Min, n.Max}, Step: step}, nil
}

// IntegerControl is a numeric control restricted to integers.
type IntegerControl struct {
	Default  int
	Min, Max int
	Label    string
}

func (n IntegerControl) control(symbol string, o *options) (Control, error) {
	if n.Max < n.Min {
		return Control{}, fmt.Errorf("%w: %s bounds (%d, %d)", ErrInvalidSpec, symbol, n.Min, n.Max)
	}
	return Control{Symbol: symbol, Kind: Numeric, Label: o.label(symbol, n.Label), Default: float64(n.Default),
		Bounds: [2]float64{float64(n.Min), float64(n.Max)}, Step: 1, Integer: true}, nil
}

type BooleanControl struct {
	Default bool
	Label   string
}

func (b BooleanControl) control(symbol string, o *options) (Control, error) {
	c := Control{Symbol: symbol, Kind: Boolean, Label: o.label(symbol, b.Label)}
	if b.Default {
		c.Default = 1
	}
	return c, nil
}

// ChoiceControl selects among fixed values. Labels, when given, must
// match Choices one to one.
type ChoiceControl struct {
	Default float64
	Choices []float64
	Labels  []string
	Label   string
}

func (ch ChoiceControl) control(symbol string, o *options) (Control, error) {
	if len(ch.Choices) == 0 {
		return Control{}, fmt.Errorf("%w: %s has no choices", ErrInvalidSpec, symbol)
	}
	if len(ch.Labels) > 0 && len(ch.Labels) != len(ch.Choices) {
		return Control{}, fmt.Errorf("%w: %s has %d labels for %d choices", ErrInvalidSpec, symbol,
			len(ch.Labels), len(ch.Choices))
	}
	c := Control{Symbol: symbol, Kind: Choice, Label: o.label(symbol, ch.Label),
		Choices: append([]float64(nil), ch.Choices...), ChoiceLabels: append([]string(nil), ch.Labels...)}
	if len(c.ChoiceLabels) == 0 {
		c.ChoiceLabels = labels(c.Choices)
	}
	def, err := c.accept(ch.Default)
	if err != nil {
		return Control{}, fmt.Errorf("%w: default of %s", ErrInvalidSpec, symbol)
	}
	c.Default = def
	return c, nil
}

// fromTuple builds a control from (default, (min, max), [count, [label,
// [scale]]]).
func fromTuple(symbol string, t []interface{}, o *options) (Control, error) {
	if len(t) < 2 || len(t) > 5 {
		return Control{}, fmt.Errorf("%w: %s needs 2 to 5 entries, got %d", ErrInvalidSpec, symbol, len(t))
	}
	def, err := cast.ToFloat64E(t[0])
	if err != nil {
		return Control{}, fmt.Errorf("%w: %s default: %v", ErrInvalidSpec, symbol, err)
	}
	lo, hi, err := bounds(t[1])
	if err != nil {
		return Control{}, fmt.Errorf("%w: %s bounds: %v", ErrInvalidSpec, symbol, err)
	}
	if hi <= lo {
		return Control{}, fmt.Errorf("%w: %s bounds (%v, %v)", ErrInvalidSpec, symbol, lo, hi)
	}
	count := DefaultStepCount
	if len(t) > 2 && t[2] != nil {
		if count, err = cast.ToIntE(t[2]); err != nil || count < 2 {
			return Control{}, fmt.Errorf("%w: %s step count %v", ErrInvalidSpec, symbol, t[2])
		}
	}
	var label string
	if len(t) > 3 && t[3] != nil {
		label = cast.ToString(t[3])
	}
	scale := "linear"
	if len(t) > 4 && t[4] != nil {
		scale = strings.ToLower(cast.ToString(t[4]))
	}

	switch scale {
	case "linear":
		return Control{Symbol: symbol, Kind: Numeric, Label: o.label(symbol, label), Default: def,
			Bounds: [2]float64{lo, hi}, Step: linearStep(lo, hi, count)}, nil
	case "log":
		if lo <= 0 {
			return Control{}, fmt.Errorf("%w: %s log bounds must be positive", ErrInvalidSpec, symbol)
		}
		choices := logspace(lo, hi, count)
		return Control{Symbol: symbol, Kind: DiscreteLog, Label: o.label(symbol, label),
			Default: nearestLog(choices, def), Bounds: [2]float64{lo, hi},
			Choices: choices, ChoiceLabels: labels(choices)}, nil
	}
	return Control{}, fmt.Errorf("%w: %s scale %q", ErrInvalidSpec, symbol, scale)
}

func bounds(v interface{}) (float64, float64, error) {
	var pair []interface{}
	switch t := v.(type) {
	case []interface{}:
		pair = t
	case []float64:
		for _, f := range t {
			pair = append(pair, f)
		}
	case [2]float64:
		pair = []interface{}{t[0], t[1]}
	default:
		return 0, 0, fmt.Errorf("unsupported bounds %T", v)
	}
	if len(pair) != 2 {
		return 0, 0, fmt.Errorf("need two bounds, got %d", len(pair))
	}
	lo, err := cast.ToFloat64E(pair[0])
	if err != nil {
		return 0, 0, err
	}
	hi, err := cast.ToFloat64E(pair[1])
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func linearStep(lo, hi float64, count int) float64 {
	if count < 2 {
		return hi - lo
	}
	return (hi - lo) / float64(count-1)
}

// logspace returns n geometrically spaced values with exact endpoints.
func logspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	r := math.Log(hi / lo)
	for i := range out {
		out[i] = lo * math.Exp(r*float64(i)/float64(n-1))
	}
	out[0], out[n-1] = lo, hi
	return out
}

func nearestLog(choices []float64, v float64) float64 {
	if v <= 0 {
		return choices[0]
	}
	best, dist := choices[0], math.Inf(1)
	for _, c := range choices {
		if d := math.Abs(math.Log(c) - math.Log(v)); d < dist {
			best, dist = c, d
		}
	}
	return best
}

func labels(vs []float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = strings.TrimSpace(humanize.SIWithDigits(v, 2, ""))
	}
	return out
}

func latex(symbol string) string {
	return "$" + expr.S(symbol).LaTeX() + "$"
}
