// Package interactive binds plot parameters to user controls and redraws
// only the series a changed parameter touches.
package interactive

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sgostarter/i/commerr"
	"github.com/sgostarter/i/l"
)

var (
	ErrInvalidSpec      = fmt.Errorf("interactive: invalid parameter spec: %w", commerr.ErrInvalidArgument)
	ErrInvalidValue     = fmt.Errorf("interactive: invalid value: %w", commerr.ErrInvalidArgument)
	ErrUnknownParameter = fmt.Errorf("interactive: unknown parameter: %w", commerr.ErrInvalidArgument)
	ErrMissingParameter = fmt.Errorf("interactive: parameter without binding: %w", commerr.ErrInvalidArgument)
	ErrInvalidLayout    = errors.New("interactive: invalid layout")
)

// Layouts of the controls around the figure: top bar, bottom bar and
// sidebars left or right.
const (
	LayoutTopBar       = "tb"
	LayoutBottomBar    = "bb"
	LayoutSidebarLeft  = "sbl"
	LayoutSidebarRight = "sbr"
)

// ParamSpecs maps parameter symbols to control specs, keeping insertion
// order. A spec is a Spec or a raw tuple
// []interface{}{default, bounds, count, label, scale} of two to five
// entries.
type ParamSpecs struct {
	keys  []string
	specs map[string]interface{}
}

// NewParamSpecs builds specs from alternating symbol, spec pairs.
func NewParamSpecs(kv ...interface{}) *ParamSpecs {
	ps := &ParamSpecs{specs: map[string]interface{}{}}
	for i := 0; i+1 < len(kv); i += 2 {
		ps.Add(fmt.Sprint(kv[i]), kv[i+1])
	}
	return ps
}

// Add sets the spec of symbol and returns ps. Re-adding a symbol keeps
// its position.
func (ps *ParamSpecs) Add(symbol string, spec interface{}) *ParamSpecs {
	if _, ok := ps.specs[symbol]; !ok {
		ps.keys = append(ps.keys, symbol)
	}
	ps.specs[symbol] = spec
	return ps
}

func (ps *ParamSpecs) Symbols() []string { return append([]string(nil), ps.keys...) }
func (ps *ParamSpecs) Len() int          { return len(ps.keys) }

type options struct {
	layout   string
	ncols    int
	useLatex bool
	logger   l.Wrapper
}

func (o *options) label(symbol, given string) string {
	switch {
	case given != "":
		return given
	case o.useLatex:
		return latex(symbol)
	}
	return symbol
}

type Option func(*options)

func WithLayout(layout string) Option { return func(o *options) { o.layout = layout } }
func WithNCols(n int) Option          { return func(o *options) { o.ncols = n } }
func WithUseLatex(b bool) Option      { return func(o *options) { o.useLatex = b } }

func WithLogger(logger l.Wrapper) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Bindings holds one control and the current value per parameter.
type Bindings struct {
	opts     options
	controls []Control
	index    map[string]int

	mu     sync.RWMutex
	values []float64
}

func NewBindings(specs *ParamSpecs, opts ...Option) (*Bindings, error) {
	o := options{layout: LayoutTopBar, ncols: 2, logger: l.NewNopLoggerWrapper()}
	for _, opt := range opts {
		opt(&o)
	}
	switch o.layout {
	case LayoutTopBar, LayoutBottomBar, LayoutSidebarLeft, LayoutSidebarRight:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLayout, o.layout)
	}
	if o.ncols < 1 {
		return nil, fmt.Errorf("%w: ncols %d", ErrInvalidLayout, o.ncols)
	}
	o.logger = o.logger.WithFields(l.StringField(l.ClsKey, "interactiveBindings"))

	b := &Bindings{opts: o, index: map[string]int{}}
	if specs == nil {
		return b, nil
	}
	for _, sym := range specs.keys {
		c, err := buildControl(sym, specs.specs[sym], &o)
		if err != nil {
			return nil, err
		}
		b.index[sym] = len(b.controls)
		b.controls = append(b.controls, c)
		b.values = append(b.values, c.Default)
	}
	o.logger.WithFields(l.IntField("controls", len(b.controls))).Debug("bindings created")
	return b, nil
}

func buildControl(symbol string, spec interface{}, o *options) (Control, error) {
	switch t := spec.(type) {
	case Spec:
		return t.control(symbol, o)
	case []interface{}:
		return fromTuple(symbol, t, o)
	case []float64:
		raw := make([]interface{}, 0, 3)
		switch len(t) {
		case 3:
			raw = append(raw, t[0], []float64{t[1], t[2]})
		case 4:
			raw = append(raw, t[0], []float64{t[1], t[2]}, t[3])
		default:
			return Control{}, fmt.Errorf("%w: %s needs default, min, max and optional count", ErrInvalidSpec, symbol)
		}
		return fromTuple(symbol, raw, o)
	}
	return Control{}, fmt.Errorf("%w: %s has spec of type %T", ErrInvalidSpec, symbol, spec)
}

// Controls returns the control descriptors in binding order.
func (b *Bindings) Controls() []Control {
	out := make([]Control, len(b.controls))
	copy(out, b.controls)
	return out
}

func (b *Bindings) Control(symbol string) (Control, bool) {
	i, ok := b.index[symbol]
	if !ok {
		return Control{}, false
	}
	return b.controls[i], true
}

func (b *Bindings) Symbols() []string {
	out := make([]string, len(b.controls))
	for i, c := range b.controls {
		out[i] = c.Symbol
	}
	return out
}

func (b *Bindings) Has(symbol string) bool {
	_, ok := b.index[symbol]
	return ok
}

// Read returns the current value of every parameter.
func (b *Bindings) Read() map[string]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]float64, len(b.values))
	for i, c := range b.controls {
		out[c.Symbol] = b.values[i]
	}
	return out
}

// Values returns the current values in binding order.
func (b *Bindings) Values() []float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]float64(nil), b.values...)
}

// Commit validates every change and then applies them all at once. It
// returns the symbols whose value actually changed, in binding order.
// On error nothing is applied.
func (b *Bindings) Commit(changes map[string]float64) ([]string, error) {
	accepted := make(map[int]float64, len(changes))
	for sym, v := range changes {
		i, ok := b.index[sym]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, sym)
		}
		av, err := b.controls[i].accept(v)
		if err != nil {
			return nil, err
		}
		accepted[i] = av
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	var changed []string
	for i := range b.controls {
		v, ok := accepted[i]
		if !ok || b.values[i] == v {
			continue
		}
		b.values[i] = v
		changed = append(changed, b.controls[i].Symbol)
	}
	b.opts.logger.WithFields(l.IntField("changed", len(changed))).Debug("values committed")
	return changed, nil
}

func (b *Bindings) LayoutKind() string { return b.opts.layout }
func (b *Bindings) NCols() int         { return b.opts.ncols }

// Layout arranges the control symbols in rows of NCols.
func (b *Bindings) Layout() [][]string {
	var rows [][]string
	syms := b.Symbols()
	for len(syms) > 0 {
		n := b.opts.ncols
		if n > len(syms) {
			n = len(syms)
		}
		rows = append(rows, syms[:n:n])
		syms = syms[n:]
	}
	return rows
}
