// Package series turns symbolic expressions into sampled numeric data.
//
// A Series is immutable in its symbolic definition. Evaluate resolves the
// ranges for a parameter snapshot, samples the expressions and caches the
// result for that snapshot. Numeric failures at single points become NaN.
package series

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/njchilds90/gosymplot/expr"
	"github.com/njchilds90/gosymplot/geom"
	"github.com/njchilds90/gosymplot/render"
	"github.com/sgostarter/i/commerr"
	"github.com/sgostarter/i/l"
)

var (
	ErrArity         = fmt.Errorf("series: arity mismatch: %w", commerr.ErrInvalidArgument)
	ErrFreeSymbol    = fmt.Errorf("series: free symbol without range or parameter: %w", commerr.ErrInvalidArgument)
	ErrMissingValue  = fmt.Errorf("series: missing parameter value: %w", commerr.ErrInvalidArgument)
	ErrInvalidRange  = errors.New("series: invalid range")
	ErrInvalidOption = fmt.Errorf("series: invalid option: %w", commerr.ErrInvalidArgument)
)

// Part selects what a ComplexLine plots.
type Part int

const (
	PartReal Part = iota
	PartImag
	PartAbsArg
)

func (p Part) String() string {
	switch p {
	case PartReal:
		return "re"
	case PartImag:
		return "im"
	case PartAbsArg:
		return "abs"
	}
	return "unknown"
}

const (
	defaultLineN        = 1000
	defaultGridN        = 50
	defaultVectorN      = 25
	defaultImplicitN    = 100
	defaultColoringN    = 100
	defaultGeometryN    = 100
	interactiveGridN    = 10
	defaultPhaseRes     = 20
	defaultImplicitDeep = 4
)

// Series is one sampled expression group with its domain.
type Series struct {
	kind   Kind
	exprs  []expr.Expr
	ranges []Range
	entity geom.Entity
	params []string

	label       string
	opts        *render.Options
	n           [3]int
	adaptive    bool
	depth       int
	interactive bool
	streamlines bool
	scale       float64
	phaseres    int
	part        Part
	threed      bool
	filled      bool
	useCM       bool
	isPoint     bool
	xscale      string

	// implicit equation: contour the residual at 0
	equality bool

	realFns    []expr.RealFunc
	complexFns []expr.ComplexFunc

	logger l.Wrapper

	mu      sync.Mutex
	last    *Data
	lastKey string
	hasLast bool
}

type options struct {
	n           []int
	adaptive    *bool
	depth       int
	label       string
	opts        *render.Options
	interactive bool
	streamlines bool
	scale       float64
	phaseres    int
	part        Part
	threed      bool
	filled      *bool
	useCM       bool
	isPoint     bool
	xscale      string
	logger      l.Wrapper
}

type Option func(*options)

// WithN sets the sample count. One value applies to every axis; two or
// three set the axes in order. Adaptive sampling ignores it: lines and
// surface axes are refined by depth instead, so N only takes effect with
// WithAdaptive(false) or on interactive series.
func WithN(n ...int) Option { return func(o *options) { o.n = n } }

func WithAdaptive(b bool) Option { return func(o *options) { o.adaptive = &b } }

// WithDepth sets the maximum refinement depth of adaptive sampling.
func WithDepth(d int) Option { return func(o *options) { o.depth = d } }

func WithLabel(label string) Option { return func(o *options) { o.label = label } }

// WithRenderingKW attaches backend options. They are passed through
// untouched.
func WithRenderingKW(kw *render.Options) Option { return func(o *options) { o.opts = kw } }

// WithInteractive allows parameters in expressions and range bounds.
// Interactive series always sample uniformly.
func WithInteractive(b bool) Option { return func(o *options) { o.interactive = b } }

func WithStreamlines(b bool) Option { return func(o *options) { o.streamlines = b } }

// WithScale sets the quiver arrow scale.
func WithScale(f float64) Option { return func(o *options) { o.scale = f } }

func WithPhaseRes(n int) Option { return func(o *options) { o.phaseres = n } }

func WithPart(p Part) Option { return func(o *options) { o.part = p } }

func WithThreeD(b bool) Option { return func(o *options) { o.threed = b } }

func WithFilled(b bool) Option { return func(o *options) { o.filled = &b } }

func WithUseCM(b bool) Option { return func(o *options) { o.useCM = b } }

func WithIsPoint(b bool) Option { return func(o *options) { o.isPoint = b } }

// WithXScale selects "linear" or "log" spacing for the range of a line.
func WithXScale(scale string) Option { return func(o *options) { o.xscale = scale } }

func WithLogger(logger l.Wrapper) Option { return func(o *options) { o.logger = logger } }

// New builds a series of the given kind. Expression and range counts
// must match Kind.Arity.
func New(kind Kind, exprs []expr.Expr, ranges []Range, opts ...Option) (*Series, error) {
	if kind == Geometry {
		return nil, fmt.Errorf("%w: geometry series take an entity", ErrArity)
	}
	nexpr, nranges := kind.Arity()
	if (nexpr < 0 && len(exprs) == 0) || (nexpr >= 0 && len(exprs) != nexpr) {
		return nil, fmt.Errorf("%w: %s takes %d expressions, got %d", ErrArity, kind, nexpr, len(exprs))
	}
	if len(ranges) != nranges {
		return nil, fmt.Errorf("%w: %s takes %d ranges, got %d", ErrArity, kind, nranges, len(ranges))
	}
	seen := map[string]struct{}{}
	for _, r := range ranges {
		if _, dup := seen[r.Symbol]; dup {
			return nil, fmt.Errorf("%w: duplicate range symbol %s", ErrArity, r.Symbol)
		}
		seen[r.Symbol] = struct{}{}
	}
	if kind == ComplexDomainColoring && !ranges[0].IsComplex() {
		return nil, fmt.Errorf("%w: domain coloring needs a complex range, got %s", ErrInvalidOption, ranges[0])
	}

	s := newSeries(kind, opts)
	s.exprs = append([]expr.Expr(nil), exprs...)
	s.ranges = append([]Range(nil), ranges...)

	free := map[string]struct{}{}
	for _, e := range exprs {
		for k := range expr.FreeSymbols(e) {
			free[k] = struct{}{}
		}
	}
	for _, r := range ranges {
		for _, k := range r.FreeSymbols() {
			free[k] = struct{}{}
		}
	}
	for _, r := range ranges {
		delete(free, r.Symbol)
	}
	s.params = sortedKeys(free)
	if len(s.params) > 0 && !s.interactive {
		return nil, fmt.Errorf("%w: %s", ErrFreeSymbol, strings.Join(s.params, ", "))
	}
	if err := s.compile(); err != nil {
		return nil, err
	}
	if s.label == "" {
		s.label = s.defaultLabel()
	}
	return s, nil
}

// NewGeometry builds a series tracing the boundary of entity.
func NewGeometry(entity geom.Entity, opts ...Option) (*Series, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: nil entity", ErrArity)
	}
	s := newSeries(Geometry, opts)
	s.entity = entity
	s.params = geom.FreeSymbols(entity)
	if len(s.params) > 0 && !s.interactive {
		return nil, fmt.Errorf("%w: %s", ErrFreeSymbol, strings.Join(s.params, ", "))
	}
	if s.label == "" {
		s.label = entity.String()
	}
	return s, nil
}

func newSeries(kind Kind, opts []Option) *Series {
	o := options{scale: 1, phaseres: defaultPhaseRes}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = l.NewNopLoggerWrapper()
	}
	s := &Series{
		kind:        kind,
		label:       o.label,
		opts:        o.opts,
		interactive: o.interactive,
		streamlines: o.streamlines,
		scale:       o.scale,
		phaseres:    o.phaseres,
		part:        o.part,
		threed:      o.threed,
		useCM:       o.useCM,
		isPoint:     o.isPoint,
		xscale:      o.xscale,
		logger:      o.logger.WithFields(l.StringField(l.ClsKey, "seriesImpl"), l.StringField("kind", kind.String())),
	}
	if s.scale <= 0 || math.IsNaN(s.scale) {
		s.scale = 1
	}
	if s.phaseres <= 0 {
		s.phaseres = defaultPhaseRes
	}
	s.filled = o.filled == nil || *o.filled

	def := defaultN(kind, o.interactive)
	s.n = [3]int{def, def, def}
	switch len(o.n) {
	case 0:
	case 1:
		s.n = [3]int{o.n[0], o.n[0], o.n[0]}
	case 2:
		s.n = [3]int{o.n[0], o.n[1], o.n[1]}
	default:
		s.n = [3]int{o.n[0], o.n[1], o.n[2]}
	}
	for i := range s.n {
		if s.n[i] < 2 {
			s.n[i] = 2
		}
	}

	switch {
	case o.adaptive != nil:
		s.adaptive = *o.adaptive
	case kind == Line2D || kind == Parametric2D || kind == Parametric3D:
		s.adaptive = true
	}
	if s.interactive && s.adaptive {
		s.logger.Debug("interactive series sample uniformly, adaptive disabled")
		s.adaptive = false
	}

	s.depth = o.depth
	if s.depth <= 0 {
		s.depth = defaultDepth
		if kind == Implicit2D {
			s.depth = defaultImplicitDeep
		}
	}

	if s.opts == nil {
		s.opts = render.NewOptions()
	}
	if unknown := render.Check(s.opts.Keys(), KnownKeys(kind)); len(unknown) > 0 {
		for _, u := range unknown {
			s.logger.WithFields(l.StringField("key", u.Key), l.StringField("match", u.Match)).
				Debug("unknown option, did you mean the match?")
		}
	}
	return s
}

func defaultN(kind Kind, interactive bool) int {
	switch kind {
	case Line2D, Parametric2D, Parametric3D, ComplexLine:
		return defaultLineN
	case Surface, Contour, ParametricSurface:
		if interactive {
			return interactiveGridN
		}
		return defaultGridN
	case Vector2D, Vector3D:
		if interactive {
			return interactiveGridN
		}
		return defaultVectorN
	case Implicit2D:
		return defaultImplicitN
	case ComplexDomainColoring:
		return defaultColoringN
	case Geometry:
		return defaultGeometryN
	}
	return defaultLineN
}

func (s *Series) vars() []string {
	return append(rangeSymbols(s.ranges), s.params...)
}

func (s *Series) compile() error {
	vars := s.vars()
	switch s.kind {
	case ComplexLine, ComplexDomainColoring, ComplexPoints:
		for _, e := range s.exprs {
			f, err := expr.CompileComplex(e, vars)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrFreeSymbol, err)
			}
			s.complexFns = append(s.complexFns, f)
		}
		return nil
	case Implicit2D:
		e := s.exprs[0]
		if r, ok := e.(*expr.Rel); ok && r.IsEquality() {
			e, s.equality = r.Residual(), true
		} else if !expr.IsBoolean(e) {
			s.equality = true
		}
		f, err := expr.Compile(e, vars)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFreeSymbol, err)
		}
		s.realFns = []expr.RealFunc{f}
		return nil
	}
	for _, e := range s.exprs {
		f, err := expr.Compile(e, vars)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFreeSymbol, err)
		}
		s.realFns = append(s.realFns, f)
	}
	return nil
}

func (s *Series) defaultLabel() string {
	switch s.kind {
	case Parametric2D, Parametric3D, ParametricSurface, Vector2D, Vector3D:
		return "(" + joinExprs(s.exprs) + ")"
	case ComplexLine:
		return s.part.String() + "(" + s.exprs[0].String() + ")"
	case ComplexPoints:
		if len(s.exprs) == 1 {
			return s.exprs[0].String()
		}
		return "[" + joinExprs(s.exprs) + "]"
	}
	return s.exprs[0].String()
}

func joinExprs(es []expr.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func (s *Series) Kind() Kind { return s.kind }

// Exprs returns a copy of the expressions.
func (s *Series) Exprs() []expr.Expr { return append([]expr.Expr(nil), s.exprs...) }

// Ranges returns a copy of the ranges.
func (s *Series) Ranges() []Range { return append([]Range(nil), s.ranges...) }

func (s *Series) Entity() geom.Entity { return s.entity }
func (s *Series) Label() string       { return s.label }

// Options returns the rendering options. Callers must not modify them.
func (s *Series) Options() *render.Options { return s.opts }

func (s *Series) N() [3]int           { return s.n }
func (s *Series) Adaptive() bool      { return s.adaptive }
func (s *Series) Depth() int          { return s.depth }
func (s *Series) IsInteractive() bool { return s.interactive }
func (s *Series) Streamlines() bool   { return s.streamlines }
func (s *Series) Scale() float64      { return s.scale }
func (s *Series) PhaseRes() int       { return s.phaseres }
func (s *Series) Part() Part          { return s.part }
func (s *Series) ThreeD() bool        { return s.threed }
func (s *Series) Filled() bool        { return s.filled }
func (s *Series) UseCM() bool         { return s.useCM }
func (s *Series) IsPoint() bool       { return s.isPoint }
func (s *Series) IsEquality() bool    { return s.equality }

func (s *Series) Is2DVector() bool   { return s.kind == Vector2D }
func (s *Series) Is3DVector() bool   { return s.kind == Vector3D }
func (s *Series) IsParametric() bool { return s.kind.IsParametric() }
func (s *Series) IsComplex() bool    { return s.kind.IsComplex() }

// Is3D reports whether the series needs a 3D canvas.
func (s *Series) Is3D() bool {
	return s.kind.Is3D() || (s.kind == ComplexDomainColoring && s.threed)
}

// Params returns the sorted parameter symbols of the series: free
// symbols of expressions and range bounds that are not range symbols.
func (s *Series) Params() []string { return append([]string(nil), s.params...) }

// DependsOn reports whether the series references the parameter sym.
func (s *Series) DependsOn(sym string) bool {
	for _, p := range s.params {
		if p == sym {
			return true
		}
	}
	return false
}

// Snapshot encodes the values of the series' parameters bit-exactly.
// Equal snapshots yield identical data.
func (s *Series) Snapshot(params map[string]float64) string {
	var b strings.Builder
	for i, p := range s.params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p)
		b.WriteByte('=')
		b.WriteString(strconv.FormatUint(math.Float64bits(params[p]), 16))
	}
	return b.String()
}

// Evaluate samples the series for the given parameter values. Every
// parameter of an interactive series must have a value; other entries
// are ignored. The result is cached per snapshot.
func (s *Series) Evaluate(params map[string]float64) (*Data, error) {
	var missing []string
	for _, p := range s.params {
		if _, ok := params[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingValue, strings.Join(missing, ", "))
	}
	values := make(map[string]float64, len(s.params))
	for _, p := range s.params {
		values[p] = params[p]
	}

	key := s.Snapshot(values)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasLast && s.lastKey == key {
		return s.last, nil
	}

	data, err := s.evaluate(values)
	if err != nil {
		s.logger.WithFields(l.ErrorField(err), l.StringField("label", s.label)).Error("evaluate failed")
		return nil, err
	}
	data.Kind, data.Label = s.kind, s.label
	s.last, s.lastKey, s.hasLast = data, key, true
	return data, nil
}

func (s *Series) evaluate(values map[string]float64) (*Data, error) {
	switch s.kind {
	case Line2D, Parametric2D, Parametric3D:
		return s.evalLine(values)
	case Surface, Contour:
		return s.evalSurface(values)
	case ParametricSurface:
		return s.evalMesh(values)
	case Implicit2D:
		return s.evalImplicit(values)
	case Vector2D:
		return s.evalVector2D(values)
	case Vector3D:
		return s.evalVector3D(values)
	case ComplexLine:
		return s.evalComplexLine(values)
	case ComplexDomainColoring:
		return s.evalDomainColoring(values)
	case ComplexPoints:
		return s.evalComplexPoints(values)
	case Geometry:
		return s.evalGeometry(values)
	}
	return nil, fmt.Errorf("%w: unknown kind %d", ErrArity, int(s.kind))
}

// argBuffer returns a slice laid out like vars(): range coordinates
// first, parameter values after.
func (s *Series) argBuffer(values map[string]float64) []float64 {
	args := make([]float64, len(s.ranges)+len(s.params))
	for i, p := range s.params {
		args[len(s.ranges)+i] = values[p]
	}
	return args
}

func (s *Series) resolve(values map[string]float64) ([][2]float64, error) {
	out := make([][2]float64, len(s.ranges))
	for i, r := range s.ranges {
		lo, hi, err := r.Resolve(values)
		if err != nil {
			return nil, err
		}
		out[i] = [2]float64{lo, hi}
	}
	return out, nil
}
