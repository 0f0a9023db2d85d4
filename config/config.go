// Package config reads plot documents: YAML or JSON files naming an
// entry point, its expressions and ranges, interactive parameters,
// settings and the backend.
//
//	entry: plot
//	backend: gonumplot
//	series:
//	  - exprs: ["a*sin(x)"]
//	    ranges: [{symbol: x, min: -pi, max: pi}]
//	params:
//	  - {symbol: a, default: 1, min: 0, max: 2}
//	settings: {title: demo, show: false}
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/njchilds90/gosymplot"
	"github.com/njchilds90/gosymplot/expr"
	"github.com/njchilds90/gosymplot/geom"
	"github.com/njchilds90/gosymplot/interactive"
	"github.com/njchilds90/gosymplot/normalize"
	"github.com/njchilds90/gosymplot/plot"
	"github.com/njchilds90/gosymplot/render"
	"github.com/sgostarter/i/commerr"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidDocument = fmt.Errorf("config: invalid document: %w", commerr.ErrInvalidArgument)
	ErrUnknownEntry    = fmt.Errorf("config: unknown entry: %w", commerr.ErrInvalidArgument)
)

var entries = map[string]gosymplot.EntryPoint{
	"plot":               gosymplot.Plot,
	"parametric":         gosymplot.PlotParametric,
	"parametric3d":       gosymplot.Plot3DParametricLine,
	"plot3d":             gosymplot.Plot3D,
	"parametric_surface": gosymplot.Plot3DParametricSurface,
	"contour":            gosymplot.PlotContour,
	"implicit":           gosymplot.PlotImplicit,
	"vector":             gosymplot.PlotVector,
	"complex":            gosymplot.PlotComplex,
	"complex_list":       gosymplot.PlotComplexList,
	"geometry":           gosymplot.PlotGeometry,
}

// Entries lists the entry names in sorted order.
func Entries() []string {
	out := make([]string, 0, len(entries))
	for k := range entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type Document struct {
	Entry    string          `yaml:"entry" json:"entry"`
	Backend  string          `yaml:"backend,omitempty" json:"backend,omitempty"`
	Series   []Series        `yaml:"series,omitempty" json:"series,omitempty"`
	Entities []Entity        `yaml:"entities,omitempty" json:"entities,omitempty"`
	Ranges   []Range         `yaml:"ranges,omitempty" json:"ranges,omitempty"`
	Params   []Param         `yaml:"params,omitempty" json:"params,omitempty"`
	Settings render.Settings `yaml:"settings,omitempty" json:"settings,omitempty"`
	// Options holds plot-level bags such as line_kw.
	Options  *render.Options `yaml:"options,omitempty" json:"options,omitempty"`
	Sampling Sampling        `yaml:"sampling,omitempty" json:"sampling,omitempty"`
	Layout   Layout          `yaml:"layout,omitempty" json:"layout,omitempty"`
}

// Series is one expression group. For complex_list the expressions are
// the points.
type Series struct {
	Exprs   []string        `yaml:"exprs" json:"exprs"`
	Ranges  []Range         `yaml:"ranges,omitempty" json:"ranges,omitempty"`
	Label   string          `yaml:"label,omitempty" json:"label,omitempty"`
	Options *render.Options `yaml:"options,omitempty" json:"options,omitempty"`
}

// Range bounds are numbers or expression strings such as "-2 - 2*I".
type Range struct {
	Symbol string      `yaml:"symbol" json:"symbol"`
	Min    interface{} `yaml:"min" json:"min"`
	Max    interface{} `yaml:"max" json:"max"`
}

// Param declares one interactive parameter. Kind is number (default),
// integer, boolean or choice; number params take Scale linear or log.
type Param struct {
	Symbol  string      `yaml:"symbol" json:"symbol"`
	Kind    string      `yaml:"kind,omitempty" json:"kind,omitempty"`
	Default interface{} `yaml:"default" json:"default"`
	Min     float64     `yaml:"min,omitempty" json:"min,omitempty"`
	Max     float64     `yaml:"max,omitempty" json:"max,omitempty"`
	Steps   int         `yaml:"steps,omitempty" json:"steps,omitempty"`
	Label   string      `yaml:"label,omitempty" json:"label,omitempty"`
	Scale   string      `yaml:"scale,omitempty" json:"scale,omitempty"`
	Choices []float64   `yaml:"choices,omitempty" json:"choices,omitempty"`
	Labels  []string    `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// Entity is a geometric entity: point, segment, polygon, circle or
// ellipse. Coordinates and radii are numbers or expression strings.
type Entity struct {
	Type    string          `yaml:"type" json:"type"`
	Points  [][]interface{} `yaml:"points" json:"points"`
	Radii   []interface{}   `yaml:"radii,omitempty" json:"radii,omitempty"`
	Label   string          `yaml:"label,omitempty" json:"label,omitempty"`
	Options *render.Options `yaml:"options,omitempty" json:"options,omitempty"`
}

type Sampling struct {
	N           []int       `yaml:"n,omitempty" json:"n,omitempty"`
	Adaptive    *bool       `yaml:"adaptive,omitempty" json:"adaptive,omitempty"`
	Depth       int         `yaml:"depth,omitempty" json:"depth,omitempty"`
	UseCM       *bool       `yaml:"use_cm,omitempty" json:"use_cm,omitempty"`
	IsPoint     bool        `yaml:"is_point,omitempty" json:"is_point,omitempty"`
	Streamlines bool        `yaml:"streamlines,omitempty" json:"streamlines,omitempty"`
	Scale       float64     `yaml:"scale,omitempty" json:"scale,omitempty"`
	Scalar      interface{} `yaml:"scalar,omitempty" json:"scalar,omitempty"`
	AbsArg      bool        `yaml:"absarg,omitempty" json:"absarg,omitempty"`
	ThreeD      bool        `yaml:"threed,omitempty" json:"threed,omitempty"`
	PhaseRes    int         `yaml:"phaseres,omitempty" json:"phaseres,omitempty"`
	Filled      *bool       `yaml:"is_filled,omitempty" json:"is_filled,omitempty"`
}

type Layout struct {
	Kind     string `yaml:"kind,omitempty" json:"kind,omitempty"`
	NCols    int    `yaml:"ncols,omitempty" json:"ncols,omitempty"`
	UseLatex bool   `yaml:"use_latex,omitempty" json:"use_latex,omitempty"`
}

// Parse reads a YAML or JSON document.
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Validate checks the parts every entry needs. Expressions are checked
// when the plot is built.
func (d *Document) Validate() error {
	if d.Entry == "" {
		d.Entry = "plot"
	}
	if _, ok := entries[d.Entry]; !ok {
		return fmt.Errorf("%w: %q, have %s", ErrUnknownEntry, d.Entry, strings.Join(Entries(), ", "))
	}
	if d.Entry == "geometry" {
		if len(d.Entities) == 0 {
			return fmt.Errorf("%w: geometry needs entities", ErrInvalidDocument)
		}
	} else if len(d.Series) == 0 {
		return fmt.Errorf("%w: no series", ErrInvalidDocument)
	}
	for i, s := range d.Series {
		if len(s.Exprs) == 0 {
			return fmt.Errorf("%w: series %d has no expressions", ErrInvalidDocument, i)
		}
	}
	seen := map[string]bool{}
	for _, p := range d.Params {
		if p.Symbol == "" || seen[p.Symbol] {
			return fmt.Errorf("%w: param symbol %q missing or repeated", ErrInvalidDocument, p.Symbol)
		}
		seen[p.Symbol] = true
	}
	return nil
}

func (d *Document) EntryPoint() (gosymplot.EntryPoint, error) {
	e, ok := entries[d.Entry]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntry, d.Entry)
	}
	return e, nil
}

func (d *Document) Interactive() bool { return len(d.Params) > 0 }

// ParamSpecs converts the params, or returns nil when there are none.
func (d *Document) ParamSpecs() (*interactive.ParamSpecs, error) {
	if len(d.Params) == 0 {
		return nil, nil
	}
	specs := interactive.NewParamSpecs()
	for _, p := range d.Params {
		spec, err := p.spec()
		if err != nil {
			return nil, err
		}
		specs.Add(p.Symbol, spec)
	}
	return specs, nil
}

func (p Param) spec() (interface{}, error) {
	switch strings.ToLower(p.Kind) {
	case "", "number":
		def, err := cast.ToFloat64E(p.Default)
		if err != nil {
			return nil, fmt.Errorf("%w: param %s default: %v", ErrInvalidDocument, p.Symbol, err)
		}
		t := []interface{}{def, []interface{}{p.Min, p.Max}, nil, nil, nil}
		if p.Steps > 0 {
			t[2] = p.Steps
		}
		if p.Label != "" {
			t[3] = p.Label
		}
		if p.Scale != "" {
			t[4] = p.Scale
		}
		return t, nil
	case "integer":
		def, err := cast.ToIntE(p.Default)
		if err != nil {
			return nil, fmt.Errorf("%w: param %s default: %v", ErrInvalidDocument, p.Symbol, err)
		}
		return interactive.IntegerControl{Default: def, Min: int(p.Min), Max: int(p.Max), Label: p.Label}, nil
	case "boolean":
		def, err := cast.ToBoolE(p.Default)
		if err != nil {
			return nil, fmt.Errorf("%w: param %s default: %v", ErrInvalidDocument, p.Symbol, err)
		}
		return interactive.BooleanControl{Default: def, Label: p.Label}, nil
	case "choice":
		def, err := cast.ToFloat64E(p.Default)
		if err != nil {
			return nil, fmt.Errorf("%w: param %s default: %v", ErrInvalidDocument, p.Symbol, err)
		}
		return interactive.ChoiceControl{Default: def, Choices: p.Choices, Labels: p.Labels, Label: p.Label}, nil
	}
	return nil, fmt.Errorf("%w: param %s kind %q", ErrInvalidDocument, p.Symbol, p.Kind)
}

// Args returns the positional arguments and options for the entry
// point.
func (d *Document) Args() ([]interface{}, error) {
	var args []interface{}
	if d.Entry == "geometry" {
		for _, e := range d.Entities {
			ent, err := e.entity()
			if err != nil {
				return nil, err
			}
			args = append(args, ent)
			if e.Label != "" {
				args = append(args, e.Label)
			}
			if e.Options != nil {
				args = append(args, e.Options)
			}
		}
		return append(args, d.options()...), nil
	}

	for i, s := range d.Series {
		group := make([]interface{}, 0, len(s.Exprs)+len(s.Ranges)+2)
		for _, src := range s.Exprs {
			e, err := expr.Parse(src)
			if err != nil {
				return nil, fmt.Errorf("config: series %d: %w", i, err)
			}
			group = append(group, e)
		}
		for _, r := range s.Ranges {
			nr, err := r.normalize()
			if err != nil {
				return nil, err
			}
			group = append(group, nr)
		}
		if s.Label != "" {
			group = append(group, s.Label)
		}
		if s.Options != nil {
			group = append(group, s.Options)
		}
		args = append(args, group)
	}
	for _, r := range d.Ranges {
		nr, err := r.normalize()
		if err != nil {
			return nil, err
		}
		args = append(args, nr)
	}
	return append(args, d.options()...), nil
}

func (r Range) normalize() (normalize.Range, error) {
	if r.Symbol == "" {
		return normalize.Range{}, fmt.Errorf("%w: range without symbol", ErrInvalidDocument)
	}
	lo, err := toExpr(r.Min)
	if err != nil {
		return normalize.Range{}, fmt.Errorf("config: range %s min: %w", r.Symbol, err)
	}
	hi, err := toExpr(r.Max)
	if err != nil {
		return normalize.Range{}, fmt.Errorf("config: range %s max: %w", r.Symbol, err)
	}
	return normalize.R(r.Symbol, lo, hi), nil
}

func toExpr(v interface{}) (expr.Expr, error) {
	if s, ok := v.(string); ok {
		return expr.Parse(s)
	}
	return normalize.ToExpr(v)
}

func (e Entity) point(i int) (geom.Point, error) {
	if i >= len(e.Points) || len(e.Points[i]) != 2 {
		return geom.Point{}, fmt.Errorf("%w: %s point %d needs two coordinates", ErrInvalidDocument, e.Type, i)
	}
	x, err := toExpr(e.Points[i][0])
	if err != nil {
		return geom.Point{}, err
	}
	y, err := toExpr(e.Points[i][1])
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Pt(x, y), nil
}

func (e Entity) radius(i int) (expr.Expr, error) {
	if i >= len(e.Radii) {
		return nil, fmt.Errorf("%w: %s needs %d radii", ErrInvalidDocument, e.Type, i+1)
	}
	return toExpr(e.Radii[i])
}

func (e Entity) entity() (geom.Entity, error) {
	switch strings.ToLower(e.Type) {
	case "point":
		return e.point(0)
	case "segment":
		p1, err := e.point(0)
		if err != nil {
			return nil, err
		}
		p2, err := e.point(1)
		if err != nil {
			return nil, err
		}
		return geom.Segment{P1: p1, P2: p2}, nil
	case "polygon":
		if len(e.Points) < 3 {
			return nil, fmt.Errorf("%w: polygon needs three points", ErrInvalidDocument)
		}
		vs := make([]geom.Point, len(e.Points))
		for i := range e.Points {
			p, err := e.point(i)
			if err != nil {
				return nil, err
			}
			vs[i] = p
		}
		return geom.NewPolygon(vs...), nil
	case "circle":
		c, err := e.point(0)
		if err != nil {
			return nil, err
		}
		r, err := e.radius(0)
		if err != nil {
			return nil, err
		}
		return geom.Circle{Center: c, Radius: r}, nil
	case "ellipse":
		c, err := e.point(0)
		if err != nil {
			return nil, err
		}
		hr, err := e.radius(0)
		if err != nil {
			return nil, err
		}
		vr, err := e.radius(1)
		if err != nil {
			return nil, err
		}
		return geom.Ellipse{Center: c, HRadius: hr, VRadius: vr}, nil
	}
	return nil, fmt.Errorf("%w: entity type %q", ErrInvalidDocument, e.Type)
}

func (d *Document) options() []interface{} {
	s := d.Sampling
	opts := []interface{}{gosymplot.WithSettings(d.Settings)}
	if d.Backend != "" {
		opts = append(opts, gosymplot.WithBackendName(d.Backend))
	}
	if len(s.N) > 0 {
		opts = append(opts, gosymplot.WithN(s.N...))
	}
	if s.Adaptive != nil {
		opts = append(opts, gosymplot.WithAdaptive(*s.Adaptive))
	}
	if s.Depth > 0 {
		opts = append(opts, gosymplot.WithDepth(s.Depth))
	}
	if s.UseCM != nil {
		opts = append(opts, gosymplot.WithUseCM(*s.UseCM))
	}
	if s.Filled != nil {
		opts = append(opts, gosymplot.WithFilled(*s.Filled))
	}
	if s.Scalar != nil {
		opts = append(opts, gosymplot.WithScalar(s.Scalar))
	}
	opts = append(opts,
		gosymplot.WithIsPoint(s.IsPoint),
		gosymplot.WithStreamlines(s.Streamlines),
		gosymplot.WithScale(s.Scale),
		gosymplot.WithAbsArg(s.AbsArg),
		gosymplot.WithThreeD(s.ThreeD),
		gosymplot.WithPhaseRes(s.PhaseRes),
	)
	if d.Options.Len() > 0 {
		opts = append(opts, gosymplot.WithOptions(d.Options))
	}
	if d.Layout.Kind != "" || d.Layout.NCols > 0 {
		kind := d.Layout.Kind
		if kind == "" {
			kind = interactive.LayoutTopBar
		}
		opts = append(opts, gosymplot.WithLayout(kind, d.Layout.NCols))
	}
	if d.Layout.UseLatex {
		opts = append(opts, gosymplot.WithUseLatex(true))
	}
	return opts
}

// Build creates the plot. extra are appended to the arguments, e.g.
// options overriding the document.
func (d *Document) Build(extra ...interface{}) (*plot.Plot, error) {
	entry, args, err := d.prepare(extra)
	if err != nil {
		return nil, err
	}
	return entry(args...)
}

// BuildInteractive creates the plot with its parameters bound to
// controls.
func (d *Document) BuildInteractive(extra ...interface{}) (*interactive.InteractivePlot, error) {
	entry, args, err := d.prepare(extra)
	if err != nil {
		return nil, err
	}
	return gosymplot.IPlot(entry, args...)
}

func (d *Document) prepare(extra []interface{}) (gosymplot.EntryPoint, []interface{}, error) {
	entry, err := d.EntryPoint()
	if err != nil {
		return nil, nil, err
	}
	args, err := d.Args()
	if err != nil {
		return nil, nil, err
	}
	specs, err := d.ParamSpecs()
	if err != nil {
		return nil, nil, err
	}
	if specs != nil {
		args = append(args, gosymplot.WithParams(specs))
	}
	return entry, append(args, extra...), nil
}
