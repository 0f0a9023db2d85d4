// Package gosymplot plots symbolic expressions. Each entry point takes
// loose positional arguments (expressions, ranges, labels, option maps)
// mixed with Options, builds the matching series and returns a plot
// drawn by one of the backends.
//
//	x := expr.S("x")
//	p, err := gosymplot.Plot(expr.SinOf(x), normalize.R(x, -5, 5), gosymplot.WithTitle("sine"))
//	if err != nil { ... }
//	err = p.Show(os.Stdout)
package gosymplot

import (
	"fmt"

	"github.com/njchilds90/gosymplot/backend"
	"github.com/njchilds90/gosymplot/expr"
	"github.com/njchilds90/gosymplot/geom"
	"github.com/njchilds90/gosymplot/interactive"
	"github.com/njchilds90/gosymplot/normalize"
	"github.com/njchilds90/gosymplot/plot"
	"github.com/njchilds90/gosymplot/render"
	"github.com/njchilds90/gosymplot/series"
	"github.com/sgostarter/i/commerr"
	"github.com/sgostarter/i/l"
)

var (
	ErrNoParams  = fmt.Errorf("gosymplot: interactive plot without params: %w", commerr.ErrInvalidArgument)
	ErrNoEntity  = fmt.Errorf("gosymplot: no geometric entity: %w", commerr.ErrInvalidArgument)
	ErrNoPoints  = fmt.Errorf("gosymplot: no complex points: %w", commerr.ErrInvalidArgument)
	ErrBadScalar = fmt.Errorf("gosymplot: unsupported scalar field: %w", commerr.ErrInvalidArgument)
)

// EntryPoint is the signature shared by the plotting functions.
type EntryPoint func(args ...interface{}) (*plot.Plot, error)

// ============================================================
// Lines
// ============================================================

// Plot draws functions of one variable.
func Plot(args ...interface{}) (*plot.Plot, error) {
	return plotKind(series.Line2D, args)
}

// PlotParametric draws 2D parametric curves (x(t), y(t)), coloured by
// the parameter unless WithUseCM(false) is given.
func PlotParametric(args ...interface{}) (*plot.Plot, error) {
	return plotKind(series.Parametric2D, append(args, defaultUseCM()))
}

// Plot3DParametricLine draws 3D parametric curves (x(t), y(t), z(t)).
func Plot3DParametricLine(args ...interface{}) (*plot.Plot, error) {
	return plotKind(series.Parametric3D, append(args, defaultUseCM()))
}

// ============================================================
// Surfaces and contours
// ============================================================

// Plot3D draws surfaces z = f(x, y).
func Plot3D(args ...interface{}) (*plot.Plot, error) {
	return plotKind(series.Surface, args)
}

// Plot3DParametricSurface draws surfaces (x(u, v), y(u, v), z(u, v)).
func Plot3DParametricSurface(args ...interface{}) (*plot.Plot, error) {
	return plotKind(series.ParametricSurface, args)
}

func PlotContour(args ...interface{}) (*plot.Plot, error) {
	return plotKind(series.Contour, args)
}

// PlotImplicit draws the region where a predicate holds, or the zero set
// of an equation or plain expression.
func PlotImplicit(args ...interface{}) (*plot.Plot, error) {
	return plotKind(series.Implicit2D, args)
}

// defaultUseCM turns the colormap on unless an option set it already.
// It runs last, after the caller's options.
func defaultUseCM() Option {
	return func(c *config) {
		if c.useCM == nil {
			c.useCM = render.Bool(true)
		}
	}
}

func plotKind(kind series.Kind, args []interface{}) (*plot.Plot, error) {
	rest, c := split(args)
	nexpr, npar := kind.Arity()
	list, err := normalize.CheckArguments(rest, nexpr, npar, c.checkOptions()...)
	if err != nil {
		return nil, err
	}
	ss := make([]*series.Series, 0, len(list))
	for i, a := range list {
		s, err := series.New(kind, a.Exprs, a.Ranges, c.argOptions(i, a)...)
		if err != nil {
			return nil, err
		}
		ss = append(ss, s)
	}
	return c.newPlot(ss)
}

// ============================================================
// Vector fields
// ============================================================

// PlotVector draws 2D or 3D vector fields given as column vectors or
// expression lists. 2D fields get a companion contour, see WithScalar.
func PlotVector(args ...interface{}) (*plot.Plot, error) {
	rest, c := split(args)
	dim := vectorDim(rest)
	kind := series.Vector2D
	if dim == 3 {
		kind = series.Vector3D
	}
	list, err := normalize.CheckArguments(rest, dim, dim, c.checkOptions()...)
	if err != nil {
		return nil, err
	}
	var ss []*series.Series
	for i, a := range list {
		if kind == series.Vector2D {
			sc, err := c.scalarSeries(a)
			if err != nil {
				return nil, err
			}
			if sc != nil {
				ss = append(ss, sc)
			}
		}
		s, err := series.New(kind, a.Exprs, a.Ranges, c.argOptions(i, a)...)
		if err != nil {
			return nil, err
		}
		ss = append(ss, s)
	}
	return c.newPlot(ss)
}

// vectorDim reads the field dimension from the first field: the rows
// of a column vector, the length of a list or the run of leading
// expressions.
func vectorDim(args []interface{}) int {
	n := 0
scan:
	for _, a := range args {
		switch v := a.(type) {
		case *expr.Matrix:
			if n == 0 {
				return v.Rows()
			}
			break scan
		case []expr.Expr:
			if n == 0 {
				return len(v)
			}
			break scan
		case []interface{}:
			if n == 0 {
				return vectorDim(v)
			}
			break scan
		case expr.Expr:
			n++
		default:
			break scan
		}
	}
	if n == 3 {
		return 3
	}
	return 2
}

func (c *config) scalarSeries(a normalize.Args) (*series.Series, error) {
	var field expr.Expr
	label := ""
	switch v := c.scalar.(type) {
	case nil:
		return nil, nil
	case bool:
		if !v {
			return nil, nil
		}
		u, w := a.Exprs[0], a.Exprs[1]
		field = expr.SqrtOf(expr.AddOf(expr.PowOf(u, expr.N(2)), expr.PowOf(w, expr.N(2))))
		label = "Magnitude"
	case expr.Expr:
		field = v
	case string:
		e, err := expr.Parse(v)
		if err != nil {
			return nil, err
		}
		field = e
	default:
		return nil, fmt.Errorf("%w: %T", ErrBadScalar, c.scalar)
	}
	opts := []series.Option{series.WithLogger(c.logger), series.WithRenderingKW(a.Options)}
	if label != "" {
		opts = append(opts, series.WithLabel(label))
	}
	if len(c.n) > 0 {
		opts = append(opts, series.WithN(c.n...))
	}
	if c.params != nil {
		opts = append(opts, series.WithInteractive(true))
	}
	return series.New(series.Contour, []expr.Expr{field}, a.Ranges, opts...)
}

// ============================================================
// Complex functions
// ============================================================

// PlotComplex draws complex functions. Over a real range it draws the
// real and imaginary parts, or modulus and argument with
// WithAbsArg(true); over a complex range it draws a domain colouring,
// as a surface with WithThreeD(true). Arguments without free symbols or
// ranges are drawn as points, like PlotComplexList.
func PlotComplex(args ...interface{}) (*plot.Plot, error) {
	rest, c := split(args)
	if pointsOnly(rest) {
		return PlotComplexList(args...)
	}
	list, err := normalize.CheckArguments(rest, 1, 1, c.checkOptions()...)
	if err != nil {
		return nil, err
	}
	var ss []*series.Series
	add := func(kind series.Kind, a normalize.Args, opts ...series.Option) error {
		s, err := series.New(kind, a.Exprs, a.Ranges, append(c.argOptions(len(ss), a), opts...)...)
		if err != nil {
			return err
		}
		ss = append(ss, s)
		return nil
	}
	for _, a := range list {
		switch {
		case a.Ranges[0].IsComplex():
			err = add(series.ComplexDomainColoring, a)
		case c.absarg:
			err = add(series.ComplexLine, a, series.WithPart(series.PartAbsArg))
		default:
			for _, part := range []series.Part{series.PartReal, series.PartImag} {
				var opts []series.Option
				opts = append(opts, series.WithPart(part))
				if a.Label != "" && len(ss) >= len(c.labels) {
					opts = append(opts, series.WithLabel(part.String()+"("+a.Label+")"))
				}
				if err = add(series.ComplexLine, a, opts...); err != nil {
					break
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return c.newPlot(ss)
}

// pointsOnly reports whether args hold only constant numbers, with
// labels and option maps.
func pointsOnly(args []interface{}) bool {
	items, err := normalize.Sympify(expandComplex(args)...)
	if err != nil {
		return false
	}
	found := false
	var walk func([]interface{}) bool
	walk = func(items []interface{}) bool {
		for _, it := range items {
			switch v := it.(type) {
			case expr.Expr:
				if len(expr.SortedSymbols(v)) > 0 {
					return false
				}
				found = true
			case []interface{}:
				if !walk(v) {
					return false
				}
			case string, *render.Options, map[string]interface{}:
			default:
				return false
			}
		}
		return true
	}
	return walk(items) && found
}

// expandComplex turns []complex128 lists into groups.
func expandComplex(args []interface{}) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case []complex128:
			g := make([]interface{}, len(v))
			for k, z := range v {
				g[k] = z
			}
			out[i] = g
		case []interface{}:
			out[i] = expandComplex(v)
		default:
			out[i] = a
		}
	}
	return out
}

// PlotComplexList draws complex numbers as points in the plane. Loose
// numbers form one series; each []interface{} or []complex128 group
// forms its own, optionally followed by a label and an option map.
func PlotComplexList(args ...interface{}) (*plot.Plot, error) {
	rest, c := split(args)
	items, err := normalize.Sympify(expandComplex(rest)...)
	if err != nil {
		return nil, err
	}
	type group struct {
		exprs []expr.Expr
		label string
		kw    *render.Options
	}
	var groups []group
	cur := -1
	for _, it := range items {
		switch v := it.(type) {
		case []interface{}:
			g := group{}
			for _, e := range v {
				switch ev := e.(type) {
				case expr.Expr:
					g.exprs = append(g.exprs, ev)
				case string:
					g.label = ev
				case *render.Options:
					g.kw = ev
				case map[string]interface{}:
					g.kw = render.FromMap(ev)
				default:
					return nil, fmt.Errorf("%w: %T in point list", normalize.ErrBadArgument, e)
				}
			}
			groups = append(groups, g)
			cur = len(groups) - 1
		case expr.Expr:
			if cur < 0 || len(groups[cur].exprs) == 0 || groups[cur].label != "" || groups[cur].kw != nil {
				groups = append(groups, group{})
				cur = len(groups) - 1
			}
			groups[cur].exprs = append(groups[cur].exprs, v)
		case string:
			if cur < 0 {
				return nil, fmt.Errorf("%w: label %q before points", normalize.ErrBadArgument, v)
			}
			groups[cur].label = v
		case *render.Options:
			if cur >= 0 {
				groups[cur].kw = v
			}
		case map[string]interface{}:
			if cur >= 0 {
				groups[cur].kw = render.FromMap(v)
			}
		default:
			return nil, fmt.Errorf("%w: %T in point list", normalize.ErrBadArgument, it)
		}
	}

	var ss []*series.Series
	for i, g := range groups {
		if len(g.exprs) == 0 {
			return nil, ErrNoPoints
		}
		a := normalize.Args{Exprs: g.exprs, Label: g.label, Options: g.kw}
		opts := append(c.argOptions(i, a), series.WithIsPoint(true))
		s, err := series.New(series.ComplexPoints, g.exprs, nil, opts...)
		if err != nil {
			return nil, err
		}
		ss = append(ss, s)
	}
	if len(ss) == 0 {
		return nil, ErrNoPoints
	}
	return c.newPlot(ss)
}

// ============================================================
// Geometry
// ============================================================

// PlotGeometry draws geometric entities. Each entity may be followed by
// its label and option map.
func PlotGeometry(args ...interface{}) (*plot.Plot, error) {
	rest, c := split(args)
	type item struct {
		entity geom.Entity
		label  string
		kw     *render.Options
	}
	var items []item
	for _, a := range rest {
		if e, ok := a.(geom.Entity); ok {
			items = append(items, item{entity: e})
			continue
		}
		if len(items) == 0 {
			return nil, ErrNoEntity
		}
		last := &items[len(items)-1]
		switch v := a.(type) {
		case string:
			last.label = v
		case *render.Options:
			last.kw = v
		case map[string]interface{}:
			last.kw = render.FromMap(v)
		default:
			return nil, fmt.Errorf("%w: %T", normalize.ErrBadArgument, a)
		}
	}
	if len(items) == 0 {
		return nil, ErrNoEntity
	}
	ss := make([]*series.Series, 0, len(items))
	for i, it := range items {
		s, err := series.NewGeometry(it.entity, c.argOptions(i, normalize.Args{Label: it.label, Options: it.kw})...)
		if err != nil {
			return nil, err
		}
		ss = append(ss, s)
	}
	return c.newPlot(ss)
}

// ============================================================
// Interactive plots
// ============================================================

// IPlot builds the plot of entry with the parameters given by WithParams
// bound to controls. Updating a control redraws only the series that
// use it.
func IPlot(entry EntryPoint, args ...interface{}) (*interactive.InteractivePlot, error) {
	_, c := split(args)
	if c.params == nil {
		return nil, ErrNoParams
	}
	b, err := interactive.NewBindings(c.params, append(c.layout, interactive.WithLogger(c.logger))...)
	if err != nil {
		return nil, err
	}
	p, err := entry(append(args, withBindings(b))...)
	if err != nil {
		return nil, err
	}
	return interactive.New(b, p, interactive.WithLogger(c.logger))
}

// ============================================================
// Shared plumbing
// ============================================================

func (c *config) checkOptions() []normalize.CheckOption {
	if c.params == nil {
		return nil
	}
	return []normalize.CheckOption{normalize.WithParams(c.params.Symbols()...)}
}

// argOptions are the series options of the i-th created series: the
// label and option bag given with its arguments, then the entry point
// options.
func (c *config) argOptions(i int, a normalize.Args) []series.Option {
	var opts []series.Option
	if a.Label != "" {
		opts = append(opts, series.WithLabel(a.Label))
	}
	if a.Options != nil {
		opts = append(opts, series.WithRenderingKW(a.Options))
	}
	return append(opts, c.seriesOptions(i)...)
}

func (c *config) newPlot(ss []*series.Series) (*plot.Plot, error) {
	b := c.backend
	if b == nil {
		var err error
		b, err = NewBackend(c.backendName, append([]backend.Option{backend.WithLogger(c.logger)}, c.backendOpts...)...)
		if err != nil {
			return nil, err
		}
	}
	p := plot.New(b, c.settings, ss...).WithLogger(c.logger).WithOptions(c.kw)
	if c.params != nil {
		bindings := c.bindings
		if bindings == nil {
			var err error
			bindings, err = interactive.NewBindings(c.params, append(c.layout, interactive.WithLogger(c.logger))...)
			if err != nil {
				return nil, err
			}
		}
		p.WithParams(bindings.Read)
	}
	c.logger.WithFields(l.IntField("series", len(ss)), l.StringField("backend", b.Name())).Debug("plot created")
	return p, nil
}
