package gosymplot

import (
	"github.com/njchilds90/gosymplot/backend"
	"github.com/njchilds90/gosymplot/interactive"
	"github.com/njchilds90/gosymplot/render"
	"github.com/njchilds90/gosymplot/series"
	"github.com/sgostarter/i/l"
)

// Option configures an entry point. Options are passed among the
// positional arguments and may appear anywhere.
type Option func(*config)

type config struct {
	backend     backend.Backend
	backendName string
	backendOpts []backend.Option

	settings render.Settings
	kw       *render.Options
	logger   l.Wrapper

	n           []int
	adaptive    *bool
	depth       int
	labels      []string
	useCM       *bool
	isPoint     bool
	streamlines bool
	scale       float64
	scalar      interface{}
	absarg      bool
	threed      bool
	phaseres    int
	filled      *bool

	params   *interactive.ParamSpecs
	bindings *interactive.Bindings
	layout   []interactive.Option
}

func newConfig() *config {
	return &config{logger: l.NewNopLoggerWrapper(), scalar: true}
}

// split separates the options from the positional arguments.
func split(args []interface{}) ([]interface{}, *config) {
	c := newConfig()
	var rest []interface{}
	for _, a := range args {
		if o, ok := a.(Option); ok {
			o(c)
			continue
		}
		rest = append(rest, a)
	}
	return rest, c
}

func (c *config) seriesOptions(i int) []series.Option {
	opts := []series.Option{series.WithLogger(c.logger)}
	if len(c.n) > 0 {
		opts = append(opts, series.WithN(c.n...))
	}
	if c.adaptive != nil {
		opts = append(opts, series.WithAdaptive(*c.adaptive))
	}
	if c.depth > 0 {
		opts = append(opts, series.WithDepth(c.depth))
	}
	if i < len(c.labels) && c.labels[i] != "" {
		opts = append(opts, series.WithLabel(c.labels[i]))
	}
	if c.useCM != nil {
		opts = append(opts, series.WithUseCM(*c.useCM))
	}
	if c.isPoint {
		opts = append(opts, series.WithIsPoint(true))
	}
	if c.streamlines {
		opts = append(opts, series.WithStreamlines(true))
	}
	if c.scale > 0 {
		opts = append(opts, series.WithScale(c.scale))
	}
	if c.threed {
		opts = append(opts, series.WithThreeD(true))
	}
	if c.phaseres > 0 {
		opts = append(opts, series.WithPhaseRes(c.phaseres))
	}
	if c.filled != nil {
		opts = append(opts, series.WithFilled(*c.filled))
	}
	if c.settings.XScale != "" {
		opts = append(opts, series.WithXScale(c.settings.XScale))
	}
	if c.params != nil {
		opts = append(opts, series.WithInteractive(true))
	}
	return opts
}

func (c *config) bag(key string, kw map[string]interface{}) {
	c.kw = c.kw.Merge(render.NewOptions(key, render.FromMap(kw)))
}

// WithBackend draws with b. It takes precedence over WithBackendName.
func WithBackend(b backend.Backend) Option { return func(c *config) { c.backend = b } }

// WithBackendName selects a backend by name, see NewBackend.
func WithBackendName(name string) Option { return func(c *config) { c.backendName = name } }

// WithBackendOptions configures a backend created by name.
func WithBackendOptions(opts ...backend.Option) Option {
	return func(c *config) { c.backendOpts = append(c.backendOpts, opts...) }
}

func WithLogger(logger l.Wrapper) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSettings overlays s on the settings given so far.
func WithSettings(s render.Settings) Option {
	return func(c *config) { c.settings = c.settings.Merge(s) }
}

func WithTitle(title string) Option  { return func(c *config) { c.settings.Title = title } }
func WithXLabel(label string) Option { return func(c *config) { c.settings.XLabel = label } }
func WithYLabel(label string) Option { return func(c *config) { c.settings.YLabel = label } }
func WithZLabel(label string) Option { return func(c *config) { c.settings.ZLabel = label } }

func WithXLim(lo, hi float64) Option { return func(c *config) { c.settings.XLim = render.Lim(lo, hi) } }
func WithYLim(lo, hi float64) Option { return func(c *config) { c.settings.YLim = render.Lim(lo, hi) } }
func WithZLim(lo, hi float64) Option { return func(c *config) { c.settings.ZLim = render.Lim(lo, hi) } }

func WithXScale(scale string) Option { return func(c *config) { c.settings.XScale = scale } }
func WithYScale(scale string) Option { return func(c *config) { c.settings.YScale = scale } }
func WithZScale(scale string) Option { return func(c *config) { c.settings.ZScale = scale } }

func WithAspect(aspect string) Option { return func(c *config) { c.settings.Aspect = aspect } }
func WithLegend(b bool) Option        { return func(c *config) { c.settings.Legend = render.Bool(b) } }
func WithGrid(b bool) Option          { return func(c *config) { c.settings.Grid = render.Bool(b) } }
func WithShow(b bool) Option          { return func(c *config) { c.settings.Show = render.Bool(b) } }

func WithSize(w, h float64) Option {
	return func(c *config) { c.settings.Size = &[2]float64{w, h} }
}

// WithN sets the number of samples per range. Adaptive sampling, the
// default for non-interactive lines, ignores it; see WithAdaptive.
func WithN(n ...int) Option         { return func(c *config) { c.n = n } }
func WithAdaptive(b bool) Option    { return func(c *config) { c.adaptive = &b } }
func WithDepth(d int) Option        { return func(c *config) { c.depth = d } }
func WithUseCM(b bool) Option       { return func(c *config) { c.useCM = &b } }
func WithIsPoint(b bool) Option     { return func(c *config) { c.isPoint = b } }
func WithStreamlines(b bool) Option { return func(c *config) { c.streamlines = b } }
func WithScale(f float64) Option    { return func(c *config) { c.scale = f } }
func WithAbsArg(b bool) Option      { return func(c *config) { c.absarg = b } }
func WithThreeD(b bool) Option      { return func(c *config) { c.threed = b } }
func WithPhaseRes(n int) Option     { return func(c *config) { c.phaseres = n } }
func WithFilled(b bool) Option      { return func(c *config) { c.filled = &b } }

// WithLabel sets the labels of the created series in order, overriding
// labels given among the positional arguments.
func WithLabel(labels ...string) Option { return func(c *config) { c.labels = labels } }

// WithScalar controls the contour drawn beneath a 2D vector field: true
// draws the magnitude, false nothing, and an expression or a string
// parsed as one draws that field.
func WithScalar(v interface{}) Option { return func(c *config) { c.scalar = v } }

// WithOptions merges plot-level option bags such as
// {"line_kw": {"color": "red"}} into those given so far.
func WithOptions(kw *render.Options) Option {
	return func(c *config) { c.kw = c.kw.Merge(kw) }
}

func WithLineKW(kw map[string]interface{}) Option {
	return func(c *config) { c.bag("line_kw", kw) }
}

func WithSurfaceKW(kw map[string]interface{}) Option {
	return func(c *config) { c.bag("surface_kw", kw) }
}

func WithContourKW(kw map[string]interface{}) Option {
	return func(c *config) { c.bag("contour_kw", kw) }
}

func WithQuiverKW(kw map[string]interface{}) Option {
	return func(c *config) { c.bag("quiver_kw", kw) }
}

func WithStreamKW(kw map[string]interface{}) Option {
	return func(c *config) { c.bag("stream_kw", kw) }
}

func WithFillKW(kw map[string]interface{}) Option {
	return func(c *config) { c.bag("fill_kw", kw) }
}

// WithParams binds parameters to controls. The series become
// interactive and are evaluated at the control defaults.
func WithParams(specs *interactive.ParamSpecs) Option { return func(c *config) { c.params = specs } }

// WithLayout sets the control layout (tb, bb, sbl or sbr) and the
// number of controls per row.
func WithLayout(layout string, ncols int) Option {
	return func(c *config) {
		c.layout = append(c.layout, interactive.WithLayout(layout))
		if ncols > 0 {
			c.layout = append(c.layout, interactive.WithNCols(ncols))
		}
	}
}

func WithUseLatex(b bool) Option {
	return func(c *config) { c.layout = append(c.layout, interactive.WithUseLatex(b)) }
}

func withBindings(b *interactive.Bindings) Option { return func(c *config) { c.bindings = b } }
