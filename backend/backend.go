// Package backend defines the contract between the plot orchestrator and
// the libraries that draw. A backend receives the series of a plot and
// their evaluated data and turns them into its own figure object.
package backend

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/njchilds90/gosymplot/render"
	"github.com/njchilds90/gosymplot/series"
	"github.com/sgostarter/i/l"
	"github.com/spf13/cast"
)

var ErrNotImplemented = errors.New("backend: not implemented")

// CapabilityError names a feature a backend cannot draw. It matches
// ErrNotImplemented with errors.Is.
type CapabilityError struct {
	Backend string
	Feature string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("backend %s: %s is not supported", e.Backend, e.Feature)
}

func (e *CapabilityError) Unwrap() error { return ErrNotImplemented }

// Capabilities lists what a backend draws.
type Capabilities struct {
	Kinds         []series.Kind
	Streamlines2D bool
	Streamlines3D bool
}

// Supports reports whether k is among the drawable kinds.
func (c Capabilities) Supports(k series.Kind) bool {
	for _, kk := range c.Kinds {
		if kk == k {
			return true
		}
	}
	return false
}

// Palette is the colour loop and the colormaps a backend cycles through.
type Palette struct {
	Colors    []string
	Colormaps []string
}

// Color returns the i-th colour of the loop, wrapping around.
func (p Palette) Color(i int) string {
	if len(p.Colors) == 0 {
		return ""
	}
	return p.Colors[i%len(p.Colors)]
}

// Colormap returns the i-th colormap, wrapping around.
func (p Palette) Colormap(i int) string {
	if len(p.Colormaps) == 0 {
		return ""
	}
	return p.Colormaps[i%len(p.Colormaps)]
}

// Document is what a backend draws: the plot settings, its series and
// the data evaluated for each of them. Data[i] belongs to Series[i].
type Document struct {
	Settings render.Settings
	Series   []*series.Series
	Data     []*series.Data
	// Options are plot-level option bags every series inherits; a
	// series' own options take precedence.
	Options *render.Options
}

// Style reads the style of series i from its options laid over the
// plot-level ones.
func (d *Document) Style(i int) Style {
	s := d.Series[i]
	opts := s.Options()
	if d.Options.Len() > 0 {
		opts = d.Options.Merge(opts)
	}
	return styleFrom(opts, KWKey(s))
}

// LegendOn returns the legend setting, defaulting to on for more than
// one series.
func (d *Document) LegendOn() bool {
	if d.Settings.Legend != nil {
		return *d.Settings.Legend
	}
	return len(d.Series) > 1
}

// Backend draws documents. Process renders every series from scratch;
// Update redraws only the series at indices, whose Data has changed.
type Backend interface {
	Name() string
	Capabilities() Capabilities
	Palette() Palette
	Process(doc *Document) error
	Update(doc *Document, indices []int) error
	// Fig returns the library-native figure, nil before Process.
	Fig() interface{}
	// Show writes the figure in the backend's output format.
	Show(w io.Writer) error
	// Clone returns an unprocessed backend with the same configuration.
	Clone() Backend
}

// Check returns a CapabilityError for the first series b cannot draw.
func Check(b Backend, ss []*series.Series) error {
	caps := b.Capabilities()
	for _, s := range ss {
		k := s.Kind()
		if !caps.Supports(k) {
			return &CapabilityError{Backend: b.Name(), Feature: k.String()}
		}
		switch {
		case k == series.Vector2D && s.Streamlines() && !caps.Streamlines2D:
			return &CapabilityError{Backend: b.Name(), Feature: "2d streamlines"}
		case k == series.Vector3D && s.Streamlines() && !caps.Streamlines3D:
			return &CapabilityError{Backend: b.Name(), Feature: "3d streamlines"}
		case k == series.ComplexDomainColoring && s.ThreeD() && !caps.Supports(series.Surface):
			return &CapabilityError{Backend: b.Name(), Feature: "3d domain coloring"}
		}
	}
	return nil
}

// Validate checks that doc is consistent and drawable by b.
func Validate(b Backend, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("backend %s: nil document", b.Name())
	}
	if len(doc.Data) != len(doc.Series) {
		return fmt.Errorf("backend %s: %d series but %d data", b.Name(), len(doc.Series), len(doc.Data))
	}
	return Check(b, doc.Series)
}

// Config is the configuration shared by every adapter.
type Config struct {
	Logger  l.Wrapper
	Palette Palette
	// Size is the figure size in the backend's unit; zero keeps its default.
	Size [2]float64
	// Format selects the output of Show when the backend has several.
	Format string
}

type Option func(*Config)

func WithLogger(logger l.Wrapper) Option { return func(c *Config) { c.Logger = logger } }

// WithColors replaces the colour loop.
func WithColors(colors ...string) Option {
	return func(c *Config) { c.Palette.Colors = append([]string(nil), colors...) }
}

// WithColormaps replaces the colormap loop.
func WithColormaps(names ...string) Option {
	return func(c *Config) { c.Palette.Colormaps = append([]string(nil), names...) }
}

func WithSize(w, h float64) Option { return func(c *Config) { c.Size = [2]float64{w, h} } }

func WithFormat(format string) Option { return func(c *Config) { c.Format = format } }

// NewConfig applies opts over the adapter defaults and tags the logger
// with the adapter class.
func NewConfig(cls string, palette Palette, opts ...Option) Config {
	c := Config{Palette: palette}
	for _, opt := range opts {
		opt(&c)
	}
	if c.Logger == nil {
		c.Logger = l.NewNopLoggerWrapper()
	}
	c.Logger = c.Logger.WithFields(l.StringField(l.ClsKey, cls))
	return c
}

// Style is the part of a rendering-option bag every adapter honours.
type Style struct {
	Color    string
	Width    float64
	Opacity  float64
	Colormap string
}

// StyleOf reads the style stored under key in the series options, e.g.
// "line_kw". The flat keys line_color and surface_color are honoured too.
func StyleOf(s *series.Series, key string) Style {
	return styleFrom(s.Options(), key)
}

func styleFrom(opts *render.Options, key string) Style {
	var st Style
	for _, flat := range []string{"line_color", "surface_color"} {
		if v, ok := opts.Get(flat); ok {
			st.Color = cast.ToString(v)
		}
	}
	kw := opts.Sub(key)
	if v, ok := kw.Get("color"); ok {
		st.Color = cast.ToString(v)
	}
	for _, k := range []string{"width", "linewidth"} {
		if v, ok := kw.Get(k); ok {
			st.Width = cast.ToFloat64(v)
		}
	}
	if v, ok := kw.Get("opacity"); ok {
		st.Opacity = cast.ToFloat64(v)
	}
	for _, k := range []string{"colormap", "cmap", "colorscale"} {
		if v, ok := kw.Get(k); ok {
			st.Colormap = cast.ToString(v)
		}
	}
	return st
}

// KWKey is the rendering-option key styling the primary artist of s.
func KWKey(s *series.Series) string {
	switch s.Kind() {
	case series.Surface, series.ParametricSurface:
		return "surface_kw"
	case series.Contour, series.Implicit2D:
		return "contour_kw"
	case series.Vector2D, series.Vector3D:
		if s.Streamlines() {
			return "stream_kw"
		}
		return "quiver_kw"
	case series.ComplexDomainColoring:
		if s.ThreeD() {
			return "surface_kw"
		}
		return "contour_kw"
	case series.Geometry:
		if s.Filled() {
			return "fill_kw"
		}
	}
	return "line_kw"
}

// SolidColor reports whether s is drawn with a colour from the loop
// rather than a colormap.
func SolidColor(s *series.Series) bool {
	switch s.Kind() {
	case series.Line2D, series.ComplexLine, series.ComplexPoints, series.Geometry:
		return !(s.Kind() == series.ComplexLine && s.Part() == series.PartAbsArg)
	case series.Parametric2D, series.Parametric3D:
		return !s.UseCM()
	case series.Surface, series.ParametricSurface:
		return !s.UseCM()
	}
	return false
}

// Assign returns, per series, its slot in the colour loop and in the
// colormap loop. A series drawn with a solid colour takes the next colour
// slot and gets -1 for the colormap; every other series takes the next
// colormap slot.
func Assign(ss []*series.Series) (colors, colormaps []int) {
	colors, colormaps = make([]int, len(ss)), make([]int, len(ss))
	nc, nm := 0, 0
	for i, s := range ss {
		if SolidColor(s) {
			colors[i], colormaps[i] = nc, -1
			nc++
			continue
		}
		colors[i], colormaps[i] = -1, nm
		nm++
	}
	return colors, colormaps
}

// SplitNaN returns the half-open index runs [start, end) of points
// where every coordinate is finite. Backends draw each run as its own
// polyline so that gaps stay open.
func SplitNaN(coords ...[]float64) [][2]int {
	if len(coords) == 0 {
		return nil
	}
	n := len(coords[0])
	var runs [][2]int
	start := -1
	for i := 0; i <= n; i++ {
		ok := i < n
		for _, c := range coords {
			if ok && c != nil && (math.IsNaN(c[i]) || math.IsInf(c[i], 0)) {
				ok = false
			}
		}
		switch {
		case ok && start < 0:
			start = i
		case !ok && start >= 0:
			runs = append(runs, [2]int{start, i})
			start = -1
		}
	}
	return runs
}

// Flatten copies a row-major grid into one slice.
func Flatten(g [][]float64) []float64 {
	var out []float64
	for _, row := range g {
		out = append(out, row...)
	}
	return out
}

// Transpose returns g with rows and columns swapped. Grid data is
// indexed [x][y] while most libraries expect [y][x].
func Transpose(g [][]float64) [][]float64 {
	if len(g) == 0 {
		return nil
	}
	out := make([][]float64, len(g[0]))
	for j := range out {
		out[j] = make([]float64, len(g))
		for i := range g {
			out[j][i] = g[i][j]
		}
	}
	return out
}
