// Package gonumplot draws 2D plots with gonum.org/v1/plot and writes them
// as PNG, SVG, PDF or any other format the library knows.
package gonumplot

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/njchilds90/gosymplot/backend"
	"github.com/njchilds90/gosymplot/series"
	"github.com/sgostarter/i/l"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const Name = "gonumplot"

// DefaultPalette is the colour loop and the colormaps used unless
// overridden with backend.WithColors or backend.WithColormaps.
var DefaultPalette = backend.Palette{
	Colors: []string{
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	},
	Colormaps: []string{"kindlmann", "bluered", "blackbody", "purpleorange", "greenred"},
}

var capabilities = backend.Capabilities{
	Kinds: []series.Kind{
		series.Line2D, series.Parametric2D, series.Contour, series.Implicit2D,
		series.Vector2D, series.ComplexLine, series.ComplexDomainColoring,
		series.ComplexPoints, series.Geometry,
	},
	Streamlines2D: true,
}

// default figure size in inches
const defaultWidth, defaultHeight = 6, 4

type entry struct {
	plotters []plot.Plotter
	thumb    plot.Thumbnailer
}

// Backend keeps one group of plotters per series so that Update only
// rebuilds the groups of the series that changed.
type Backend struct {
	cfg backend.Config

	doc     *backend.Document
	colors  []int
	cmaps   []int
	entries []entry
	fig     *plot.Plot
}

func New(opts ...backend.Option) *Backend {
	return &Backend{cfg: backend.NewConfig("gonumplotBackend", DefaultPalette, opts...)}
}

func (b *Backend) Name() string                       { return Name }
func (b *Backend) Capabilities() backend.Capabilities { return capabilities }
func (b *Backend) Palette() backend.Palette           { return b.cfg.Palette }

func (b *Backend) Clone() backend.Backend {
	return &Backend{cfg: b.cfg}
}

func (b *Backend) Process(doc *backend.Document) error {
	if err := backend.Validate(b, doc); err != nil {
		return err
	}
	b.doc = doc
	b.colors, b.cmaps = backend.Assign(doc.Series)
	b.entries = make([]entry, len(doc.Series))
	for i := range doc.Series {
		if err := b.build(i); err != nil {
			return err
		}
	}
	return b.assemble()
}

func (b *Backend) Update(doc *backend.Document, indices []int) error {
	if b.fig == nil || len(doc.Series) != len(b.entries) {
		return b.Process(doc)
	}
	if err := backend.Validate(b, doc); err != nil {
		return err
	}
	b.doc = doc
	for _, i := range indices {
		if i < 0 || i >= len(b.entries) {
			return fmt.Errorf("gonumplot: series index %d out of range", i)
		}
		if err := b.build(i); err != nil {
			return err
		}
	}
	return b.assemble()
}

// Fig returns the *plot.Plot, or nil before Process.
func (b *Backend) Fig() interface{} {
	if b.fig == nil {
		return nil
	}
	return b.fig
}

// Show writes the figure in the configured format, PNG by default.
func (b *Backend) Show(w io.Writer) error {
	if b.fig == nil {
		return fmt.Errorf("gonumplot: nothing processed")
	}
	format := b.cfg.Format
	if format == "" {
		format = "png"
	}
	width, height := b.size()
	wt, err := b.fig.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save writes the figure to path; the extension picks the format.
func (b *Backend) Save(path string) error {
	if b.fig == nil {
		return fmt.Errorf("gonumplot: nothing processed")
	}
	width, height := b.size()
	return b.fig.Save(width, height, path)
}

func (b *Backend) size() (vg.Length, vg.Length) {
	w, h := float64(defaultWidth), float64(defaultHeight)
	if b.cfg.Size[0] > 0 && b.cfg.Size[1] > 0 {
		w, h = b.cfg.Size[0], b.cfg.Size[1]
	}
	if sz := b.doc.Settings.Size; sz != nil && sz[0] > 0 && sz[1] > 0 {
		w, h = sz[0], sz[1]
	}
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}

func (b *Backend) assemble() error {
	st := b.doc.Settings
	p := plot.New()
	p.Title.Text = st.Title
	p.X.Label.Text = st.XLabel
	p.Y.Label.Text = st.YLabel
	if st.GridOn() {
		p.Add(plotter.NewGrid())
	}
	for _, e := range b.entries {
		p.Add(e.plotters...)
	}
	if b.doc.LegendOn() {
		p.Legend.Top = true
		for i, e := range b.entries {
			if e.thumb != nil {
				p.Legend.Add(b.doc.Series[i].Label(), e.thumb)
			}
		}
	}
	if st.XScale == "log" {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if st.YScale == "log" {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if st.XLim != nil {
		p.X.Min, p.X.Max = st.XLim[0], st.XLim[1]
	}
	if st.YLim != nil {
		p.Y.Min, p.Y.Max = st.YLim[0], st.YLim[1]
	}
	b.fig = p
	b.cfg.Logger.WithFields(l.IntField("series", len(b.entries))).Debug("figure assembled")
	return nil
}

func (b *Backend) build(i int) error {
	s, d := b.doc.Series[i], b.doc.Data[i]
	style := b.doc.Style(i)
	col := b.solid(i, style)
	var e entry
	var err error

	switch s.Kind() {
	case series.Line2D, series.ComplexPoints, series.Parametric2D, series.ComplexLine:
		switch {
		case s.IsPoint() || s.Kind() == series.ComplexPoints:
			e, err = scatter(d.Curve, col)
		case backend.SolidColor(s):
			e, err = polyline(d.Curve, col, style.Width)
		default:
			e, err = colormapped(d.Curve, b.colormap(i, style), style.Width)
		}
	case series.Contour:
		e = heatmap(d.Grid, b.colormap(i, style).Palette(256))
	case series.Implicit2D:
		e, err = implicit(d, col)
	case series.Vector2D:
		if s.Streamlines() {
			e, err = streams(d.Streams, col, style.Width)
			break
		}
		e = quiver(d.Field2D, col, style.Width)
	case series.ComplexDomainColoring:
		e = domainColoring(d.Image)
	case series.Geometry:
		e, err = geometry(d, col, style)
	default:
		return &backend.CapabilityError{Backend: Name, Feature: s.Kind().String()}
	}
	if err != nil {
		return fmt.Errorf("gonumplot: series %d: %w", i, err)
	}
	b.entries[i] = e
	return nil
}

// solid is the colour of series i: its style colour or its loop slot.
func (b *Backend) solid(i int, style backend.Style) color.Color {
	if c, ok := parseColor(style.Color); ok {
		return c
	}
	slot := b.colors[i]
	if slot < 0 {
		slot = i
	}
	if c, ok := parseColor(b.cfg.Palette.Color(slot)); ok {
		return c
	}
	return color.Black
}

func (b *Backend) colormap(i int, style backend.Style) palette.ColorMap {
	name := style.Colormap
	if name == "" {
		slot := b.cmaps[i]
		if slot < 0 {
			slot = 0
		}
		name = b.cfg.Palette.Colormap(slot)
	}
	return colormapByName(name)
}

func colormapByName(name string) palette.ColorMap {
	switch strings.ToLower(name) {
	case "blackbody":
		return moreland.BlackBody()
	case "extendedblackbody":
		return moreland.ExtendedBlackBody()
	case "extendedkindlmann":
		return moreland.ExtendedKindlmann()
	case "bluered":
		return moreland.SmoothBlueRed()
	case "purpleorange":
		return moreland.SmoothPurpleOrange()
	case "greenpurple":
		return moreland.SmoothGreenPurple()
	case "bluetan":
		return moreland.SmoothBlueTan()
	case "greenred":
		return moreland.SmoothGreenRed()
	}
	return moreland.Kindlmann()
}

func lineStyle(c color.Color, width float64) draw.LineStyle {
	ls := plotter.DefaultLineStyle
	ls.Color = c
	if width > 0 {
		ls.Width = vg.Points(width)
	}
	return ls
}

func xys(xs, ys []float64, from, to int) plotter.XYs {
	pts := make(plotter.XYs, 0, to-from)
	for k := from; k < to; k++ {
		pts = append(pts, plotter.XY{X: xs[k], Y: ys[k]})
	}
	return pts
}

func polyline(c *series.Curve, col color.Color, width float64) (entry, error) {
	var e entry
	for _, run := range backend.SplitNaN(c.X, c.Y) {
		l, err := plotter.NewLine(xys(c.X, c.Y, run[0], run[1]))
		if err != nil {
			return e, err
		}
		l.LineStyle = lineStyle(col, width)
		e.plotters = append(e.plotters, l)
		if e.thumb == nil {
			e.thumb = l
		}
	}
	return e, nil
}

func scatter(c *series.Curve, col color.Color) (entry, error) {
	var e entry
	for _, run := range backend.SplitNaN(c.X, c.Y) {
		sc, err := plotter.NewScatter(xys(c.X, c.Y, run[0], run[1]))
		if err != nil {
			return e, err
		}
		sc.GlyphStyle.Color = col
		e.plotters = append(e.plotters, sc)
		if e.thumb == nil {
			e.thumb = sc
		}
	}
	return e, nil
}

// colormapped draws each segment in the colour of its parameter value.
func colormapped(c *series.Curve, cm palette.ColorMap, width float64) (entry, error) {
	var e entry
	lo, hi := series.Finite([][]float64{c.Param})
	if math.IsNaN(lo) {
		return polyline(c, color.Black, width)
	}
	if lo == hi {
		hi = lo + 1
	}
	cm.SetMin(lo)
	cm.SetMax(hi)
	for _, run := range backend.SplitNaN(c.X, c.Y, c.Param) {
		for k := run[0]; k+1 < run[1]; k++ {
			col, err := cm.At(c.Param[k])
			if err != nil {
				return e, err
			}
			l, err := plotter.NewLine(xys(c.X, c.Y, k, k+2))
			if err != nil {
				return e, err
			}
			l.LineStyle = lineStyle(col, width)
			e.plotters = append(e.plotters, l)
		}
	}
	return e, nil
}

func streams(lines []series.Curve, col color.Color, width float64) (entry, error) {
	var e entry
	for k := range lines {
		part, err := polyline(&lines[k], col, width)
		if err != nil {
			return e, err
		}
		e.plotters = append(e.plotters, part.plotters...)
		if e.thumb == nil {
			e.thumb = part.thumb
		}
	}
	return e, nil
}

func heatmap(g *series.Grid, pal palette.Palette) entry {
	h := plotter.NewHeatMap(newGridXYZ(g), pal)
	return entry{plotters: []plot.Plotter{h}}
}

func implicit(d *series.Data, col color.Color) (entry, error) {
	if d.Grid == nil {
		var e entry
		for _, r := range d.Rects {
			poly, err := plotter.NewPolygon(plotter.XYs{
				{X: r.X0, Y: r.Y0}, {X: r.X1, Y: r.Y0}, {X: r.X1, Y: r.Y1}, {X: r.X0, Y: r.Y1},
			})
			if err != nil {
				return e, err
			}
			poly.Color = col
			poly.LineStyle.Width = 0
			e.plotters = append(e.plotters, poly)
			if e.thumb == nil {
				e.thumb = poly
			}
		}
		return e, nil
	}
	if d.Grid.Equality {
		c := plotter.NewContour(newGridXYZ(d.Grid), []float64{0}, nil)
		c.LineStyles = []draw.LineStyle{lineStyle(col, 0)}
		return entry{plotters: []plot.Plotter{c}}, nil
	}
	pal := twoTone{color.White, col}
	return heatmap(d.Grid, pal), nil
}

func quiver(f *series.Field2D, col color.Color, width float64) entry {
	q := plotter.NewField(fieldXY{f})
	q.LineStyle = lineStyle(col, width)
	return entry{plotters: []plot.Plotter{q}}
}

func domainColoring(img *series.Image) entry {
	nx, ny := len(img.Xs), len(img.Ys)
	rgba := image.NewRGBA(image.Rect(0, 0, nx, ny))
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			c := img.RGB[j][i]
			// image rows grow downwards, the imaginary axis upwards
			rgba.Set(i, ny-1-j, color.RGBA{R: c[0], G: c[1], B: c[2], A: 255})
		}
	}
	pi := plotter.NewImage(rgba, img.Xs[0], img.Ys[0], img.Xs[nx-1], img.Ys[ny-1])
	return entry{plotters: []plot.Plotter{pi}}
}

func geometry(d *series.Data, col color.Color, style backend.Style) (entry, error) {
	c := d.Curve
	if !d.Filled {
		return polyline(c, col, style.Width)
	}
	poly, err := plotter.NewPolygon(xys(c.X, c.Y, 0, c.Len()))
	if err != nil {
		return entry{}, err
	}
	fill := color.NRGBAModel.Convert(col).(color.NRGBA)
	if style.Opacity > 0 {
		fill.A = uint8(math.Round(255 * math.Min(style.Opacity, 1)))
	}
	poly.Color = fill
	poly.LineStyle.Color = col
	return entry{plotters: []plot.Plotter{poly}, thumb: poly}, nil
}

// gridXYZ exposes a series grid as plotter.GridXYZ. Min and Max widen a
// constant field so that heat maps and contours keep a valid range.
type gridXYZ struct {
	g        *series.Grid
	min, max float64
}

func newGridXYZ(g *series.Grid) gridXYZ {
	lo, hi := series.Finite(g.Z)
	if math.IsNaN(lo) {
		lo, hi = 0, 1
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return gridXYZ{g: g, min: lo, max: hi}
}

func (g gridXYZ) Dims() (c, r int)   { return len(g.g.Xs), len(g.g.Ys) }
func (g gridXYZ) Z(c, r int) float64 { return g.g.Z[c][r] }
func (g gridXYZ) X(c int) float64    { return g.g.Xs[c] }
func (g gridXYZ) Y(r int) float64    { return g.g.Ys[r] }
func (g gridXYZ) Min() float64       { return g.min }
func (g gridXYZ) Max() float64       { return g.max }

type fieldXY struct{ f *series.Field2D }

func (f fieldXY) Dims() (c, r int) { return len(f.f.Xs), len(f.f.Ys) }
func (f fieldXY) X(c int) float64  { return f.f.Xs[c] }
func (f fieldXY) Y(r int) float64  { return f.f.Ys[r] }

func (f fieldXY) Vector(c, r int) plotter.XY {
	u, v := f.f.U[c][r], f.f.V[c][r]
	if math.IsNaN(u) || math.IsNaN(v) {
		return plotter.XY{}
	}
	return plotter.XY{X: u * f.f.Scale, Y: v * f.f.Scale}
}

// twoTone is the palette of implicit regions: outside, inside.
type twoTone [2]color.Color

func (t twoTone) Colors() []color.Color { return t[:] }

var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"yellow":  {255, 255, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
}

// parseColor accepts #rgb, #rrggbb and a few basic colour names.
func parseColor(s string) (color.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if !strings.HasPrefix(s, "#") {
		return nil, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}
