// Package echarts renders plots as an HTML page of Apache ECharts charts
// with github.com/go-echarts/go-echarts. Planar curves share one line
// chart; every field, colormapped curve and 3D series gets its own chart
// below it.
package echarts

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/njchilds90/gosymplot/backend"
	"github.com/njchilds90/gosymplot/series"
	"github.com/sgostarter/i/l"
)

const Name = "echarts"

var DefaultPalette = backend.Palette{
	Colors: []string{
		"#5470c6", "#91cc75", "#fac858", "#ee6666", "#73c0de",
		"#3ba272", "#fc8452", "#9a60b4", "#ea7ccc",
	},
	Colormaps: []string{"viridis", "coolwarm", "plasma", "rainbow", "greys"},
}

// colormaps maps a colormap name to the colour stops of a visual map.
var colormaps = map[string][]string{
	"viridis":  {"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
	"coolwarm": {"#3b4cc0", "#8db0fe", "#dddddd", "#f49a7b", "#b40426"},
	"plasma":   {"#0d0887", "#7e03a8", "#cc4778", "#f89540", "#f0f921"},
	"rainbow":  {"#6e40aa", "#1ac7c2", "#aff05b", "#fe9b2d", "#e02f3a"},
	"greys":    {"#ffffff", "#bdbdbd", "#737373", "#252525", "#000000"},
}

var capabilities = backend.Capabilities{
	Kinds: []series.Kind{
		series.Line2D, series.Parametric2D, series.Parametric3D, series.Surface,
		series.Contour, series.Implicit2D, series.ComplexLine, series.ComplexPoints,
		series.ComplexDomainColoring, series.Geometry,
	},
}

// gap breaks a line series; echarts treats "-" as a missing value.
var gap = opts.LineData{Value: []interface{}{"-", "-"}}

// part is what one series contributes to the page: entries of the shared
// line chart, or a chart of its own.
type part struct {
	lines []lineEntry
	chart components.Charter
}

type lineEntry struct {
	name string
	data []opts.LineData
	opts []charts.SeriesOpts
}

type Backend struct {
	cfg backend.Config

	doc    *backend.Document
	colors []int
	cmaps  []int
	parts  []part
	page   *components.Page
}

func New(options ...backend.Option) *Backend {
	return &Backend{cfg: backend.NewConfig("echartsBackend", DefaultPalette, options...)}
}

func (b *Backend) Name() string                       { return Name }
func (b *Backend) Capabilities() backend.Capabilities { return capabilities }
func (b *Backend) Palette() backend.Palette           { return b.cfg.Palette }
func (b *Backend) Clone() backend.Backend             { return &Backend{cfg: b.cfg} }

func (b *Backend) Process(doc *backend.Document) error {
	if err := backend.Validate(b, doc); err != nil {
		return err
	}
	b.doc = doc
	b.colors, b.cmaps = backend.Assign(doc.Series)
	b.parts = make([]part, len(doc.Series))
	for i := range doc.Series {
		b.parts[i] = b.build(i)
	}
	b.assemble()
	return nil
}

func (b *Backend) Update(doc *backend.Document, indices []int) error {
	if b.page == nil || len(doc.Series) != len(b.parts) {
		return b.Process(doc)
	}
	if err := backend.Validate(b, doc); err != nil {
		return err
	}
	b.doc = doc
	for _, i := range indices {
		if i < 0 || i >= len(b.parts) {
			return fmt.Errorf("echarts: series index %d out of range", i)
		}
		b.parts[i] = b.build(i)
	}
	b.assemble()
	return nil
}

// Fig returns the *components.Page, or nil before Process.
func (b *Backend) Fig() interface{} {
	if b.page == nil {
		return nil
	}
	return b.page
}

// Show writes the page as a standalone HTML document.
func (b *Backend) Show(w io.Writer) error {
	if b.page == nil {
		return fmt.Errorf("echarts: nothing processed")
	}
	return b.page.Render(w)
}

// ChartCount is the number of charts on the page.
func (b *Backend) ChartCount() int {
	if b.page == nil {
		return 0
	}
	return len(b.page.Charts)
}

func (b *Backend) assemble() {
	st := b.doc.Settings
	page := components.NewPage()
	if st.Title != "" {
		page.SetPageTitle(st.Title)
	}

	var shared *charts.Line
	var own []components.Charter
	for _, p := range b.parts {
		if p.chart != nil {
			own = append(own, p.chart)
		}
		if len(p.lines) == 0 {
			continue
		}
		if shared == nil {
			shared = charts.NewLine()
			shared.SetGlobalOptions(append(b.globals(st.Title), b.axes()...)...)
		}
		for _, e := range p.lines {
			shared.AddSeries(e.name, e.data, e.opts...)
		}
	}
	if shared != nil {
		page.AddCharts(shared)
	}
	page.AddCharts(own...)
	b.page = page
	b.cfg.Logger.WithFields(l.IntField("charts", len(page.Charts))).Debug("page assembled")
}

func (b *Backend) globals(title string) []charts.GlobalOpts {
	w, h := b.size()
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  fmt.Sprintf("%dpx", int(w)),
			Height: fmt.Sprintf("%dpx", int(h)),
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(b.doc.LegendOn())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func (b *Backend) axes() []charts.GlobalOpts {
	st := b.doc.Settings
	x := opts.XAxis{Type: "value", Name: st.XLabel}
	y := opts.YAxis{Type: "value", Name: st.YLabel, AxisLabel: &opts.AxisLabel{Show: opts.Bool(true)}}
	if st.XScale == "log" {
		x.Type = "log"
	}
	if st.YScale == "log" {
		y.Type = "log"
	}
	if st.XLim != nil {
		x.Min, x.Max = st.XLim[0], st.XLim[1]
	}
	if st.YLim != nil {
		y.Min, y.Max = st.YLim[0], st.YLim[1]
	}
	return []charts.GlobalOpts{charts.WithXAxisOpts(x), charts.WithYAxisOpts(y)}
}

func (b *Backend) axes3D() []charts.GlobalOpts {
	st := b.doc.Settings
	return []charts.GlobalOpts{
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: st.XLabel}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: st.YLabel}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: st.ZLabel}),
	}
}

// size in pixels
func (b *Backend) size() (float64, float64) {
	if sz := b.doc.Settings.Size; sz != nil && sz[0] > 0 && sz[1] > 0 {
		return sz[0], sz[1]
	}
	if b.cfg.Size[0] > 0 && b.cfg.Size[1] > 0 {
		return b.cfg.Size[0], b.cfg.Size[1]
	}
	return 900, 500
}

func (b *Backend) color(i int, style backend.Style) string {
	if style.Color != "" {
		return style.Color
	}
	slot := b.colors[i]
	if slot < 0 {
		slot = i
	}
	return b.cfg.Palette.Color(slot)
}

func (b *Backend) stops(i int, style backend.Style) []string {
	name := style.Colormap
	if name == "" {
		slot := b.cmaps[i]
		if slot < 0 {
			slot = 0
		}
		name = b.cfg.Palette.Colormap(slot)
	}
	if c, ok := colormaps[strings.ToLower(name)]; ok {
		return c
	}
	return colormaps["viridis"]
}

func (b *Backend) build(i int) part {
	s, d := b.doc.Series[i], b.doc.Data[i]
	style := b.doc.Style(i)
	label := s.Label()
	col := b.color(i, style)

	switch s.Kind() {
	case series.Line2D, series.Parametric2D, series.ComplexLine, series.ComplexPoints, series.Geometry:
		c := d.Curve
		if !backend.SolidColor(s) {
			return part{chart: b.colormapped(label, c, b.stops(i, style))}
		}
		e := lineEntry{name: label, data: lineData(c.X, c.Y), opts: []charts.SeriesOpts{
			charts.WithLineStyleOpts(opts.LineStyle{Color: col, Width: float32(style.Width)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: col}),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		}}
		if s.IsPoint() || s.Kind() == series.ComplexPoints {
			e.opts = append(e.opts,
				charts.WithLineStyleOpts(opts.LineStyle{Width: 0, Opacity: opts.Float(0)}),
				charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
		}
		if d.Filled {
			e.opts = append(e.opts, charts.WithAreaStyleOpts(opts.AreaStyle{Color: col, Opacity: opts.Float(alpha(style))}))
		}
		return part{lines: []lineEntry{e}}

	case series.Parametric3D:
		c := d.Curve
		ch := charts.NewLine3D()
		ch.SetGlobalOptions(append(b.globals(label), b.axes3D()...)...)
		data := points3D(c.X, c.Y, c.Z)
		if backend.SolidColor(s) {
			ch.AddSeries(label, data, charts.WithLineStyleOpts(opts.LineStyle{Color: col, Width: float32(style.Width)}))
		} else {
			ch.AddSeries(label, data)
			lo, hi := bounds(c.Z)
			ch.SetGlobalOptions(charts.WithVisualMapOpts(visualMap(lo, hi, b.stops(i, style))))
		}
		return part{chart: ch}

	case series.Surface:
		g := d.Grid
		ch := charts.NewSurface3D()
		ch.SetGlobalOptions(append(b.globals(label), b.axes3D()...)...)
		var data []opts.Chart3DData
		for j, y := range g.Ys {
			for k, x := range g.Xs {
				data = append(data, opts.Chart3DData{Value: []interface{}{x, y, value(g.Z[k][j])}})
			}
		}
		if backend.SolidColor(s) {
			ch.AddSeries(label, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: col}))
		} else {
			ch.AddSeries(label, data)
			lo, hi := bounds(backend.Flatten(g.Z))
			ch.SetGlobalOptions(charts.WithVisualMapOpts(visualMap(lo, hi, b.stops(i, style))))
		}
		return part{chart: ch}

	case series.Contour:
		g := d.Grid
		lo, hi := bounds(backend.Flatten(g.Z))
		return part{chart: b.heatmap(label, g.Xs, g.Ys, g.Z, visualMap(lo, hi, b.stops(i, style)))}

	case series.Implicit2D:
		if d.Grid == nil {
			return part{lines: []lineEntry{rects(label, d.Rects, col)}}
		}
		g := d.Grid
		z := g.Z
		if g.Equality {
			z = crossings(g.Z)
		}
		return part{chart: b.heatmap(label, g.Xs, g.Ys, z, visualMap(0, 1, []string{"#ffffff", col}))}

	case series.ComplexDomainColoring:
		img := d.Image
		stops := phaseStops(img.PhaseRes)
		if s.ThreeD() {
			ch := charts.NewSurface3D()
			ch.SetGlobalOptions(append(b.globals(label), b.axes3D()...)...)
			var data []opts.Chart3DData
			for j, y := range img.Ys {
				for k, x := range img.Xs {
					data = append(data, opts.Chart3DData{Value: []interface{}{x, y, value(img.Mag[k][j]), value(img.Arg[k][j])}})
				}
			}
			ch.AddSeries(label, data)
			vm := visualMap(-math.Pi, math.Pi, stops)
			vm.Dimension = "3"
			ch.SetGlobalOptions(charts.WithVisualMapOpts(vm))
			return part{chart: ch}
		}
		return part{chart: b.heatmap(label, img.Xs, img.Ys, img.Arg, visualMap(-math.Pi, math.Pi, stops))}
	}
	return part{}
}

// colormapped draws a curve as markers coloured by its parameter.
func (b *Backend) colormapped(label string, c *series.Curve, stops []string) components.Charter {
	ch := charts.NewScatter()
	ch.SetGlobalOptions(append(b.globals(label), b.axes()...)...)
	param := c.Param
	if param == nil {
		param = make([]float64, len(c.X))
		for k := range param {
			param[k] = float64(k)
		}
	}
	var data []opts.ScatterData
	for _, r := range backend.SplitNaN(c.X, c.Y) {
		for k := r[0]; k < r[1]; k++ {
			data = append(data, opts.ScatterData{Value: []interface{}{c.X[k], c.Y[k], value(param[k])}})
		}
	}
	ch.AddSeries(label, data)
	lo, hi := bounds(param)
	vm := visualMap(lo, hi, stops)
	vm.Dimension = "2"
	ch.SetGlobalOptions(charts.WithVisualMapOpts(vm))
	return ch
}

// heatmap draws z[i][j] over category axes labelled with the ticks.
func (b *Backend) heatmap(label string, xs, ys []float64, z [][]float64, vm opts.VisualMap) components.Charter {
	ch := charts.NewHeatMap()
	ch.SetGlobalOptions(b.globals(label)...)
	ch.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: b.doc.Settings.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: b.doc.Settings.YLabel, Data: ticks(ys),
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(vm),
	)
	ch.SetXAxis(ticks(xs))
	var data []opts.HeatMapData
	for i := range xs {
		for j := range ys {
			data = append(data, opts.HeatMapData{Value: []interface{}{i, j, value(z[i][j])}})
		}
	}
	ch.AddSeries(label, data)
	return ch
}

func visualMap(lo, hi float64, stops []string) opts.VisualMap {
	return opts.VisualMap{
		Calculable: opts.Bool(true),
		Min:        float32(lo),
		Max:        float32(hi),
		InRange:    &opts.VisualMapInRange{Color: stops},
	}
}

// rects outlines the cells of an adaptive implicit region.
func rects(label string, rs []series.Rect, col string) lineEntry {
	var data []opts.LineData
	for _, r := range rs {
		data = append(data,
			opts.LineData{Value: []interface{}{r.X0, r.Y0}},
			opts.LineData{Value: []interface{}{r.X1, r.Y0}},
			opts.LineData{Value: []interface{}{r.X1, r.Y1}},
			opts.LineData{Value: []interface{}{r.X0, r.Y1}},
			opts.LineData{Value: []interface{}{r.X0, r.Y0}},
			gap)
	}
	return lineEntry{name: label, data: data, opts: []charts.SeriesOpts{
		charts.WithLineStyleOpts(opts.LineStyle{Color: col}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	}}
}

// crossings marks the cells where z changes sign towards a neighbour,
// which traces the zero level of an equation on a heatmap.
func crossings(z [][]float64) [][]float64 {
	out := make([][]float64, len(z))
	for i := range z {
		out[i] = make([]float64, len(z[i]))
		for j, v := range z[i] {
			if math.IsNaN(v) {
				out[i][j] = math.NaN()
				continue
			}
			if v == 0 ||
				(i+1 < len(z) && v*z[i+1][j] < 0) ||
				(j+1 < len(z[i]) && v*z[i][j+1] < 0) {
				out[i][j] = 1
			}
		}
	}
	return out
}

// lineData pairs the coordinates, inserting a gap for every run of
// non-finite points.
func lineData(xs, ys []float64) []opts.LineData {
	var data []opts.LineData
	for k, r := range backend.SplitNaN(xs, ys) {
		if k > 0 {
			data = append(data, gap)
		}
		for n := r[0]; n < r[1]; n++ {
			data = append(data, opts.LineData{Value: []interface{}{xs[n], ys[n]}})
		}
	}
	return data
}

func points3D(xs, ys, zs []float64) []opts.Chart3DData {
	var data []opts.Chart3DData
	for _, r := range backend.SplitNaN(xs, ys, zs) {
		for n := r[0]; n < r[1]; n++ {
			data = append(data, opts.Chart3DData{Value: []interface{}{xs[n], ys[n], zs[n]}})
		}
	}
	return data
}

// value maps non-finite samples to "-", the missing marker.
func value(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return v
}

func bounds(vs []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi {
		return 0, 1
	}
	if lo == hi {
		return lo - 1, hi + 1
	}
	return lo, hi
}

func ticks(vs []float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = humanize.FtoaWithDigits(v, 3)
	}
	return out
}

func alpha(style backend.Style) float32 {
	if style.Opacity > 0 {
		return float32(style.Opacity)
	}
	return 0.5
}

// phaseStops samples series.DomainColor around the circle at unit
// magnitude.
func phaseStops(phaseres int) []string {
	n := phaseres
	if n <= 0 {
		n = 36
	}
	out := make([]string, 0, n+1)
	for k := 0; k <= n; k++ {
		pos := math.Min(float64(k)/float64(n), 1-1e-9)
		c := series.DomainColor(1, -math.Pi+2*math.Pi*pos, phaseres)
		out = append(out, fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
	}
	return out
}
