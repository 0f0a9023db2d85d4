// Package plotly builds plotly figures with github.com/MetalBlueberry/go-plotly.
// It draws every series kind, in 2D and 3D, and writes the figure as the
// JSON document plotly.js renders.
package plotly

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"github.com/njchilds90/gosymplot/backend"
	"github.com/njchilds90/gosymplot/series"
	"github.com/sgostarter/i/l"
)

const Name = "plotly"

var DefaultPalette = backend.Palette{
	Colors: []string{
		"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
		"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
	},
	Colormaps: []string{"Viridis", "Portland", "Bluered", "Electric", "Hot", "Jet"},
}

var capabilities = backend.Capabilities{
	Kinds:         series.AllKinds(),
	Streamlines2D: true,
	Streamlines3D: true,
}

type Backend struct {
	cfg backend.Config

	doc    *backend.Document
	colors []int
	cmaps  []int
	traces [][]grob.Trace
	fig    *grob.Fig
}

func New(opts ...backend.Option) *Backend {
	return &Backend{cfg: backend.NewConfig("plotlyBackend", DefaultPalette, opts...)}
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
	b.traces = make([][]grob.Trace, len(doc.Series))
	for i := range doc.Series {
		b.traces[i] = b.build(i)
	}
	b.assemble()
	return nil
}

func (b *Backend) Update(doc *backend.Document, indices []int) error {
	if b.fig == nil || len(doc.Series) != len(b.traces) {
		return b.Process(doc)
	}
	if err := backend.Validate(b, doc); err != nil {
		return err
	}
	b.doc = doc
	for _, i := range indices {
		if i < 0 || i >= len(b.traces) {
			return fmt.Errorf("plotly: series index %d out of range", i)
		}
		b.traces[i] = b.build(i)
	}
	b.assemble()
	return nil
}

// Fig returns the *grob.Fig, or nil before Process.
func (b *Backend) Fig() interface{} {
	if b.fig == nil {
		return nil
	}
	return b.fig
}

// Show writes the figure as JSON.
func (b *Backend) Show(w io.Writer) error {
	if b.fig == nil {
		return fmt.Errorf("plotly: nothing processed")
	}
	enc := json.NewEncoder(w)
	return enc.Encode(b.fig)
}

// TraceCount is the number of traces drawn for series i.
func (b *Backend) TraceCount(i int) int {
	if i < 0 || i >= len(b.traces) {
		return 0
	}
	return len(b.traces[i])
}

func (b *Backend) assemble() {
	st := b.doc.Settings
	layout := &grob.Layout{
		Title:      &grob.LayoutTitle{Text: st.Title},
		Showlegend: grob.False,
		Xaxis:      &grob.LayoutXaxis{Title: &grob.LayoutXaxisTitle{Text: st.XLabel}},
		Yaxis:      &grob.LayoutYaxis{Title: &grob.LayoutYaxisTitle{Text: st.YLabel}},
	}
	if b.doc.LegendOn() {
		layout.Showlegend = grob.True
		layout.Legend = &grob.LayoutLegend{}
	}
	if st.XScale == "log" {
		layout.Xaxis.Type = grob.LayoutXaxisTypeLog
	}
	if st.YScale == "log" {
		layout.Yaxis.Type = grob.LayoutYaxisTypeLog
	}
	if st.XLim != nil {
		layout.Xaxis.Range = []float64{st.XLim[0], st.XLim[1]}
	}
	if st.YLim != nil {
		layout.Yaxis.Range = []float64{st.YLim[0], st.YLim[1]}
	}
	if st.Aspect == "equal" {
		layout.Yaxis.Scaleanchor = "x"
	}
	if w, h := b.size(); w > 0 {
		layout.Width, layout.Height = w, h
	}

	var data grob.Traces
	for _, ts := range b.traces {
		data = append(data, ts...)
	}
	b.fig = &grob.Fig{Data: data, Layout: layout}
	b.cfg.Logger.WithFields(l.IntField("traces", len(data))).Debug("figure assembled")
}

// size in pixels
func (b *Backend) size() (float64, float64) {
	if sz := b.doc.Settings.Size; sz != nil && sz[0] > 0 && sz[1] > 0 {
		return sz[0], sz[1]
	}
	return b.cfg.Size[0], b.cfg.Size[1]
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

func (b *Backend) colormap(i int, style backend.Style) string {
	if style.Colormap != "" {
		return style.Colormap
	}
	slot := b.cmaps[i]
	if slot < 0 {
		slot = 0
	}
	return b.cfg.Palette.Colormap(slot)
}

func (b *Backend) build(i int) []grob.Trace {
	s, d := b.doc.Series[i], b.doc.Data[i]
	style := b.doc.Style(i)
	label := s.Label()
	col := b.color(i, style)
	cmap := b.colormap(i, style)

	switch s.Kind() {
	case series.Line2D, series.Parametric2D, series.ComplexLine, series.ComplexPoints:
		c := d.Curve
		tr := &grob.Scatter{Name: label, X: values(c.X), Y: values(c.Y), Showlegend: grob.True}
		switch {
		case !backend.SolidColor(s):
			tr.Mode = grob.ScatterModeMarkers
			tr.Marker = &grob.ScatterMarker{Color: values(c.Param), Colorscale: cmap, Showscale: grob.True}
		case s.IsPoint() || s.Kind() == series.ComplexPoints:
			tr.Mode = grob.ScatterModeMarkers
			tr.Marker = &grob.ScatterMarker{Color: grob.Color(col)}
		default:
			tr.Mode = grob.ScatterModeLines
			tr.Line = &grob.ScatterLine{Color: grob.Color(col), Width: style.Width}
		}
		return []grob.Trace{tr}

	case series.Parametric3D:
		c := d.Curve
		tr := &grob.Scatter3d{Name: label, X: values(c.X), Y: values(c.Y), Z: values(c.Z),
			Mode: grob.Scatter3dModeLines, Showlegend: grob.True}
		if backend.SolidColor(s) {
			tr.Line = &grob.Scatter3dLine{Color: grob.Color(col), Width: style.Width}
		} else {
			tr.Line = &grob.Scatter3dLine{Color: values(c.Param), Colorscale: cmap, Width: style.Width}
		}
		return []grob.Trace{tr}

	case series.Surface:
		g := d.Grid
		tr := &grob.Surface{Name: label, X: values(g.Xs), Y: values(g.Ys), Z: grid(backend.Transpose(g.Z)),
			Colorscale: surfaceScale(s, col, cmap), Showscale: showScale(s)}
		return []grob.Trace{tr}

	case series.ParametricSurface:
		m := d.Mesh
		tr := &grob.Surface{Name: label, X: grid(backend.Transpose(m.X)), Y: grid(backend.Transpose(m.Y)),
			Z: grid(backend.Transpose(m.Z)), Colorscale: surfaceScale(s, col, cmap), Showscale: showScale(s)}
		return []grob.Trace{tr}

	case series.Contour:
		g := d.Grid
		return []grob.Trace{&grob.Contour{Name: label, X: values(g.Xs), Y: values(g.Ys),
			Z: grid(backend.Transpose(g.Z)), Colorscale: cmap}}

	case series.Implicit2D:
		return implicit(label, d, col)

	case series.Vector2D:
		if s.Streamlines() {
			return streams2D(label, d.Streams, col, style.Width)
		}
		return []grob.Trace{quiver(label, d.Field2D, col, style.Width)}

	case series.Vector3D:
		if s.Streamlines() {
			return streams3D(label, d.Streams, col, style.Width)
		}
		f := d.Field3D
		return []grob.Trace{&grob.Cone{Name: label, X: values(f.X), Y: values(f.Y), Z: values(f.Z),
			U: values(f.U), V: values(f.V), W: values(f.W), Sizeref: f.Scale, Colorscale: cmap}}

	case series.ComplexDomainColoring:
		img := d.Image
		scale := phaseScale(img.PhaseRes)
		if s.ThreeD() {
			return []grob.Trace{&grob.Surface{Name: label, X: values(img.Xs), Y: values(img.Ys),
				Z: grid(backend.Transpose(img.Mag)), Surfacecolor: grid(backend.Transpose(img.Arg)),
				Colorscale: scale, Cmin: -math.Pi, Cmax: math.Pi}}
		}
		return []grob.Trace{&grob.Heatmap{Name: label, X: values(img.Xs), Y: values(img.Ys),
			Z: grid(backend.Transpose(img.Arg)), Colorscale: scale, Zmin: -math.Pi, Zmax: math.Pi}}

	case series.Geometry:
		c := d.Curve
		tr := &grob.Scatter{Name: label, X: values(c.X), Y: values(c.Y), Mode: grob.ScatterModeLines,
			Line: &grob.ScatterLine{Color: grob.Color(col), Width: style.Width}, Showlegend: grob.True}
		if d.Filled {
			tr.Fill = grob.ScatterFillToself
			tr.Fillcolor = grob.Color(col)
		}
		return []grob.Trace{tr}
	}
	return nil
}

func showScale(s *series.Series) grob.Bool {
	if backend.SolidColor(s) {
		return grob.False
	}
	return grob.True
}

// surfaceScale paints a solid-coloured surface with a one-colour scale.
func surfaceScale(s *series.Series, col, cmap string) interface{} {
	if backend.SolidColor(s) {
		return [][]interface{}{{0, col}, {1, col}}
	}
	return cmap
}

func implicit(label string, d *series.Data, col string) []grob.Trace {
	if d.Grid == nil {
		// rectangles as closed rings separated by gaps
		var xs, ys []interface{}
		for _, r := range d.Rects {
			xs = append(xs, r.X0, r.X1, r.X1, r.X0, r.X0, nil)
			ys = append(ys, r.Y0, r.Y0, r.Y1, r.Y1, r.Y0, nil)
		}
		return []grob.Trace{&grob.Scatter{Name: label, X: xs, Y: ys, Mode: grob.ScatterModeLines,
			Fill: grob.ScatterFillToself, Fillcolor: grob.Color(col),
			Line: &grob.ScatterLine{Color: grob.Color(col), Width: 0}, Showlegend: grob.True}}
	}
	g := d.Grid
	if g.Equality {
		return []grob.Trace{&grob.Contour{Name: label, X: values(g.Xs), Y: values(g.Ys),
			Z: grid(backend.Transpose(g.Z)), Showscale: grob.False,
			Colorscale: [][]interface{}{{0, col}, {1, col}},
			Contours:   &grob.ContourContours{Coloring: grob.ContourContoursColoringLines, Start: 0, End: 0, Size: 1},
		}}
	}
	return []grob.Trace{&grob.Heatmap{Name: label, X: values(g.Xs), Y: values(g.Ys),
		Z: grid(backend.Transpose(g.Z)), Showscale: grob.False,
		Colorscale: [][]interface{}{{0, "rgba(0,0,0,0)"}, {1, col}}, Zmin: 0, Zmax: 1}}
}

// quiver draws arrows as one polyline broken by gaps. The longest arrow
// spans one grid step times the field scale.
func quiver(label string, f *series.Field2D, col string, width float64) *grob.Scatter {
	step := math.Inf(1)
	if len(f.Xs) > 1 {
		step = math.Min(step, f.Xs[1]-f.Xs[0])
	}
	if len(f.Ys) > 1 {
		step = math.Min(step, f.Ys[1]-f.Ys[0])
	}
	if math.IsInf(step, 1) {
		step = 1
	}
	maxMag := 0.0
	for _, row := range f.Mag {
		for _, m := range row {
			if !math.IsNaN(m) {
				maxMag = math.Max(maxMag, m)
			}
		}
	}
	k := 0.0
	if maxMag > 0 {
		k = step * f.Scale / maxMag
	}
	var xs, ys []interface{}
	for i, x := range f.Xs {
		for j, y := range f.Ys {
			u, v := f.U[i][j]*k, f.V[i][j]*k
			if math.IsNaN(u) || math.IsNaN(v) || (u == 0 && v == 0) {
				continue
			}
			tx, ty := x+u, y+v
			// arrow head: two barbs at 20 degrees, a third of the length
			a := math.Atan2(v, u)
			h := math.Hypot(u, v) / 3
			lx, ly := tx-h*math.Cos(a-0.35), ty-h*math.Sin(a-0.35)
			rx, ry := tx-h*math.Cos(a+0.35), ty-h*math.Sin(a+0.35)
			xs = append(xs, x, tx, nil, lx, tx, rx, nil)
			ys = append(ys, y, ty, nil, ly, ty, ry, nil)
		}
	}
	return &grob.Scatter{Name: label, X: xs, Y: ys, Mode: grob.ScatterModeLines,
		Line: &grob.ScatterLine{Color: grob.Color(col), Width: width}, Showlegend: grob.True}
}

func streams2D(label string, lines []series.Curve, col string, width float64) []grob.Trace {
	var xs, ys []interface{}
	for _, c := range lines {
		xs = append(append(xs, values(c.X)...), nil)
		ys = append(append(ys, values(c.Y)...), nil)
	}
	return []grob.Trace{&grob.Scatter{Name: label, X: xs, Y: ys, Mode: grob.ScatterModeLines,
		Line: &grob.ScatterLine{Color: grob.Color(col), Width: width}, Showlegend: grob.True}}
}

func streams3D(label string, lines []series.Curve, col string, width float64) []grob.Trace {
	var xs, ys, zs []interface{}
	for _, c := range lines {
		xs = append(append(xs, values(c.X)...), nil)
		ys = append(append(ys, values(c.Y)...), nil)
		zs = append(append(zs, values(c.Z)...), nil)
	}
	return []grob.Trace{&grob.Scatter3d{Name: label, X: xs, Y: ys, Z: zs, Mode: grob.Scatter3dModeLines,
		Line: &grob.Scatter3dLine{Color: grob.Color(col), Width: width}, Showlegend: grob.True}}
}

// phaseScale is a cyclic colour scale over [-pi, pi] matching
// series.DomainColor at unit magnitude.
func phaseScale(phaseres int) [][]interface{} {
	n := phaseres
	if n <= 0 {
		n = 36
	}
	out := make([][]interface{}, 0, n+1)
	for k := 0; k <= n; k++ {
		pos := float64(k) / float64(n)
		arg := -math.Pi + 2*math.Pi*math.Min(pos, 1-1e-9)
		c := series.DomainColor(1, arg, phaseres)
		out = append(out, []interface{}{pos, fmt.Sprintf("rgb(%d,%d,%d)", c[0], c[1], c[2])})
	}
	return out
}

// values converts samples for JSON: NaN and infinities become null, which
// plotly draws as gaps.
func values(xs []float64) []interface{} {
	if xs == nil {
		return nil
	}
	out := make([]interface{}, len(xs))
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		out[i] = x
	}
	return out
}

func grid(g [][]float64) [][]interface{} {
	out := make([][]interface{}, len(g))
	for i, row := range g {
		out[i] = values(row)
	}
	return out
}
