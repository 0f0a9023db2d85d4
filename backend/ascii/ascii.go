// Package ascii draws functions of one variable as terminal text with
// github.com/guptarohit/asciigraph.
package ascii

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/njchilds90/gosymplot/backend"
	"github.com/njchilds90/gosymplot/series"
	"github.com/sgostarter/i/l"
)

const Name = "ascii"

const (
	defaultWidth  = 72
	defaultHeight = 20
)

var DefaultPalette = backend.Palette{
	Colors: []string{"blue", "red", "green", "orange", "purple", "cyan", "magenta", "yellow"},
}

var capabilities = backend.Capabilities{
	Kinds: []series.Kind{series.Line2D, series.ComplexLine},
}

// Backend resamples every curve onto one column grid shared by the plot,
// since asciigraph spaces samples evenly.
type Backend struct {
	cfg backend.Config

	doc     *backend.Document
	columns []float64
	rows    [][]float64
	out     string
	drawn   bool
}

func New(options ...backend.Option) *Backend {
	return &Backend{cfg: backend.NewConfig("asciiBackend", DefaultPalette, options...)}
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
	b.columns = columns(doc, b.width())
	b.rows = make([][]float64, len(doc.Series))
	for i := range doc.Series {
		b.rows[i] = b.build(i)
	}
	return b.assemble()
}

// Update resamples the series at indices. A changed x extent moves the
// shared columns, so every row is rebuilt in that case.
func (b *Backend) Update(doc *backend.Document, indices []int) error {
	if !b.drawn || len(doc.Series) != len(b.rows) {
		return b.Process(doc)
	}
	if err := backend.Validate(b, doc); err != nil {
		return err
	}
	b.doc = doc
	cols := columns(doc, b.width())
	if !sameColumns(cols, b.columns) {
		return b.Process(doc)
	}
	for _, i := range indices {
		if i < 0 || i >= len(b.rows) {
			return fmt.Errorf("ascii: series index %d out of range", i)
		}
		b.rows[i] = b.build(i)
	}
	return b.assemble()
}

// Fig returns the drawn text, or nil before Process.
func (b *Backend) Fig() interface{} {
	if !b.drawn {
		return nil
	}
	return b.out
}

func (b *Backend) Show(w io.Writer) error {
	if !b.drawn {
		return fmt.Errorf("ascii: nothing processed")
	}
	_, err := io.WriteString(w, b.out+"\n")
	return err
}

func (b *Backend) width() int {
	if sz := b.doc.Settings.Size; sz != nil && sz[0] > 0 {
		return int(sz[0])
	}
	if b.cfg.Size[0] > 0 {
		return int(b.cfg.Size[0])
	}
	return defaultWidth
}

func (b *Backend) height() int {
	if sz := b.doc.Settings.Size; sz != nil && sz[1] > 0 {
		return int(sz[1])
	}
	if b.cfg.Size[1] > 0 {
		return int(b.cfg.Size[1])
	}
	return defaultHeight
}

func (b *Backend) build(i int) []float64 {
	c := b.doc.Data[i].Curve
	row := resample(c.X, c.Y, b.columns)
	if b.doc.Settings.YScale == "log" {
		for k, v := range row {
			if v > 0 {
				row[k] = math.Log10(v)
			} else {
				row[k] = math.NaN()
			}
		}
	}
	return row
}

func (b *Backend) assemble() error {
	st := b.doc.Settings
	var data [][]float64
	var colors []asciigraph.AnsiColor
	var legends []string
	for i, row := range b.rows {
		if !anyFinite(row) {
			b.cfg.Logger.WithFields(l.IntField("series", i)).Debug("series has no finite samples")
			continue
		}
		data = append(data, row)
		style := b.doc.Style(i)
		name := style.Color
		if name == "" {
			name = b.cfg.Palette.Color(i)
		}
		colors = append(colors, asciigraph.ColorNames[strings.ToLower(name)])
		legends = append(legends, b.doc.Series[i].Label())
	}
	if len(data) == 0 {
		return fmt.Errorf("ascii: no finite samples to draw")
	}

	opts := []asciigraph.Option{
		asciigraph.Height(b.height()),
		asciigraph.SeriesColors(colors...),
	}
	if st.Title != "" {
		opts = append(opts, asciigraph.Caption(st.Title))
	}
	if b.doc.LegendOn() {
		opts = append(opts, asciigraph.SeriesLegends(legends...))
	}
	if st.YLim != nil {
		lo, hi := st.YLim[0], st.YLim[1]
		if st.YScale == "log" && lo > 0 && hi > 0 {
			lo, hi = math.Log10(lo), math.Log10(hi)
		}
		opts = append(opts, asciigraph.LowerBound(lo), asciigraph.UpperBound(hi))
	}
	b.out = asciigraph.PlotMany(data, opts...)
	b.drawn = true
	b.cfg.Logger.WithFields(l.IntField("rows", len(data)), l.IntField("columns", len(b.columns))).
		Debug("graph drawn")
	return nil
}

// columns returns the x positions sampled for each text column: the x
// limits when set, the union of the curve extents otherwise.
func columns(doc *backend.Document, n int) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	if doc.Settings.XLim != nil {
		lo, hi = doc.Settings.XLim[0], doc.Settings.XLim[1]
	} else {
		for _, d := range doc.Data {
			for _, x := range d.Curve.X {
				if !math.IsNaN(x) && !math.IsInf(x, 0) {
					lo, hi = math.Min(lo, x), math.Max(hi, x)
				}
			}
		}
	}
	if lo > hi {
		lo, hi = -10, 10
	}
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	logx := doc.Settings.XScale == "log" && lo > 0
	for k := range out {
		f := float64(k) / float64(n-1)
		if logx {
			out[k] = lo * math.Pow(hi/lo, f)
			continue
		}
		out[k] = lo + (hi-lo)*f
	}
	return out
}

func sameColumns(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// resample interpolates y(x) linearly at each column. Columns outside the
// sampled extent, or next to a non-finite sample, are NaN. xs must be
// ascending.
func resample(xs, ys, cols []float64) []float64 {
	out := make([]float64, len(cols))
	k := 0
	for c, x := range cols {
		out[c] = math.NaN()
		for k+1 < len(xs) && xs[k+1] < x {
			k++
		}
		if len(xs) == 0 || x < xs[0] || x > xs[len(xs)-1] {
			continue
		}
		if k+1 >= len(xs) {
			out[c] = finite(ys[k])
			continue
		}
		x0, x1, y0, y1 := xs[k], xs[k+1], ys[k], ys[k+1]
		if x == x0 {
			out[c] = finite(y0)
			continue
		}
		if x == x1 || x1 == x0 {
			out[c] = finite(y1)
			continue
		}
		out[c] = finite(y0 + (y1-y0)*(x-x0)/(x1-x0))
	}
	return out
}

// finite maps infinities to NaN, which asciigraph leaves blank.
func finite(v float64) float64 {
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func anyFinite(row []float64) bool {
	for _, v := range row {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}
