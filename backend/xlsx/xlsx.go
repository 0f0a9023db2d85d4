// Package xlsx exports the sampled data of a plot to an Excel workbook
// with github.com/xuri/excelize. Each series gets a sheet of its own;
// the first sheet indexes them and charts the planar curves.
package xlsx

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/njchilds90/gosymplot/backend"
	"github.com/njchilds90/gosymplot/series"
	"github.com/sgostarter/i/l"
	"github.com/xuri/excelize/v2"
)

const (
	Name       = "xlsx"
	IndexSheet = "plot"

	maxSheetName = 31
)

var DefaultPalette = backend.Palette{
	Colors: []string{"4472C4", "ED7D31", "A5A5A5", "FFC000", "5B9BD5", "70AD47"},
}

var capabilities = backend.Capabilities{
	Kinds:         series.AllKinds(),
	Streamlines2D: true,
	Streamlines3D: true,
}

// table is the sheet content of one series: a header row and records.
type table struct {
	sheet   string
	header  []interface{}
	records [][]interface{}
	// chartable tables hold x in column A and y in column B.
	chartable bool
}

type Backend struct {
	cfg backend.Config

	doc    *backend.Document
	tables []table
	file   *excelize.File
}

func New(options ...backend.Option) *Backend {
	return &Backend{cfg: backend.NewConfig("xlsxBackend", DefaultPalette, options...)}
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
	b.tables = make([]table, len(doc.Series))
	for i := range doc.Series {
		b.tables[i] = b.build(i)
	}
	return b.assemble()
}

func (b *Backend) Update(doc *backend.Document, indices []int) error {
	if b.file == nil || len(doc.Series) != len(b.tables) {
		return b.Process(doc)
	}
	if err := backend.Validate(b, doc); err != nil {
		return err
	}
	b.doc = doc
	for _, i := range indices {
		if i < 0 || i >= len(b.tables) {
			return fmt.Errorf("xlsx: series index %d out of range", i)
		}
		b.tables[i] = b.build(i)
	}
	return b.assemble()
}

// Fig returns the *excelize.File, or nil before Process.
func (b *Backend) Fig() interface{} {
	if b.file == nil {
		return nil
	}
	return b.file
}

// Show writes the workbook in xlsx format.
func (b *Backend) Show(w io.Writer) error {
	if b.file == nil {
		return fmt.Errorf("xlsx: nothing processed")
	}
	_, err := b.file.WriteTo(w)
	return err
}

// Save writes the workbook to path.
func (b *Backend) Save(path string) error {
	if b.file == nil {
		return fmt.Errorf("xlsx: nothing processed")
	}
	return b.file.SaveAs(path)
}

func (b *Backend) assemble() error {
	if b.file != nil {
		_ = b.file.Close()
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", IndexSheet); err != nil {
		return err
	}

	st := b.doc.Settings
	index := [][]interface{}{
		{"title", st.Title},
		{"series", "kind", "label", "sheet"},
	}
	for i, t := range b.tables {
		s := b.doc.Series[i]
		index = append(index, []interface{}{i + 1, s.Kind().String(), s.Label(), t.sheet})

		if _, err := f.NewSheet(t.sheet); err != nil {
			return fmt.Errorf("xlsx: sheet %q: %w", t.sheet, err)
		}
		if err := writeRows(f, t.sheet, append([][]interface{}{t.header}, t.records...)); err != nil {
			return err
		}
	}
	if err := writeRows(f, IndexSheet, index); err != nil {
		return err
	}
	if err := b.chart(f, len(index)+2); err != nil {
		return err
	}
	f.SetActiveSheet(0)
	b.file = f
	b.cfg.Logger.WithFields(l.IntField("sheets", len(b.tables)+1)).Debug("workbook assembled")
	return nil
}

// chart draws the chartable series as one scatter chart on the index
// sheet, below the index.
func (b *Backend) chart(f *excelize.File, row int) error {
	st := b.doc.Settings
	var cs []excelize.ChartSeries
	slot := 0
	for i, t := range b.tables {
		if !t.chartable || len(t.records) == 0 {
			continue
		}
		s := b.doc.Series[i]
		col := strings.TrimPrefix(b.doc.Style(i).Color, "#")
		if !isHex(col) {
			col = b.cfg.Palette.Color(slot)
		}
		slot++
		last := len(t.records) + 1
		cs = append(cs, excelize.ChartSeries{
			Name:       s.Label(),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", t.sheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", t.sheet, last),
			Line:       excelize.ChartLine{Type: excelize.ChartLineSolid, Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{col}}},
			Marker:     excelize.ChartMarker{Symbol: "none"},
		})
	}
	if len(cs) == 0 {
		return nil
	}
	c := &excelize.Chart{
		Type:         excelize.Scatter,
		Series:       cs,
		Title:        []excelize.RichTextRun{{Text: st.Title}},
		Legend:       excelize.ChartLegend{Position: "bottom"},
		ShowBlanksAs: "gap",
		XAxis:        axis(st.XLabel, st.XLim, st.XScale),
		YAxis:        axis(st.YLabel, st.YLim, st.YScale),
	}
	if !b.doc.LegendOn() {
		c.Legend.Position = "none"
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.AddChart(IndexSheet, cell, c)
}

func axis(label string, lim *[2]float64, scale string) excelize.ChartAxis {
	a := excelize.ChartAxis{MajorGridLines: true}
	if label != "" {
		a.Title = []excelize.RichTextRun{{Text: label}}
	}
	if lim != nil {
		lo, hi := lim[0], lim[1]
		a.Minimum, a.Maximum = &lo, &hi
	}
	if scale == "log" {
		a.LogBase = 10
	}
	return a
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: sheet %q row %d: %w", sheet, r+1, err)
		}
	}
	return nil
}

func (b *Backend) build(i int) table {
	s, d := b.doc.Series[i], b.doc.Data[i]
	t := table{sheet: sheetName(i, s.Label())}

	switch {
	case d.Curve != nil:
		c := d.Curve
		t.header = []interface{}{"x", "y"}
		cols := [][]float64{c.X, c.Y}
		if c.Z != nil {
			t.header = append(t.header, "z")
			cols = append(cols, c.Z)
		}
		if c.Param != nil {
			t.header = append(t.header, "param")
			cols = append(cols, c.Param)
		}
		t.records = columns(cols...)
		t.chartable = c.Z == nil

	case d.Grid != nil && d.Image == nil:
		g := d.Grid
		t.header = []interface{}{"x", "y", "z"}
		for k, x := range g.Xs {
			for j, y := range g.Ys {
				t.records = append(t.records, cells(x, y, g.Z[k][j]))
			}
		}

	case d.Mesh != nil:
		m := d.Mesh
		t.header = []interface{}{"u", "v", "x", "y", "z"}
		for k, u := range m.U {
			for j, v := range m.V {
				t.records = append(t.records, cells(u, v, m.X[k][j], m.Y[k][j], m.Z[k][j]))
			}
		}

	case d.Field2D != nil:
		fl := d.Field2D
		t.header = []interface{}{"x", "y", "u", "v", "magnitude"}
		for k, x := range fl.Xs {
			for j, y := range fl.Ys {
				t.records = append(t.records, cells(x, y, fl.U[k][j], fl.V[k][j], fl.Mag[k][j]))
			}
		}

	case d.Field3D != nil:
		fl := d.Field3D
		t.header = []interface{}{"x", "y", "z", "u", "v", "w"}
		t.records = columns(fl.X, fl.Y, fl.Z, fl.U, fl.V, fl.W)

	case d.Image != nil:
		img := d.Image
		t.header = []interface{}{"re", "im", "abs", "arg"}
		for k, x := range img.Xs {
			for j, y := range img.Ys {
				t.records = append(t.records, cells(x, y, img.Mag[k][j], img.Arg[k][j]))
			}
		}

	case s.Kind() == series.Implicit2D:
		t.header = []interface{}{"x0", "x1", "y0", "y1"}
		for _, r := range d.Rects {
			t.records = append(t.records, cells(r.X0, r.X1, r.Y0, r.Y1))
		}

	case d.Streams != nil:
		t.header = []interface{}{"line", "x", "y", "z", "speed"}
		for n, c := range d.Streams {
			for k := range c.X {
				rec := []interface{}{n + 1, cell(c.X[k]), cell(c.Y[k]), nil, nil}
				if c.Z != nil {
					rec[3] = cell(c.Z[k])
				}
				if c.Param != nil {
					rec[4] = cell(c.Param[k])
				}
				t.records = append(t.records, rec)
			}
		}
	}
	return t
}

// sheetName makes a valid, unique worksheet name from the series
// position and label.
func sheetName(i int, label string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']', '\'':
			return '_'
		}
		return r
	}, label)
	name := []rune(fmt.Sprintf("%d %s", i+1, clean))
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return strings.TrimSpace(string(name))
}

// isHex reports whether c is an RRGGBB colour, the only form chart
// fills accept.
func isHex(c string) bool {
	if len(c) != 6 {
		return false
	}
	for _, r := range strings.ToLower(c) {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

func columns(cols ...[]float64) [][]interface{} {
	if len(cols) == 0 {
		return nil
	}
	out := make([][]interface{}, len(cols[0]))
	for k := range out {
		rec := make([]interface{}, len(cols))
		for c, col := range cols {
			rec[c] = cell(col[k])
		}
		out[k] = rec
	}
	return out
}

func cells(vs ...float64) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = cell(v)
	}
	return out
}

// cell leaves non-finite samples blank.
func cell(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
