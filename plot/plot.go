// Package plot holds an ordered list of series, the plot settings and one
// backend, and drives the backend with the series' current data.
package plot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/njchilds90/gosymplot/backend"
	"github.com/njchilds90/gosymplot/render"
	"github.com/njchilds90/gosymplot/series"
	"github.com/sgostarter/i/commerr"
	"github.com/sgostarter/i/l"
)

var ErrNoBackend = fmt.Errorf("plot: no backend: %w", commerr.ErrInvalidArgument)

// Evaluator computes the data of series i for the given parameters.
type Evaluator func(i int, s *series.Series, params map[string]float64) (*series.Data, error)

// Saver is implemented by backends that write files themselves.
type Saver interface {
	Save(path string) error
}

type Plot struct {
	backend  backend.Backend
	settings render.Settings
	kw       *render.Options
	series   []*series.Series

	params func() map[string]float64
	eval   Evaluator
	logger l.Wrapper

	doc *backend.Document
}

// New creates a plot drawn by b. Nothing is evaluated or checked against
// the backend until the plot is first processed.
func New(b backend.Backend, settings render.Settings, ss ...*series.Series) *Plot {
	return &Plot{
		backend:  b,
		settings: settings,
		series:   append([]*series.Series(nil), ss...),
		logger:   l.NewNopLoggerWrapper().WithFields(l.StringField(l.ClsKey, "plot")),
	}
}

// WithLogger replaces the logger and returns p.
func (p *Plot) WithLogger(logger l.Wrapper) *Plot {
	if logger != nil {
		p.logger = logger.WithFields(l.StringField(l.ClsKey, "plot"))
	}
	return p
}

// WithOptions sets the plot-level option bags, e.g. a line_kw every
// series inherits, and returns p.
func (p *Plot) WithOptions(kw *render.Options) *Plot {
	p.kw = kw
	return p
}

// WithParams sets the source of parameter values read before every
// evaluation and returns p.
func (p *Plot) WithParams(source func() map[string]float64) *Plot {
	p.params = source
	return p
}

// WithEvaluator replaces the evaluation of single series and returns p.
func (p *Plot) WithEvaluator(eval Evaluator) *Plot {
	p.eval = eval
	return p
}

func (p *Plot) Backend() backend.Backend  { return p.backend }
func (p *Plot) Settings() render.Settings { return p.settings }
func (p *Plot) Options() *render.Options  { return p.kw }
func (p *Plot) Len() int                  { return len(p.series) }

// Series returns a copy of the series list.
func (p *Plot) Series() []*series.Series {
	return append([]*series.Series(nil), p.series...)
}

// Data returns the data last handed to the backend for series i, or nil
// before processing.
func (p *Plot) Data(i int) *series.Data {
	if p.doc == nil || i < 0 || i >= len(p.doc.Data) {
		return nil
	}
	return p.doc.Data[i]
}

// Add combines p and other into a new plot: the series of p followed by
// those of other, drawn by a fresh copy of p's backend. Settings and
// plot-level option bags of other take precedence, nested bags merge key
// by key, and the legend is turned on for two or more series. The result
// evaluates its series directly, not through an installed Evaluator.
func (p *Plot) Add(other *Plot) *Plot {
	var b backend.Backend
	if p.backend != nil {
		b = p.backend.Clone()
	}
	out := New(b, p.settings.Merge(other.settings), append(p.Series(), other.series...)...)
	// the evaluator belongs to the plot it was installed on
	out.logger = p.logger
	if p.kw != nil || other.kw != nil {
		out.kw = p.kw.Merge(other.kw)
	}
	if len(out.series) >= 2 {
		out.settings.Legend = render.Bool(true)
	}
	switch {
	case p.params != nil && other.params != nil:
		left, right := p.params, other.params
		out.params = func() map[string]float64 {
			m := right()
			for k, v := range left() {
				m[k] = v
			}
			return m
		}
	case p.params != nil:
		out.params = p.params
	default:
		out.params = other.params
	}
	return out
}

func (p *Plot) currentParams() map[string]float64 {
	if p.params == nil {
		return nil
	}
	return p.params()
}

func (p *Plot) evaluate(i int, params map[string]float64) (*series.Data, error) {
	s := p.series[i]
	var d *series.Data
	var err error
	if p.eval != nil {
		d, err = p.eval(i, s, params)
	} else {
		d, err = s.Evaluate(params)
	}
	if err != nil {
		return nil, fmt.Errorf("plot: series %d (%s): %w", i, s.Label(), err)
	}
	return d, nil
}

// ProcessSeries evaluates every series with the current parameters and
// hands the data to the backend. The backend rejects series it cannot
// draw with a *backend.CapabilityError.
func (p *Plot) ProcessSeries() error {
	if p.backend == nil {
		return ErrNoBackend
	}
	if err := backend.Check(p.backend, p.series); err != nil {
		return err
	}
	params := p.currentParams()
	doc := &backend.Document{
		Settings: p.settings,
		Series:   p.series,
		Data:     make([]*series.Data, len(p.series)),
		Options:  p.kw,
	}
	for i := range p.series {
		d, err := p.evaluate(i, params)
		if err != nil {
			return err
		}
		doc.Data[i] = d
	}
	if err := p.backend.Process(doc); err != nil {
		p.logger.WithFields(l.ErrorField(err), l.StringField("backend", p.backend.Name())).Error("process failed")
		return err
	}
	p.doc = doc
	p.logger.WithFields(l.IntField("series", len(p.series)), l.StringField("backend", p.backend.Name())).
		Debug("series processed")
	return nil
}

// Update re-evaluates the series at indices and asks the backend to
// redraw only those. An unprocessed plot is processed in full.
func (p *Plot) Update(indices []int) error {
	if p.doc == nil {
		return p.ProcessSeries()
	}
	params := p.currentParams()
	data := append([]*series.Data(nil), p.doc.Data...)
	for _, i := range indices {
		if i < 0 || i >= len(p.series) {
			return fmt.Errorf("plot: series index %d out of range: %w", i, commerr.ErrInvalidArgument)
		}
		d, err := p.evaluate(i, params)
		if err != nil {
			return err
		}
		data[i] = d
	}
	doc := &backend.Document{Settings: p.settings, Series: p.series, Data: data, Options: p.kw}
	if err := p.backend.Update(doc, indices); err != nil {
		return err
	}
	p.doc = doc
	return nil
}

func (p *Plot) ensure() error {
	if p.doc != nil {
		return nil
	}
	return p.ProcessSeries()
}

// Fig returns the backend-native figure, processing the plot first if
// needed.
func (p *Plot) Fig() (interface{}, error) {
	if err := p.ensure(); err != nil {
		return nil, err
	}
	return p.backend.Fig(), nil
}

// Show writes the figure to w. With show turned off in the settings the
// plot is processed but nothing is written.
func (p *Plot) Show(w io.Writer) error {
	if err := p.ensure(); err != nil {
		return err
	}
	if !p.settings.ShowOn() {
		return nil
	}
	return p.backend.Show(w)
}

// Save writes the figure to path, through the backend when it saves
// files itself.
func (p *Plot) Save(path string) (err error) {
	if err = p.ensure(); err != nil {
		return err
	}
	if s, ok := p.backend.(Saver); ok {
		return s.Save(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return p.backend.Show(f)
}
