package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/njchilds90/gosymplot/backend/gonumplot"
	"github.com/njchilds90/gosymplot/config"
	"github.com/njchilds90/gosymplot/interactive"
	"github.com/njchilds90/gosymplot/series"
	"github.com/sgostarter/i/commerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lineDoc = `
entry: plot
backend: gonumplot
series:
  - exprs: ["a*x"]
    label: scaled
  - exprs: ["x^2"]
    options:
      line_kw: {color: red}
ranges:
  - {symbol: x, min: 0, max: 1}
params:
  - {symbol: a, default: 1, min: 0, max: 4, steps: 9}
settings:
  title: demo
  show: false
  xlim: [0, 1]
options:
  line_kw: {width: 2}
sampling:
  n: [5]
layout:
  kind: sbl
  ncols: 1
`

func TestParse_Build(t *testing.T) {
	d, err := config.Parse([]byte(lineDoc))
	require.NoError(t, err)
	assert.True(t, d.Interactive())
	assert.Equal(t, "demo", d.Settings.Title)
	require.NotNil(t, d.Settings.XLim)
	assert.Equal(t, [2]float64{0, 1}, *d.Settings.XLim)

	p, err := d.Build()
	require.NoError(t, err)
	assert.Equal(t, gonumplot.Name, p.Backend().Name())
	ss := p.Series()
	require.Len(t, ss, 2)
	assert.Equal(t, "scaled", ss[0].Label())
	assert.Equal(t, [3]int{5, 5, 5}, ss[0].N())
	c, _ := ss[1].Options().Sub("line_kw").Get("color")
	assert.Equal(t, "red", c)
	w, _ := p.Options().Sub("line_kw").Get("width")
	assert.Equal(t, 2, w)

	require.NoError(t, p.ProcessSeries())
	assert.Equal(t, 1.0, p.Data(0).Curve.Y[4])
}

func TestBuildInteractive(t *testing.T) {
	d, err := config.Parse([]byte(lineDoc))
	require.NoError(t, err)
	ip, err := d.BuildInteractive()
	require.NoError(t, err)
	assert.Equal(t, interactive.LayoutSidebarLeft, ip.Bindings().LayoutKind())
	cs := ip.Controls()
	require.Len(t, cs, 1)
	assert.InDelta(t, 0.5, cs[0].Step, 1e-12)

	indices, err := ip.Update(map[string]float64{"a": 3})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, indices)
	assert.Equal(t, 3.0, ip.Plot().Data(0).Curve.Y[4])
}

func TestParse_JSONComplex(t *testing.T) {
	d, err := config.Parse([]byte(`{"entry": "complex", "sampling": {"n": [8], "threed": true},` +
		`"series": [{"exprs": ["sqrt(z)"], "ranges": [{"symbol": "z", "min": "-2 - 2*I", "max": "2 + 2*I"}]}]}`))
	require.NoError(t, err)
	p, err := d.Build()
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	s := p.Series()[0]
	assert.Equal(t, series.ComplexDomainColoring, s.Kind())
	assert.True(t, s.ThreeD())
}

func TestParams(t *testing.T) {
	d, err := config.Parse([]byte(`
series: [{exprs: ["a*b*c*d*x"]}]
params:
  - {symbol: a, default: 2, min: 2, max: 4000, steps: 10, scale: log, label: gain}
  - {symbol: b, kind: integer, default: 3, max: 5}
  - {symbol: c, kind: boolean, default: true}
  - {symbol: d, kind: choice, default: 2, choices: [1, 2, 4]}
`))
	require.NoError(t, err)
	assert.Equal(t, "plot", d.Entry)
	specs, err := d.ParamSpecs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, specs.Symbols())

	b, err := interactive.NewBindings(specs)
	require.NoError(t, err)
	cs := b.Controls()
	assert.Equal(t, interactive.DiscreteLog, cs[0].Kind)
	assert.Equal(t, "gain", cs[0].Label)
	assert.True(t, cs[1].Integer)
	assert.Equal(t, interactive.Boolean, cs[2].Kind)
	assert.Equal(t, interactive.Choice, cs[3].Kind)
	assert.Equal(t, map[string]float64{"a": 2, "b": 3, "c": 1, "d": 2}, b.Read())
}

func TestGeometry(t *testing.T) {
	d, err := config.Parse([]byte(`
entry: geometry
entities:
  - {type: circle, points: [[0, 0]], radii: [r], label: disc}
  - {type: polygon, points: [[0, 0], [1, 0], [0, 1]]}
  - {type: segment, points: [[0, 0], ["1/2", 1]]}
params:
  - {symbol: r, default: 1, min: 0.5, max: 2}
`))
	require.NoError(t, err)
	p, err := d.Build()
	require.NoError(t, err)
	ss := p.Series()
	require.Len(t, ss, 3)
	assert.Equal(t, "disc", ss[0].Label())
	assert.Equal(t, []string{"r"}, ss[0].Params())
	require.NoError(t, p.ProcessSeries())

	d.Entities[0].Type = "hexagon"
	_, err = d.Build()
	assert.ErrorIs(t, err, config.ErrInvalidDocument)
}

func TestInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"entry":     "entry: bar\nseries: [{exprs: [x]}]",
		"no series": "entry: plot",
		"no exprs":  "series: [{label: a}]",
		"no entity": "entry: geometry",
		"repeated":  "series: [{exprs: [x]}]\nparams: [{symbol: a, default: 1, max: 2}, {symbol: a, default: 1, max: 2}]",
		"not yaml":  "series: [",
	} {
		_, err := config.Parse([]byte(doc))
		assert.ErrorIs(t, err, commerr.ErrInvalidArgument, name)
	}

	d, err := config.Parse([]byte("series: [{exprs: [a*x]}]\nparams: [{symbol: a, kind: slider, default: 1}]"))
	require.NoError(t, err)
	_, err = d.Build()
	assert.ErrorIs(t, err, config.ErrInvalidDocument)

	d, err = config.Parse([]byte("series: [{exprs: [\"x +\"]}]"))
	require.NoError(t, err)
	_, err = d.Build()
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(lineDoc), 0o600))
	d, err := config.Load(path)
	require.NoError(t, err)
	assert.Len(t, d.Series, 2)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.Contains(t, config.Entries(), "vector")
}
