package main

import (
	"testing"

	"github.com/njchilds90/gosymplot/config"
	"github.com/njchilds90/gosymplot/interactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments(map[string]string{"a": "2.5", "b": "true", "c": "off", "d": "-3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 2.5, "b": 1, "c": 0, "d": -3}, got)

	_, err = parseAssignments(map[string]string{"a": "two"})
	assert.ErrorContains(t, err, "invalid value for a")
}

func TestLayoutOptions(t *testing.T) {
	d, err := config.Parse([]byte(`
series: [{exprs: ["a*b*x"]}]
params:
  - {symbol: a, default: 1, max: 2}
  - {symbol: b, default: 1, max: 2}
layout: {kind: bb, ncols: 1}
`))
	require.NoError(t, err)
	specs, err := d.ParamSpecs()
	require.NoError(t, err)
	b, err := interactive.NewBindings(specs, layoutOptions(d)...)
	require.NoError(t, err)
	assert.Equal(t, interactive.LayoutBottomBar, b.LayoutKind())
	assert.Equal(t, [][]string{{"a"}, {"b"}}, b.Layout())
}
