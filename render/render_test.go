package render_test

import (
	"encoding/json"
	"testing"

	"github.com/njchilds90/gosymplot/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOptions_KeepsInsertionOrder(t *testing.T) {
	o := render.NewOptions("z", 1, "a", 2, "m", 3)
	o.Set("a", 20)
	assert.Equal(t, []string{"z", "a", "m"}, o.Keys())
	v, ok := o.Get("a")
	require.True(t, ok)
	assert.Equal(t, 20, v)

	o.Delete("z")
	assert.Equal(t, []string{"a", "m"}, o.Keys())
}

func TestOptions_NilIsEmpty(t *testing.T) {
	var o *render.Options
	assert.Equal(t, 0, o.Len())
	_, ok := o.Get("x")
	assert.False(t, ok)
	assert.Equal(t, 0, o.Clone().Len())
	assert.Equal(t, "{}", o.String())
}

func TestOptions_MergeDeep(t *testing.T) {
	left := render.NewOptions(
		"line_kw", render.NewOptions("line_color", "blue", "width", 2),
		"title", "a",
	)
	right := render.NewOptions(
		"line_kw", map[string]interface{}{"line_color": "red"},
		"title", "b",
	)
	merged := left.Merge(right)
	kw := merged.Sub("line_kw")
	require.NotNil(t, kw)
	c, _ := kw.Get("line_color")
	w, _ := kw.Get("width")
	assert.Equal(t, "red", c)
	assert.Equal(t, 2, w)
	title, _ := merged.Get("title")
	assert.Equal(t, "b", title)

	// inputs are untouched
	c, _ = left.Sub("line_kw").Get("line_color")
	assert.Equal(t, "blue", c)
}

func TestOptions_MergeLists(t *testing.T) {
	left := render.NewOptions(
		"traces", []interface{}{render.NewOptions("color", "blue", "width", 2), map[string]interface{}{"dash": "dot"}},
		"xlim", []interface{}{0, 1},
	)
	right := render.NewOptions(
		"traces", []interface{}{map[string]interface{}{"color": "red"}},
		"xlim", []interface{}{-1, 2},
	)
	merged := left.Merge(right)

	traces, _ := merged.Get("traces")
	list, ok := traces.([]interface{})
	require.True(t, ok)
	require.Len(t, list, 2)
	first := list[0].(*render.Options)
	c, _ := first.Get("color")
	w, _ := first.Get("width")
	assert.Equal(t, "red", c)
	assert.Equal(t, 2, w)
	d, _ := list[1].(*render.Options).Get("dash")
	assert.Equal(t, "dot", d)

	// plain value lists are replaced
	xlim, _ := merged.Get("xlim")
	assert.Equal(t, []interface{}{-1, 2}, xlim)
}

func TestOptions_JSONOrder(t *testing.T) {
	o := render.NewOptions("b", 1, "a", render.NewOptions("y", true, "x", "s"))
	b, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":{"y":true,"x":"s"}}`, string(b))
}

func TestOptions_YAMLOrder(t *testing.T) {
	src := "b: 1\na:\n  y: true\n  x: [1, 2]\n"
	var o render.Options
	require.NoError(t, yaml.Unmarshal([]byte(src), &o))
	assert.Equal(t, []string{"b", "a"}, o.Keys())
	sub := o.Sub("a")
	require.NotNil(t, sub)
	assert.Equal(t, []string{"y", "x"}, sub.Keys())
	x, _ := sub.Get("x")
	assert.Equal(t, []interface{}{1, 2}, x)
}

func TestOptions_ToMap(t *testing.T) {
	o := render.NewOptions("a", render.NewOptions("b", 1))
	assert.Equal(t, map[string]interface{}{"a": map[string]interface{}{"b": 1}}, o.ToMap())
}

func TestSettings_MergeRightOverLeft(t *testing.T) {
	left := render.Settings{Title: "a", XLabel: "x", Legend: render.Bool(false)}
	right := render.Settings{Title: "b", YLim: render.Lim(-1, 1)}
	got := left.Merge(right)
	assert.Equal(t, "b", got.Title)
	assert.Equal(t, "x", got.XLabel)
	assert.Equal(t, &[2]float64{-1, 1}, got.YLim)
	require.NotNil(t, got.Legend)
	assert.False(t, *got.Legend)
	assert.True(t, got.GridOn())
	assert.True(t, got.ShowOn())
}

func TestSuggest(t *testing.T) {
	cases := []struct{ key, want string }{
		{"x_label", "xlabel"},
		{"adapt", "adaptive"},
		{"deptt", "depth"},
		{"streamline", "streamlines"},
		{"phase_res", "phaseres"},
		{"render_kw", "rendering_kw"},
		{"is_fille", "is_filled"},
		{"surface_colors", "surface_color"},
	}
	known := []string{"xlabel", "adaptive", "depth", "streamlines", "phaseres",
		"rendering_kw", "is_filled", "surface_color", "n"}
	for _, c := range cases {
		got, ok := render.Suggest(c.key, known)
		require.True(t, ok, c.key)
		assert.Equal(t, c.want, got, c.key)
	}
	_, ok := render.Suggest("completely_unrelated", known)
	assert.False(t, ok)
	_, ok = render.Suggest("depth", known)
	assert.False(t, ok)
}

func TestCheck(t *testing.T) {
	got := render.Check([]string{"n", "adapt", "line_color"}, []string{"n", "adaptive"})
	assert.Equal(t, []render.Suggestion{{Key: "adapt", Match: "adaptive"}}, got)
}
