// Package render holds the rendering-option bags that travel untouched from
// plot entry points to backends, and the global plot settings.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Options is an ordered string-keyed map. The core never interprets its
// values; backends read the keys they know. A nil *Options is empty.
type Options struct {
	keys   []string
	values map[string]interface{}
}

// NewOptions builds an Options from alternating key, value pairs.
func NewOptions(kv ...interface{}) *Options {
	o := &Options{}
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			k = fmt.Sprint(kv[i])
		}
		o.Set(k, kv[i+1])
	}
	return o
}

// FromMap converts m, recursively, with keys in sorted order.
func FromMap(m map[string]interface{}) *Options {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	o := &Options{}
	for _, k := range keys {
		o.Set(k, normalizeValue(m[k]))
	}
	return o
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return FromMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	}
	return v
}

// Set inserts or replaces k. Replacing keeps the original position.
func (o *Options) Set(k string, v interface{}) *Options {
	if o.values == nil {
		o.values = map[string]interface{}{}
	}
	if _, ok := o.values[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.values[k] = v
	return o
}

func (o *Options) Get(k string) (interface{}, bool) {
	if o == nil || o.values == nil {
		return nil, false
	}
	v, ok := o.values[k]
	return v, ok
}

// Sub returns the nested bag stored at k, or nil.
func (o *Options) Sub(k string) *Options {
	v, ok := o.Get(k)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case *Options:
		return t
	case map[string]interface{}:
		return FromMap(t)
	}
	return nil
}

func (o *Options) Delete(k string) {
	if o == nil || o.values == nil {
		return
	}
	if _, ok := o.values[k]; !ok {
		return
	}
	delete(o.values, k)
	for i, key := range o.keys {
		if key == k {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

func (o *Options) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Clone copies o and every nested bag.
func (o *Options) Clone() *Options {
	out := &Options{}
	if o == nil {
		return out
	}
	for _, k := range o.keys {
		v := o.values[k]
		if sub, ok := v.(*Options); ok {
			v = sub.Clone()
		}
		out.Set(k, v)
	}
	return out
}

// Merge returns a new bag holding o overlaid by other. Nested bags merge
// key by key. Lists of bags merge element by element and keep the
// longer tail; any other value from other replaces the one in o.
func (o *Options) Merge(other *Options) *Options {
	out := o.Clone()
	if other == nil {
		return out
	}
	for _, k := range other.keys {
		v := other.values[k]
		if sub, ok := asOptions(v); ok {
			if cur, ok := asOptions(out.values[k]); ok {
				out.Set(k, cur.Merge(sub))
				continue
			}
			out.Set(k, sub.Clone())
			continue
		}
		if list, ok := v.([]interface{}); ok {
			if cur, ok := out.values[k].([]interface{}); ok {
				if merged, ok := mergeLists(cur, list); ok {
					out.Set(k, merged)
					continue
				}
			}
		}
		out.Set(k, v)
	}
	return out
}

// mergeLists merges two lists of bags. It reports false when either list
// holds anything but bags.
func mergeLists(left, right []interface{}) ([]interface{}, bool) {
	n := len(left)
	if len(right) > n {
		n = len(right)
	}
	out := make([]interface{}, n)
	for i := range out {
		var l, r *Options
		var ok bool
		if i < len(left) {
			if l, ok = asOptions(left[i]); !ok {
				return nil, false
			}
		}
		if i < len(right) {
			if r, ok = asOptions(right[i]); !ok {
				return nil, false
			}
		}
		out[i] = l.Merge(r)
	}
	return out, true
}

func asOptions(v interface{}) (*Options, bool) {
	switch t := v.(type) {
	case *Options:
		return t, t != nil
	case map[string]interface{}:
		return FromMap(t), true
	}
	return nil, false
}

// ToMap converts o to plain maps, recursively.
func (o *Options) ToMap() map[string]interface{} {
	out := map[string]interface{}{}
	if o == nil {
		return out
	}
	for _, k := range o.keys {
		v := o.values[k]
		if sub, ok := v.(*Options); ok {
			out[k] = sub.ToMap()
			continue
		}
		out[k] = v
	}
	return out
}

// MarshalJSON writes keys in insertion order.
func (o *Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if o != nil {
		for i, k := range o.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			vb, err := json.Marshal(o.values[k])
			if err != nil {
				return nil, fmt.Errorf("render: option %q: %w", k, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			buf.Write(vb)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML keeps the document's key order. JSON documents decode
// through the same path since yaml.v3 reads JSON.
func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("render: options must be a mapping, got line %d", node.Line)
	}
	*o = Options{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		v, err := yamlValue(node.Content[i+1])
		if err != nil {
			return err
		}
		o.Set(node.Content[i].Value, v)
	}
	return nil
}

func yamlValue(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.MappingNode:
		sub := &Options{}
		if err := sub.UnmarshalYAML(node); err != nil {
			return nil, err
		}
		return sub, nil
	case yaml.SequenceNode:
		out := make([]interface{}, len(node.Content))
		for i, c := range node.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case yaml.AliasNode:
		return yamlValue(node.Alias)
	}
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// String is a compact JSON form, used in logs.
func (o *Options) String() string {
	b, err := o.MarshalJSON()
	if err != nil {
		return "{?}"
	}
	return string(b)
}
