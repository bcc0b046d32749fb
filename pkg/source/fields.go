package source

import (
	"strings"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/jsonutil"
)

// Field lookups take an ordered list of names: the canonical field name
// first, then legacy aliases. The first name present with a non-nil value
// wins and later names are not consulted, even if that value cannot be
// coerced; in that case the declared default is used. A dotted name walks
// nested maps ("customer.id").

// FirstDefined returns the value of the first name present with a non-nil value.
func (d Document) FirstDefined(names ...string) (any, bool) {
	for _, name := range names {
		if v, ok := d.lookup(name); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String resolves names to a string, or def.
func (d Document) String(def string, names ...string) string {
	v, ok := d.FirstDefined(names...)
	if !ok {
		return def
	}
	s, ok := jsonutil.FlexibleStringValue(v)
	if !ok {
		return def
	}
	return s
}

// OptString resolves names to a string; nil when absent or empty.
func (d Document) OptString(names ...string) *string {
	s := d.String("", names...)
	if s == "" {
		return nil
	}
	return &s
}

// Float resolves names to a float64, or def.
func (d Document) Float(def float64, names ...string) float64 {
	v, ok := d.FirstDefined(names...)
	if !ok {
		return def
	}
	f, ok := jsonutil.FlexibleFloatValue(v)
	if !ok {
		return def
	}
	return f
}

// OptFloat resolves names to a float64; nil when absent or not numeric.
func (d Document) OptFloat(names ...string) *float64 {
	v, ok := d.FirstDefined(names...)
	if !ok {
		return nil
	}
	f, ok := jsonutil.FlexibleFloatValue(v)
	if !ok {
		return nil
	}
	return &f
}

// Int resolves names to an int64, or def.
func (d Document) Int(def int64, names ...string) int64 {
	v, ok := d.FirstDefined(names...)
	if !ok {
		return def
	}
	i, ok := jsonutil.FlexibleIntValue(v)
	if !ok {
		return def
	}
	return i
}

// Bool resolves names to a bool, or def.
func (d Document) Bool(def bool, names ...string) bool {
	v, ok := d.FirstDefined(names...)
	if !ok {
		return def
	}
	b, ok := jsonutil.FlexibleBoolValue(v)
	if !ok {
		return def
	}
	return b
}

// Raw resolves names to the untyped value, or nil.
func (d Document) Raw(names ...string) any {
	v, _ := d.FirstDefined(names...)
	return v
}

func (d Document) lookup(name string) (any, bool) {
	if v, ok := d.Fields[name]; ok {
		return v, true
	}
	if !strings.Contains(name, ".") {
		return nil, false
	}

	var cur any = d.Fields
	for _, part := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}
