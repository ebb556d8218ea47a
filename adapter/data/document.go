package data

import (
	"iter"
	"slices"
)

// DefaultIDKey is the key under which documents keep their identifier unless
// the database is configured otherwise.
const DefaultIDKey = "_id"

// M is an ordered JSON mapping. Documents are *M values. Keys keep the order
// they were first set in; setting an existing key keeps its position.
type M struct {
	keys []string
	vals map[string]Value
}

// NewM returns an empty mapping.
func NewM() *M {
	return &M{vals: make(map[string]Value)}
}

// Get returns the value under key and whether it is set.
func (d *M) Get(key string) (Value, bool) {
	if d == nil {
		return Value{}, false
	}
	v, ok := d.vals[key]
	return v, ok
}

// Has reports whether a value is set under key.
func (d *M) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Set sets the value under key.
func (d *M) Set(key string, v Value) {
	if _, ok := d.vals[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = v
}

// Unset removes key from the mapping.
func (d *M) Unset(key string) {
	if _, ok := d.vals[key]; !ok {
		return
	}
	delete(d.vals, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })
}

// Len returns the number of keys.
func (d *M) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the keys in order.
func (d *M) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		if d == nil {
			return
		}
		for _, k := range d.keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Iter returns the key-value pairs in order.
func (d *M) Iter() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if d == nil {
			return
		}
		for _, k := range d.keys {
			if !yield(k, d.vals[k]) {
				return
			}
		}
	}
}

// ID returns the string identifier stored under DefaultIDKey, if any.
func (d *M) ID() string {
	return d.IDAt(DefaultIDKey)
}

// IDAt returns the string identifier stored under key, if any.
func (d *M) IDAt(key string) string {
	v, _ := d.Get(key)
	s, _ := v.Str()
	return s
}

// Equal reports whether both mappings hold equal values under the same keys.
func (d *M) Equal(o *M) bool {
	if d.Len() != o.Len() {
		return false
	}
	for k, v := range d.Iter() {
		ov, ok := o.Get(k)
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of d.
func (d *M) Clone() *M {
	res := &M{
		keys: make([]string, 0, d.Len()),
		vals: make(map[string]Value, d.Len()),
	}
	for k, v := range d.Iter() {
		res.keys = append(res.keys, k)
		res.vals[k] = v.Clone()
	}
	return res
}

// Map converts d into a map[string]any using [Value.Interface].
func (d *M) Map() map[string]any {
	res := make(map[string]any, d.Len())
	for k, v := range d.Iter() {
		res[k] = v.Interface()
	}
	return res
}
