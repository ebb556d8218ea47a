// Package data contains the JSON value model used by every other adapter: a
// tagged union [Value] and the ordered mapping [M] that backs documents.
package data

import (
	"math"
	"slices"
)

// Kind identifies which variant a [Value] holds.
type Kind uint8

// Value kinds. The zero Value is Null.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a JSON value. Values are immutable by convention: the slice and
// mapping they wrap must not be changed after construction unless the Value
// was obtained through [Value.Clone].
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	seq  []Value
	m    *M
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Sequence returns a Value holding the given elements.
func Sequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSequence, seq: items}
}

// Mapping returns a Value holding m. A nil m is treated as an empty mapping.
func Mapping(m *M) Value {
	if m == nil {
		m = NewM()
	}
	return Value{kind: KindMapping, m: m}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean held by v.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Number returns the number held by v.
func (v Value) Number() (float64, bool) { return v.n, v.kind == KindNumber }

// Str returns the string held by v.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Sequence returns the elements held by v.
func (v Value) Sequence() ([]Value, bool) { return v.seq, v.kind == KindSequence }

// Mapping returns the mapping held by v.
func (v Value) Mapping() (*M, bool) { return v.m, v.kind == KindMapping }

// Equal reports JSON-value equality. Kinds must match, so a number never
// equals a string. Mappings are equal when they hold the same keys with equal
// values, regardless of key order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindSequence:
		return slices.EqualFunc(v.seq, o.seq, Value.Equal)
	case KindMapping:
		return v.m.Equal(o.m)
	}
	return false
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindSequence:
		items := make([]Value, len(v.seq))
		for n, item := range v.seq {
			items[n] = item.Clone()
		}
		return Value{kind: KindSequence, seq: items}
	case KindMapping:
		return Value{kind: KindMapping, m: v.m.Clone()}
	default:
		return v
	}
}

// Interface converts v into plain Go values: nil, bool, float64 (or int64
// when the number is integral), string, []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.n == math.Trunc(v.n) && math.Abs(v.n) < 1<<53 {
			return int64(v.n)
		}
		return v.n
	case KindString:
		return v.s
	case KindSequence:
		res := make([]any, len(v.seq))
		for n, item := range v.seq {
			res[n] = item.Interface()
		}
		return res
	case KindMapping:
		return v.m.Map()
	default:
		return nil
	}
}
