package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	goreflect "github.com/goccy/go-reflect"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// TagName is the struct tag read when converting structs into documents.
const TagName = "jsondb"

// ErrInvalidJSON is returned by [ParseJSON] when the input is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// ErrDocumentType is returned when a value cannot be represented as JSON, or
// when a document was expected and some other kind of value was given.
type ErrDocumentType struct {
	Type string
}

// Error implements [error].
func (e ErrDocumentType) Error() string {
	return fmt.Sprintf("cannot use %s as a JSON document", e.Type)
}

// NewDocument converts in into a document. Accepted inputs are the ones
// accepted by [FromAny] that result in a mapping. A nil input returns an
// empty document.
func NewDocument(in any) (*M, error) {
	if in == nil {
		return NewM(), nil
	}
	v, err := FromAny(in)
	if err != nil {
		return nil, err
	}
	m, ok := v.Mapping()
	if !ok {
		return nil, ErrDocumentType{Type: v.Kind().String()}
	}
	return m, nil
}

// FromAny converts a Go value into a [Value]. Maps with string keys become
// mappings (keys sorted, since Go maps have no order), slices and arrays
// become sequences, every numeric type becomes a number and time.Time becomes
// an RFC 3339 string. Structs are converted field by field, honoring the
// "jsondb" tag (`jsondb:"name,omitempty"` or `jsondb:"-"`).
func FromAny(in any) (Value, error) {
	switch t := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *M:
		if t == nil {
			return Null(), nil
		}
		return Mapping(t), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return Number(f), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		f, err := cast.ToFloat64E(t)
		if err != nil {
			return Value{}, err
		}
		return Number(f), nil
	case time.Time:
		return String(t.Format(time.RFC3339Nano)), nil
	case map[string]any:
		m := NewM()
		for _, k := range slices.Sorted(maps.Keys(t)) {
			v, err := FromAny(t[k])
			if err != nil {
				return Value{}, err
			}
			m.Set(k, v)
		}
		return Mapping(m), nil
	case []any:
		items := make([]Value, len(t))
		for n, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}
			items[n] = v
		}
		return Sequence(items...), nil
	}
	return fromReflect(goreflect.ValueNoEscapeOf(in))
}

func fromReflect(r goreflect.Value) (Value, error) {
	for r.Kind() == reflect.Pointer || r.Kind() == reflect.Interface {
		if r.IsNil() {
			return Null(), nil
		}
		r = r.Elem()
	}
	switch r.Kind() {
	case reflect.Invalid:
		return Null(), nil
	case reflect.Bool:
		return Bool(r.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(r.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(r.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Number(r.Float()), nil
	case reflect.String:
		return String(r.String()), nil
	case reflect.Slice:
		if r.IsNil() {
			return Null(), nil
		}
		fallthrough
	case reflect.Array:
		items := make([]Value, r.Len())
		for i := range r.Len() {
			v, err := fromReflect(r.Index(i))
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Sequence(items...), nil
	case reflect.Map:
		if r.IsNil() {
			return Null(), nil
		}
		return mapFromReflect(r)
	case reflect.Struct:
		if t, ok := r.Interface().(time.Time); ok {
			return String(t.Format(time.RFC3339Nano)), nil
		}
		return structFromReflect(r)
	default:
		return Value{}, ErrDocumentType{Type: r.Kind().String()}
	}
}

func mapFromReflect(r goreflect.Value) (Value, error) {
	keys := r.MapKeys()
	names := make(map[string]goreflect.Value, len(keys))
	for _, k := range keys {
		if k.Kind() != reflect.String {
			return Value{}, ErrDocumentType{Type: "map with " + k.Kind().String() + " keys"}
		}
		names[k.String()] = k
	}
	m := NewM()
	for _, name := range slices.Sorted(maps.Keys(names)) {
		v, err := fromReflect(r.MapIndex(names[name]))
		if err != nil {
			return Value{}, err
		}
		m.Set(name, v)
	}
	return Mapping(m), nil
}

func structFromReflect(r goreflect.Value) (Value, error) {
	typ := r.Type()
	m := NewM()
	for n := range r.NumField() {
		field := typ.Field(n)
		if field.PkgPath != "" {
			continue
		}
		name := field.Name
		fieldValue := r.Field(n)
		if tag, ok := field.Tag.Lookup(TagName); ok {
			if tag == "-" {
				continue
			}
			segments := strings.Split(tag, ",")
			if segments[0] != "" {
				name = segments[0]
			}
			if slices.Contains(segments[1:], "omitempty") && fieldValue.IsZero() {
				continue
			}
		}
		v, err := fromReflect(fieldValue)
		if err != nil {
			return Value{}, err
		}
		m.Set(name, v)
	}
	return Mapping(m), nil
}

// ParseJSON parses JSON text into a [Value], keeping object key order.
func ParseJSON(b []byte) (Value, error) {
	if !gjson.ValidBytes(b) {
		return Value{}, ErrInvalidJSON
	}
	return FromGJSON(gjson.ParseBytes(b)), nil
}

// FromGJSON converts an already parsed gjson result into a [Value].
func FromGJSON(r gjson.Result) Value {
	switch r.Type {
	case gjson.True, gjson.False:
		return Bool(r.Bool())
	case gjson.Number:
		return Number(r.Float())
	case gjson.String:
		return String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			items := []Value{}
			r.ForEach(func(_, item gjson.Result) bool {
				items = append(items, FromGJSON(item))
				return true
			})
			return Sequence(items...)
		}
		m := NewM()
		r.ForEach(func(key, item gjson.Result) bool {
			m.Set(key.Str, FromGJSON(item))
			return true
		})
		return Mapping(m)
	default:
		return Null()
	}
}
