// Package decoder contains the default [domain.Decoder] implementation.
package decoder

import (
	"fmt"

	"github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

var docPtrType = reflect.TypeOf((*data.M)(nil))

// Decoder implements domain.Decoder.
type Decoder struct{}

// NewDecoder returns a new implementation of domain.Decoder.
func NewDecoder() domain.Decoder {
	return &Decoder{}
}

// Decode implements domain.Decoder. Struct fields are matched by their
// "jsondb" tag or, without one, by their name ignoring case.
func (d *Decoder) Decode(source any, target any) error {
	if target == nil {
		return domain.ErrTargetNil
	}

	value := reflect.ValueNoEscapeOf(target)
	if value.Kind() != reflect.Ptr || value.IsNil() {
		return domain.ErrNonPointer
	}

	if value.Type().Elem() == docPtrType {
		doc, err := data.NewDocument(source)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrDecode{Source: source, Target: target}, err)
		}
		value.Elem().Set(reflect.ValueOf(doc.Clone()))
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: data.TagName,
		Result:  target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(d.adjust(source)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDecode{Source: source, Target: target}, err)
	}
	return nil
}

func (d *Decoder) adjust(source any) any {
	switch t := source.(type) {
	case *data.M:
		return t.Map()
	case data.Value:
		return t.Interface()
	default:
		return source
	}
}
