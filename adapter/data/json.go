package data

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// MarshalJSON implements [json.Marshaler].
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON implements [json.Unmarshaler].
func (v *Value) UnmarshalJSON(b []byte) error {
	parsed, err := ParseJSON(b)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON implements [json.Marshaler]. Keys are written in order.
func (d *M) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeMapping(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON implements [json.Unmarshaler]. The input must be a JSON
// object.
func (d *M) UnmarshalJSON(b []byte) error {
	parsed, err := ParseJSON(b)
	if err != nil {
		return err
	}
	m, ok := parsed.Mapping()
	if !ok {
		return ErrDocumentType{Type: parsed.Kind().String()}
	}
	*d = *m
	return nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		b, err := json.Marshal(v.n)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindString:
		writeString(buf, v.s)
	case KindSequence:
		buf.WriteByte('[')
		for n, item := range v.seq {
			if n > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		return writeMapping(buf, v.m)
	}
	return nil
}

func writeMapping(buf *bytes.Buffer, d *M) error {
	buf.WriteByte('{')
	n := 0
	for k, v := range d.Iter() {
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		writeString(buf, k)
		buf.WriteByte(':')
		if err := v.writeJSON(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	// json.Marshal never fails for strings
	b, _ := json.Marshal(s)
	buf.Write(b)
}
