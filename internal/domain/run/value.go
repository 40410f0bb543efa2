package run

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elliotchance/orderedmap/v2"
)

type Kind uint8

const (
	KindMissing Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

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
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "missing"
	}
}

// Value is an arbitrary JSON document. Objects keep the key order they were
// decoded with and numbers keep their literal text, so a decode/encode round
// trip reproduces the backend's payload. The zero Value is "missing", which
// is distinct from an explicit null.
type Value struct {
	kind Kind
	b    bool
	s    string
	arr  []Value
	obj  *orderedmap.OrderedMap[string, Value]
}

var errTrailingData = errors.New("value: trailing data after document")

func Null() Value { return Value{kind: KindNull} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Number(n json.Number) Value { return Value{kind: KindNumber, s: n.String()} }
func Array(items ...Value) Value {
	return Value{kind: KindArray, arr: items}
}

// Object builds an object from alternating key/value pairs.
func Object(pairs ...any) Value {
	m := orderedmap.NewOrderedMap[string, Value]()
	for i := 0; i+1 < len(pairs); i += 2 {
		k, _ := pairs[i].(string)
		v, ok := pairs[i+1].(Value)
		if !ok {
			v = From(pairs[i+1])
		}
		m.Set(k, v)
	}
	return Value{kind: KindObject, obj: m}
}

// From converts a plain Go scalar into a Value. Anything else is encoded
// through encoding/json first.
func From(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case json.Number:
		return Number(t)
	case int:
		return Number(json.Number(fmt.Sprint(t)))
	case int64:
		return Number(json.Number(fmt.Sprint(t)))
	case float64:
		b, _ := json.Marshal(t)
		return Number(json.Number(b))
	}
	b, err := json.Marshal(x)
	if err != nil {
		return Missing()
	}
	v, err := ParseValue(b)
	if err != nil {
		return Missing()
	}
	return v
}

func Missing() Value { return Value{} }

// ParseValue decodes exactly one JSON document.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errTrailingData
		}
		return Value{}, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: KindArray, arr: items}, nil
		case '{':
			m := orderedmap.NewOrderedMap[string, Value]()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("value: object key is %T", kt)
				}
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				m.Set(key, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: KindObject, obj: m}, nil
		}
	}
	return Value{}, fmt.Errorf("value: unexpected token %v", tok)
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsZero() bool { return v.kind == KindMissing }
func (v Value) IsArray() bool { return v.kind == KindArray }
func (v Value) IsObject() bool { return v.kind == KindObject }

// Str returns the payload of a string value.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Items returns the elements of an array value.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Keys returns object keys in document order.
func (v Value) Keys() []string {
	if v.kind != KindObject || v.obj == nil {
		return nil
	}
	return v.obj.Keys()
}

func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject || v.obj == nil {
		return Value{}, false
	}
	return v.obj.Get(key)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Indent renders the value as JSON indented by two spaces.
func (v Value) Indent() (string, error) {
	compact, err := v.MarshalJSON()
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindMissing, KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(v.s)
	case KindString:
		return encodeString(buf, v.s)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		if v.obj != nil {
			i := 0
			for el := v.obj.Front(); el != nil; el = el.Next() {
				if i > 0 {
					buf.WriteByte(',')
				}
				if err := encodeString(buf, el.Key); err != nil {
					return err
				}
				buf.WriteByte(':')
				if err := el.Value.encode(buf); err != nil {
					return err
				}
				i++
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every document with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
