package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Kind tags the variant held by a Value
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Value is a closed variant of the scalar, array and nested-map values that
// can appear in telemetry metadata. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	arr  []Value
	m    *Metadata
}

func NullValue() Value                { return Value{} }
func StringValue(s string) Value      { return Value{kind: KindString, str: s} }
func NumberValue(f float64) Value     { return Value{kind: KindNumber, num: f} }
func BoolValue(b bool) Value          { return Value{kind: KindBool, b: b} }
func ArrayValue(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// MapValue wraps a nested metadata map. A nil map becomes an empty one.
func MapValue(m *Metadata) Value {
	if m == nil {
		m = NewMetadata()
	}
	return Value{kind: KindMap, m: m}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string held by a string Value
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsNumber returns the numeric value. Strings holding a decimal number are
// accepted as well since CSV and XML sources carry every cell as text. NaN and
// infinities are never numbers here.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		if !isFinite(v.num) {
			return 0, false
		}
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil || !isFinite(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

func (v Value) AsMap() (*Metadata, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// Text renders the value for human-readable interpolation
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindArray, KindMap:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

func (v Value) clone() Value {
	switch v.kind {
	case KindArray:
		items := make([]Value, len(v.arr))
		for i, item := range v.arr {
			items[i] = item.clone()
		}
		return ArrayValue(items...)
	case KindMap:
		return MapValue(v.m.Clone())
	default:
		return v
	}
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindArray:
		items := v.arr
		if items == nil {
			items = []Value{}
		}
		return json.Marshal(items)
	case KindMap:
		return v.m.MarshalJSON()
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler, preserving object key order
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromAny converts a generically decoded value (as produced by encoding/json
// into interface{}) into a Value. Plain Go maps have no order, so their keys
// are sorted to keep the result deterministic.
func FromAny(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return NullValue()
	case Value:
		return x
	case string:
		return StringValue(x)
	case bool:
		return BoolValue(x)
	case float64:
		return NumberValue(x)
	case float32:
		return NumberValue(float64(x))
	case int:
		return NumberValue(float64(x))
	case int64:
		return NumberValue(float64(x))
	case int32:
		return NumberValue(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return StringValue(x.String())
		}
		return NumberValue(f)
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = FromAny(item)
		}
		return ArrayValue(items...)
	case []string:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = StringValue(item)
		}
		return ArrayValue(items...)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMetadata()
		for _, k := range keys {
			m.Set(k, FromAny(x[k]))
		}
		return MapValue(m)
	case *Metadata:
		return MapValue(x)
	default:
		return StringValue(fmt.Sprint(x))
	}
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, goerr.Wrap(err, "failed to read JSON token")
	}

	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, goerr.Wrap(err, "invalid JSON number", goerr.V("number", t.String()))
		}
		return NumberValue(f), nil
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
				return Value{}, goerr.Wrap(err, "unterminated JSON array")
			}
			return ArrayValue(items...), nil
		case '{':
			m, err := decodeObjectBody(dec)
			if err != nil {
				return Value{}, err
			}
			return MapValue(m), nil
		}
	}

	return Value{}, goerr.New("unexpected JSON token", goerr.V("token", fmt.Sprint(tok)))
}

// decodeObjectBody reads key/value pairs up to and including the closing brace
func decodeObjectBody(dec *json.Decoder) (*Metadata, error) {
	m := NewMetadata()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read JSON object key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, goerr.New("JSON object key is not a string", goerr.V("token", fmt.Sprint(keyTok)))
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, goerr.Wrap(err, "unterminated JSON object")
	}
	return m, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
