package model

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// Metadata is an insertion-ordered string-keyed map of Values. A nil
// *Metadata behaves as an empty map for every read accessor.
type Metadata struct {
	keys   []string
	values map[string]Value
}

// Record is one loosely typed row produced by a format parser
type Record = Metadata

func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]Value)}
}

// Set stores v under key. Re-setting an existing key keeps its position.
func (m *Metadata) Set(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *Metadata) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *Metadata) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Metadata) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Text returns the textual form of a non-null value
func (m *Metadata) Text(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok || v.IsNull() {
		return "", false
	}
	return v.Text(), true
}

// Number returns a numeric value, parsing numeric strings
func (m *Metadata) Number(key string) (float64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

// Clone returns a deep copy
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	c := &Metadata{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]Value, len(m.values)),
	}
	copy(c.keys, m.keys)
	for k, v := range m.values {
		c.values[k] = v.clone()
	}
	return c
}

// Merge copies every entry of other into m, overwriting existing keys
func (m *Metadata) Merge(other *Metadata) {
	for _, k := range other.Keys() {
		v, _ := other.Get(k)
		m.Set(k, v.clone())
	}
}

// MarshalJSON implements json.Marshaler, keeping key order
func (m *Metadata) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal metadata key", goerr.V("key", k))
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := m.values[k].MarshalJSON()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal metadata value", goerr.V("key", k))
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Only JSON objects are accepted.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return goerr.Wrap(err, "failed to read metadata")
	}
	if tok == nil {
		*m = Metadata{values: make(map[string]Value)}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return goerr.New("metadata must be a JSON object")
	}

	parsed, err := decodeObjectBody(dec)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}
