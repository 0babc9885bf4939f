// internal/domain/record/fields.go
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
)

// Value is a single cell of an uploaded row: a string, a number or null.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// String builds a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number builds a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Null is the absent value.
func Null() Value { return Value{} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsString() bool { return v.kind == KindString }

// Float returns the numeric payload; zero for other kinds.
func (v Value) Float() float64 { return v.num }

// Text renders the value the way it would appear in a spreadsheet cell.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// IsBlank reports whether the value carries no usable content.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindNumber:
		return false
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Null()
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("unsupported cell value %s", data)
		}
		*v = Number(n)
	}
	return nil
}

// FieldMap is an ordered mapping of column name to cell value.
// Iteration and JSON encoding follow insertion order.
type FieldMap struct {
	keys   []string
	values map[string]Value
}

// NewFieldMap returns an empty map with room for n columns.
func NewFieldMap(n int) FieldMap {
	return FieldMap{keys: make([]string, 0, n), values: make(map[string]Value, n)}
}

// Set stores v under key; an existing key keeps its position.
func (m *FieldMap) Set(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value for key, or Null when the column is absent.
func (m FieldMap) Get(key string) Value {
	return m.values[key]
}

// Lookup reports whether the column exists.
func (m FieldMap) Lookup(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether the column exists.
func (m FieldMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the column names in order.
func (m FieldMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m FieldMap) Len() int { return len(m.keys) }

// Each calls fn for every column in order.
func (m FieldMap) Each(fn func(key string, v Value)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// IsBlank reports whether every value in the row is blank.
func (m FieldMap) IsBlank() bool {
	for _, k := range m.keys {
		if !m.values[k].IsBlank() {
			return false
		}
	}
	return true
}

// Equal compares keys, order and values.
func (m FieldMap) Equal(other FieldMap) bool {
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k || m.values[k] != other.values[k] {
			return false
		}
	}
	return true
}

func (m FieldMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := m.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *FieldMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = FieldMap{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("field map must be a JSON object")
	}

	out := NewFieldMap(8)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("field map key must be a string")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = out
	return nil
}
