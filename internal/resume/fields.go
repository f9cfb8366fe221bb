package resume

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Field 是一个键值对。
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered string map. Insertion order is display order and is
// preserved through JSON encoding and decoding.
type Fields []Field

// NewFields builds Fields from alternating key/value arguments.
func NewFields(kv ...string) Fields {
	out := make(Fields, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = out.Set(kv[i], kv[i+1])
	}
	return out
}

// Get returns the value for key, or "" when absent.
func (f Fields) Get(key string) string {
	v, _ := f.Lookup(key)
	return v
}

func (f Fields) Lookup(key string) (string, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing key in place or appends a new one.
func (f Fields) Set(key, value string) Fields {
	for i := range f {
		if f[i].Key == key {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Key: key, Value: value})
}

func (f Fields) Keys() []string {
	keys := make([]string, len(f))
	for i, field := range f {
		keys[i] = field.Key
	}
	return keys
}

func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	copy(out, f)
	return out
}

// HasValue reports whether at least one field is non-empty.
func (f Fields) HasValue() bool {
	for _, field := range f {
		if field.Value != "" {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the fields as a JSON object in insertion order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal field key: %w", err)
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", field.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the source key order. Scalar
// values are stringified; nested values are rejected.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("decode fields: expected object")
	}

	out := Fields{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode fields key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.New("decode fields: non-string key")
		}
		valTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode field %q: %w", key, err)
		}
		var value string
		switch v := valTok.(type) {
		case string:
			value = v
		case json.Number:
			value = v.String()
		case bool:
			value = strconv.FormatBool(v)
		case nil:
			value = ""
		default:
			return fmt.Errorf("decode field %q: unsupported value", key)
		}
		out = out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	*f = out
	return nil
}
