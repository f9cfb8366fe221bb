package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Member is one key of a decoded JSON object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object that keeps its source key order. Custom sections
// display their fields in that order, which a Go map would lose.
type Object []Member

// Get returns the first value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

func (o Object) value(key string) any {
	v, _ := o.Get(key)
	return v
}

// Decode parses JSON into Object, []any, string, json.Number, bool or nil.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err == nil {
		return nil, errors.New("normalize: trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("normalize: decode: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := Object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("normalize: decode key: %w", err)
			}
			key, _ := keyTok.(string)
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, Member{Key: key, Value: v})
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("normalize: decode: %w", err)
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("normalize: decode: %w", err)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("normalize: unexpected delimiter %v", delim)
	}
}

// asObject accepts Object or map[string]any. Map keys are sorted since their
// source order is already gone.
func asObject(v any) (Object, bool) {
	switch value := v.(type) {
	case Object:
		return value, true
	case map[string]any:
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := make(Object, 0, len(keys))
		for _, k := range keys {
			obj = append(obj, Member{Key: k, Value: value[k]})
		}
		return obj, true
	default:
		return nil, false
	}
}

func asArray(v any) ([]any, bool) {
	arr, ok := v.([]any)
	return arr, ok
}
