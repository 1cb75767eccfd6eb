package testrun

import (
	"bytes"
	"encoding/json"
)

var null = []byte("null")

// take decodes the first present key of m into dst and removes it from m. Values that are null or fail to decode
// stay in m and leave dst untouched, so the object is written back out as it was read. Returns the consumed key, if
// any.
func take[T any](m map[string]json.RawMessage, dst *T, keys ...string) string {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), null) {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		*dst = v
		delete(m, k)
		return k
	}

	return ""
}

// put encodes v into m under key. Nothing is written unless present is set or v is not the zero value.
func put(m map[string]json.RawMessage, key string, v interface{}, present bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if !present && isZero(b) {
		return nil
	}
	m[key] = b
	return nil
}

func isZero(b []byte) bool {
	switch string(b) {
	case `""`, "0", "null", "[]", "{}", "false":
		return true
	}
	return false
}

func field(m map[string]json.RawMessage, key string, v interface{}) bool {
	raw, ok := m[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), null) {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func clone(m map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func orDefault[T comparable](a T, b T) T {
	var zero T
	if a != zero {
		return a
	}
	return b
}
