package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Record is a string-keyed map that remembers the order keys were inserted in.
// The zero value is an empty record ready to use.
type Record struct {
	keys   []string
	values map[string]any
}

// Entry is a single key/value pair of a Record
type Entry struct {
	Key   string
	Value any
}

// NewRecord builds a record from alternating key/value arguments.
// A trailing key without a value is stored as nil.
func NewRecord(pairs ...any) Record {
	var r Record
	for i := 0; i < len(pairs); i += 2 {
		key := fmt.Sprint(pairs[i])
		var val any
		if i+1 < len(pairs) {
			val = pairs[i+1]
		}
		r.Set(key, val)
	}
	return r
}

// Set stores a value. Existing keys keep their original position.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Len returns the number of entries
func (r Record) Len() int {
	return len(r.keys)
}

// Keys returns the keys in insertion order
func (r Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Entries returns the entries in insertion order
func (r Record) Entries() []Entry {
	entries := make([]Entry, len(r.keys))
	for i, k := range r.keys {
		entries[i] = Entry{Key: k, Value: r.values[k]}
	}
	return entries
}

// MarshalJSON writes the record as a JSON object in insertion order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the document order of its keys.
// Nested objects become Records and numbers are kept as json.Number.
func (r *Record) UnmarshalJSON(data []byte) error {
	v, err := DecodeValue(data)
	if err != nil {
		return err
	}
	rec, ok := v.(Record)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*r = rec
	return nil
}

// DecodeValue decodes any JSON document. Objects become Records, arrays
// become []any and numbers are kept as json.Number.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeToken(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("failed to decode payload: unexpected data after top-level value")
	}
	return v, nil
}

func decodeToken(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		var rec Record
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			val, err := decodeToken(dec)
			if err != nil {
				return nil, err
			}
			rec.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return rec, nil
	case '[':
		list := []any{}
		for dec.More() {
			val, err := decodeToken(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// =====================================================
// Lenient accessors
// =====================================================
//
// Each accessor takes one or more candidate keys and uses the first one
// present. Values of the wrong shape yield the zero value instead of an error.

func (r Record) lookup(keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := r.values[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether any of the keys is present
func (r Record) Has(keys ...string) bool {
	_, ok := r.lookup(keys)
	return ok
}

// Value returns the raw value of the first present key
func (r Record) Value(keys ...string) any {
	v, _ := r.lookup(keys)
	return v
}

// Text returns a textual form of the value, or "" when absent
func (r Record) Text(keys ...string) string {
	v, _ := r.lookup(keys)
	return textOf(v)
}

func textOf(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return fmt.Sprint(v)
	}
}

// Float returns the numeric value of the first present key
func (r Record) Float(keys ...string) (float64, bool) {
	v, ok := r.lookup(keys)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Int returns the value truncated to an int, or 0
func (r Record) Int(keys ...string) int {
	f, ok := r.Float(keys...)
	if !ok {
		return 0
	}
	return int(f)
}

// Bool returns the boolean value, accepting "true"/"false" strings
func (r Record) Bool(keys ...string) bool {
	v, _ := r.lookup(keys)
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	default:
		return false
	}
}

// Time parses RFC 3339 or date-only strings
func (r Record) Time(keys ...string) time.Time {
	v, _ := r.lookup(keys)
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

// Record returns a nested record
func (r Record) Record(keys ...string) (Record, bool) {
	v, ok := r.lookup(keys)
	if !ok {
		return Record{}, false
	}
	rec, ok := Normalize(v).(Record)
	return rec, ok
}

// List returns a nested array
func (r Record) List(keys ...string) []any {
	v, _ := r.lookup(keys)
	list, _ := Normalize(v).([]any)
	return list
}

// Records returns the record elements of a nested array, skipping anything else
func (r Record) Records(keys ...string) []Record {
	var out []Record
	for _, item := range r.List(keys...) {
		if rec, ok := item.(Record); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Strings returns the elements of a nested array as text
func (r Record) Strings(keys ...string) []string {
	var out []string
	for _, item := range r.List(keys...) {
		if item == nil {
			continue
		}
		out = append(out, textOf(item))
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// =====================================================
// Normalization of in-process values
// =====================================================

// Normalize converts caller-supplied Go values into the payload value model:
// Records for objects, []any for arrays, scalars left untouched. Plain Go maps
// have no order, so their keys are sorted. Structs and typed slices go through
// encoding/json so struct field order is kept.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, string, bool, json.Number, time.Time,
		float32, float64, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return v
	case Record:
		return t
	case *Record:
		if t == nil {
			return nil
		}
		return *t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var rec Record
		for _, k := range keys {
			rec.Set(k, Normalize(t[k]))
		}
		return rec
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Normalize(item)
		}
		return out
	case []Record:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Normalize(item)
		}
		return out
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return v
		}
		decoded, err := DecodeValue(data)
		if err != nil {
			return v
		}
		return decoded
	}
}

// Number converts a loosely-typed numeric value, accepting numeric strings
func Number(v any) (float64, bool) {
	return toFloat(v)
}
