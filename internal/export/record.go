// Package export renders record sets as CSV, JSON, aligned text tables or
// spreadsheets. The renderers know nothing about the entities behind the
// records; the builders in this package turn entities into records.
package export

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Field is one key/value pair of a record.
type Field struct {
	Key   string
	Value any
}

// Record is an ordered set of fields. Key order is significant: the first
// record of a set fixes the column order of every renderer.
type Record []Field

// R builds a record from alternating keys and values.
func R(kv ...any) Record {
	r := make(Record, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		r = append(r, Field{Key: kv[i].(string), Value: kv[i+1]})
	}
	return r
}

// FromMap builds a record from a map, with keys in sorted order.
func FromMap(m map[string]any) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	r := make(Record, 0, len(keys))
	for _, k := range keys {
		r = append(r, Field{Key: k, Value: m[k]})
	}
	return r
}

// Keys returns the record's keys in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the record as an object with keys in record order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(jsonValue(f.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
