package model

import (
	"bytes"
	"reflect"

	"github.com/goccy/go-json"
)

// CsvRow is an ordered mapping from header-derived keys to coerced cell values
// (string, float64, bool, or nil for empty cells). Rows produced by one
// ingestion share the same key slice, so key order equals column order.
type CsvRow struct {
	keys   []string
	values map[string]any
}

// NewCsvRow builds a row over keys. Keys missing from values read as nil;
// values whose key is not listed are ignored.
func NewCsvRow(keys []string, values map[string]any) CsvRow {
	row := CsvRow{
		keys:   keys,
		values: make(map[string]any, len(keys)),
	}
	for _, key := range keys {
		row.values[key] = values[key]
	}
	return row
}

// Keys returns the column keys in order.
func (r CsvRow) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len reports the number of columns.
func (r CsvRow) Len() int {
	return len(r.keys)
}

// Get returns the value stored for key.
func (r CsvRow) Get(key string) (any, bool) {
	if r.values == nil {
		return nil, false
	}
	value, ok := r.values[key]
	return value, ok
}

// Values returns the cell values in column order.
func (r CsvRow) Values() []any {
	out := make([]any, 0, len(r.keys))
	for _, key := range r.keys {
		out = append(out, r.values[key])
	}
	return out
}

// Equal reports whether both rows hold the same keys in the same order with
// equal values. go-cmp picks this method up automatically.
func (r CsvRow) Equal(other CsvRow) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, key := range r.keys {
		if other.keys[i] != key {
			return false
		}
		if !reflect.DeepEqual(r.values[key], other.values[key]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the row as a JSON object preserving column order.
func (r CsvRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CloneRows copies the slice header so callers cannot grow or reorder a frozen
// row set. Rows themselves are never mutated after ingestion.
func CloneRows(rows []CsvRow) []CsvRow {
	if rows == nil {
		return nil
	}
	return append([]CsvRow(nil), rows...)
}
