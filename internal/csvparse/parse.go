// Package csvparse turns CSV text into header-keyed records with dynamic
// typing. It is the tokenizer behind pkg/csvingest and knows nothing about
// files or contexts.
package csvparse

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Result is the outcome of Parse.
type Result struct {
	// Header holds the de-duplicated column keys.
	Header []string
	// Rows holds one coerced value slice per data record, aligned to Header.
	// Short records are padded with nil.
	Rows [][]any
	// Truncated counts records that carried more cells than the header; the
	// surplus cells are dropped.
	Truncated int
}

// Parse reads CSV text. Blank lines are skipped, the first non-blank record
// is the header, and remaining records become rows.
func Parse(text string) (Result, error) {
	text = strings.TrimPrefix(text, "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var result Result
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, err
		}
		if blankRecord(record) {
			continue
		}
		if result.Header == nil {
			result.Header = HeaderKeys(record)
			continue
		}

		if len(record) > len(result.Header) {
			result.Truncated++
		}
		row := make([]any, len(result.Header))
		for i := range result.Header {
			if i < len(record) {
				row[i] = Coerce(record[i])
			}
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// HeaderKeys trims header cells, names empty cells "columnN" (1-based) and
// suffixes duplicates with _1, _2, ... so every key is unique.
func HeaderKeys(record []string) []string {
	keys := make([]string, 0, len(record))
	used := make(map[string]bool, len(record))
	for i, cell := range record {
		base := strings.TrimSpace(cell)
		if base == "" {
			base = "column" + strconv.Itoa(i+1)
		}
		key := base
		for n := 1; used[key]; n++ {
			key = base + "_" + strconv.Itoa(n)
		}
		used[key] = true
		keys = append(keys, key)
	}
	return keys
}

// blankRecord reports a line with no delimiters and only whitespace. Lines
// such as ",," still carry cells and become rows of nils.
func blankRecord(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}
