package core

// tabular.go handles parsing of uploaded hash files.
//
// User-provided CSVs are messy: broken encodings, Excel formula
// wrappers (="value"), preamble rows before the real header, ragged
// field counts. Parsing is forgiving so a usable hash column survives
// all of it.

import (
	"bytes"
	"encoding/csv"
	"strings"
	"unicode/utf8"
)

// MaxHeaderSearchRows is the maximum number of rows to scan for the header.
var MaxHeaderSearchRows = 20

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		idx[key] = i
	}
	return idx
}

// Lookup resolves a column name to its index, case-insensitively.
func (idx HeaderIndex) Lookup(name string) (int, bool) {
	i, ok := idx[strings.ToLower(CleanCell(name))]
	return i, ok
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	// Remove any surrounding quotes
	s = strings.Trim(s, `"'`)

	return s
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// findHeaderRow locates the header within the first rows of the file.
// There is no fixed expected header, so the row with the most non-empty
// cells in the search window wins; earlier rows break ties. Files with
// title or preamble rows above the real header parse correctly this way.
func findHeaderRow(records [][]string) int {
	maxRows := MaxHeaderSearchRows
	if len(records) < maxRows {
		maxRows = len(records)
	}

	best := -1
	bestScore := 0
	for i := 0; i < maxRows; i++ {
		score := 0
		for _, cell := range records[i] {
			if CleanCell(cell) != "" {
				score++
			}
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
