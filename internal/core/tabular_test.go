package core

import (
	"bytes"
	"testing"
)

// ============================================================================
// sanitizeUTF8 Tests
// ============================================================================

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  []byte
	}{
		{
			name:  "valid UTF-8 unchanged",
			input: []byte("hello world"),
			want:  []byte("hello world"),
		},
		{
			name:  "empty input",
			input: []byte{},
			want:  []byte{},
		},
		{
			name:  "valid unicode",
			input: []byte("hello \xe4\xb8\x96\xe7\x95\x8c"), // hello 世界
			want:  []byte("hello \xe4\xb8\x96\xe7\x95\x8c"),
		},
		{
			name:  "invalid byte replaced with replacement char",
			input: []byte{0x80},
			want:  []byte("�"),
		},
		{
			name:  "truncated multibyte sequence",
			input: []byte{0xc3},
			want:  []byte("�"),
		},
		{
			name:  "mixed valid and invalid",
			input: []byte("hello\x80world"),
			want:  []byte("hello�world"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeUTF8(tt.input)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("sanitizeUTF8(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// CleanCell Tests
// ============================================================================

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain value", "0xabc123", "0xabc123"},
		{"surrounding whitespace", "  0xabc123  ", "0xabc123"},
		{"excel formula wrapper", `="0xabc123"`, "0xabc123"},
		{"bare equals prefix", "=0xabc123", "0xabc123"},
		{"double quotes", `"Tx Hash"`, "Tx Hash"},
		{"single quotes", "'Tx Hash'", "Tx Hash"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// HeaderIndex Tests
// ============================================================================

func TestHeaderIndexLookup(t *testing.T) {
	idx := MakeHeaderIndex([]string{"Tx Hash", "Block", " Amount "})

	tests := []struct {
		name    string
		lookup  string
		wantIdx int
		wantOK  bool
	}{
		{"exact match", "Tx Hash", 0, true},
		{"case insensitive", "tx hash", 0, true},
		{"upper case", "BLOCK", 1, true},
		{"trimmed header", "amount", 2, true},
		{"lookup with wrapper", `="Block"`, 1, true},
		{"missing column", "Fee", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := idx.Lookup(tt.lookup)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.lookup, ok, tt.wantOK)
			}
			if ok && got != tt.wantIdx {
				t.Errorf("Lookup(%q) = %d, want %d", tt.lookup, got, tt.wantIdx)
			}
		})
	}
}

// ============================================================================
// findHeaderRow Tests
// ============================================================================

func TestFindHeaderRow(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
		want    int
	}{
		{
			name:    "header is first row",
			records: [][]string{{"Tx Hash", "Block"}, {"0xabc", "100"}},
			want:    0,
		},
		{
			name: "title row before header",
			records: [][]string{
				{"Transaction Export", ""},
				{"Tx Hash", "Block", "Amount"},
				{"0xabc", "100", "1.5"},
			},
			want: 1,
		},
		{
			name: "blank rows before header",
			records: [][]string{
				{""},
				{"", ""},
				{"Tx Hash", "Block"},
			},
			want: 2,
		},
		{
			name:    "tie broken toward earlier row",
			records: [][]string{{"Tx Hash", "Block"}, {"0xabc", "100"}},
			want:    0,
		},
		{
			name:    "no non-empty rows",
			records: [][]string{{""}, {"", ""}},
			want:    -1,
		},
		{
			name:    "empty input",
			records: nil,
			want:    -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findHeaderRow(tt.records); got != tt.want {
				t.Errorf("findHeaderRow() = %d, want %d", got, tt.want)
			}
		})
	}
}

// ============================================================================
// parseCSV Tests
// ============================================================================

func TestParseCSV(t *testing.T) {
	t.Run("ragged rows accepted", func(t *testing.T) {
		records, err := parseCSV([]byte("a,b,c\n1,2\n3,4,5,6\n"))
		if err != nil {
			t.Fatalf("parseCSV() error = %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("got %d records, want 3", len(records))
		}
		if len(records[1]) != 2 || len(records[2]) != 4 {
			t.Errorf("ragged field counts not preserved: %v", records)
		}
	})

	t.Run("BOM stripped", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Tx Hash\n0xabc\n")...)
		records, err := parseCSV(data)
		if err != nil {
			t.Fatalf("parseCSV() error = %v", err)
		}
		if records[0][0] != "Tx Hash" {
			t.Errorf("header = %q, want %q", records[0][0], "Tx Hash")
		}
	})
}
