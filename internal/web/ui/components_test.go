package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"polkafetch/internal/core"
)

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	if err := Page().Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"Polkadot Transaction Fetcher",
		`id="file"`,
		`id="column"`,
		`min="100" max="2000"`,
		"/api/jobs",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPreviewTable(t *testing.T) {
	preview := &core.FilePreview{
		FileID:    "file-1",
		Name:      "hashes.csv",
		Columns:   []string{"Tx Hash", "Note"},
		Rows:      [][]string{{"0xabc", "<script>"}, {"0xdef"}},
		TotalRows: 7,
	}

	var buf bytes.Buffer
	if err := PreviewTable(preview).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()

	if !strings.Contains(html, `data-file-id="file-1"`) {
		t.Error("missing file ID attribute")
	}
	if !strings.Contains(html, "<th>Tx Hash</th>") {
		t.Error("missing column header")
	}
	if !strings.Contains(html, "7 rows") {
		t.Error("missing total row count")
	}
	if strings.Contains(html, "<script>") {
		t.Error("cell content not escaped")
	}
	// Short row padded to column count
	if !strings.Contains(html, "<td>0xdef</td><td></td>") {
		t.Error("short row not padded")
	}
}

func TestResultsTable(t *testing.T) {
	result := &core.FetchResult{
		JobID: "job-1",
		Records: []core.ResultRecord{
			{TxHash: "0xaaa", Status: core.StatusSuccess, TransferAmount: "1.5000 DOT"},
			{TxHash: "0xbbb", Status: core.StatusNotFound},
			{TxHash: "0xccc", Status: "API Error: Invalid API key"},
		},
	}

	var buf bytes.Buffer
	if err := ResultsTable(result).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()

	if !strings.Contains(html, `class="row-success"`) {
		t.Error("success row class missing")
	}
	if !strings.Contains(html, `class="row-notfound"`) {
		t.Error("not-found row class missing")
	}
	if !strings.Contains(html, `class="row-error"`) {
		t.Error("error row class missing")
	}
	if !strings.Contains(html, "1.5000 DOT") {
		t.Error("amount missing")
	}
}

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("Bad <input>", "Fix it", "FILE002").Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()

	if strings.Contains(html, "<input>") {
		t.Error("message not escaped")
	}
	if !strings.Contains(html, "FILE002") {
		t.Error("code missing")
	}
	if !strings.Contains(html, `role="alert"`) {
		t.Error("alert role missing")
	}
}
