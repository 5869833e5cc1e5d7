package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"polkafetch/internal/config"
	"polkafetch/internal/core"
	"polkafetch/internal/subscan"
)

// newTestServer wires a full router against a stub explorer API.
func newTestServer(t *testing.T, handler func(hash string) (int, string)) *Server {
	t.Helper()

	explorer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Hash string `json:"hash"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		status, body := handler(req.Hash)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(explorer.Close)

	client, err := subscan.NewClient(subscan.Config{
		BaseURL: explorer.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.RequestTimeout = time.Minute
	cfg.Upload.MaxFileSize = 1 << 20
	cfg.Upload.AllowedExtensions = []string{".csv"}
	cfg.Upload.PreviewRows = 5
	cfg.Upload.Retention = time.Minute
	cfg.Fetch.RequestDelay = config.MinRequestDelay
	cfg.Fetch.JobTimeout = time.Minute
	cfg.Fetch.MaxConcurrentJobs = 2
	cfg.Fetch.MaxWaitTime = time.Second
	cfg.Fetch.ResultRetention = time.Minute
	cfg.Rate.Enabled = false
	cfg.Security.EnableCSP = true

	return NewServer(core.NewService(client, cfg), cfg)
}

const okNotFound = `{"code": 0, "message": "Success", "data": null}`

func multipartUpload(t *testing.T, fieldName, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	io.WriteString(fw, content)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func uploadFile(t *testing.T, srv *Server, content string) core.FilePreview {
	t.Helper()
	body, contentType := multipartUpload(t, "file", "hashes.csv", content)

	req := httptest.NewRequest("POST", "/api/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var preview core.FilePreview
	if err := json.Unmarshal(rec.Body.Bytes(), &preview); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	return preview
}

func startJob(t *testing.T, srv *Server, fileID, column string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"fileId":     fileID,
		"hashColumn": column,
		"delayMs":    100,
	})

	req := httptest.NewRequest("POST", "/api/jobs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("start job status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["jobId"] == "" {
		t.Fatal("missing jobId in response")
	}
	return resp["jobId"]
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, func(string) (int, string) { return 200, okNotFound })

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t, func(string) (int, string) { return 200, okNotFound })

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Polkadot Transaction Fetcher") {
		t.Error("page title missing")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("CSP header missing when enabled")
	}
}

func TestUploadFile(t *testing.T) {
	srv := newTestServer(t, func(string) (int, string) { return 200, okNotFound })

	t.Run("valid upload returns preview", func(t *testing.T) {
		preview := uploadFile(t, srv, "Tx Hash,Block\n0xaaa,1\n0xbbb,2\n")
		if len(preview.Columns) != 2 {
			t.Errorf("columns = %v", preview.Columns)
		}
		if preview.TotalRows != 2 {
			t.Errorf("TotalRows = %d", preview.TotalRows)
		}
		if preview.FileID == "" {
			t.Error("missing file ID")
		}
	})

	t.Run("wrong extension rejected", func(t *testing.T) {
		body, contentType := multipartUpload(t, "file", "hashes.xlsx", "data")
		req := httptest.NewRequest("POST", "/api/files", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "FILE006") {
			t.Errorf("body = %s, want FILE006 code", rec.Body.String())
		}
	})

	t.Run("missing file field rejected", func(t *testing.T) {
		body, contentType := multipartUpload(t, "other", "hashes.csv", "data")
		req := httptest.NewRequest("POST", "/api/files", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "FILE004") {
			t.Errorf("body = %s, want FILE004 code", rec.Body.String())
		}
	})
}

func TestFilePreviewFragment(t *testing.T) {
	srv := newTestServer(t, func(string) (int, string) { return 200, okNotFound })
	preview := uploadFile(t, srv, "Tx Hash\n0xaaa\n")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/files/"+preview.FileID+"/preview", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<th>Tx Hash</th>") {
		t.Errorf("fragment = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/files/unknown/preview", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown file status = %d, want 404", rec.Code)
	}
}

func TestStartJobErrors(t *testing.T) {
	srv := newTestServer(t, func(string) (int, string) { return 200, okNotFound })
	preview := uploadFile(t, srv, "Tx Hash\n0xaaa\n")

	t.Run("unknown file", func(t *testing.T) {
		body, _ := json.Marshal(map[string]any{"fileId": "nope", "hashColumn": "Tx Hash"})
		req := httptest.NewRequest("POST", "/api/jobs", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("unknown column", func(t *testing.T) {
		body, _ := json.Marshal(map[string]any{"fileId": preview.FileID, "hashColumn": "Nope"})
		req := httptest.NewRequest("POST", "/api/jobs", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "COL001") {
			t.Errorf("body = %s, want COL001 code", rec.Body.String())
		}
	})

	t.Run("bad body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/jobs", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestJobLifecycle(t *testing.T) {
	srv := newTestServer(t, func(hash string) (int, string) { return 200, okNotFound })
	preview := uploadFile(t, srv, "Tx Hash\n0xaaa\n0xbbb\n")
	jobID := startJob(t, srv, preview.FileID, "Tx Hash")

	// Result blocks until the job completes
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/jobs/"+jobID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("result status = %d", rec.Code)
	}

	var result core.FetchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(result.Records))
	}
	if result.Records[0].Status != core.StatusNotFound {
		t.Errorf("status = %q", result.Records[0].Status)
	}

	// HTML table fragment
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/jobs/"+jobID+"/table", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("table status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "row-notfound") {
		t.Error("table fragment missing rows")
	}

	// CSV export
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/jobs/"+jobID+"/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, core.ExportFileName) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "Tx Hash,Status,Sender,From,To,Transfer Amount,Estimated Fee,Used Fee") {
		t.Errorf("export header = %q", strings.SplitN(rec.Body.String(), "\n", 2)[0])
	}
}

func TestJobProgressSSE(t *testing.T) {
	srv := newTestServer(t, func(hash string) (int, string) { return 200, okNotFound })
	preview := uploadFile(t, srv, "Tx Hash\n0xaaa\n")
	jobID := startJob(t, srv, preview.FileID, "Tx Hash")

	// Wait until the job has finished, then replay its stream.
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/jobs/"+jobID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("result status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/jobs/"+jobID+"/progress", nil))

	body := rec.Body.String()
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(body, "event: progress") {
		t.Errorf("stream missing progress event: %q", body)
	}
	if !strings.Contains(body, "event: complete") {
		t.Errorf("stream missing complete event: %q", body)
	}

	// Unknown job
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/jobs/unknown/progress", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown job status = %d, want 404", rec.Code)
	}
}

func TestCancelJobNotFound(t *testing.T) {
	srv := newTestServer(t, func(string) (int, string) { return 200, okNotFound })

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("POST", "/api/jobs/unknown/cancel", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "JOB003") {
		t.Errorf("body = %s, want JOB003 code", rec.Body.String())
	}
}

func TestQueueStatus(t *testing.T) {
	srv := newTestServer(t, func(string) (int, string) { return 200, okNotFound })

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/queue", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var status core.LimiterStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.MaxConcurrent != 2 {
		t.Errorf("MaxConcurrent = %d, want 2", status.MaxConcurrent)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("1.2.3.4") || !rl.allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("1.2.3.4") {
		t.Error("third request should be limited")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other IPs should have their own bucket")
	}
}
