package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"polkafetch/internal/core"
	"polkafetch/internal/web/ui"
)

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	ui.Page().Render(r.Context(), w)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleUploadFile accepts a hash file and returns a preview with the
// detected columns so the client can pick the hash column.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, fmt.Errorf("file too large or invalid form: %w", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !s.allowedExtension(header.Filename) {
		s.respondError(w, r, fmt.Errorf("unsupported file type: %s", filepath.Ext(header.Filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusInternalServerError)
		return
	}

	preview, err := s.service.AddFile(r.Context(), header.Filename, data)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, preview)
}

// allowedExtension checks the upload filename against the configured list.
func (s *Server) allowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range s.cfg.Upload.AllowedExtensions {
		if ext == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

// handleFilePreview re-renders the preview table for an uploaded file.
func (s *Server) handleFilePreview(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	preview, err := s.service.Preview(fileID)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	ui.PreviewTable(preview).Render(r.Context(), w)
}

// startJobRequest is the JSON body for POST /api/jobs.
type startJobRequest struct {
	FileID     string `json:"fileId"`
	HashColumn string `json:"hashColumn"`
	DelayMs    int    `json:"delayMs"`
	APIKey     string `json:"apiKey"`
}

// handleStartJob begins an asynchronous fetch job.
func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	var req startJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}

	jobID, err := s.service.StartFetch(r.Context(), core.FetchOptions{
		FileID:     req.FileID,
		HashColumn: req.HashColumn,
		Delay:      time.Duration(req.DelayMs) * time.Millisecond,
		APIKey:     req.APIKey,
	})
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, core.ErrTooManyJobs):
			status = http.StatusServiceUnavailable
		case strings.Contains(err.Error(), "file not found"):
			status = http.StatusNotFound
		}
		s.respondError(w, r, err, status)
		return
	}

	writeJSON(w, map[string]string{"jobId": jobID})
}

// handleJobProgress streams fetch progress via Server-Sent Events.
// Supports resumption via the Last-Event-ID header or lastEventId query
// parameter: the event ID is the progress percentage, so reconnecting
// clients skip events they already received.
func (s *Server) handleJobProgress(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	lastEventIDStr := r.Header.Get("Last-Event-ID")
	if lastEventIDStr == "" {
		lastEventIDStr = r.URL.Query().Get("lastEventId")
	}
	var lastEventID int
	if lastEventIDStr != "" {
		lastEventID, _ = strconv.Atoi(lastEventIDStr)
	}

	progressCh, err := s.service.SubscribeProgress(jobID)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, r, errors.New("streaming not supported"), http.StatusInternalServerError)
		return
	}

	for {
		select {
		case progress, ok := <-progressCh:
			if !ok {
				// Channel closed - job finished
				fmt.Fprintf(w, "event: complete\ndata: {}\n\n")
				flusher.Flush()
				return
			}

			currentPercent := progress.Percent()

			// Skip events already delivered before a reconnect
			if lastEventIDStr != "" && currentPercent <= lastEventID {
				continue
			}

			data, _ := json.Marshal(progress)
			fmt.Fprintf(w, "id: %d\nevent: progress\ndata: %s\n\n", currentPercent, data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// handleCancelJob cancels an in-progress fetch job.
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	if err := s.service.CancelJob(jobID); err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]string{"status": "cancelled"})
}

// handleJobResult returns the final result of a fetch job as JSON.
// Blocks until the job completes.
func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	result, err := s.service.GetResult(jobID)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	writeJSON(w, result)
}

// handleJobTable renders the result table as an HTML fragment.
func (s *Server) handleJobTable(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	result, err := s.service.GetResult(jobID)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	ui.ResultsTable(result).Render(r.Context(), w)
}

// handleJobExport downloads the result of a completed job as CSV.
func (s *Server) handleJobExport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	result, err := s.service.GetResult(jobID)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, core.ExportFileName))

	if err := core.WriteResultsCSV(w, result); err != nil {
		slog.Error("csv export failed", "job_id", jobID, "error", err)
	}
}

// handleQueue reports job slot usage.
func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.JobLimiterStatus())
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
