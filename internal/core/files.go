package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"polkafetch/internal/logging"
)

// UploadedFile is a parsed hash file held in memory until a fetch job
// consumes it or the retention window expires.
type UploadedFile struct {
	ID         string
	Name       string
	Columns    []string
	Rows       [][]string
	UploadedAt time.Time
}

// FilePreview is returned after upload so the user can pick the hash
// column before starting a job.
type FilePreview struct {
	FileID    string     `json:"fileId"`
	Name      string     `json:"name"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"totalRows"`
}

// AddFile parses an uploaded file and registers it for later fetching.
// Returns a preview with the detected columns and the first rows.
func (s *Service) AddFile(ctx context.Context, name string, data []byte) (*FilePreview, error) {
	data = sanitizeUTF8(data)

	records, err := parseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	headerIdx := findHeaderRow(records)
	if headerIdx < 0 {
		return nil, fmt.Errorf("empty file: no header row found")
	}

	columns := make([]string, len(records[headerIdx]))
	for i, cell := range records[headerIdx] {
		columns[i] = CleanCell(cell)
	}

	// Keep body rows in order; drop fully empty ones.
	var rows [][]string
	for _, row := range records[headerIdx+1:] {
		if isEmptyRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file: no data rows after header")
	}

	file := &UploadedFile{
		ID:         uuid.New().String(),
		Name:       name,
		Columns:    columns,
		Rows:       rows,
		UploadedAt: time.Now(),
	}

	s.fileMu.Lock()
	s.files[file.ID] = file
	s.fileMu.Unlock()

	s.cleanupFile(file.ID, s.cfg.Upload.Retention)

	logging.WithFields(ctx, "file_id", file.ID, "file", name).
		Info("file uploaded", "columns", len(columns), "rows", len(rows))

	previewRows := s.cfg.Upload.PreviewRows
	if previewRows > len(rows) {
		previewRows = len(rows)
	}

	return &FilePreview{
		FileID:    file.ID,
		Name:      file.Name,
		Columns:   columns,
		Rows:      rows[:previewRows],
		TotalRows: len(rows),
	}, nil
}

// GetFile returns a previously uploaded file.
func (s *Service) GetFile(fileID string) (*UploadedFile, error) {
	s.fileMu.RLock()
	file, ok := s.files[fileID]
	s.fileMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("file not found: %s", fileID)
	}
	return file, nil
}

// Preview rebuilds the preview for an uploaded file.
func (s *Service) Preview(fileID string) (*FilePreview, error) {
	file, err := s.GetFile(fileID)
	if err != nil {
		return nil, err
	}

	previewRows := s.cfg.Upload.PreviewRows
	if previewRows > len(file.Rows) {
		previewRows = len(file.Rows)
	}

	return &FilePreview{
		FileID:    file.ID,
		Name:      file.Name,
		Columns:   file.Columns,
		Rows:      file.Rows[:previewRows],
		TotalRows: len(file.Rows),
	}, nil
}

// cleanupFile drops the file from tracking after a delay.
func (s *Service) cleanupFile(fileID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.fileMu.Lock()
		delete(s.files, fileID)
		s.fileMu.Unlock()
	})
}
