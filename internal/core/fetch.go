package core

// fetch.go implements the fetch job worker: one goroutine per job that
// walks the uploaded rows in order, looks each hash up against the
// explorer API, and collects one result record per input row. Row-level
// failures never abort the job; they become error statuses in the output.

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"polkafetch/internal/extract"
	"polkafetch/internal/logging"
	"polkafetch/internal/subscan"
)

// processFetch runs a fetch job to completion. Runs in its own goroutine.
func (s *Service) processFetch(ctx context.Context, job *activeJob, file *UploadedFile, hashCol int, opts FetchOptions) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "core.fetch_job")
	span.SetAttributes(
		attribute.String("job.id", job.ID),
		attribute.Int("job.rows", len(file.Rows)),
	)

	defer func() {
		span.End()
		job.closeListeners()
		close(job.Done)
		s.cleanup(job.ID, s.cfg.Fetch.ResultRetention)
		s.limiter.Release()
	}()

	logger := logging.WithFields(ctx, "job_id", job.ID, "file", file.Name)
	logger.Info("fetch started", "rows", len(file.Rows))

	client := s.client
	if opts.APIKey != "" {
		client = client.WithAPIKey(opts.APIKey)
	}
	delay := s.cfg.Fetch.ClampDelay(opts.Delay)

	job.Progress.Phase = PhaseFetching
	job.notifyProgress()

	records := make([]ResultRecord, 0, len(file.Rows))
	cancelled := false

	for i, row := range file.Rows {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		var hash string
		if hashCol < len(row) {
			hash = CleanCell(row[hashCol])
		}

		rec, cached := fetchRow(ctx, client, hash)
		records = append(records, rec)

		job.Progress.CurrentRow = i + 1
		job.notifyProgress()

		// Pace requests against the API. Cache hits and blank cells
		// never touched the network, so they skip the delay.
		if i < len(file.Rows)-1 && !cached && hash != "" {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}
	}

	result := &FetchResult{
		JobID:     job.ID,
		FileName:  file.Name,
		TotalRows: len(file.Rows),
		Records:   records,
		Duration:  time.Since(start),
	}

	switch {
	case cancelled:
		job.Progress.Phase = PhaseCancelled
		job.Progress.Error = "job cancelled"
		result.Error = "job cancelled"
		span.SetStatus(codes.Error, "cancelled")
		logger.Warn("fetch cancelled", "completed_rows", len(records))
	default:
		job.Progress.Phase = PhaseComplete
		logger.Info("fetch completed",
			"rows", len(records),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}

	job.Result = result
	job.notifyProgress()
}

// fetchRow resolves a single hash into a result record. Returns the record
// and whether the lookup was served from cache (or skipped entirely).
func fetchRow(ctx context.Context, client *subscan.Client, hash string) (ResultRecord, bool) {
	rec := ResultRecord{TxHash: hash}

	if hash == "" {
		rec.Status = exceptionPrefix + "empty hash cell"
		return rec, true
	}

	lookup, err := client.Extrinsic(ctx, hash)
	if err != nil {
		rec.Status = exceptionPrefix + err.Error()
		return rec, false
	}

	switch lookup.Status {
	case subscan.StatusFound:
		rec.Status = StatusSuccess
		rec.EstimatedFee = orZero(lookup.Extrinsic.Fee)
		rec.UsedFee = orZero(lookup.Extrinsic.FeeUsed)

		sum := extract.Summarize(lookup.Extrinsic)
		rec.Sender = sum.Sender
		rec.From = sum.From
		rec.To = sum.To
		rec.TransferAmount = sum.Amount

	case subscan.StatusNotFound:
		rec.Status = StatusNotFound

	default:
		rec.Status = apiErrorPrefix + lookup.Message
	}

	return rec, lookup.Cached
}

// orZero substitutes "0" for missing fee fields.
func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
