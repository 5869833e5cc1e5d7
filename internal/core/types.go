// Package core provides the business logic for batch extrinsic fetching.
// This package has no UI dependencies and can be used by any frontend.
package core

import "time"

// FetchPhase indicates the current stage of a fetch job.
type FetchPhase string

const (
	PhaseStarting  FetchPhase = "starting"
	PhaseFetching  FetchPhase = "fetching"
	PhaseComplete  FetchPhase = "complete"
	PhaseFailed    FetchPhase = "failed"
	PhaseCancelled FetchPhase = "cancelled"
)

// Row result status strings. API errors and exceptions carry the
// upstream message appended after the prefix.
const (
	StatusSuccess  = "Success"
	StatusNotFound = "Not Found"

	apiErrorPrefix  = "API Error: "
	exceptionPrefix = "Error: "
)

// FetchProgress represents the current state of a fetch job.
type FetchProgress struct {
	JobID      string     `json:"jobId"`
	Phase      FetchPhase `json:"phase"`
	FileName   string     `json:"fileName"`
	TotalRows  int        `json:"totalRows"`
	CurrentRow int        `json:"currentRow"`
	Error      string     `json:"error,omitempty"` // Non-empty if Phase is PhaseFailed
}

// Percent returns the progress as a percentage (0-100).
func (p FetchProgress) Percent() int {
	if p.TotalRows > 0 {
		return (p.CurrentRow * 100) / p.TotalRows
	}
	return 0
}

// ResultRecord is the enriched output for a single transaction hash.
// Field order matches the exported CSV columns.
type ResultRecord struct {
	TxHash         string `json:"txHash"`
	Status         string `json:"status"`
	Sender         string `json:"sender"`
	From           string `json:"from"`
	To             string `json:"to"`
	TransferAmount string `json:"transferAmount"`
	EstimatedFee   string `json:"estimatedFee"`
	UsedFee        string `json:"usedFee"`
}

// FetchResult contains the final result of a fetch job.
// Records holds exactly one entry per input row, in input order,
// regardless of individual failures.
type FetchResult struct {
	JobID     string         `json:"jobId"`
	FileName  string         `json:"fileName"`
	TotalRows int            `json:"totalRows"`
	Records   []ResultRecord `json:"records"`
	Duration  time.Duration  `json:"duration"`
	Error     string         `json:"error,omitempty"` // Non-empty if the job failed or was cancelled
}