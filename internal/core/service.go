package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"polkafetch/internal/config"
	"polkafetch/internal/subscan"
)

// Service provides the core business logic for transaction fetch jobs.
type Service struct {
	client  *subscan.Client
	cfg     *config.Config
	limiter *JobLimiter
	tracer  trace.Tracer

	mu   sync.RWMutex
	jobs map[string]*activeJob

	fileMu sync.RWMutex
	files  map[string]*UploadedFile
}

type activeJob struct {
	ID         string
	FileName   string
	Cancel     context.CancelFunc
	Progress   FetchProgress
	Result     *FetchResult
	Done       chan struct{}
	Listeners  []chan FetchProgress
	ListenerMu sync.Mutex
	closed     bool // set once listeners have been closed
}

// NewService creates a new Service instance.
func NewService(client *subscan.Client, cfg *config.Config) *Service {
	return &Service{
		client:  client,
		cfg:     cfg,
		limiter: NewJobLimiter(cfg.Fetch.MaxConcurrentJobs, cfg.Fetch.MaxWaitTime),
		tracer:  otel.Tracer("polkafetch/core"),
		jobs:    make(map[string]*activeJob),
		files:   make(map[string]*UploadedFile),
	}
}

// FetchOptions configures a fetch job.
type FetchOptions struct {
	FileID     string
	HashColumn string
	Delay      time.Duration
	APIKey     string
}

// StartFetch begins an asynchronous fetch job over an uploaded file.
// Returns the job ID immediately. Use SubscribeProgress to get updates.
func (s *Service) StartFetch(ctx context.Context, opts FetchOptions) (string, error) {
	file, err := s.GetFile(opts.FileID)
	if err != nil {
		return "", err
	}

	idx := MakeHeaderIndex(file.Columns)
	col, ok := idx.Lookup(opts.HashColumn)
	if !ok {
		return "", fmt.Errorf("hash column not found: %s", opts.HashColumn)
	}

	// Reserve a job slot before spawning the worker.
	if err := s.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	jobID := uuid.New().String()
	jobCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Fetch.JobTimeout)

	job := &activeJob{
		ID:       jobID,
		FileName: file.Name,
		Cancel:   cancel,
		Progress: FetchProgress{
			JobID:     jobID,
			Phase:     PhaseStarting,
			FileName:  file.Name,
			TotalRows: len(file.Rows),
		},
		Done:      make(chan struct{}),
		Listeners: make([]chan FetchProgress, 0),
	}

	s.mu.Lock()
	s.jobs[jobID] = job
	s.mu.Unlock()

	go s.processFetch(jobCtx, job, file, col, opts)

	return jobID, nil
}

// SubscribeProgress returns a channel that receives progress updates.
// The channel is closed when the job completes.
func (s *Service) SubscribeProgress(jobID string) (<-chan FetchProgress, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	ch := make(chan FetchProgress, 10)

	job.ListenerMu.Lock()
	if job.closed {
		// Job already finished; deliver the final progress and close so
		// late subscribers never block.
		ch <- job.Progress
		close(ch)
		job.ListenerMu.Unlock()
		return ch, nil
	}
	job.Listeners = append(job.Listeners, ch)
	// Send current progress immediately
	select {
	case ch <- job.Progress:
	default:
	}
	job.ListenerMu.Unlock()

	return ch, nil
}

// CancelJob cancels an in-progress fetch job.
func (s *Service) CancelJob(jobID string) error {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}

	job.Cancel()
	return nil
}

// GetResult returns the result of a completed fetch job.
// Blocks until the job completes if still in progress.
func (s *Service) GetResult(jobID string) (*FetchResult, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	// Wait for completion
	<-job.Done

	return job.Result, nil
}

// GetProgress returns the current progress without blocking.
func (s *Service) GetProgress(jobID string) (FetchProgress, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()

	if !ok {
		return FetchProgress{}, fmt.Errorf("job not found: %s", jobID)
	}

	return job.Progress, nil
}

// JobLimiterStatus returns the current job slot usage.
func (s *Service) JobLimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForJobs blocks until all running jobs finish or the context expires.
// Used during graceful shutdown.
func (s *Service) WaitForJobs(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// notifyProgress sends progress updates to all listeners.
func (job *activeJob) notifyProgress() {
	job.ListenerMu.Lock()
	defer job.ListenerMu.Unlock()

	for _, ch := range job.Listeners {
		select {
		case ch <- job.Progress:
		default:
			// Listener is slow, skip this update
		}
	}
}

// closeListeners closes all listener channels.
func (job *activeJob) closeListeners() {
	job.ListenerMu.Lock()
	defer job.ListenerMu.Unlock()

	for _, ch := range job.Listeners {
		close(ch)
	}
	job.Listeners = nil
	job.closed = true
}

// cleanup removes the job from tracking after a delay.
func (s *Service) cleanup(jobID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.jobs, jobID)
		s.mu.Unlock()
	})
}
