package core

// job_limiter.go implements concurrency control for fetch jobs.
//
// The limiter restricts parallel jobs to a configurable maximum, keeping
// pressure on the explorer API bounded. When all slots are occupied, new
// requests wait up to maxWait before failing with ErrTooManyJobs.
//
// The limiter also supports graceful shutdown via WaitForDrain, which blocks
// until all active jobs complete.

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyJobs is returned when all job slots are occupied and the wait
// timeout expires. Clients should retry after a short delay.
var ErrTooManyJobs = errors.New("too many concurrent jobs, please try again later")

// DefaultMaxConcurrentJobs is the default limit for parallel fetch jobs.
const DefaultMaxConcurrentJobs = 3

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 10 * time.Second

// JobLimiter bounds the number of simultaneously running fetch jobs.
type JobLimiter struct {
	sem     *semaphore.Weighted
	max     int
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// NewJobLimiter creates a limiter that allows at most maxConcurrent simultaneous jobs.
// Requests that cannot acquire a slot within maxWait will receive ErrTooManyJobs.
func NewJobLimiter(maxConcurrent int, maxWait time.Duration) *JobLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentJobs
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &JobLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     maxConcurrent,
		maxWait: maxWait,
	}
}

// Acquire attempts to acquire a job slot.
// Returns nil on success, ErrTooManyJobs if the wait timeout expires.
// The caller MUST call Release() when the job completes (use defer).
func (l *JobLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		// Distinguish caller cancellation from slot timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyJobs
	}

	l.mu.Lock()
	l.active++
	l.mu.Unlock()
	return nil
}

// TryAcquire attempts to acquire a slot without blocking.
// Returns true if a slot was acquired, false otherwise.
func (l *JobLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.mu.Lock()
	l.active++
	l.mu.Unlock()
	return true
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *JobLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	l.sem.Release(1)
}

// ActiveCount returns the number of currently running jobs.
func (l *JobLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the maximum allowed concurrent jobs.
func (l *JobLimiter) MaxConcurrent() int {
	return l.max
}

// Available returns the number of available slots.
func (l *JobLimiter) Available() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.max - l.active
}

// WaitForDrain blocks until all active jobs complete or the context is cancelled.
// Used for graceful shutdown to ensure jobs finish before termination.
func (l *JobLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// LimiterStatus is a snapshot of the limiter's current state.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *JobLimiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     l.max - active,
		MaxConcurrent: l.max,
	}
}
