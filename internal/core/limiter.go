package core

// limiter.go bounds how many inference runs execute at once.
//
// Each run holds one slot of a semaphore for its whole duration. When all
// slots are taken, a new run waits up to maxWait before failing with
// ErrTooManyRuns. WaitForDrain lets shutdown wait for in-flight runs.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyRuns is returned when no run slot frees up within the wait time.
// Clients should retry after a short delay.
var ErrTooManyRuns = errors.New("too many concurrent runs, please try again later")

// DefaultMaxConcurrentRuns is the default limit for parallel runs.
const DefaultMaxConcurrentRuns = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// RunLimiter restricts concurrent runs with a semaphore.
type RunLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewRunLimiter creates a limiter allowing maxConcurrent simultaneous runs.
func NewRunLimiter(maxConcurrent int, maxWait time.Duration) *RunLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRuns
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &RunLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait.
// The caller MUST call Release() when the run completes (use defer).
func (l *RunLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyRuns
	}
}

// Release frees a slot taken by Acquire.
func (l *RunLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// ActiveCount returns the number of runs holding a slot.
func (l *RunLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// Available returns the number of free slots.
func (l *RunLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no run holds a slot or ctx is done.
func (l *RunLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of the limiter for the health endpoint.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *RunLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.slots),
	}
}
