package domain

import "errors"

var (
	// Common domain errors
	ErrJobNotFound     = errors.New("job not found")
	ErrJobExists       = errors.New("job already exists")
	ErrStillProcessing = errors.New("job is still processing")
	ErrEmptyAudio      = errors.New("audio payload is empty")
	ErrQueueSaturated  = errors.New("worker queue full")
)

// JobFailedError carries the recorded cause of a failed job so result
// retrieval can surface it verbatim instead of a generic message.
type JobFailedError struct {
	Cause string
}

func (e *JobFailedError) Error() string { return "job failed: " + e.Cause }
