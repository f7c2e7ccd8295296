package model

import "time"

type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether a status can never change again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is a unit of asynchronous transcription work. ID, CreatedAt and the
// artifact paths are fixed at creation; only Status and LastError change,
// exactly once, when the executor finishes.
type Job struct {
	ID         string
	Status     JobStatus
	Language   string
	AudioPath  string
	ResultPath string
	LastError  string
	CreatedAt  time.Time
}
