package repository

import "transcription-service/internal/domain/model"

// JobRegistry is the single source of truth for job state. Implementations
// must serialize all access: readers see either the state before or after a
// mutation, never a partial one.
type JobRegistry interface {
	// Create inserts a new record. Returns domain.ErrJobExists on id collision.
	Create(job *model.Job) error
	// Get returns a copy of the record or domain.ErrJobNotFound.
	Get(id string) (model.Job, error)
	// Update applies mutate under the registry lock. Mutations against a job
	// already in a terminal status are discarded. Returns
	// domain.ErrJobNotFound for unknown ids.
	Update(id string, mutate func(*model.Job)) error
	// Delete removes the record. No-op when the id is absent.
	Delete(id string)
}
