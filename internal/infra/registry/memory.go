package registry

import (
	"sync"

	"transcription-service/internal/domain"
	"transcription-service/internal/domain/model"
	"transcription-service/internal/domain/ports/repository"
)

// Compile-time assurance this implementation satisfies the port
var _ repository.JobRegistry = (*Memory)(nil)

// Memory is the in-process job registry. State does not survive a restart;
// that is an accepted limitation, job existence is defined here and nowhere
// else.
type Memory struct {
	mu   sync.Mutex
	jobs map[string]*model.Job
}

func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]*model.Job)}
}

func (m *Memory) Create(job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; ok {
		return domain.ErrJobExists
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *Memory) Get(id string) (model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return model.Job{}, domain.ErrJobNotFound
	}
	return *job, nil
}

// Update applies mutate atomically. Once a job reached a terminal status the
// record is frozen; late mutations (a stray executor, a retry) are dropped
// so readers can never observe a reversed transition.
func (m *Memory) Update(id string, mutate func(*model.Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	if job.Status.Terminal() {
		return nil
	}
	mutate(job)
	return nil
}

func (m *Memory) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
}

// Len reports the number of live records. Used by tests and the health view.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
