package usecase

import (
	"context"
	"fmt"
	"time"

	"transcription-service/internal/domain"
	"transcription-service/internal/domain/model"
	"transcription-service/internal/domain/ports/repository"
	"transcription-service/internal/infra/logging"
	"transcription-service/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Processor runs one job's transcription work to its terminal state.
type Processor interface {
	Process(ctx context.Context, job model.Job)
}

// Dispatcher schedules a task on a background worker, detached from the
// request that submitted it.
type Dispatcher interface {
	Submit(task func(ctx context.Context)) error
}

// Retainer arms and cancels per-job deletion timers.
type Retainer interface {
	Schedule(id string, d time.Duration, expire func())
	Cancel(id string)
}

// JobStatusView is what pollers see; it never exposes artifact paths.
type JobStatusView struct {
	ID        string
	Status    model.JobStatus
	CreatedAt time.Time
	Error     string
}

// JobUC implements the asynchronous job lifecycle: create, poll, fetch,
// delete, and retention-based expiry.
type JobUC struct {
	registry  repository.JobRegistry
	store     repository.StorageArea
	processor Processor
	dispatch  Dispatcher
	retention Retainer
	window    time.Duration
	log       *zerolog.Logger
}

func NewJobUC(
	registry repository.JobRegistry,
	store repository.StorageArea,
	processor Processor,
	dispatch Dispatcher,
	retention Retainer,
	window time.Duration,
	logger *zerolog.Logger,
) *JobUC {
	ucLog := logger.With().Str("component", "JobUC").Logger()
	return &JobUC{
		registry:  registry,
		store:     store,
		processor: processor,
		dispatch:  dispatch,
		retention: retention,
		window:    window,
		log:       &ucLog,
	}
}

// Create persists the upload, inserts a processing record, and hands the
// work to a background worker. It returns as soon as the job is accepted;
// completion is observable only through the registry.
func (uc *JobUC) Create(ctx context.Context, audio []byte, language string) (string, error) {
	defer logging.TraceDuration(uc.log, "JobUC.Create")()

	if len(audio) == 0 {
		return "", domain.ErrEmptyAudio
	}

	id := uuid.NewString()
	audioPath, resultPath, err := uc.store.Allocate(id)
	if err != nil {
		return "", fmt.Errorf("allocate storage: %w", err)
	}
	if err := uc.store.Write(audioPath, audio); err != nil {
		// The job cannot proceed without its input; undo the allocation.
		uc.store.Remove(audioPath)
		uc.store.RemoveDir(id)
		return "", fmt.Errorf("persist audio: %w", err)
	}

	job := &model.Job{
		ID:         id,
		Status:     model.JobStatusProcessing,
		Language:   language,
		AudioPath:  audioPath,
		ResultPath: resultPath,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.registry.Create(job); err != nil {
		uc.store.Remove(audioPath)
		uc.store.RemoveDir(id)
		return "", fmt.Errorf("register job: %w", err)
	}

	snapshot := *job
	if err := uc.dispatch.Submit(func(ctx context.Context) {
		uc.processor.Process(logging.WithJobID(ctx, snapshot.ID), snapshot)
	}); err != nil {
		// A silently dropped task would strand the job in processing forever.
		uc.registry.Delete(id)
		uc.store.Remove(audioPath)
		uc.store.RemoveDir(id)
		return "", err
	}

	uc.log.Info().Str("job_id", id).Str("language", language).Msg("job accepted")
	return id, nil
}

// Status reads the job snapshot. Never blocks on the job's work.
func (uc *JobUC) Status(id string) (JobStatusView, error) {
	job, err := uc.registry.Get(id)
	if err != nil {
		return JobStatusView{}, err
	}
	return JobStatusView{
		ID:        job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
		Error:     job.LastError,
	}, nil
}

// Result returns the artifact bytes for a completed job and arms the
// retention timer on the first successful fetch. Later fetches inside the
// window return the same artifact without extending it.
func (uc *JobUC) Result(id string) ([]byte, error) {
	defer logging.TraceDuration(uc.log, "JobUC.Result")()

	job, err := uc.registry.Get(id)
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case model.JobStatusProcessing:
		return nil, domain.ErrStillProcessing
	case model.JobStatusFailed:
		return nil, &domain.JobFailedError{Cause: job.LastError}
	}

	data, err := uc.store.Read(job.ResultPath)
	if err != nil {
		// An expiry or manual delete may have removed the job between the
		// registry read and the artifact read; report that as not found.
		if _, regErr := uc.registry.Get(id); regErr != nil {
			return nil, regErr
		}
		return nil, fmt.Errorf("read result: %w", err)
	}

	uc.retention.Schedule(id, uc.window, func() { uc.expire(id) })
	return data, nil
}

// Delete removes the job immediately: timer, files, directory, record.
// Unknown ids report not found; everything past that check is idempotent.
func (uc *JobUC) Delete(id string) error {
	defer logging.TraceDuration(uc.log, "JobUC.Delete")()

	job, err := uc.registry.Get(id)
	if err != nil {
		return err
	}
	uc.retention.Cancel(id)
	uc.remove(job)
	metrics.IncJobDeleted("manual")
	uc.log.Info().Str("job_id", id).Msg("job deleted")
	return nil
}

// expire is the retention timer's callback. The job may already be gone if a
// manual delete won the race; that is a no-op, not an error.
func (uc *JobUC) expire(id string) {
	job, err := uc.registry.Get(id)
	if err != nil {
		return
	}
	uc.remove(job)
	metrics.IncJobDeleted("retention")
	uc.log.Info().Str("job_id", id).Msg("job expired")
}

// remove deletes record and files together so they never diverge. File
// removal is best-effort; the record always goes.
func (uc *JobUC) remove(job model.Job) {
	uc.registry.Delete(job.ID)
	uc.store.Remove(job.AudioPath, job.ResultPath)
	uc.store.RemoveDir(job.ID)
}
