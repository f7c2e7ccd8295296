package worker

import (
	"context"
	"fmt"
	"time"

	"transcription-service/internal/domain/model"
	"transcription-service/internal/domain/ports/adapter"
	"transcription-service/internal/domain/ports/repository"
	"transcription-service/internal/infra/logging"
	"transcription-service/internal/infra/metrics"
	"transcription-service/internal/infra/subtitle"

	"github.com/rs/zerolog"
)

// Executor runs the transcription work for one job and records the single
// terminal transition. Exactly one Process call happens per job id; the
// registry's single-writer discipline depends on that.
type Executor struct {
	registry repository.JobRegistry
	store    repository.StorageArea
	engine   adapter.TranscriptionEngine
	log      *zerolog.Logger
}

func NewExecutor(
	registry repository.JobRegistry,
	store repository.StorageArea,
	eng adapter.TranscriptionEngine,
	logger *zerolog.Logger,
) *Executor {
	execLog := logger.With().Str("component", "Executor").Logger()
	return &Executor{registry: registry, store: store, engine: eng, log: &execLog}
}

// Process performs the job's work and marks it completed or failed. Errors
// never escape: the process must not crash because one job went wrong.
func (e *Executor) Process(ctx context.Context, job model.Job) {
	// The dispatching use case puts the job id into ctx.
	log := logging.With(ctx, e.log)
	log.Info().Msg("processing transcription job")
	start := time.Now()

	err := e.transcribe(ctx, job)
	latency := time.Since(start)

	finalStatus := model.JobStatusCompleted
	cause := ""
	if err != nil {
		finalStatus = model.JobStatusFailed
		cause = err.Error()
		// Keep the artifact-exists-iff-completed contract: a failed write
		// must not leave a partial result behind.
		e.store.Remove(job.ResultPath)
		log.Error().Err(err).Msg("transcription job failed")
	}

	metrics.IncJobFinished(string(finalStatus))
	_ = e.registry.Update(job.ID, func(j *model.Job) {
		j.Status = finalStatus
		j.LastError = cause
	})
	log.Info().
		Str("status", string(finalStatus)).
		Dur("duration_ms", latency).
		Msg("transcription job finished")
}

func (e *Executor) transcribe(ctx context.Context, job model.Job) error {
	segments, err := e.engine.Transcribe(ctx, job.AudioPath, job.Language)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	srt := subtitle.ComposeSRT(segments)
	if srt == "" {
		return fmt.Errorf("engine returned no segments")
	}
	if err := e.store.Write(job.ResultPath, []byte(srt)); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// Transcribe runs the same pipeline for the synchronous path, where no job
// record exists, and returns the artifact bytes instead of recording state.
func (e *Executor) Transcribe(ctx context.Context, audioPath, resultPath, language string) ([]byte, error) {
	segments, err := e.engine.Transcribe(ctx, audioPath, language)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	srt := subtitle.ComposeSRT(segments)
	if srt == "" {
		return nil, fmt.Errorf("engine returned no segments")
	}
	if err := e.store.Write(resultPath, []byte(srt)); err != nil {
		return nil, fmt.Errorf("write result: %w", err)
	}
	return []byte(srt), nil
}
