package usecase

import (
	"context"
	"fmt"
	"time"

	"transcription-service/internal/domain"
	"transcription-service/internal/domain/ports/repository"
	"transcription-service/internal/infra/logging"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SyncProcessor runs the transcription pipeline once and returns the
// artifact bytes, without any job record.
type SyncProcessor interface {
	Transcribe(ctx context.Context, audioPath, resultPath, language string) ([]byte, error)
}

// TranscribeUC is the single-request flow: persist the upload, run the
// engine on a background worker, wait under a deadline, always clean up.
type TranscribeUC struct {
	store     repository.StorageArea
	processor SyncProcessor
	dispatch  Dispatcher
	deadline  time.Duration
	log       *zerolog.Logger
}

func NewTranscribeUC(
	store repository.StorageArea,
	processor SyncProcessor,
	dispatch Dispatcher,
	deadline time.Duration,
	logger *zerolog.Logger,
) *TranscribeUC {
	ucLog := logger.With().Str("component", "TranscribeUC").Logger()
	return &TranscribeUC{
		store:     store,
		processor: processor,
		dispatch:  dispatch,
		deadline:  deadline,
		log:       &ucLog,
	}
}

type syncResult struct {
	data []byte
	err  error
}

// Transcribe blocks the caller until the artifact is ready or the deadline
// elapses. The engine call cannot be aborted, so a timed-out request only
// abandons its wait: the worker keeps running and deletes the temp pair
// itself when it finishes. That lingering work is an accepted resource cost.
func (uc *TranscribeUC) Transcribe(ctx context.Context, audio []byte, language string) ([]byte, error) {
	defer logging.TraceDuration(uc.log, "TranscribeUC.Transcribe")()

	if len(audio) == 0 {
		return nil, domain.ErrEmptyAudio
	}

	id := uuid.NewString()
	audioPath, resultPath, err := uc.store.Allocate(id)
	if err != nil {
		return nil, fmt.Errorf("allocate storage: %w", err)
	}
	if err := uc.store.Write(audioPath, audio); err != nil {
		uc.store.Remove(audioPath)
		uc.store.RemoveDir(id)
		return nil, fmt.Errorf("persist audio: %w", err)
	}

	// Buffered so the worker can finish after the caller stopped listening.
	done := make(chan syncResult, 1)
	err = uc.dispatch.Submit(func(workerCtx context.Context) {
		data, perr := uc.processor.Transcribe(workerCtx, audioPath, resultPath, language)
		uc.store.Remove(audioPath, resultPath)
		uc.store.RemoveDir(id)
		done <- syncResult{data: data, err: perr}
	})
	if err != nil {
		uc.store.Remove(audioPath)
		uc.store.RemoveDir(id)
		return nil, err
	}

	timer := time.NewTimer(uc.deadline)
	defer timer.Stop()
	select {
	case res := <-done:
		return res.data, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		uc.log.Warn().Str("request_id", id).Dur("deadline", uc.deadline).
			Msg("deadline elapsed, abandoning in-flight transcription")
		return nil, context.DeadlineExceeded
	}
}
