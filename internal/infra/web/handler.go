package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"transcription-service/internal/domain"
	"transcription-service/internal/infra/logging"
	"transcription-service/internal/infra/metrics"
	"transcription-service/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler exposes the synchronous and job-based transcription surfaces.
type Handler struct {
	transcribeUC *usecase.TranscribeUC
	jobUC        *usecase.JobUC
	defaultLang  string
	maxBodyBytes int64
	log          *zerolog.Logger
}

func NewHandler(transcribeUC *usecase.TranscribeUC, jobUC *usecase.JobUC, defaultLang string, maxBodyBytes int64, logger *zerolog.Logger) *Handler {
	return &Handler{
		transcribeUC: transcribeUC,
		jobUC:        jobUC,
		defaultLang:  defaultLang,
		maxBodyBytes: maxBodyBytes,
		log:          logger,
	}
}

func (h *Handler) language(r *http.Request) string {
	if lang := r.URL.Query().Get("language"); lang != "" {
		return lang
	}
	return h.defaultLang
}

func (h *Handler) readAudio(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	audio, err := io.ReadAll(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio body")
		return nil, false
	}
	return audio, true
}

// Transcribe is the blocking path: upload, wait for the artifact under the
// configured deadline, stream it back.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	audio, ok := h.readAudio(w, r)
	if !ok {
		return
	}

	data, err := h.transcribeUC.Transcribe(r.Context(), audio, h.language(r))
	switch {
	case err == nil:
		metrics.IncSyncRequest("ok")
		writeArtifact(w, data)
	case errors.Is(err, context.DeadlineExceeded):
		metrics.IncSyncRequest("timeout")
		writeError(w, http.StatusGatewayTimeout, "transcription deadline exceeded")
	case errors.Is(err, domain.ErrEmptyAudio):
		metrics.IncSyncRequest("error")
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrQueueSaturated):
		metrics.IncSyncRequest("error")
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		metrics.IncSyncRequest("error")
		logging.With(r.Context(), h.log).Error().Err(err).Msg("synchronous transcription failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type createJobResp struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// CreateJob accepts the upload and returns immediately; the work runs
// detached and is observed through /job/{jobID}/status.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	audio, ok := h.readAudio(w, r)
	if !ok {
		return
	}

	id, err := h.jobUC.Create(r.Context(), audio, h.language(r))
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, createJobResp{JobID: id, Status: "processing"})
	case errors.Is(err, domain.ErrEmptyAudio):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrQueueSaturated):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logging.With(r.Context(), h.log).Error().Err(err).Msg("job creation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type jobStatusResp struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	view, err := h.jobUC.Status(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, jobStatusResp{
		JobID:     view.ID,
		Status:    string(view.Status),
		CreatedAt: view.CreatedAt.Format(time.RFC3339),
		Error:     view.Error,
	})
}

func (h *Handler) JobResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	data, err := h.jobUC.Result(id)

	var failed *domain.JobFailedError
	switch {
	case err == nil:
		writeArtifact(w, data)
	case errors.Is(err, domain.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, domain.ErrStillProcessing):
		writeJSON(w, http.StatusAccepted, createJobResp{JobID: id, Status: "processing"})
	case errors.As(err, &failed):
		writeError(w, http.StatusInternalServerError, failed.Cause)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	if err := h.jobUC.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
