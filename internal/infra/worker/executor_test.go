package worker

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"transcription-service/internal/domain/model"
	"transcription-service/internal/domain/ports/adapter"
	"transcription-service/internal/infra/registry"
	"transcription-service/internal/infra/storage"
)

type stubEngine struct {
	segments []adapter.Segment
	err      error
}

func (s *stubEngine) Transcribe(ctx context.Context, audioPath, language string) ([]adapter.Segment, error) {
	return s.segments, s.err
}

func setupExecutor(t *testing.T, eng adapter.TranscriptionEngine) (*Executor, *registry.Memory, *storage.Area) {
	t.Helper()
	area, err := storage.NewArea(t.TempDir())
	if err != nil {
		t.Fatalf("NewArea: %v", err)
	}
	jobs := registry.NewMemory()
	return NewExecutor(jobs, area, eng, testLogger()), jobs, area
}

func makeJob(t *testing.T, area *storage.Area, jobs *registry.Memory) model.Job {
	t.Helper()
	audio, result, err := area.Allocate("job-1")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := area.Write(audio, []byte("fake audio")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	job := model.Job{
		ID:         "job-1",
		Status:     model.JobStatusProcessing,
		Language:   "en",
		AudioPath:  audio,
		ResultPath: result,
		CreatedAt:  time.Now().UTC(),
	}
	if err := jobs.Create(&job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return job
}

func TestProcessCompletesJob(t *testing.T) {
	eng := &stubEngine{segments: []adapter.Segment{{Start: 0, End: 1, Text: "hi"}}}
	exec, jobs, area := setupExecutor(t, eng)
	job := makeJob(t, area, jobs)

	exec.Process(context.Background(), job)

	got, err := jobs.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != model.JobStatusCompleted {
		t.Fatalf("status = %q, want completed", got.Status)
	}
	data, err := os.ReadFile(job.ResultPath)
	if err != nil {
		t.Fatalf("result artifact unreadable: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("result artifact is empty")
	}
}

func TestProcessRecordsEngineFailure(t *testing.T) {
	eng := &stubEngine{err: errors.New("malformed audio stream")}
	exec, jobs, area := setupExecutor(t, eng)
	job := makeJob(t, area, jobs)

	exec.Process(context.Background(), job)

	got, _ := jobs.Get("job-1")
	if got.Status != model.JobStatusFailed {
		t.Fatalf("status = %q, want failed", got.Status)
	}
	if got.LastError == "" {
		t.Fatal("failed job has empty error")
	}
	if _, err := os.Stat(job.ResultPath); !os.IsNotExist(err) {
		t.Fatal("failed job left a result artifact behind")
	}
}

func TestProcessRecordsEmptyTranscript(t *testing.T) {
	eng := &stubEngine{} // no segments, no error
	exec, jobs, area := setupExecutor(t, eng)
	job := makeJob(t, area, jobs)

	exec.Process(context.Background(), job)

	got, _ := jobs.Get("job-1")
	if got.Status != model.JobStatusFailed {
		t.Fatalf("status = %q, want failed on empty transcript", got.Status)
	}
}
