//go:build !integration

package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"transcription-service/internal/domain"
	"transcription-service/internal/domain/model"
	"transcription-service/internal/infra/metrics"
	"transcription-service/internal/infra/registry"
	"transcription-service/internal/infra/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// --- Mocks ---

// inlineDispatcher runs tasks synchronously, so tests observe the terminal
// state right after Create returns.
type inlineDispatcher struct {
	refuse bool
}

func (d *inlineDispatcher) Submit(task func(ctx context.Context)) error {
	if d.refuse {
		return domain.ErrQueueSaturated
	}
	task(context.Background())
	return nil
}

// fakeProcessor records the artifact and flips the job to a terminal state.
type fakeProcessor struct {
	registry *registry.Memory
	store    *storage.Area
	fail     string // when non-empty, job fails with this cause
	artifact string
}

func (p *fakeProcessor) Process(ctx context.Context, job model.Job) {
	if p.fail != "" {
		_ = p.registry.Update(job.ID, func(j *model.Job) {
			j.Status = model.JobStatusFailed
			j.LastError = p.fail
		})
		return
	}
	_ = p.store.Write(job.ResultPath, []byte(p.artifact))
	_ = p.registry.Update(job.ID, func(j *model.Job) {
		j.Status = model.JobStatusCompleted
	})
}

// recordingRetainer captures Schedule/Cancel calls and lets tests fire the
// expiry callback by hand.
type recordingRetainer struct {
	mu        sync.Mutex
	scheduled map[string]func()
	cancelled []string
}

func newRecordingRetainer() *recordingRetainer {
	return &recordingRetainer{scheduled: make(map[string]func())}
}

func (r *recordingRetainer) Schedule(id string, d time.Duration, expire func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.scheduled[id]; ok {
		return
	}
	r.scheduled[id] = expire
}

func (r *recordingRetainer) Cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scheduled, id)
	r.cancelled = append(r.cancelled, id)
}

func (r *recordingRetainer) fire(id string) {
	r.mu.Lock()
	expire := r.scheduled[id]
	delete(r.scheduled, id)
	r.mu.Unlock()
	if expire != nil {
		expire()
	}
}

func (r *recordingRetainer) armed(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.scheduled[id]
	return ok
}

// readHookStore wraps the real area and lets a test run work between the
// registry check and the artifact read. The hook runs once.
type readHookStore struct {
	*storage.Area
	onRead func()
}

func (s *readHookStore) Read(path string) ([]byte, error) {
	if s.onRead != nil {
		hook := s.onRead
		s.onRead = nil
		hook()
	}
	return s.Area.Read(path)
}

type fixture struct {
	uc        *JobUC
	registry  *registry.Memory
	store     *storage.Area
	processor *fakeProcessor
	retainer  *recordingRetainer
	dispatch  *inlineDispatcher
	root      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	area, err := storage.NewArea(root)
	if err != nil {
		t.Fatalf("NewArea: %v", err)
	}
	jobs := registry.NewMemory()
	proc := &fakeProcessor{registry: jobs, store: area, artifact: "1\n00:00:00,000 --> 00:00:01,000\nhi\n\n"}
	ret := newRecordingRetainer()
	disp := &inlineDispatcher{}
	uc := NewJobUC(jobs, area, proc, disp, ret, time.Hour, testLogger())
	return &fixture{uc: uc, registry: jobs, store: area, processor: proc, retainer: ret, dispatch: disp, root: root}
}

// --- Tests ---

func TestCreateRunsToCompletion(t *testing.T) {
	f := newFixture(t)

	id, err := f.uc.Create(context.Background(), []byte("audio"), "en")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	view, err := f.uc.Status(id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if view.Status != model.JobStatusCompleted {
		t.Fatalf("status = %q, want completed", view.Status)
	}
	if view.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not set")
	}
}

func TestCreateEmptyAudio(t *testing.T) {
	f := newFixture(t)
	if _, err := f.uc.Create(context.Background(), nil, "en"); !errors.Is(err, domain.ErrEmptyAudio) {
		t.Fatalf("Create(nil) = %v, want ErrEmptyAudio", err)
	}
}

func TestCreateDispatchRefusedCleansUp(t *testing.T) {
	f := newFixture(t)
	f.dispatch.refuse = true

	_, err := f.uc.Create(context.Background(), []byte("audio"), "en")
	if !errors.Is(err, domain.ErrQueueSaturated) {
		t.Fatalf("Create = %v, want ErrQueueSaturated", err)
	}
	if f.registry.Len() != 0 {
		t.Fatal("refused job left a registry entry")
	}
	entries, _ := os.ReadDir(f.root)
	if len(entries) != 0 {
		t.Fatalf("refused job left storage behind: %v", entries)
	}
}

func TestResultArmsRetentionOnce(t *testing.T) {
	f := newFixture(t)
	id, _ := f.uc.Create(context.Background(), []byte("audio"), "en")

	first, err := f.uc.Result(id)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("artifact empty")
	}
	if !f.retainer.armed(id) {
		t.Fatal("retention not armed after first fetch")
	}

	// Repeated fetch inside the window returns the same artifact.
	second, err := f.uc.Result(id)
	if err != nil {
		t.Fatalf("second Result: %v", err)
	}
	if string(first) != string(second) {
		t.Fatal("repeated fetch returned a different artifact")
	}
}

func TestResultStillProcessing(t *testing.T) {
	f := newFixture(t)
	// Bypass Create so no processor ever runs for this job.
	job := &model.Job{ID: "stuck", Status: model.JobStatusProcessing, CreatedAt: time.Now()}
	if err := f.registry.Create(job); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.uc.Result("stuck"); !errors.Is(err, domain.ErrStillProcessing) {
		t.Fatalf("Result = %v, want ErrStillProcessing", err)
	}
	if f.retainer.armed("stuck") {
		t.Fatal("retention armed for a non-terminal job")
	}
}

func TestResultSurfacesFailureCause(t *testing.T) {
	f := newFixture(t)
	f.processor.fail = "engine: malformed audio stream"

	id, _ := f.uc.Create(context.Background(), []byte("audio"), "en")

	_, err := f.uc.Result(id)
	var failed *domain.JobFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Result = %v, want JobFailedError", err)
	}
	if failed.Cause != "engine: malformed audio stream" {
		t.Fatalf("cause = %q, want the recorded engine error", failed.Cause)
	}
}

func TestResultUnknown(t *testing.T) {
	f := newFixture(t)
	if _, err := f.uc.Result("does-not-exist"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("Result = %v, want ErrJobNotFound", err)
	}
}

func TestDeleteRemovesEverything(t *testing.T) {
	f := newFixture(t)
	id, _ := f.uc.Create(context.Background(), []byte("audio"), "en")
	if _, err := f.uc.Result(id); err != nil {
		t.Fatalf("Result: %v", err)
	}

	if err := f.uc.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if f.retainer.armed(id) {
		t.Fatal("retention timer survived a manual delete")
	}
	if _, err := f.uc.Status(id); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("Status after delete = %v, want ErrJobNotFound", err)
	}
	if _, err := os.Stat(filepath.Join(f.root, id)); !os.IsNotExist(err) {
		t.Fatal("job dir survived a manual delete")
	}

	// Second delete reports not found; nothing worse.
	if err := f.uc.Delete(id); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("second Delete = %v, want ErrJobNotFound", err)
	}
}

func TestExpiryAfterManualDeleteIsNoop(t *testing.T) {
	f := newFixture(t)
	id, _ := f.uc.Create(context.Background(), []byte("audio"), "en")
	if _, err := f.uc.Result(id); err != nil {
		t.Fatalf("Result: %v", err)
	}

	// Snapshot the callback, then let the manual delete win the race.
	f.retainer.mu.Lock()
	expire := f.retainer.scheduled[id]
	f.retainer.mu.Unlock()

	if err := f.uc.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	expire() // late timer firing after the delete

	if _, err := f.uc.Status(id); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("Status = %v, want ErrJobNotFound", err)
	}
}

func TestResultExpiredMidFetch(t *testing.T) {
	root := t.TempDir()
	area, err := storage.NewArea(root)
	if err != nil {
		t.Fatalf("NewArea: %v", err)
	}
	jobs := registry.NewMemory()
	proc := &fakeProcessor{registry: jobs, store: area, artifact: "1\n00:00:00,000 --> 00:00:01,000\nhi\n\n"}
	store := &readHookStore{Area: area}
	uc := NewJobUC(jobs, store, proc, &inlineDispatcher{}, newRecordingRetainer(), time.Hour, testLogger())

	id, err := uc.Create(context.Background(), []byte("audio"), "en")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Expiry lands between the registry check and the artifact read. The
	// caller must see the job as gone, not a broken read.
	store.onRead = func() { uc.expire(id) }

	if _, err := uc.Result(id); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("Result = %v, want ErrJobNotFound", err)
	}
}

func deletedCount(t *testing.T, trigger string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "transcription_jobs_deleted_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "trigger" && l.GetValue() == trigger {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestDeleteCountersMatchRemovals(t *testing.T) {
	metrics.MustRegister()
	f := newFixture(t)

	id, _ := f.uc.Create(context.Background(), []byte("audio"), "en")
	if _, err := f.uc.Result(id); err != nil {
		t.Fatalf("Result: %v", err)
	}

	manualBefore := deletedCount(t, "manual")
	retentionBefore := deletedCount(t, "retention")

	// Snapshot the callback so the timer can fire after the manual delete.
	f.retainer.mu.Lock()
	expire := f.retainer.scheduled[id]
	f.retainer.mu.Unlock()

	if err := f.uc.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	expire()

	if got := deletedCount(t, "manual"); got != manualBefore+1 {
		t.Fatalf("manual deletions = %v, want %v", got, manualBefore+1)
	}
	// The late timer found nothing to remove, so it must not count.
	if got := deletedCount(t, "retention"); got != retentionBefore {
		t.Fatalf("retention deletions = %v, want %v", got, retentionBefore)
	}

	// A real expiry does count, exactly once.
	id2, _ := f.uc.Create(context.Background(), []byte("audio"), "en")
	if _, err := f.uc.Result(id2); err != nil {
		t.Fatalf("Result: %v", err)
	}
	f.retainer.fire(id2)
	if got := deletedCount(t, "retention"); got != retentionBefore+1 {
		t.Fatalf("retention deletions = %v, want %v", got, retentionBefore+1)
	}
}

func TestExpiryRemovesJob(t *testing.T) {
	f := newFixture(t)
	id, _ := f.uc.Create(context.Background(), []byte("audio"), "en")
	if _, err := f.uc.Result(id); err != nil {
		t.Fatalf("Result: %v", err)
	}

	f.retainer.fire(id)

	if _, err := f.uc.Result(id); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("Result after expiry = %v, want ErrJobNotFound", err)
	}
	if _, err := os.Stat(filepath.Join(f.root, id)); !os.IsNotExist(err) {
		t.Fatal("job dir survived expiry")
	}
}
