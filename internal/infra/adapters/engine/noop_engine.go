package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"transcription-service/internal/domain/ports/adapter"
)

var _ adapter.TranscriptionEngine = (*NoopEngine)(nil)

// NoopEngine implements adapter.TranscriptionEngine for local/dev runs and
// tests. It returns canned word segments instead of calling a real engine.
type NoopEngine struct {
	// Delay simulates engine latency before the result is produced.
	Delay time.Duration
}

// NewNoopEngine constructs the noop engine.
func NewNoopEngine() *NoopEngine {
	return &NoopEngine{}
}

// Transcribe simulates a blocking engine call. Like the real engine it does
// not stop mid-call; the delay elapses even when ctx is already done.
func (e *NoopEngine) Transcribe(ctx context.Context, audioPath, language string) ([]adapter.Segment, error) {
	if e.Delay > 0 {
		time.Sleep(e.Delay)
	}
	name := filepath.Base(audioPath)
	return []adapter.Segment{
		{Start: 0.0, End: 0.6, Text: "noop"},
		{Start: 0.6, End: 1.2, Text: "transcript"},
		{Start: 1.2, End: 1.9, Text: fmt.Sprintf("(%s/%s)", name, language)},
	}, nil
}
