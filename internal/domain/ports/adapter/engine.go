package adapter

import "context"

// Segment is one word-level piece of the transcript with timestamps in
// seconds from the start of the audio.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// TranscriptionEngine is the port to the speech-to-text black box. A call is
// blocking and CPU/network bound, possibly for minutes, and cannot be
// aborted once started; callers bound their own wait, not the engine.
type TranscriptionEngine interface {
	Transcribe(ctx context.Context, audioPath, language string) ([]Segment, error)
}
