package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"transcription-service/internal/config"
	"transcription-service/internal/domain/ports/adapter"
	"transcription-service/internal/infra/metrics"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.TranscriptionEngine = (*OpenAIEngine)(nil)

// OpenAIEngine implements adapter.TranscriptionEngine against the OpenAI
// audio/transcriptions API (or any OpenAI-compatible base URL), requesting
// word-level timestamps.
type OpenAIEngine struct {
	client openai.Client
	model  string
}

func NewOpenAIEngine(cfg config.EngineConfig) (*OpenAIEngine, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("engine api key empty")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.CallTimeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIEngine{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

func (e *OpenAIEngine) Transcribe(ctx context.Context, audioPath, language string) ([]adapter.Segment, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		File:                   f,
		Model:                  openai.AudioModel(e.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word"},
	}
	if language != "" {
		params.Language = openai.String(language)
	}

	start := time.Now()
	resp, err := e.client.Audio.Transcriptions.New(ctx, params)
	metrics.ObserveEngineCall(time.Since(start).Seconds(), err == nil)
	if err != nil {
		return nil, fmt.Errorf("engine call: %w", err)
	}

	segments := make([]adapter.Segment, 0, len(resp.Words))
	for _, w := range resp.Words {
		segments = append(segments, adapter.Segment{
			Start: w.Start,
			End:   w.End,
			Text:  w.Word,
		})
	}
	if len(segments) == 0 && resp.Text != "" {
		// Some compatible backends skip word granularity; fall back to one
		// segment covering the whole text.
		segments = append(segments, adapter.Segment{Start: 0, End: 0, Text: resp.Text})
	}
	return segments, nil
}
