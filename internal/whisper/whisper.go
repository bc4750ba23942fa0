package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/rs/zerolog"

	"github.com/petems/whispr/internal/config"
)

// SampleRate is the only input rate the model accepts.
const SampleRate = 16000

// Transcriber turns mono 16 kHz float samples into text.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int, language string) (string, error)
	Close() error
}

type whisperTranscriber struct {
	mu        sync.Mutex
	model     whisper.Model
	modelPath string
	threads   int
	log       zerolog.Logger
}

// New loads the configured model, downloading it first when a known
// model name is configured and the file is missing.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Transcriber, error) {
	modelPath := cfg.ModelFile()

	// Check if model exists, download if needed
	if _, err := os.Stat(modelPath); errors.Is(err, os.ErrNotExist) {
		if cfg.Whisper.ModelPath != "" {
			return nil, fmt.Errorf("model file not found: %s", modelPath)
		}
		if err := downloadModel(ctx, cfg.Whisper.Model, modelPath, log); err != nil {
			return nil, fmt.Errorf("failed to download model: %w", err)
		}
	}

	// Load model using official bindings
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	return &whisperTranscriber{
		model:     model,
		modelPath: modelPath,
		threads:   cfg.Whisper.Threads,
		log:       log,
	}, nil
}

// Transcribe runs one greedy, non-translating pass over samples and
// returns the non-empty segment texts joined by spaces. Each call gets a
// fresh model context, so no decoded text carries over between utterances.
func (w *whisperTranscriber) Transcribe(ctx context.Context, samples []float32, sampleRate int, language string) (string, error) {
	if sampleRate != SampleRate {
		return "", fmt.Errorf("whisper expects %d Hz audio, got %d Hz", SampleRate, sampleRate)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model == nil {
		return "", errors.New("whisper model is closed")
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("failed to create context: %w", err)
	}

	wctx.SetThreads(uint(threadCount(w.threads)))
	if language != "" && language != "auto" {
		if err := wctx.SetLanguage(language); err != nil {
			return "", fmt.Errorf("failed to set language %q: %w", language, err)
		}
	}
	wctx.SetTranslate(false)

	w.log.Debug().
		Int("samples", len(samples)).
		Str("language", language).
		Msg("Running whisper")

	if err := wctx.Process(samples, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process failed: %w", err)
	}

	var segments []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read segment: %w", err)
		}
		segments = append(segments, segment.Text)
	}

	return joinSegments(segments), nil
}

func (w *whisperTranscriber) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model != nil {
		w.model.Close()
		w.model = nil
	}
	return nil
}

func threadCount(configured int) int {
	if configured > 0 {
		return configured
	}
	return runtime.NumCPU()
}

func joinSegments(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
