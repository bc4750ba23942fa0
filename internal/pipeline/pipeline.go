// Package pipeline runs one utterance through capture, normalization,
// resampling and recognition, strictly one stage after another.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petems/whispr/internal/audio"
	"github.com/petems/whispr/internal/config"
)

// Capturer records one utterance from the default input device.
type Capturer interface {
	Capture(ctx context.Context, duration time.Duration) (*audio.Recording, error)
}

// Recognizer turns mono float samples at sampleRate into text.
type Recognizer interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int, language string) (string, error)
}

type Config struct {
	Capturer   Capturer
	Recognizer Recognizer
	Language   string
	TargetRate int // defaults to 16000
	Logger     zerolog.Logger
}

// Result describes one finished utterance.
type Result struct {
	ID        uuid.UUID
	Text      string
	Capture   audio.CaptureConfig
	Frames    int
	Resampled int
	Elapsed   time.Duration
}

type Pipeline struct {
	capture  Capturer
	stt      Recognizer
	language string
	target   int
	log      zerolog.Logger
}

func New(cfg Config) *Pipeline {
	target := cfg.TargetRate
	if target <= 0 {
		target = config.TargetSampleRate
	}
	return &Pipeline{
		capture:  cfg.Capturer,
		stt:      cfg.Recognizer,
		language: cfg.Language,
		target:   target,
		log:      cfg.Logger,
	}
}

// Process normalizes a finished recording to mono and resamples it to the
// target rate.
func (p *Pipeline) Process(rec *audio.Recording) []float32 {
	mono := audio.Normalize(rec.Data, rec.Config.Channels, rec.Config.Encoding)
	return audio.Resample(mono, rec.Config.SampleRate, p.target)
}

// Run records for duration, conditions the audio and hands it to the
// recognizer. Setup errors from capture abort the run with no output.
func (p *Pipeline) Run(ctx context.Context, duration time.Duration) (*Result, error) {
	id := uuid.New()
	log := p.log.With().Str("utterance", id.String()).Logger()
	started := time.Now()

	log.Info().Dur("duration", duration).Msg("Recording")
	rec, err := p.capture.Capture(ctx, duration)
	if err != nil {
		return nil, fmt.Errorf("failed to record audio: %w", err)
	}

	if rec.Config.SampleRate != p.target {
		log.Info().
			Int("from", rec.Config.SampleRate).
			Int("to", p.target).
			Msg("Resampling")
	}
	samples := p.Process(rec)

	log.Info().Int("samples", len(samples)).Msg("Transcribing")
	text, err := p.stt.Transcribe(ctx, samples, p.target, p.language)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe audio: %w", err)
	}

	res := &Result{
		ID:        id,
		Text:      text,
		Capture:   rec.Config,
		Frames:    rec.Frames(),
		Resampled: len(samples),
		Elapsed:   time.Since(started),
	}
	log.Debug().
		Int("frames", res.Frames).
		Int("resampled", res.Resampled).
		Dur("elapsed", res.Elapsed).
		Msg("Utterance done")
	return res, nil
}
