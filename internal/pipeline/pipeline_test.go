package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petems/whispr/internal/audio"
	"github.com/petems/whispr/internal/audio/audiotest"
)

type mockRecognizer struct {
	calls    int
	samples  []float32
	rate     int
	language string
	text     string
	err      error
}

func (m *mockRecognizer) Transcribe(ctx context.Context, samples []float32, sampleRate int, language string) (string, error) {
	m.calls++
	m.samples = samples
	m.rate = sampleRate
	m.language = language
	return m.text, m.err
}

type mockCapturer struct {
	rec *audio.Recording
	err error
}

func (m *mockCapturer) Capture(ctx context.Context, d time.Duration) (*audio.Recording, error) {
	return m.rec, m.err
}

func TestRunEndToEnd(t *testing.T) {
	cfg := audio.CaptureConfig{SampleRate: 48000, Channels: 2, Encoding: audio.EncodingInt16}
	host := audiotest.NewHost(cfg)
	clock := audiotest.NewClock()
	host.OnStart = func(h audio.StreamHandler) {
		for _, block := range audiotest.Int16Blocks(audiotest.Tone(48000, 2), 2, 1024) {
			h.OnData(block)
		}
	}
	clock.Fire()

	stt := &mockRecognizer{text: "hello there"}
	p := New(Config{
		Capturer:   audio.NewCapturer(host, zerolog.Nop(), audio.WithClock(clock)),
		Recognizer: stt,
		Language:   "en",
		Logger:     zerolog.Nop(),
	})

	res, err := p.Run(context.Background(), time.Second)
	require.NoError(t, err)

	assert.Equal(t, "hello there", res.Text)
	assert.Equal(t, cfg, res.Capture)
	assert.Equal(t, 48000, res.Frames)
	assert.Equal(t, 16000, res.Resampled)
	assert.NotEqual(t, uuid.Nil, res.ID)

	assert.Equal(t, 1, stt.calls)
	assert.Len(t, stt.samples, 16000)
	assert.Equal(t, 16000, stt.rate)
	assert.Equal(t, "en", stt.language)
}

func TestRunCaptureErrorSkipsRecognizer(t *testing.T) {
	stt := &mockRecognizer{}
	p := New(Config{
		Capturer:   &mockCapturer{err: audio.ErrDeviceUnavailable},
		Recognizer: stt,
		Logger:     zerolog.Nop(),
	})

	res, err := p.Run(context.Background(), time.Second)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, audio.ErrDeviceUnavailable)
	assert.Zero(t, stt.calls)
}

func TestRunRecognizerError(t *testing.T) {
	rec := &audio.Recording{
		Config: audio.CaptureConfig{SampleRate: 16000, Channels: 1, Encoding: audio.EncodingInt16},
		Data:   []byte{0, 0, 1, 0},
	}
	boom := errors.New("model crashed")
	p := New(Config{
		Capturer:   &mockCapturer{rec: rec},
		Recognizer: &mockRecognizer{err: boom},
		Logger:     zerolog.Nop(),
	})

	_, err := p.Run(context.Background(), time.Second)
	assert.ErrorIs(t, err, boom)
}

func TestRunPassesNativeRateThrough(t *testing.T) {
	rec := &audio.Recording{
		Config: audio.CaptureConfig{SampleRate: 16000, Channels: 1, Encoding: audio.EncodingFloat32},
		Data:   []byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0},
	}
	stt := &mockRecognizer{}
	p := New(Config{
		Capturer:   &mockCapturer{rec: rec},
		Recognizer: stt,
		Logger:     zerolog.Nop(),
	})

	res, err := p.Run(context.Background(), time.Second)
	require.NoError(t, err)

	assert.Equal(t, []float32{1, 0}, stt.samples)
	assert.Equal(t, 2, res.Resampled)
}

func TestProcessEmptyRecording(t *testing.T) {
	p := New(Config{Logger: zerolog.Nop()})

	out := p.Process(&audio.Recording{
		Config: audio.CaptureConfig{SampleRate: 44100, Channels: 2, Encoding: audio.EncodingInt16},
	})
	assert.Empty(t, out)
}
