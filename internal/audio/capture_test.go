package audio_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petems/whispr/internal/audio"
	"github.com/petems/whispr/internal/audio/audiotest"
)

func newCapturer(host audio.Host, clock *audiotest.Clock) *audio.Capturer {
	return audio.NewCapturer(host, zerolog.Nop(), audio.WithClock(clock))
}

func TestCaptureEndToEnd48kStereo(t *testing.T) {
	cfg := audio.CaptureConfig{SampleRate: 48000, Channels: 2, Encoding: audio.EncodingInt16}
	host := audiotest.NewHost(cfg)
	clock := audiotest.NewClock()

	samples := audiotest.Tone(48000, 2)
	host.OnStart = func(h audio.StreamHandler) {
		for _, block := range audiotest.Int16Blocks(samples, 2, 480) {
			h.OnData(block)
			clock.Advance(10 * time.Millisecond)
		}
	}
	clock.Fire()

	rec, err := newCapturer(host, clock).Capture(context.Background(), time.Second)
	require.NoError(t, err)

	assert.Equal(t, cfg, rec.Config)
	assert.Equal(t, 48000, rec.Frames())

	mono := audio.Normalize(rec.Data, rec.Config.Channels, rec.Config.Encoding)
	require.Len(t, mono, 48000)

	out := audio.Resample(mono, rec.Config.SampleRate, 16000)
	assert.Len(t, out, 16000)

	streams := host.Streams()
	require.Len(t, streams, 1)
	assert.True(t, streams[0].Stopped)
	assert.True(t, streams[0].Closed)
}

func TestCaptureIgnoresBlocksAfterDuration(t *testing.T) {
	cfg := audio.CaptureConfig{SampleRate: 8000, Channels: 1, Encoding: audio.EncodingInt16}
	host := audiotest.NewHost(cfg)
	clock := audiotest.NewClock()

	host.OnStart = func(h audio.StreamHandler) {
		h.OnData([]byte{1, 0, 2, 0})
		clock.Advance(time.Second)
		h.OnData([]byte{3, 0, 4, 0})
	}
	clock.Fire()

	rec, err := newCapturer(host, clock).Capture(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2, 0}, rec.Data)
}

func TestCaptureStreamErrorsAreNotFatal(t *testing.T) {
	cfg := audio.CaptureConfig{SampleRate: 16000, Channels: 1, Encoding: audio.EncodingFloat32}
	host := audiotest.NewHost(cfg)
	clock := audiotest.NewClock()

	host.OnStart = func(h audio.StreamHandler) {
		h.OnData([]byte{0, 0, 0, 0})
		h.OnError(&audio.StreamRuntimeError{Reason: "input overflow"})
		h.OnData([]byte{0, 0, 0x80, 0x3f})
	}
	clock.Fire()

	rec, err := newCapturer(host, clock).Capture(context.Background(), time.Second)
	require.NoError(t, err)

	assert.Equal(t, []float32{0, 1}, audio.Normalize(rec.Data, 1, audio.EncodingFloat32))
}

func TestCaptureSetupErrors(t *testing.T) {
	tests := []struct {
		name    string
		host    func() *audiotest.Host
		wantErr error
	}{
		{
			name: "no device",
			host: func() *audiotest.Host {
				return &audiotest.Host{}
			},
			wantErr: audio.ErrDeviceUnavailable,
		},
		{
			name: "host failure is reported as unavailable device",
			host: func() *audiotest.Host {
				h := audiotest.NewHost(audio.CaptureConfig{})
				h.DeviceErr = errors.New("backend exploded")
				return h
			},
			wantErr: audio.ErrDeviceUnavailable,
		},
		{
			name: "zero sample rate",
			host: func() *audiotest.Host {
				return audiotest.NewHost(audio.CaptureConfig{SampleRate: 0, Channels: 1, Encoding: audio.EncodingInt16})
			},
			wantErr: audio.ErrConfigNegotiation,
		},
		{
			name: "zero channels",
			host: func() *audiotest.Host {
				return audiotest.NewHost(audio.CaptureConfig{SampleRate: 44100, Channels: 0, Encoding: audio.EncodingInt16})
			},
			wantErr: audio.ErrConfigNegotiation,
		},
		{
			name: "unknown encoding",
			host: func() *audiotest.Host {
				return audiotest.NewHost(audio.CaptureConfig{SampleRate: 44100, Channels: 1, Encoding: audio.Encoding(42)})
			},
			wantErr: audio.ErrUnsupportedEncoding,
		},
		{
			name: "encoding rejected by host",
			host: func() *audiotest.Host {
				h := audiotest.NewHost(audio.CaptureConfig{})
				h.DeviceErr = audio.ErrUnsupportedEncoding
				return h
			},
			wantErr: audio.ErrUnsupportedEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := tt.host()
			rec, err := newCapturer(host, audiotest.NewClock()).Capture(context.Background(), time.Second)

			assert.Nil(t, rec)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, host.Streams(), "no stream may be opened after a setup error")
		})
	}
}

func TestCaptureStartFailureClosesStream(t *testing.T) {
	host := audiotest.NewHost(audio.CaptureConfig{SampleRate: 16000, Channels: 1, Encoding: audio.EncodingInt16})
	host.StartErr = errors.New("device busy")

	_, err := newCapturer(host, audiotest.NewClock()).Capture(context.Background(), time.Second)
	require.Error(t, err)

	streams := host.Streams()
	require.Len(t, streams, 1)
	assert.True(t, streams[0].Closed)
}

func TestCaptureOpenFailure(t *testing.T) {
	host := audiotest.NewHost(audio.CaptureConfig{SampleRate: 16000, Channels: 1, Encoding: audio.EncodingInt16})
	host.OpenErr = errors.New("invalid device")

	_, err := newCapturer(host, audiotest.NewClock()).Capture(context.Background(), time.Second)
	assert.ErrorContains(t, err, "invalid device")
}

func TestCaptureCancelled(t *testing.T) {
	host := audiotest.NewHost(audio.CaptureConfig{SampleRate: 16000, Channels: 1, Encoding: audio.EncodingInt16})
	ctx, cancel := context.WithCancel(context.Background())

	host.OnStart = func(h audio.StreamHandler) {
		h.OnData([]byte{1, 0})
		cancel()
		h.OnData([]byte{2, 0})
	}

	rec, err := newCapturer(host, audiotest.NewClock()).Capture(ctx, time.Second)
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, context.Canceled)

	streams := host.Streams()
	require.Len(t, streams, 1)
	assert.True(t, streams[0].Stopped)
	assert.True(t, streams[0].Closed)
}

func TestCaptureRejectsNonPositiveDuration(t *testing.T) {
	host := audiotest.NewHost(audio.CaptureConfig{SampleRate: 16000, Channels: 1, Encoding: audio.EncodingInt16})

	_, err := newCapturer(host, audiotest.NewClock()).Capture(context.Background(), 0)
	assert.Error(t, err)
	assert.Empty(t, host.Streams())
}

func TestCapturerDevices(t *testing.T) {
	cfg := audio.CaptureConfig{SampleRate: 44100, Channels: 1, Encoding: audio.EncodingFloat32}
	host := audiotest.NewHost(cfg)

	devices, err := audio.NewCapturer(host, zerolog.Nop()).Devices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.True(t, devices[0].Default)
	assert.Equal(t, cfg, devices[0].Config)
}

func TestCaptureWindowStartsAtStreamStart(t *testing.T) {
	cfg := audio.CaptureConfig{SampleRate: 16000, Channels: 1, Encoding: audio.EncodingInt16}
	host := audiotest.NewHost(cfg)
	clock := audiotest.NewClock()

	// Opening the device takes longer than the whole capture window.
	host.OnOpen = func() { clock.Advance(2 * time.Second) }
	host.OnStart = func(h audio.StreamHandler) {
		h.OnData([]byte{1, 0, 2, 0})
		clock.Advance(500 * time.Millisecond)
		h.OnData([]byte{3, 0})
	}
	clock.Fire()

	rec, err := newCapturer(host, clock).Capture(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2, 0, 3, 0}, rec.Data)
}
