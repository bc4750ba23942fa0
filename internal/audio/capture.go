package audio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Clock is the time source used to gate a capture window.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Capturer records fixed-length utterances from the host's default input
// device in whatever format the device offers.
type Capturer struct {
	host  Host
	log   zerolog.Logger
	clock Clock
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(cp *Capturer) { cp.clock = c }
}

// NewCapturer creates a Capturer on top of host.
func NewCapturer(host Host, log zerolog.Logger, opts ...Option) *Capturer {
	c := &Capturer{
		host:  host,
		log:   log,
		clock: realClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Devices lists the host's input devices.
func (c *Capturer) Devices() ([]AudioDevice, error) {
	return c.host.ListDevices()
}

// Capture records for duration and returns the negotiated config together
// with the raw bytes. It blocks until the duration has elapsed or ctx is
// done; on cancellation the stream is torn down and ctx.Err() returned.
//
// Stream errors reported while recording are logged and do not end the
// capture.
func (c *Capturer) Capture(ctx context.Context, duration time.Duration) (*Recording, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("capture duration must be positive, got %s", duration)
	}

	dev, err := c.host.DefaultInputDevice()
	if err != nil {
		if isSetupError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if dev == nil {
		return nil, ErrDeviceUnavailable
	}
	cfg := dev.Config
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log := c.log.With().
		Str("device", dev.Name).
		Int("sample_rate", cfg.SampleRate).
		Int("channels", cfg.Channels).
		Str("encoding", cfg.Encoding.String()).
		Logger()

	// Created right before Start; the window excludes open latency.
	var buf *SampleBuffer
	handler := StreamHandler{
		OnData: func(block []byte) {
			if ctx.Err() != nil {
				return
			}
			buf.Append(block)
		},
		OnError: func(err error) {
			log.Warn().Err(err).Msg("Audio stream error")
		},
	}

	stream, err := c.host.OpenInputStream(dev, handler)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}

	buf = NewSampleBuffer(duration, c.clock.Now)
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}
	log.Debug().Dur("duration", duration).Msg("Capture started")

	var waitErr error
	select {
	case <-c.clock.After(duration):
	case <-ctx.Done():
		waitErr = ctx.Err()
	}

	if err := stream.Stop(); err != nil {
		log.Warn().Err(err).Msg("Failed to stop input stream")
	}
	if err := stream.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close input stream")
	}

	data := buf.Take()
	if waitErr != nil {
		log.Info().Msg("Capture cancelled")
		return nil, waitErr
	}

	rec := &Recording{
		Config:  cfg,
		Data:    data,
		Dropped: buf.Dropped(),
	}
	log.Debug().
		Int("bytes", len(data)).
		Int("frames", rec.Frames()).
		Int("dropped_blocks", rec.Dropped).
		Msg("Capture finished")
	return rec, nil
}

func isSetupError(err error) bool {
	return errors.Is(err, ErrDeviceUnavailable) ||
		errors.Is(err, ErrConfigNegotiation) ||
		errors.Is(err, ErrUnsupportedEncoding)
}
