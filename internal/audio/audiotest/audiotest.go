// Package audiotest provides an in-memory audio host and a manual clock
// for exercising capture without hardware.
package audiotest

import (
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/petems/whispr/internal/audio"
)

// Clock is a manually driven audio.Clock. After returns a channel that
// only fires when Fire is called.
type Clock struct {
	mu    sync.Mutex
	now   time.Time
	fired chan time.Time
}

// NewClock returns a Clock set to a fixed instant.
func NewClock() *Clock {
	return &Clock{
		now:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		fired: make(chan time.Time, 1),
	}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) After(time.Duration) <-chan time.Time {
	return c.fired
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Fire releases the pending After channel. It may be called before the
// capture starts waiting.
func (c *Clock) Fire() {
	c.fired <- c.Now()
}

// Host is a fake audio.Host. OnOpen runs inside OpenInputStream and
// OnStart runs synchronously inside Stream.Start with the handler the
// capturer registered.
type Host struct {
	Device    *audio.AudioDevice
	DeviceErr error
	OpenErr   error
	StartErr  error
	OnOpen    func()
	OnStart   func(h audio.StreamHandler)

	mu      sync.Mutex
	streams []*Stream
}

// NewHost returns a Host with a default device in cfg.
func NewHost(cfg audio.CaptureConfig) *Host {
	return &Host{
		Device: &audio.AudioDevice{ID: "fake", Name: "Fake Microphone", Default: true, Config: cfg},
	}
}

func (h *Host) DefaultInputDevice() (*audio.AudioDevice, error) {
	if h.DeviceErr != nil {
		return nil, h.DeviceErr
	}
	if h.Device == nil {
		return nil, audio.ErrDeviceUnavailable
	}
	dev := *h.Device
	return &dev, nil
}

func (h *Host) OpenInputStream(dev *audio.AudioDevice, sh audio.StreamHandler) (audio.Stream, error) {
	if h.OnOpen != nil {
		h.OnOpen()
	}
	if h.OpenErr != nil {
		return nil, h.OpenErr
	}
	s := &Stream{host: h, handler: sh}
	h.mu.Lock()
	h.streams = append(h.streams, s)
	h.mu.Unlock()
	return s, nil
}

func (h *Host) ListDevices() ([]audio.AudioDevice, error) {
	if h.Device == nil {
		return nil, nil
	}
	return []audio.AudioDevice{*h.Device}, nil
}

func (h *Host) Close() error { return nil }

// Streams returns every stream opened so far.
func (h *Host) Streams() []*Stream {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Stream(nil), h.streams...)
}

// Stream records its lifecycle calls.
type Stream struct {
	host    *Host
	handler audio.StreamHandler

	mu      sync.Mutex
	Started bool
	Stopped bool
	Closed  bool
}

func (s *Stream) Start() error {
	if s.host.StartErr != nil {
		return s.host.StartErr
	}
	s.mu.Lock()
	s.Started = true
	s.mu.Unlock()
	if s.host.OnStart != nil {
		s.host.OnStart(s.handler)
	}
	return nil
}

func (s *Stream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Started {
		return errors.New("stream not started")
	}
	s.Stopped = true
	return nil
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// Int16Blocks splits frames of interleaved int16 samples into
// little-endian blocks of framesPerBlock frames.
func Int16Blocks(samples []int16, channels, framesPerBlock int) [][]byte {
	step := channels * framesPerBlock
	var blocks [][]byte
	for start := 0; start < len(samples); start += step {
		end := start + step
		if end > len(samples) {
			end = len(samples)
		}
		block := make([]byte, 0, (end-start)*2)
		for _, s := range samples[start:end] {
			block = binary.LittleEndian.AppendUint16(block, uint16(s))
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// Tone returns frames*channels int16 samples where every channel of
// frame i holds the same value, cycling through a short ramp.
func Tone(frames, channels int) []int16 {
	out := make([]int16, 0, frames*channels)
	for i := 0; i < frames; i++ {
		v := int16((i%64)*512 - 16384)
		for c := 0; c < channels; c++ {
			out = append(out, v)
		}
	}
	return out
}
