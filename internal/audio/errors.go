package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceUnavailable is returned when the host has no input device.
	ErrDeviceUnavailable = errors.New("no input device available")
	// ErrConfigNegotiation is returned when the device reports no usable
	// configuration.
	ErrConfigNegotiation = errors.New("input config negotiation failed")
	// ErrUnsupportedEncoding is returned for sample encodings other than
	// int16, uint16 and float32.
	ErrUnsupportedEncoding = errors.New("unsupported sample encoding")
)

// StreamRuntimeError is reported by the audio stack while a stream runs.
// It never aborts a capture.
type StreamRuntimeError struct {
	Reason string
}

func (e *StreamRuntimeError) Error() string {
	return fmt.Sprintf("stream error: %s", e.Reason)
}
