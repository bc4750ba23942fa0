package audio

import "fmt"

// Encoding is the binary representation of one captured sample.
type Encoding int

const (
	EncodingInt16 Encoding = iota + 1
	EncodingUInt16
	EncodingFloat32
)

// Width returns the number of bytes one sample occupies, or 0 for an
// unknown encoding.
func (e Encoding) Width() int {
	switch e {
	case EncodingInt16, EncodingUInt16:
		return 2
	case EncodingFloat32:
		return 4
	default:
		return 0
	}
}

// Valid reports whether e is one of the encodings the normalizer decodes.
func (e Encoding) Valid() bool {
	return e.Width() != 0
}

func (e Encoding) String() string {
	switch e {
	case EncodingInt16:
		return "int16"
	case EncodingUInt16:
		return "uint16"
	case EncodingFloat32:
		return "float32"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// ParseEncoding maps a config value to an Encoding. "auto" and the empty
// string select Float32.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "auto", "float32", "f32":
		return EncodingFloat32, nil
	case "int16", "i16":
		return EncodingInt16, nil
	case "uint16", "u16":
		return EncodingUInt16, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, s)
	}
}

// CaptureConfig is the format negotiated with the input device for one
// capture session.
type CaptureConfig struct {
	SampleRate int
	Channels   int
	Encoding   Encoding
}

// FrameSize returns the number of bytes in one interleaved frame.
func (c CaptureConfig) FrameSize() int {
	return c.Channels * c.Encoding.Width()
}

func (c CaptureConfig) validate() error {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return fmt.Errorf("%w: rate=%d channels=%d", ErrConfigNegotiation, c.SampleRate, c.Channels)
	}
	if !c.Encoding.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, c.Encoding)
	}
	return nil
}

// Recording is the outcome of one capture session. Data holds interleaved
// little-endian samples in Config.Encoding.
type Recording struct {
	Config  CaptureConfig
	Data    []byte
	Dropped int
}

// Frames returns the number of complete frames in the recording.
func (r *Recording) Frames() int {
	fs := r.Config.FrameSize()
	if fs == 0 {
		return 0
	}
	return len(r.Data) / fs
}

// AudioDevice represents an audio input device
type AudioDevice struct {
	ID      string
	Name    string
	Default bool
	Config  CaptureConfig
}

// StreamHandler receives blocks and runtime errors from an open stream.
// Both functions run on the audio thread.
type StreamHandler struct {
	OnData  func(block []byte)
	OnError func(err error)
}

// Stream is an open input stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Host is the platform audio stack.
type Host interface {
	// DefaultInputDevice returns the default input device with its
	// default configuration, or ErrDeviceUnavailable.
	DefaultInputDevice() (*AudioDevice, error)
	// OpenInputStream opens dev in its negotiated configuration.
	OpenInputStream(dev *AudioDevice, h StreamHandler) (Stream, error)
	ListDevices() ([]AudioDevice, error)
	Close() error
}
