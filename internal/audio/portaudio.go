package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gordonklaus/portaudio"
	"github.com/petems/whispr/internal/config"
)

const framesPerBuffer = 512

type portAudioHost struct {
	cfg config.AudioConfig
}

// New initializes PortAudio and returns it as a Host. The device's
// default sample rate and channel count are used as-is; the sample
// encoding comes from cfg.Encoding since PortAudio converts to whatever
// the stream asks for.
func New(cfg config.AudioConfig) (Host, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &portAudioHost{cfg: cfg}, nil
}

func (p *portAudioHost) DefaultInputDevice() (*AudioDevice, error) {
	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if device == nil || device.MaxInputChannels < 1 {
		return nil, ErrDeviceUnavailable
	}

	enc, err := ParseEncoding(p.cfg.Encoding)
	if err != nil {
		return nil, err
	}
	dev := p.describe(device, true)
	dev.Config.Encoding = enc
	return &dev, nil
}

func (p *portAudioHost) describe(d *portaudio.DeviceInfo, isDefault bool) AudioDevice {
	channels := d.MaxInputChannels
	if p.cfg.MaxChannels > 0 && channels > p.cfg.MaxChannels {
		channels = p.cfg.MaxChannels
	}
	return AudioDevice{
		ID:      d.Name,
		Name:    d.Name,
		Default: isDefault,
		Config: CaptureConfig{
			SampleRate: int(math.Round(d.DefaultSampleRate)),
			Channels:   channels,
			Encoding:   EncodingFloat32,
		},
	}
}

func (p *portAudioHost) lookup(id string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == id && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: device not found: %s", ErrDeviceUnavailable, id)
}

func (p *portAudioHost) OpenInputStream(dev *AudioDevice, h StreamHandler) (Stream, error) {
	info, err := p.lookup(dev.ID)
	if err != nil {
		return nil, err
	}

	cfg := dev.Config
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: cfg.Channels,
			Latency:  info.DefaultLowInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: framesPerBuffer,
	}

	report := func(flags portaudio.StreamCallbackFlags) {
		if h.OnError == nil {
			return
		}
		if flags&portaudio.InputOverflow != 0 {
			h.OnError(&StreamRuntimeError{Reason: "input overflow"})
		}
		if flags&portaudio.InputUnderflow != 0 {
			h.OnError(&StreamRuntimeError{Reason: "input underflow"})
		}
	}

	var callback interface{}
	switch cfg.Encoding {
	case EncodingInt16:
		callback = func(in []int16, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			report(flags)
			h.OnData(appendInt16LE(nil, in))
		}
	case EncodingUInt16:
		callback = func(in []int16, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			report(flags)
			h.OnData(appendUInt16LE(nil, in))
		}
	case EncodingFloat32:
		callback = func(in []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			report(flags)
			h.OnData(appendFloat32LE(nil, in))
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, cfg.Encoding)
	}

	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	return stream, nil
}

func (p *portAudioHost) ListDevices() ([]AudioDevice, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	result := make([]AudioDevice, 0, len(devices))
	defaultDevice, _ := portaudio.DefaultInputDevice()

	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			result = append(result, p.describe(d, d == defaultDevice))
		}
	}

	return result, nil
}

func (p *portAudioHost) Close() error {
	return portaudio.Terminate()
}

func appendInt16LE(dst []byte, in []int16) []byte {
	if dst == nil {
		dst = make([]byte, 0, len(in)*2)
	}
	for _, s := range in {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(s))
	}
	return dst
}

// appendUInt16LE stores signed samples as offset-binary unsigned ones.
func appendUInt16LE(dst []byte, in []int16) []byte {
	if dst == nil {
		dst = make([]byte, 0, len(in)*2)
	}
	for _, s := range in {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(s)^0x8000)
	}
	return dst
}

func appendFloat32LE(dst []byte, in []float32) []byte {
	if dst == nil {
		dst = make([]byte, 0, len(in)*4)
	}
	for _, s := range in {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(s))
	}
	return dst
}
