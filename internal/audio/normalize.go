package audio

import (
	"encoding/binary"
	"math"
)

const (
	int16Scale  = 32767.0
	uint16Scale = 32768.0
)

// Normalize decodes interleaved little-endian samples and downmixes them
// to one channel in roughly [-1, 1].
//
// Int16 divides by 32767 and clamps at -1 so that -32768 maps to -1.
// UInt16 maps (v-32768)/32768. Float32 passes through. Bytes that do not
// form a whole sample, and samples that do not form a whole frame, are
// ignored.
func Normalize(raw []byte, channels int, enc Encoding) []float32 {
	if channels <= 0 || !enc.Valid() {
		return nil
	}
	samples := decode(raw, enc)
	frames := len(samples) / channels
	return downmixInterleaved(samples, channels, frames)
}

func decode(raw []byte, enc Encoding) []float32 {
	width := enc.Width()
	n := len(raw) / width
	out := make([]float32, n)

	switch enc {
	case EncodingInt16:
		for i := range out {
			v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
			out[i] = decodeInt16(v)
		}
	case EncodingUInt16:
		for i := range out {
			v := binary.LittleEndian.Uint16(raw[i*2:])
			out[i] = float32((float64(v) - uint16Scale) / uint16Scale)
		}
	case EncodingFloat32:
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	}
	return out
}

func decodeInt16(v int16) float32 {
	f := float32(float64(v) / int16Scale)
	if f < -1 {
		return -1
	}
	return f
}

// downmixInterleaved averages each frame of an interleaved buffer into a
// new mono slice of length frames.
func downmixInterleaved(samples []float32, channels, frames int) []float32 {
	mono := make([]float32, frames)
	if channels == 1 {
		copy(mono, samples[:frames])
		return mono
	}

	for f := 0; f < frames; f++ {
		var sum float32
		frame := samples[f*channels : (f+1)*channels]
		for _, s := range frame {
			sum += s
		}
		mono[f] = sum / float32(channels)
	}
	return mono
}
