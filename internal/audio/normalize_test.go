package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownmixInterleavedMono(t *testing.T) {
	input := []float32{0.1, 0.2, 0.3, 0.4}
	got := downmixInterleaved(input, 1, len(input))

	if len(got) != len(input) {
		t.Fatalf("expected %d samples, got %d", len(input), len(got))
	}
	for i := range input {
		if got[i] != input[i] {
			t.Fatalf("expected element %d to be %f, got %f", i, input[i], got[i])
		}
	}

	if &got[0] == &input[0] {
		t.Fatal("expected mono result to be copied into a new slice")
	}
}

func TestDownmixInterleavedStereo(t *testing.T) {
	frames := 4
	input := []float32{
		0.0, 1.0,
		0.5, 0.5,
		1.0, 0.0,
		-0.5, 0.5,
	}

	expected := []float32{
		0.5, 0.5, 0.5, 0.0,
	}

	got := downmixInterleaved(input, 2, frames)
	if len(got) != len(expected) {
		t.Fatalf("expected %d frames, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("frame %d mismatch: expected %f, got %f", i, expected[i], got[i])
		}
	}
}

func TestDownmixInterleavedMoreChannels(t *testing.T) {
	frames := 2
	input := []float32{
		1, 3, 5,
		2, 4, 6,
	}

	expected := []float32{3, 4}

	got := downmixInterleaved(input, 3, frames)
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("frame %d mismatch: expected %f, got %f", i, expected[i], got[i])
		}
	}
}

func TestNormalizeMonoMatchesDecode(t *testing.T) {
	raw := appendInt16LE(nil, []int16{0, 1000, -1000, 32767, -32768})

	got := Normalize(raw, 1, EncodingInt16)
	want := decode(raw, EncodingInt16)

	assert.Equal(t, want, got)
}

func TestNormalizeStereoFloat32(t *testing.T) {
	raw := appendFloat32LE(nil, []float32{1.0, -1.0, 0.5, 0.5})

	got := Normalize(raw, 2, EncodingFloat32)

	assert.Equal(t, []float32{0.0, 0.5}, got)
}

func TestNormalizeInt16Range(t *testing.T) {
	raw := appendInt16LE(nil, []int16{32767, -32768, 0})

	got := Normalize(raw, 1, EncodingInt16)

	require.Len(t, got, 3)
	assert.InDelta(t, 1.0, got[0], 1e-6)
	assert.InDelta(t, -1.0, got[1], 1e-6)
	assert.GreaterOrEqual(t, got[1], float32(-1.0))
	assert.Equal(t, float32(0), got[2])
}

func TestNormalizeUInt16(t *testing.T) {
	raw := []byte{
		0x00, 0x00, // 0
		0x00, 0x80, // 32768
		0xff, 0xff, // 65535
	}

	got := Normalize(raw, 1, EncodingUInt16)

	require.Len(t, got, 3)
	assert.InDelta(t, -1.0, got[0], 1e-6)
	assert.InDelta(t, 0.0, got[1], 1e-6)
	assert.InDelta(t, 32767.0/32768.0, got[2], 1e-6)
}

func TestNormalizeUInt16FromSignedStream(t *testing.T) {
	signed := []int16{-32768, 0, 16384}
	raw := appendUInt16LE(nil, signed)

	got := Normalize(raw, 1, EncodingUInt16)

	require.Len(t, got, 3)
	assert.InDelta(t, -1.0, got[0], 1e-6)
	assert.InDelta(t, 0.0, got[1], 1e-6)
	assert.InDelta(t, 0.5, got[2], 1e-6)
}

func TestNormalizeTruncatedTail(t *testing.T) {
	raw := appendInt16LE(nil, []int16{16384, -16384})
	raw = append(raw, 0x7f)

	got := Normalize(raw, 1, EncodingInt16)

	require.Len(t, got, 2)
	assert.InDelta(t, 16384.0/32767.0, got[0], 1e-6)
	assert.InDelta(t, -16384.0/32767.0, got[1], 1e-6)
}

func TestNormalizeTruncatedFloatTail(t *testing.T) {
	raw := appendFloat32LE(nil, []float32{0.25})
	raw = append(raw, 0x00, 0x00, 0x80)

	got := Normalize(raw, 1, EncodingFloat32)

	assert.Equal(t, []float32{0.25}, got)
}

func TestNormalizeDropsIncompleteFrame(t *testing.T) {
	raw := appendInt16LE(nil, []int16{100, 300, 500})

	got := Normalize(raw, 2, EncodingInt16)

	require.Len(t, got, 1)
	assert.InDelta(t, 200.0/32767.0, got[0], 1e-6)
}

func TestNormalizeInvalidInput(t *testing.T) {
	raw := appendInt16LE(nil, []int16{1, 2})

	assert.Nil(t, Normalize(raw, 0, EncodingInt16))
	assert.Nil(t, Normalize(raw, 1, Encoding(99)))
	assert.Empty(t, Normalize(nil, 2, EncodingFloat32))
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in   string
		want Encoding
	}{
		{"", EncodingFloat32},
		{"auto", EncodingFloat32},
		{"float32", EncodingFloat32},
		{"int16", EncodingInt16},
		{"uint16", EncodingUInt16},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEncoding(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseEncoding("int24")
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}
