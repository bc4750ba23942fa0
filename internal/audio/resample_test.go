package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResampleSameRateCopies(t *testing.T) {
	input := []float32{0.1, -0.2, 0.3}

	for _, rate := range []int{1, 8000, 16000, 48000} {
		got := Resample(input, rate, rate)
		assert.Equal(t, input, got)
	}

	got := Resample(input, 16000, 16000)
	got[0] = 9
	assert.Equal(t, float32(0.1), input[0], "input must not share storage with output")
}

func TestResampleDegenerate(t *testing.T) {
	input := []float32{0.1, 0.2}

	assert.Empty(t, Resample(input, 0, 16000))
	assert.Empty(t, Resample(input, 16000, 0))
	assert.Empty(t, Resample(nil, 8000, 16000))
	assert.Empty(t, Resample([]float32{}, 48000, 16000))
}

func TestResampleLength(t *testing.T) {
	tests := []struct {
		name     string
		inLen    int
		src, dst int
		want     int
	}{
		{"upsample x2", 4, 8000, 16000, 8},
		{"downsample x3", 48000, 48000, 16000, 16000},
		{"downsample rounds up", 10, 48000, 16000, 4},
		{"44.1k to 16k", 44100, 44100, 16000, 16000},
		{"44.1k odd length", 441, 44100, 16000, 160},
		{"single sample", 1, 22050, 16000, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resample(make([]float32, tt.inLen), tt.src, tt.dst)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestResampleInterpolation(t *testing.T) {
	input := []float32{0.0, 1.0, 0.0, -1.0}

	got := Resample(input, 4, 8)

	require.Len(t, got, 8)
	want := []float32{0.0, 0.5, 1.0, 0.5, 0.0, -0.5, -1.0, -1.0}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-6, "sample %d", i)
	}
}

func TestResampleDownsamplePicksSourceSamples(t *testing.T) {
	input := []float32{0, 1, 2, 3, 4, 5, 6, 7, 8}

	got := Resample(input, 3, 1)

	assert.Equal(t, []float32{0, 3, 6}, got)
}
