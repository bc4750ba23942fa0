package audio

// Resample converts a mono signal from srcRate to dstRate by linear
// interpolation between neighbouring input samples.
//
// There is no anti-aliasing filter. The output has ceil(len*dst/src)
// samples; output n reads input position n*src/dst, and the right-hand
// neighbour is clamped to the last input sample. A zero rate or empty
// input yields an empty signal, equal rates yield a copy.
func Resample(signal []float32, srcRate, dstRate int) []float32 {
	if srcRate <= 0 || dstRate <= 0 || len(signal) == 0 {
		return []float32{}
	}
	if srcRate == dstRate {
		out := make([]float32, len(signal))
		copy(out, signal)
		return out
	}

	n := int64(len(signal))
	src, dst := int64(srcRate), int64(dstRate)
	outLen := ceilDiv(n*dst, src)
	last := n - 1

	out := make([]float32, outLen)
	for i := int64(0); i < outLen; i++ {
		num := i * src
		i0 := num / dst
		if i0 > last {
			i0 = last
		}
		i1 := i0 + 1
		if i1 > last {
			i1 = last
		}
		frac := float32(float64(num-i0*dst) / float64(dst))
		out[i] = signal[i0]*(1-frac) + signal[i1]*frac
	}
	return out
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
