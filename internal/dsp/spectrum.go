package dsp

import "math"

// bandRange clamps the inclusive bin range [low, high] to a spectrum of n
// rows, mirroring the historical mask construction.
func bandRange(low, high, n int) (int, int) {
	lo := low
	if lo > n {
		lo = n
	}
	if lo < 0 {
		lo = 0
	}
	hi := high
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

// MaskedPeak returns the value and index of the maximum of p restricted to
// bins [low, high]. ok is false when the band is empty.
func MaskedPeak(p []float64, low, high int) (max float64, idx int, ok bool) {
	lo, hi := bandRange(low, high, len(p))
	if lo > hi {
		return 0, 0, false
	}
	max, idx, ok = p[lo], lo, true
	for i := lo + 1; i <= hi; i++ {
		if p[i] > max {
			max, idx = p[i], i
		}
	}
	return max, idx, ok
}

// normalizeL1Band rescales p so the band [low, high] has unit L1 norm.
func normalizeL1Band(p []float64, low, high int) []float64 {
	out := append([]float64(nil), p...)
	lo, hi := bandRange(low, high, len(p))
	var norm float64
	for i := lo; i <= hi && i < len(out); i++ {
		norm += math.Abs(out[i])
	}
	if norm == 0 {
		return out
	}
	for i := range out {
		out[i] /= norm
	}
	return out
}

// WeightedMeanIndex returns the band-normalized spectral centroid
// Σ i·p[i] over [low, high].
func WeightedMeanIndex(p []float64, low, high int) float64 {
	a := normalizeL1Band(p, low, high)
	var result float64
	lo, hi := bandRange(low, high, len(a))
	for i := lo; i <= hi; i++ {
		result += a[i] * float64(i)
	}
	return result
}

// WeightedSquaresMeanIndex sharpens the spectrum before taking the
// centroid: L1-normalize over the band, raise to the fourth power,
// L1-normalize again, then Σ i·p[i] over [low, high].
func WeightedSquaresMeanIndex(p []float64, low, high int) float64 {
	a := normalizeL1Band(p, low, high)
	for i := range a {
		a[i] = a[i] * a[i]
	}
	for i := range a {
		a[i] = a[i] * a[i]
	}
	a = normalizeL1Band(a, low, high)
	var result float64
	lo, hi := bandRange(low, high, len(a))
	for i := lo; i <= hi; i++ {
		result += a[i] * float64(i)
	}
	return result
}
