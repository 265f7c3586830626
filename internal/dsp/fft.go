package dsp

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// TimeToFrequency computes the full N-point complex DFT of a real signal.
// The full-length transform (not the half-spectrum of a real FFT) keeps bin
// indexing aligned with the window length, which the band limits and the
// BPM conversion depend on.
func TimeToFrequency(x []float64) []complex128 {
	n := len(x)
	if n == 0 {
		return nil
	}
	seq := make([]complex128, n)
	for i, v := range x {
		seq[i] = complex(v, 0)
	}
	fft := fourier.NewCmplxFFT(n)
	dst := fft.Coefficients(nil, seq)
	out := make([]complex128, n)
	copy(out, dst)
	return out
}

// FrequencyToTime computes the inverse DFT, returning the real plane scaled
// back to the original amplitude.
func FrequencyToTime(spectrum []complex128) []float64 {
	n := len(spectrum)
	if n == 0 {
		return nil
	}
	fft := fourier.NewCmplxFFT(n)
	seq := make([]complex128, n)
	copy(seq, spectrum)
	dst := fft.Sequence(nil, seq)
	out := make([]float64, n)
	inv := 1 / float64(n)
	for i, v := range dst {
		out[i] = real(v) * inv
	}
	return out
}

// MagnitudeSpectrum returns |DFT(x)| for all N bins.
func MagnitudeSpectrum(x []float64) []float64 {
	spectrum := TimeToFrequency(x)
	out := make([]float64, len(spectrum))
	for i, v := range spectrum {
		out[i] = cmplx.Abs(v)
	}
	return out
}
