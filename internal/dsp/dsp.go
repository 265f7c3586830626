// Package dsp holds the numeric kernels of the rPPG pipeline: window
// normalization, rescan-step removal, smoothness-priors detrending, moving
// average and Butterworth-masked bandpass filtering, DFT helpers and the
// PCA projection used by the pca extractor.
//
// Signals are column vectors ([]float64) or N×C windows ([][]float64, one
// row per sample). Every kernel returns a freshly allocated result; inputs
// are never written to.
package dsp

import "math"

// Mean returns the arithmetic mean of x, 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// MeanStdDev returns mean and population standard deviation of x.
func MeanStdDev(x []float64) (mean, std float64) {
	mean = Mean(x)
	if len(x) == 0 {
		return 0, 0
	}
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(x)))
}

// MinMax returns the extrema of x. For an empty slice both are 0.
func MinMax(x []float64) (min, max float64) {
	if len(x) == 0 {
		return 0, 0
	}
	min, max = x[0], x[0]
	for _, v := range x[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Column extracts column j of an N×C window as a fresh vector.
func Column(x [][]float64, j int) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = row[j]
	}
	return out
}

// cloneMatrix deep-copies an N×C window.
func cloneMatrix(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
