package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskedPeak(t *testing.T) {
	p := []float64{9, 1, 5, 2, 8, 3}

	max, idx, ok := MaskedPeak(p, 1, 4)
	require.True(t, ok)
	assert.Equal(t, 8.0, max)
	assert.Equal(t, 4, idx)

	// Bin 0 dominates only when the band includes it.
	_, idx, ok = MaskedPeak(p, 0, 5)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestMaskedPeakClampsBand(t *testing.T) {
	p := []float64{1, 2, 3}
	max, idx, ok := MaskedPeak(p, 2, 10)
	require.True(t, ok)
	assert.Equal(t, 3.0, max)
	assert.Equal(t, 2, idx)
}

func TestMaskedPeakEmptyBand(t *testing.T) {
	_, _, ok := MaskedPeak(nil, 0, 1)
	assert.False(t, ok)
}

func TestWeightedMeanIndexSpike(t *testing.T) {
	p := make([]float64, 16)
	p[5] = 3
	assert.InDelta(t, 5, WeightedMeanIndex(p, 2, 9), 1e-12)
}

func TestWeightedMeanIndexUniform(t *testing.T) {
	p := make([]float64, 16)
	for i := 2; i <= 6; i++ {
		p[i] = 1
	}
	assert.InDelta(t, 4, WeightedMeanIndex(p, 2, 6), 1e-12)
}

func TestWeightedSquaresMeanIndexSharpensCentroid(t *testing.T) {
	p := make([]float64, 16)
	p[4] = 1
	p[8] = 2

	plain := WeightedMeanIndex(p, 2, 10)
	sharp := WeightedSquaresMeanIndex(p, 2, 10)

	// Quadrupling pulls the centroid toward the dominant bin.
	assert.Greater(t, sharp, plain)
	assert.InDelta(t, 8, sharp, 0.3)
}

func TestWeightedSquaresMeanIndexZeroSpectrum(t *testing.T) {
	p := make([]float64, 8)
	assert.Zero(t, WeightedSquaresMeanIndex(p, 1, 6))
}
