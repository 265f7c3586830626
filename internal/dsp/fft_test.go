package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeToFrequencyFullLength(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	spectrum := TimeToFrequency(x)
	assert.Len(t, spectrum, len(x))
}

func TestMagnitudeSpectrumSinusoidPeak(t *testing.T) {
	const n = 64
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Cos(2 * math.Pi * 5 * float64(i) / n)
	}
	mag := MagnitudeSpectrum(x)
	require.Len(t, mag, n)

	_, idx, ok := MaskedPeak(mag, 1, n/2)
	require.True(t, ok)
	assert.Equal(t, 5, idx)
	// The conjugate bin mirrors the peak.
	assert.InDelta(t, mag[5], mag[n-5], 1e-9)
}

func TestFrequencyToTimeRoundTrip(t *testing.T) {
	x := []float64{0.5, -1, 3, 2.5, -0.25, 0, 1, 4}
	got := FrequencyToTime(TimeToFrequency(x))
	require.Len(t, got, len(x))
	for i := range x {
		assert.InDelta(t, x[i], got[i], 1e-9)
	}
}

func TestDFTNonPowerOfTwoLength(t *testing.T) {
	// Window lengths track the frame count, so arbitrary N must work.
	const n = 153
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 6 * float64(i) / n)
	}
	mag := MagnitudeSpectrum(x)
	_, idx, ok := MaskedPeak(mag, 1, n/2)
	require.True(t, ok)
	assert.Equal(t, 6, idx)
}

func TestEmptyInput(t *testing.T) {
	assert.Nil(t, TimeToFrequency(nil))
	assert.Nil(t, FrequencyToTime(nil))
	assert.Empty(t, MagnitudeSpectrum(nil))
}
