package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCAComponentPicksPulsatileComponent(t *testing.T) {
	const n = 128
	// One strong sinusoid leaking into all channels with different gains,
	// plus small deterministic wobble so the covariance is full rank.
	x := make([][]float64, n)
	for i := range x {
		pulse := math.Sin(2 * math.Pi * 8 * float64(i) / n)
		x[i] = []float64{
			0.3*pulse + 0.01*math.Cos(2*math.Pi*29*float64(i)/n),
			1.0 * pulse,
			0.5*pulse + 0.01*math.Sin(2*math.Pi*31*float64(i)/n),
		}
	}

	component, pcs, ok := PCAComponent(x, 4, 16)
	require.True(t, ok)
	require.Len(t, component, n)
	require.Len(t, pcs, n)
	require.Len(t, pcs[0], 3)

	// The chosen projection peaks at the pulse frequency.
	mag := MagnitudeSpectrum(component)
	_, idx, found := MaskedPeak(mag, 1, n/2)
	require.True(t, found)
	assert.Equal(t, 8, idx)

	// And correlates almost perfectly with the pulse (sign-agnostic).
	var dot, nc, np float64
	for i := range component {
		pulse := math.Sin(2 * math.Pi * 8 * float64(i) / n)
		dot += component[i] * pulse
		nc += component[i] * component[i]
		np += pulse * pulse
	}
	corr := math.Abs(dot) / math.Sqrt(nc*np)
	assert.Greater(t, corr, 0.95)
}

func TestPCAComponentEmptyInput(t *testing.T) {
	_, _, ok := PCAComponent(nil, 0, 1)
	assert.False(t, ok)
}

func TestPCAComponentFreshAllocation(t *testing.T) {
	x := [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 0}, {0, 1, 1}}
	component, _, ok := PCAComponent(x, 0, 2)
	require.True(t, ok)
	component[0] = 1e9
	assert.Equal(t, 1.0, x[0][0])
}
