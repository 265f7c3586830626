package baseline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBaseline(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSkipsHeaderAndMalformedRows(t *testing.T) {
	path := writeBaseline(t, `id,timestamp,ppg,ecg
a,100,70,71
b,not-a-number,0,0
c,600,72,73
`)
	b, err := Load(path, 1, 0.001, 0)
	require.NoError(t, err)
	assert.Len(t, b.data, 2)
}

func TestReplayAggregatesOnSamplingCadence(t *testing.T) {
	path := writeBaseline(t, `a,100,70,71
b,600,72,73
c,1100,74,75
d,5000,90,91
`)
	b, err := Load(path, 1, 0.001, 0)
	require.NoError(t, err)

	// Consume the first second of reference data, then hit the tick.
	b.ProcessFrame(500)
	b.ProcessFrame(1200)

	ppg, ecg := b.Current()
	assert.InDelta(t, 72, ppg, 1e-9) // mean of 70, 72, 74
	assert.InDelta(t, 73, ecg, 1e-9)

	// The far-future row is still pending.
	assert.Equal(t, 3, b.index)
}

func TestReplayTimeOffset(t *testing.T) {
	path := writeBaseline(t, `a,1000100,80,81
`)
	b, err := Load(path, 1, 0.001, 1000000)
	require.NoError(t, err)

	b.ProcessFrame(50)  // reference clock 1000050: nothing consumed
	assert.Equal(t, 0, b.index)

	b.ProcessFrame(1500) // reference clock 1001500: row consumed, tick fired
	ppg, _ := b.Current()
	assert.InDelta(t, 80, ppg, 1e-9)
}
