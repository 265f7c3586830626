package rppg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLogFormat(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "session")
	log, err := OpenSessionLog(prefix, false)
	require.NoError(t, err)

	log.WriteAggregate(1000, true, 75.4, 74, 77)
	log.WriteSample(1000, true, 75.5)
	log.WriteSample(1033, false, 0)
	log.Close()

	bpm, err := os.ReadFile(prefix + "_bpm.csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(bpm)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "time;face_valid;mean;min;max", lines[0])
	assert.Equal(t, "1000;1;75.4;74;77", lines[1])

	all, err := os.ReadFile(prefix + "_bpmAll.csv")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(all)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "time;face_valid;bpm", lines[0])
	assert.Equal(t, "1000;1;75.5", lines[1])
	assert.Equal(t, "1033;0;0", lines[2])
}

func TestSessionLogTraces(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "trace")
	log, err := OpenSessionLog(prefix, true)
	require.NoError(t, err)
	defer log.Close()

	log.TraceWindow(500, []string{"re", "g"}, [][]float64{{0, 127.5}, {1, 128}})
	data, err := os.ReadFile(prefix + "_signal_500.csv")
	require.NoError(t, err)
	assert.Equal(t, "re;g\n0;127.5\n1;128\n", string(data))

	log.TraceEstimation(500, []float64{9, 1, 5, 2, 8}, 1, 3)
	data, err = os.ReadFile(prefix + "_estimation_500.csv")
	require.NoError(t, err)
	assert.Equal(t, "i;powerSpectrum\n1;1\n2;5\n3;2\n", string(data))
}

func TestSessionLogTracesDisabled(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "quiet")
	log, err := OpenSessionLog(prefix, false)
	require.NoError(t, err)
	defer log.Close()

	log.TraceWindow(500, []string{"g"}, [][]float64{{1}})
	_, err = os.Stat(prefix + "_signal_500.csv")
	assert.True(t, os.IsNotExist(err))
}

func TestSessionLogNilSafe(t *testing.T) {
	var log *SessionLog
	log.WriteAggregate(0, false, 0, 0, 0)
	log.WriteSample(0, false, 0)
	log.Close()
}
