package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
video:
  input: clip.mp4
  width: 1280
  height: 720
pipeline:
  algorithm: xminay
  rescan_frequency: 2
  min_signal_size: 4
  max_signal_size: 8
detector:
  kind: haar
  haar_model_path: models/facefinder
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "clip.mp4", cfg.Video.Input)
	assert.Equal(t, AlgorithmXMinAY, cfg.Pipeline.Algorithm)
	assert.Equal(t, 2.0, cfg.Pipeline.RescanFrequency)
	// Defaults fill unset fields.
	assert.Equal(t, 1.0, cfg.Pipeline.SamplingFrequency)
	assert.Equal(t, 0.001, cfg.Video.TimeBase)
	assert.Equal(t, 1, cfg.Video.Downsample)
	assert.Equal(t, 30, cfg.Video.FPS)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadRejectsInvalidAlgorithm(t *testing.T) {
	_, err := Load(writeConfig(t, `
pipeline:
  algorithm: fourier
detector:
  kind: haar
  haar_model_path: models/facefinder
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rPPG algorithm")
}

func TestLoadRejectsInvalidDetector(t *testing.T) {
	_, err := Load(writeConfig(t, `
detector:
  kind: yolo
  haar_model_path: models/facefinder
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid face detection algorithm")
}

func TestLoadRejectsMinAboveMax(t *testing.T) {
	_, err := Load(writeConfig(t, `
pipeline:
  min_signal_size: 10
  max_signal_size: 5
detector:
  kind: haar
  haar_model_path: models/facefinder
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signal size")
}

func TestValidateRequiresDetectorModel(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
detector:
  kind: deep
`))
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dnn_model_path")

	cfg.Detector.Kind = DetectorHaar
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "haar_model_path")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RPPG_ALGORITHM", "pca")
	t.Setenv("RPPG_DOWNSAMPLE", "3")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, AlgorithmPCA, cfg.Pipeline.Algorithm)
	assert.Equal(t, 3, cfg.Video.Downsample)
}

func TestParseAlgorithm(t *testing.T) {
	for _, s := range []string{"g", "pca", "xminay"} {
		alg, err := ParseAlgorithm(s)
		require.NoError(t, err)
		assert.Equal(t, Algorithm(s), alg)
	}
	_, err := ParseAlgorithm("green")
	assert.Error(t, err)
}

func TestParseFaceDetector(t *testing.T) {
	for _, s := range []string{"haar", "deep"} {
		det, err := ParseFaceDetector(s)
		require.NoError(t, err)
		assert.Equal(t, FaceDetector(s), det)
	}
	_, err := ParseFaceDetector("")
	assert.Error(t, err)
}

func TestLogFilePathEncodesRunParameters(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	cfg.Pipeline.LogPathPrefix = "out/run"

	assert.Equal(t, "out/run_rppg=xminay_facedet=haar_min=4_max=8_ds=1", cfg.LogFilePath())
}
