package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Algorithm selects the rPPG signal extraction branch.
type Algorithm string

const (
	AlgorithmG      Algorithm = "g"
	AlgorithmPCA    Algorithm = "pca"
	AlgorithmXMinAY Algorithm = "xminay"
)

// ParseAlgorithm validates an rPPG algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AlgorithmG, AlgorithmPCA, AlgorithmXMinAY:
		return Algorithm(s), nil
	}
	return "", fmt.Errorf("invalid rPPG algorithm %q (g, pca, xminay)", s)
}

// FaceDetector selects the face detection path.
type FaceDetector string

const (
	DetectorHaar FaceDetector = "haar"
	DetectorDeep FaceDetector = "deep"
)

// ParseFaceDetector validates a face detector name.
func ParseFaceDetector(s string) (FaceDetector, error) {
	switch FaceDetector(s) {
	case DetectorHaar, DetectorDeep:
		return FaceDetector(s), nil
	}
	return "", fmt.Errorf("invalid face detection algorithm %q (haar, deep)", s)
}

type Config struct {
	Video    VideoConfig    `yaml:"video"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Detector DetectorConfig `yaml:"detector"`
	Baseline BaselineConfig `yaml:"baseline"`
	NATS     NATSConfig     `yaml:"nats"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type VideoConfig struct {
	Input      string  `yaml:"input"` // file path or stream URL; empty means default camera
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	FPS        int     `yaml:"fps"`
	TimeBase   float64 `yaml:"time_base"` // seconds per timestamp tick
	Downsample int     `yaml:"downsample"`
}

type PipelineConfig struct {
	Algorithm         Algorithm `yaml:"algorithm"`
	SamplingFrequency float64   `yaml:"sampling_frequency"` // Hz, aggregate report cadence
	RescanFrequency   float64   `yaml:"rescan_frequency"`   // Hz, full re-detection cadence
	MinSignalSize     int       `yaml:"min_signal_size"`    // seconds
	MaxSignalSize     int       `yaml:"max_signal_size"`    // seconds
	LogPathPrefix     string    `yaml:"log_path_prefix"`
	LogMode           bool      `yaml:"log_mode"` // per-window signal/estimation traces
	GUIMode           bool      `yaml:"gui_mode"` // overlay drawing into the RGB frame
}

type DetectorConfig struct {
	Kind          FaceDetector `yaml:"kind"`
	HaarModelPath string       `yaml:"haar_model_path"` // pigo binary cascade
	DNNModelPath  string       `yaml:"dnn_model_path"`  // ONNX SSD face model
	DNNProtoPath  string       `yaml:"dnn_proto_path"`  // accepted for CLI compatibility; unused with ONNX
	DNNInputName  string       `yaml:"dnn_input_name"`
	DNNOutputName string       `yaml:"dnn_output_name"`
	MaxDetections int          `yaml:"max_detections"`
}

type BaselineConfig struct {
	Path       string `yaml:"path"` // reference BPM CSV; empty disables the comparator
	TimeOffset int64  `yaml:"time_offset"`
}

type NATSConfig struct {
	URL string `yaml:"url"` // empty disables report publishing
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the /metrics endpoint
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from a YAML file and applies environment variable
// overrides. An empty path yields a default config (env overrides still
// apply); CLI flags are merged on top by the caller.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	// Detector model paths are checked in Validate once CLI flags have
	// been merged; a flag may still switch the detector kind.
	if err := cfg.validateParams(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks enum values, cross-field constraints and the model files
// the selected detector needs.
func (c *Config) Validate() error {
	if err := c.validateParams(); err != nil {
		return err
	}
	switch c.Detector.Kind {
	case DetectorHaar:
		if c.Detector.HaarModelPath == "" {
			return fmt.Errorf("haar detector requires haar_model_path")
		}
	case DetectorDeep:
		if c.Detector.DNNModelPath == "" {
			return fmt.Errorf("deep detector requires dnn_model_path")
		}
	}
	return nil
}

func (c *Config) validateParams() error {
	if _, err := ParseAlgorithm(string(c.Pipeline.Algorithm)); err != nil {
		return err
	}
	if _, err := ParseFaceDetector(string(c.Detector.Kind)); err != nil {
		return err
	}
	if c.Pipeline.MinSignalSize > c.Pipeline.MaxSignalSize {
		return fmt.Errorf("max signal size (%d) must be greater or equal min signal size (%d)",
			c.Pipeline.MaxSignalSize, c.Pipeline.MinSignalSize)
	}
	if c.Video.Downsample < 1 {
		return fmt.Errorf("downsample must be >= 1, got %d", c.Video.Downsample)
	}
	if c.Video.TimeBase <= 0 {
		return fmt.Errorf("time_base must be positive, got %g", c.Video.TimeBase)
	}
	return nil
}

// LogFilePath returns the session log prefix with the run parameters baked
// in, matching the historical naming scheme.
func (c *Config) LogFilePath() string {
	return fmt.Sprintf("%s_rppg=%s_facedet=%s_min=%d_max=%d_ds=%d",
		c.Pipeline.LogPathPrefix, c.Pipeline.Algorithm, c.Detector.Kind,
		c.Pipeline.MinSignalSize, c.Pipeline.MaxSignalSize, c.Video.Downsample)
}

func setDefaults(cfg *Config) {
	if cfg.Pipeline.Algorithm == "" {
		cfg.Pipeline.Algorithm = AlgorithmG
	}
	if cfg.Detector.Kind == "" {
		cfg.Detector.Kind = DetectorHaar
	}
	if cfg.Pipeline.SamplingFrequency == 0 {
		cfg.Pipeline.SamplingFrequency = 1
	}
	if cfg.Pipeline.RescanFrequency == 0 {
		cfg.Pipeline.RescanFrequency = 1
	}
	if cfg.Pipeline.MinSignalSize == 0 {
		cfg.Pipeline.MinSignalSize = 5
	}
	if cfg.Pipeline.MaxSignalSize == 0 {
		cfg.Pipeline.MaxSignalSize = 5
	}
	if cfg.Pipeline.LogPathPrefix == "" {
		cfg.Pipeline.LogPathPrefix = "rppg"
	}
	if cfg.Video.Width == 0 {
		cfg.Video.Width = 640
	}
	if cfg.Video.Height == 0 {
		cfg.Video.Height = 480
	}
	if cfg.Video.FPS == 0 {
		cfg.Video.FPS = 30
	}
	if cfg.Video.TimeBase == 0 {
		cfg.Video.TimeBase = 0.001
	}
	if cfg.Video.Downsample == 0 {
		cfg.Video.Downsample = 1
	}
	if cfg.Detector.DNNInputName == "" {
		cfg.Detector.DNNInputName = "input"
	}
	if cfg.Detector.DNNOutputName == "" {
		cfg.Detector.DNNOutputName = "detection_out"
	}
	if cfg.Detector.MaxDetections == 0 {
		cfg.Detector.MaxDetections = 200
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RPPG_INPUT"); v != "" {
		cfg.Video.Input = v
	}
	if v := os.Getenv("RPPG_ALGORITHM"); v != "" {
		cfg.Pipeline.Algorithm = Algorithm(v)
	}
	if v := os.Getenv("RPPG_FACE_DETECTOR"); v != "" {
		cfg.Detector.Kind = FaceDetector(v)
	}
	if v := os.Getenv("RPPG_HAAR_MODEL_PATH"); v != "" {
		cfg.Detector.HaarModelPath = v
	}
	if v := os.Getenv("RPPG_DNN_MODEL_PATH"); v != "" {
		cfg.Detector.DNNModelPath = v
	}
	if v := os.Getenv("RPPG_LOG_PATH_PREFIX"); v != "" {
		cfg.Pipeline.LogPathPrefix = v
	}
	if v := os.Getenv("RPPG_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("RPPG_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("RPPG_SAMPLING_FREQUENCY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pipeline.SamplingFrequency = f
		}
	}
	if v := os.Getenv("RPPG_RESCAN_FREQUENCY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pipeline.RescanFrequency = f
		}
	}
	if v := os.Getenv("RPPG_DOWNSAMPLE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Video.Downsample = n
		}
	}
}
