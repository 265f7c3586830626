package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/rppg/internal/baseline"
	"github.com/your-org/rppg/internal/config"
	"github.com/your-org/rppg/internal/ingest"
	"github.com/your-org/rppg/internal/models"
	"github.com/your-org/rppg/internal/observability"
	"github.com/your-org/rppg/internal/queue"
	"github.com/your-org/rppg/internal/rppg"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	input := flag.String("i", "", "video file or stream URL (empty: default camera)")
	rppgAlg := flag.String("rppg", "", "rPPG algorithm (g, pca, xminay)")
	faceDet := flag.String("facedet", "", "face detection algorithm (haar, deep)")
	rescanFreq := flag.Float64("r", 0, "face rescan frequency (Hz)")
	samplingFreq := flag.Float64("f", 0, "report sampling frequency (Hz)")
	minSignal := flag.Int("min", 0, "minimum signal window (seconds)")
	maxSignal := flag.Int("max", 0, "maximum signal window (seconds)")
	gui := flag.Bool("gui", false, "draw the tracking overlay into frames")
	logMode := flag.Bool("log", false, "write per-window signal/estimation traces")
	downsample := flag.Int("ds", 0, "process only every n-th frame")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := mergeFlags(cfg, *input, *rppgAlg, *faceDet, *rescanFreq, *samplingFreq,
		*minSignal, *maxSignal, *gui, *logMode, *downsample); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting rPPG session",
		"input", cfg.Video.Input,
		"algorithm", cfg.Pipeline.Algorithm,
		"detector", cfg.Detector.Kind,
		"cpu_cores", runtime.NumCPU(),
	)

	// ONNX Runtime is only needed for the deep detector.
	if cfg.Detector.Kind == config.DetectorDeep {
		ort.SetSharedLibraryPath(onnxLibPath())
		if err := ort.InitializeEnvironment(); err != nil {
			slog.Error("init onnx runtime", "error", err)
			os.Exit(1)
		}
		defer ort.DestroyEnvironment()
	}

	var opts []rppg.Option
	var producer *queue.Producer
	if cfg.NATS.URL != "" {
		producer, err = queue.NewProducer(cfg.NATS.URL)
		if err != nil {
			slog.Error("connect to nats", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		if err := producer.EnsureStream(context.Background()); err != nil {
			slog.Warn("ensure nats stream", "error", err)
		}
		opts = append(opts, rppg.WithPublisher(producer))
	}

	session, err := rppg.Load(cfg, opts...)
	if err != nil {
		slog.Error("load rppg session", "error", err)
		os.Exit(1)
	}
	defer session.Exit()

	var ref *baseline.Baseline
	if cfg.Baseline.Path != "" {
		ref, err = baseline.Load(cfg.Baseline.Path, cfg.Pipeline.SamplingFrequency,
			cfg.Video.TimeBase, cfg.Baseline.TimeOffset)
		if err != nil {
			slog.Error("load baseline", "error", err)
			os.Exit(1)
		}
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			})
			slog.Info("metrics listening", "addr", cfg.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down")
		cancel()
	}()

	source := &ingest.FFmpegSource{}
	defer source.Stop()

	input2 := cfg.Video.Input
	if input2 == "" {
		input2 = defaultCamera()
	}

	frameIndex := 0
	err = source.Start(ctx, input2, cfg.Video.FPS, cfg.Video.Width, func(frame models.Frame) error {
		if frameIndex%cfg.Video.Downsample == 0 {
			session.ProcessFrame(frame)
			if ref != nil {
				ref.ProcessFrame(frame.Time)
			}
		}
		frameIndex++
		return nil
	})
	if err != nil && ctx.Err() == nil {
		slog.Error("frame source", "error", err)
		os.Exit(1)
	}

	slog.Info("session finished", "frames", frameIndex)
}

// mergeFlags lays explicitly provided CLI flags over the file config,
// honoring the historical flag names.
func mergeFlags(cfg *config.Config, input, rppgAlg, faceDet string,
	rescanFreq, samplingFreq float64, minSignal, maxSignal int,
	gui, logMode bool, downsample int) error {

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["i"] {
		cfg.Video.Input = input
	}
	if set["rppg"] {
		alg, err := config.ParseAlgorithm(rppgAlg)
		if err != nil {
			return err
		}
		cfg.Pipeline.Algorithm = alg
	}
	if set["facedet"] {
		det, err := config.ParseFaceDetector(faceDet)
		if err != nil {
			return err
		}
		cfg.Detector.Kind = det
	}
	if set["r"] {
		cfg.Pipeline.RescanFrequency = rescanFreq
	}
	if set["f"] {
		cfg.Pipeline.SamplingFrequency = samplingFreq
	}
	if set["min"] {
		cfg.Pipeline.MinSignalSize = minSignal
	}
	if set["max"] {
		cfg.Pipeline.MaxSignalSize = maxSignal
	}
	if set["gui"] {
		cfg.Pipeline.GUIMode = gui
	}
	if set["log"] {
		cfg.Pipeline.LogMode = logMode
	}
	if set["ds"] {
		cfg.Video.Downsample = downsample
	}

	// Offline inputs name their log files after the video.
	if cfg.Video.Input != "" && !strings.Contains(cfg.Video.Input, "://") && !set["config"] {
		base := cfg.Video.Input
		if ext := filepath.Ext(base); ext != "" {
			base = base[:len(base)-len(ext)]
		}
		cfg.Pipeline.LogPathPrefix = base
	}

	return cfg.Validate()
}

func defaultCamera() string {
	switch runtime.GOOS {
	case "linux":
		return "/dev/video0"
	case "darwin":
		return "0:none"
	default:
		return "0"
	}
}

// onnxLibPath returns the ONNX Runtime shared library name for the
// current platform.
func onnxLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "linux":
		return "libonnxruntime.so"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "onnxruntime.dll"
	}
}
