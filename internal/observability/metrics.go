package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rppg",
		Name:      "frames_processed_total",
		Help:      "Total number of frames run through the pipeline",
	}, []string{"session_id"})

	FacesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rppg",
		Name:      "faces_detected_total",
		Help:      "Total number of frames on which a face detector returned a box",
	}, []string{"session_id"})

	TrackingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rppg",
		Name:      "tracking_failures_total",
		Help:      "Total number of face invalidations caused by lost corners",
	}, []string{"session_id"})

	Rescans = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rppg",
		Name:      "rescans_total",
		Help:      "Total number of scheduled full re-detections",
	}, []string{"session_id"})

	CurrentBPM = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "rppg",
		Name:      "bpm",
		Help:      "Most recent aggregate mean heart-rate estimate",
	}, []string{"session_id"})

	SignalWindow = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "rppg",
		Name:      "signal_window_samples",
		Help:      "Current number of samples in the sliding signal window",
	}, []string{"session_id"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rppg",
		Name:      "stage_duration_seconds",
		Help:      "Duration of pipeline stages",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"stage"})
)
