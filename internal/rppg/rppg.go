// Package rppg implements remote photoplethysmography: it tracks the
// facial skin region across video frames, accumulates its average color
// into a sliding window and estimates the heart rate from the window's
// spectral peak.
package rppg

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/your-org/rppg/internal/config"
	"github.com/your-org/rppg/internal/models"
	"github.com/your-org/rppg/internal/observability"
	"github.com/your-org/rppg/internal/vision"
)

// Physiological band and tracking parameters of the main pipeline.
const (
	lowBPM         = 42
	highBPM        = 240
	secPerMin      = 60
	relMinFaceSize = 0.4
	maxCorners     = 10
	minCorners     = 5
	qualityLevel   = 0.01
	minDistance    = 25
	cornerBlock    = 3
	// Maximum forward/backward drift for a corner to survive the
	// bidirectional flow consistency check.
	maxBidirError = 2.0
)

// Tracker advances tracked corners from one grayscale frame to the next
// and, when enough corners survive, yields the rigid transform between the
// two corner sets. ok is false when too few corners survive to keep the
// face valid; tfOK is false when the transform estimate is degenerate (the
// box and ROI then stay in place for this frame).
type Tracker interface {
	Track(prev, next *image.Gray, corners []vision.Point2f) (survivors []vision.Point2f, tf vision.Affine, tfOK, ok bool)
}

// kltTracker is the production tracker: pyramidal Lucas-Kanade flow run
// forward and backward, with survivors required to round-trip within
// maxBidirError pixels.
type kltTracker struct{}

func (kltTracker) Track(prev, next *image.Gray, corners []vision.Point2f) ([]vision.Point2f, vision.Affine, bool, bool) {
	corners1, found1 := vision.PyramidalLK(prev, next, corners)
	corners0, found0 := vision.PyramidalLK(next, prev, corners1)

	var survivors0, survivors1 []vision.Point2f
	for j := range corners {
		if found1[j] && found0[j] && pointDist(corners[j], corners0[j]) < maxBidirError {
			survivors0 = append(survivors0, corners0[j])
			survivors1 = append(survivors1, corners1[j])
		}
	}

	if len(survivors1) < minCorners {
		return nil, vision.Affine{}, false, false
	}

	tf, tfOK := vision.EstimateSimilarity(survivors0, survivors1)
	return survivors1, tf, tfOK, true
}

func pointDist(a, b vision.Point2f) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// ReportPublisher receives the periodic aggregate reports. Implementations
// are best-effort; errors are logged and dropped.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report models.BPMReport) error
}

// RPPG is one estimation session. All state is confined to the instance;
// processing is single-threaded and synchronous (the caller's frame loop
// dictates pacing). Concurrent sessions need independent instances.
type RPPG struct {
	algorithm config.Algorithm
	detector  vision.Detector
	tracker   Tracker
	publisher ReportPublisher
	log       *SessionLog

	sessionID    uuid.UUID
	sessionLabel string

	timeBase          float64
	samplingFrequency float64
	rescanFrequency   float64
	minSignalSize     int
	maxSignalSize     int
	guiMode           bool

	// Validity state machine.
	faceValid  bool
	rescanFlag bool

	// Scheduling.
	time             int64
	lastScanTime     int64
	lastSamplingTime int64

	// Face state (populated while faceValid).
	box      image.Rectangle
	roi      image.Rectangle
	mask     *image.Gray
	corners  []vision.Point2f
	lastGray *image.Gray

	// Signal window and estimation state.
	buf           SignalBuffer
	fps           float64
	low, high     int
	sf            []float64
	powerSpectrum []float64
	bpm           float64
	bpms          []float64
	meanBpm       float64
	minBpm        float64
	maxBpm        float64
}

// Option customizes a session at load time; used to inject detector,
// tracker and publisher implementations.
type Option func(*RPPG)

// WithDetector replaces the config-selected face detector.
func WithDetector(d vision.Detector) Option { return func(r *RPPG) { r.detector = d } }

// WithTracker replaces the KLT tracker.
func WithTracker(t Tracker) Option { return func(r *RPPG) { r.tracker = t } }

// WithPublisher installs an aggregate report sink.
func WithPublisher(p ReportPublisher) Option { return func(r *RPPG) { r.publisher = p } }

// Load builds a session from config: detector, tracker and session log
// files. Configuration problems (bad enum values, missing model files)
// surface here; after a successful Load the pipeline does not error at
// runtime.
func Load(cfg *config.Config, opts ...Option) (*RPPG, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	r := &RPPG{
		algorithm:         cfg.Pipeline.Algorithm,
		sessionID:         id,
		sessionLabel:      id.String(),
		timeBase:          cfg.Video.TimeBase,
		samplingFrequency: cfg.Pipeline.SamplingFrequency,
		rescanFrequency:   cfg.Pipeline.RescanFrequency,
		minSignalSize:     cfg.Pipeline.MinSignalSize,
		maxSignalSize:     cfg.Pipeline.MaxSignalSize,
		guiMode:           cfg.Pipeline.GUIMode,
		tracker:           kltTracker{},
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.log == nil {
		log, err := OpenSessionLog(cfg.LogFilePath(), cfg.Pipeline.LogMode)
		if err != nil {
			return nil, err
		}
		r.log = log
	}

	if r.detector == nil {
		det, err := newDetector(cfg)
		if err != nil {
			r.log.Close()
			return nil, err
		}
		r.detector = det
	}

	slog.Info("rppg session loaded",
		"session_id", r.sessionLabel,
		"algorithm", r.algorithm,
		"detector", cfg.Detector.Kind,
		"min_signal_size", r.minSignalSize,
		"max_signal_size", r.maxSignalSize)

	return r, nil
}

func newDetector(cfg *config.Config) (vision.Detector, error) {
	switch cfg.Detector.Kind {
	case config.DetectorHaar:
		return vision.NewCascadeDetector(cfg.Detector.HaarModelPath, relMinFaceSize)
	case config.DetectorDeep:
		return vision.NewDNNDetector(
			cfg.Detector.DNNModelPath,
			cfg.Detector.DNNInputName,
			cfg.Detector.DNNOutputName,
			cfg.Detector.MaxDetections,
			nil,
		)
	}
	return nil, fmt.Errorf("invalid face detection algorithm %q", cfg.Detector.Kind)
}

// ProcessFrame runs one frame through the pipeline: acquisition or
// tracking, window maintenance, signal extraction and heart-rate
// estimation. Timestamps must be non-decreasing across calls.
func (r *RPPG) ProcessFrame(frame models.Frame) {
	r.time = frame.Time

	switch {
	case !r.faceValid:
		slog.Debug("face not valid, scanning", "time", r.time)
		r.lastScanTime = r.time
		r.detectFace(frame.RGB, frame.Gray)

	case float64(r.time-r.lastScanTime)*r.timeBase >= 1/r.rescanFrequency:
		slog.Debug("face valid, rescanning", "time", r.time)
		r.lastScanTime = r.time
		r.detectFace(frame.RGB, frame.Gray)
		r.rescanFlag = true
		observability.Rescans.WithLabelValues(r.sessionLabel).Inc()

	default:
		r.trackFace(frame.Gray)
	}

	if r.faceValid {
		// Trim the window before appending, using the pre-append rate.
		r.fps = r.buf.Fps(r.timeBase)
		for float64(r.buf.Len()) > r.fps*float64(r.maxSignalSize) {
			r.buf.EvictOldest()
		}

		r.buf.Append(r.maskedMeans(frame.RGB), r.time, r.rescanFlag)

		r.fps = r.buf.Fps(r.timeBase)

		// Band limits as bin indices of the current window.
		n := float64(r.buf.Len())
		r.low = int(n * lowBPM / secPerMin / r.fps)
		r.high = int(n*highBPM/secPerMin/r.fps) + 1

		if n >= r.fps*float64(r.minSignalSize) {
			switch r.algorithm {
			case config.AlgorithmG:
				r.extractSignalG()
			case config.AlgorithmPCA:
				r.extractSignalPCA()
			case config.AlgorithmXMinAY:
				r.extractSignalXMinAY()
			}

			r.estimateHeartrate()
			r.logEstimates()
		}

		if r.guiMode {
			r.draw(frame.RGB)
		}
	}

	r.rescanFlag = false
	r.lastGray = cloneGray(frame.Gray)

	observability.FramesProcessed.WithLabelValues(r.sessionLabel).Inc()
	observability.SignalWindow.WithLabelValues(r.sessionLabel).Set(float64(r.buf.Len()))
}

// Exit closes the session log files and releases the detector.
func (r *RPPG) Exit() {
	r.log.Close()
	if r.detector != nil {
		r.detector.Close()
	}
}

// detectFace runs the configured detector, keeps the candidate nearest to
// the previous box, and re-seeds the tracking state. No candidates (or a
// detector error, which is logged) invalidates the face.
func (r *RPPG) detectFace(rgb *image.RGBA, gray *image.Gray) {
	boxes, err := r.detector.Detect(rgb, gray)
	if err != nil {
		slog.Warn("face detection", "error", err)
		boxes = nil
	}

	if len(boxes) == 0 {
		slog.Debug("found no face")
		r.invalidateFace()
		return
	}

	r.box = vision.NearestBox(boxes, r.box.Min)
	r.detectCorners(gray)
	r.updateROI()
	r.updateMask(gray)
	if !r.faceValid {
		// The ROI placement just jumped; mark the next sample so the
		// denoise step treats it as a discontinuity boundary.
		r.rescanFlag = true
	}
	r.faceValid = true

	observability.FacesDetected.WithLabelValues(r.sessionLabel).Inc()
}

// detectCorners seeds trackable features inside a trapezoid over the face
// box, leaving out the eye and mouth regions.
func (r *RPPG) detectCorners(gray *image.Gray) {
	w := float64(r.box.Dx())
	h := float64(r.box.Dy())
	tl := r.box.Min
	region := vision.Polygon{
		{X: tl.X + int(0.22*w), Y: tl.Y + int(0.21*h)},
		{X: tl.X + int(0.78*w), Y: tl.Y + int(0.21*h)},
		{X: tl.X + int(0.70*w), Y: tl.Y + int(0.65*h)},
		{X: tl.X + int(0.30*w), Y: tl.Y + int(0.65*h)},
	}
	r.corners = vision.GoodFeatures(gray, region, maxCorners, qualityLevel, minDistance, cornerBlock)
}

// trackFace advances the face via sparse flow instead of re-detecting.
func (r *RPPG) trackFace(gray *image.Gray) {
	if len(r.corners) < minCorners {
		r.detectCorners(gray)
	}
	if r.lastGray == nil {
		return
	}

	survivors, tf, tfOK, ok := r.tracker.Track(r.lastGray, gray, r.corners)
	if !ok {
		slog.Debug("tracking failed, not enough corners left")
		observability.TrackingFailures.WithLabelValues(r.sessionLabel).Inc()
		r.invalidateFace()
		return
	}

	r.corners = survivors
	if tfOK {
		r.box = tf.ApplyRect(r.box)
		r.roi = tf.ApplyRect(r.roi)
		r.updateMask(gray)
	}
}

// updateROI places the skin sample region over the forehead: the central
// band of the box, just below its top edge.
func (r *RPPG) updateROI() {
	w := float64(r.box.Dx())
	h := float64(r.box.Dy())
	tl := r.box.Min
	r.roi = image.Rect(
		tl.X+int(0.3*w), tl.Y+int(0.1*h),
		tl.X+int(0.7*w), tl.Y+int(0.25*h),
	)
}

// updateMask rasterizes the ROI into a full-frame boolean mask.
func (r *RPPG) updateMask(gray *image.Gray) {
	bounds := gray.Bounds()
	mask := image.NewGray(bounds)
	clipped := r.roi.Intersect(bounds)
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		row := mask.Pix[mask.PixOffset(clipped.Min.X, y):mask.PixOffset(clipped.Max.X, y)]
		for i := range row {
			row[i] = 0xff
		}
	}
	r.mask = mask
}

// invalidateFace resets to the Invalid state: the face is marked invalid
// and the window and estimation buffers are emptied. The last box, ROI,
// mask and corners are left in place; the box serves as the reference for
// nearest-box selection on re-acquisition. Calling it on an already invalid
// session is a no-op with the same resulting state.
func (r *RPPG) invalidateFace() {
	r.buf.Clear()
	r.sf = nil
	r.powerSpectrum = nil
	r.faceValid = false
}

// maskedMeans averages the R, G, B channels over the mask.
func (r *RPPG) maskedMeans(rgb *image.RGBA) [3]float64 {
	var sum [3]float64
	var count int
	bounds := rgb.Bounds().Intersect(r.mask.Bounds())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if r.mask.Pix[r.mask.PixOffset(x, y)] == 0 {
				continue
			}
			off := rgb.PixOffset(x, y)
			pix := rgb.Pix[off : off+3 : off+3]
			sum[0] += float64(pix[0])
			sum[1] += float64(pix[1])
			sum[2] += float64(pix[2])
			count++
		}
	}
	if count == 0 {
		return [3]float64{}
	}
	return [3]float64{
		sum[0] / float64(count),
		sum[1] / float64(count),
		sum[2] / float64(count),
	}
}

func cloneGray(g *image.Gray) *image.Gray {
	out := image.NewGray(g.Bounds())
	copy(out.Pix, g.Pix)
	return out
}

// FaceValid reports whether a face is currently tracked.
func (r *RPPG) FaceValid() bool { return r.faceValid }

// Window exposes the signal buffer for inspection.
func (r *RPPG) Window() *SignalBuffer { return &r.buf }

// BPM returns the most recent per-frame estimate.
func (r *RPPG) BPM() float64 { return r.bpm }

// Report returns the last aggregate (mean, min, max).
func (r *RPPG) Report() (mean, min, max float64) { return r.meanBpm, r.minBpm, r.maxBpm }

// PowerSpectrum returns the most recent DFT magnitude window.
func (r *RPPG) PowerSpectrum() []float64 { return r.powerSpectrum }

// Filtered returns the most recent filtered window.
func (r *RPPG) Filtered() []float64 { return r.sf }
