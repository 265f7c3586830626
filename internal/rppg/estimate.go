package rppg

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/your-org/rppg/internal/dsp"
	"github.com/your-org/rppg/internal/models"
	"github.com/your-org/rppg/internal/observability"
)

// estimateHeartrate turns the filtered window into a per-frame BPM via the
// band-masked spectral peak, then folds estimates into the periodic
// aggregate on the sampling cadence.
func (r *RPPG) estimateHeartrate() {
	if len(r.sf) == 0 {
		return
	}

	r.powerSpectrum = dsp.MagnitudeSpectrum(r.sf)
	total := len(r.sf)

	peak, idx, ok := dsp.MaskedPeak(r.powerSpectrum, r.low, r.high)
	if ok && peak > 0 && !math.IsNaN(peak) && !math.IsInf(peak, 0) {
		r.bpm = float64(idx) * r.fps / float64(total) * secPerMin
		r.bpms = append(r.bpms, r.bpm)

		slog.Debug("estimated heart rate",
			"fps", r.fps, "window", total, "peak_bin", idx, "bpm", r.bpm)

		r.log.TraceEstimation(r.time, r.powerSpectrum, r.low, r.high)
	}

	if float64(r.time-r.lastSamplingTime)*r.timeBase >= 1/r.samplingFrequency {
		r.lastSamplingTime = r.time

		if len(r.bpms) > 0 {
			sort.Float64s(r.bpms)
			r.meanBpm = dsp.Mean(r.bpms)
			r.minBpm = r.bpms[0]
			r.maxBpm = r.bpms[len(r.bpms)-1]

			slog.Info("bpm report",
				"mean", r.meanBpm, "min", r.minBpm, "max", r.maxBpm)

			observability.CurrentBPM.WithLabelValues(r.sessionLabel).Set(r.meanBpm)
			r.publishReport()
		}
		r.bpms = r.bpms[:0]
	}
}

func (r *RPPG) publishReport() {
	if r.publisher == nil {
		return
	}
	report := models.BPMReport{
		SessionID: r.sessionID,
		Time:      r.time,
		FaceValid: r.faceValid,
		Mean:      r.meanBpm,
		Min:       r.minBpm,
		Max:       r.maxBpm,
	}
	if err := r.publisher.PublishReport(context.Background(), report); err != nil {
		slog.Warn("publish bpm report", "error", err)
	}
}

// logEstimates mirrors the historical CSV cadence: the aggregate file gets
// a row right after an aggregation tick (and before the first one), the
// detailed file gets a row for every frame that reached the estimator.
func (r *RPPG) logEstimates() {
	if r.lastSamplingTime == r.time || r.lastSamplingTime == 0 {
		r.log.WriteAggregate(r.time, r.faceValid, r.meanBpm, r.minBpm, r.maxBpm)
	}
	r.log.WriteSample(r.time, r.faceValid, r.bpm)
}
