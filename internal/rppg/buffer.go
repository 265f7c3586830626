package rppg

import "math"

// SignalBuffer is the sliding window of raw samples: three parallel columns
// holding per-frame channel means (R, G, B), timestamps and the rescan
// marker. Appends keep the columns in lockstep; eviction drops the oldest
// row.
type SignalBuffer struct {
	s  [][]float64
	t  []int64
	re []bool
}

// Len returns the current number of samples.
func (b *SignalBuffer) Len() int { return len(b.s) }

// Append adds one sample row.
func (b *SignalBuffer) Append(means [3]float64, t int64, rescan bool) {
	b.s = append(b.s, []float64{means[0], means[1], means[2]})
	b.t = append(b.t, t)
	b.re = append(b.re, rescan)
}

// EvictOldest drops the earliest sample.
func (b *SignalBuffer) EvictOldest() {
	if len(b.s) == 0 {
		return
	}
	b.s = b.s[1:]
	b.t = b.t[1:]
	b.re = b.re[1:]
}

// Clear empties all columns.
func (b *SignalBuffer) Clear() {
	b.s = nil
	b.t = nil
	b.re = nil
}

// Fps derives the effective sample rate from the window's timestamp span.
// An empty buffer reports 1; a single sample or a zero span reports +Inf,
// which the controller reads as "not yet enough data" (it also keeps the
// size thresholds unreachable, so no divide-by-zero can propagate).
func (b *SignalBuffer) Fps(timeBase float64) float64 {
	n := len(b.t)
	switch {
	case n == 0:
		return 1
	case n == 1:
		return math.Inf(1)
	}
	span := float64(b.t[n-1]-b.t[0]) * timeBase
	if span == 0 {
		return math.Inf(1)
	}
	return float64(n) / span
}

// Signal returns the raw N×3 window. The slice shares storage with the
// buffer; extractors copy before filtering.
func (b *SignalBuffer) Signal() [][]float64 { return b.s }

// Timestamps returns the timestamp column.
func (b *SignalBuffer) Timestamps() []int64 { return b.t }

// RescanFlags returns the rescan marker column.
func (b *SignalBuffer) RescanFlags() []bool { return b.re }
