package rppg

import (
	"math"

	"github.com/your-org/rppg/internal/dsp"
)

// movingAverageSize follows the frame rate: a wider box at higher fps keeps
// the low-pass corner roughly constant in hertz.
func movingAverageSize(fps float64) int {
	if math.IsInf(fps, 1) {
		return 2
	}
	s := int(math.Floor(fps / 6))
	if s < 2 {
		s = 2
	}
	return s
}

// extractSignalG filters the green channel only:
// denoise → normalize → detrend → moving average.
func (r *RPPG) extractSignalG() {
	green := dsp.Column(r.buf.Signal(), 1)
	re := r.buf.RescanFlags()

	den := dsp.DenoiseVec(green, re)
	norm := dsp.NormalizeVec(den)
	det := dsp.DetrendVec(norm, r.fps)
	mav := dsp.MovingAverage(det, 3, movingAverageSize(r.fps))

	r.sf = mav

	if r.log != nil && r.log.traces {
		rows := make([][]float64, len(green))
		for i := range green {
			rows[i] = []float64{float64(b2i(re[i])), green[i], den[i], det[i], mav[i]}
		}
		r.log.TraceWindow(r.time, []string{"re", "g", "g_den", "g_det", "g_mav"}, rows)
	}
}

// extractSignalPCA filters all three channels and projects onto the
// principal component with the strongest in-band spectral peak.
func (r *RPPG) extractSignalPCA() {
	s := r.buf.Signal()
	re := r.buf.RescanFlags()

	den := dsp.Denoise(s, re)
	norm := dsp.Normalize(den)
	det := dsp.Detrend(norm, r.fps)

	component, pcs, ok := dsp.PCAComponent(det, r.low, r.high)
	if !ok {
		r.sf = nil
		return
	}
	mav := dsp.MovingAverage(component, 3, movingAverageSize(r.fps))

	r.sf = mav

	if r.log != nil && r.log.traces {
		rows := make([][]float64, len(s))
		for i := range s {
			rows[i] = []float64{
				float64(b2i(re[i])),
				s[i][0], s[i][1], s[i][2],
				den[i][0], den[i][1], den[i][2],
				det[i][0], det[i][1], det[i][2],
				pcs[i][0], pcs[i][1], pcs[i][2],
				component[i], mav[i],
			}
		}
		r.log.TraceWindow(r.time, []string{
			"re", "r", "g", "b", "r_den", "g_den", "b_den",
			"r_det", "g_det", "b_det", "pc1", "pc2", "pc3", "s_pca", "s_mav",
		}, rows)
	}
}

// extractSignalXMinAY is the chrominance method: project the normalized
// channels to X = 3R − 2G and Y = 1.5R + G − 1.5B, bandpass both, and
// subtract α·Y from X with α chosen to cancel specular reflection under
// the standardized-skin-tone assumption.
func (r *RPPG) extractSignalXMinAY() {
	s := r.buf.Signal()
	re := r.buf.RescanFlags()
	n := len(s)

	den := dsp.Denoise(s, re)
	norm := dsp.Normalize(den)

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, row := range norm {
		xs[i] = 3*row[0] - 2*row[1]
		ys[i] = 1.5*row[0] + row[1] - 1.5*row[2]
	}

	xf := dsp.Bandpass(xs, float64(r.low), float64(r.high))
	yf := dsp.Bandpass(ys, float64(r.low), float64(r.high))

	_, stdX := dsp.MeanStdDev(xf)
	_, stdY := dsp.MeanStdDev(yf)
	alpha := 0.0
	if stdY > 0 {
		alpha = stdX / stdY
	}

	xminay := make([]float64, n)
	for i := range xminay {
		xminay[i] = xf[i] - alpha*yf[i]
	}
	mav := dsp.MovingAverage(xminay, 3, movingAverageSize(r.fps))

	r.sf = mav

	if r.log != nil && r.log.traces {
		rows := make([][]float64, n)
		for i := range rows {
			rows[i] = []float64{
				s[i][0], s[i][1], s[i][2],
				den[i][0], den[i][1], den[i][2],
				xs[i], ys[i], xf[i], yf[i],
				xminay[i], mav[i],
			}
		}
		r.log.TraceWindow(r.time, []string{
			"r", "g", "b", "r_den", "g_den", "b_den",
			"x_s", "y_s", "x_f", "y_f", "s", "s_f",
		}, rows)
	}
}
