package dsp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Normalize subtracts the mean and divides by the standard deviation,
// per column. A constant column (zero deviation) maps to all zeros.
func Normalize(x [][]float64) [][]float64 {
	out := cloneMatrix(x)
	if len(out) == 0 {
		return out
	}
	cols := len(out[0])
	for j := 0; j < cols; j++ {
		mean, std := MeanStdDev(Column(out, j))
		for i := range out {
			out[i][j] -= mean
			if std > 0 {
				out[i][j] /= std
			}
		}
	}
	return out
}

// NormalizeVec is Normalize for a single column.
func NormalizeVec(x []float64) []float64 {
	mean, std := MeanStdDev(x)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mean
		if std > 0 {
			out[i] /= std
		}
	}
	return out
}

// Denoise removes the step discontinuities a face re-acquisition introduces
// into the channel means. For every row i flagged in re, the first
// difference x[i]−x[i−1] is subtracted from all rows j ≥ i, per column.
// When re is longer than x (buffer was trimmed), its tail is used.
func Denoise(x [][]float64, re []bool) [][]float64 {
	out := cloneMatrix(x)
	n := len(out)
	if n < 2 {
		return out
	}
	if len(re) > n {
		re = re[len(re)-n:]
	}
	cols := len(out[0])
	for i := 1; i < len(re) && i < n; i++ {
		if !re[i] {
			continue
		}
		for j := 0; j < cols; j++ {
			diff := out[i][j] - out[i-1][j]
			for k := i; k < n; k++ {
				out[k][j] -= diff
			}
		}
	}
	return out
}

// DenoiseVec is Denoise for a single column.
func DenoiseVec(x []float64, re []bool) []float64 {
	cols := make([][]float64, len(x))
	for i, v := range x {
		cols[i] = []float64{v}
	}
	return Column(Denoise(cols, re), 0)
}

// Detrend applies smoothness-priors detrending,
//
//	x' = (I − (I + λ²DᵀD)⁻¹) x,
//
// with D the second-difference operator of shape (N−2)×N. λ tracks the
// current frame rate so the cutoff follows variable timing. For N < 3 the
// input is returned unchanged (copy).
func Detrend(x [][]float64, lambda float64) [][]float64 {
	n := len(x)
	if n < 3 {
		return cloneMatrix(x)
	}
	cols := len(x[0])

	// M = I + λ²DᵀD is symmetric positive definite, so a Cholesky solve
	// replaces the explicit inverse.
	m := mat.NewSymDense(n, nil)
	l2 := lambda * lambda
	for i := 0; i < n; i++ {
		m.SetSym(i, i, 1)
	}
	// DᵀD row pattern for the second-difference operator.
	for r := 0; r < n-2; r++ {
		// row r of D has (1, −2, 1) at columns r, r+1, r+2
		idx := [3]int{r, r + 1, r + 2}
		coef := [3]float64{1, -2, 1}
		for a := 0; a < 3; a++ {
			for b := a; b < 3; b++ {
				m.SetSym(idx[a], idx[b], m.At(idx[a], idx[b])+l2*coef[a]*coef[b])
			}
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(m) {
		return cloneMatrix(x)
	}

	rhs := mat.NewDense(n, cols, nil)
	for i, row := range x {
		for j, v := range row {
			rhs.Set(i, j, v)
		}
	}
	var z mat.Dense
	if err := chol.SolveTo(&z, rhs); err != nil {
		return cloneMatrix(x)
	}

	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			out[i][j] = x[i][j] - z.At(i, j)
		}
	}
	return out
}

// DetrendVec is Detrend for a single column.
func DetrendVec(x []float64, lambda float64) []float64 {
	cols := make([][]float64, len(x))
	for i, v := range x {
		cols[i] = []float64{v}
	}
	return Column(Detrend(cols, lambda), 0)
}

// MovingAverage applies an s-sample centered box blur n times
// (reflect-101 border handling).
func MovingAverage(x []float64, n, s int) []float64 {
	out := append([]float64(nil), x...)
	if s <= 1 || len(x) == 0 {
		return out
	}
	for pass := 0; pass < n; pass++ {
		out = boxBlur(out, s)
	}
	return out
}

func boxBlur(x []float64, s int) []float64 {
	n := len(x)
	out := make([]float64, n)
	anchor := s / 2
	for i := 0; i < n; i++ {
		var sum float64
		for k := 0; k < s; k++ {
			sum += x[reflect101(i-anchor+k, n)]
		}
		out[i] = sum / float64(s)
	}
	return out
}

// reflect101 mirrors an out-of-range index without repeating the border
// sample (…cba|abcd|cba…).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i = ((i % period) + period) % period
	if i >= n {
		i = period - i
	}
	return i
}

// ButterworthLowpass builds the bin-indexed 1D magnitude response
// H[i] = 1/(1+(i/cutoff)^2n). The row index is the frequency coordinate
// on purpose; this mask is only ever meant for 1D windows.
func ButterworthLowpass(size int, cutoff float64, order int) []float64 {
	out := make([]float64, size)
	if cutoff <= 0 {
		return out
	}
	for i := 0; i < size; i++ {
		out[i] = 1 / (1 + math.Pow(float64(i)/cutoff, 2*float64(order)))
	}
	return out
}

// ButterworthBandpass is the difference of two lowpass masks at cutoff and
// cutin.
func ButterworthBandpass(size int, cutin, cutoff float64, order int) []float64 {
	hi := ButterworthLowpass(size, cutoff, order)
	lo := ButterworthLowpass(size, cutin, order)
	out := make([]float64, size)
	for i := range out {
		out[i] = hi[i] - lo[i]
	}
	return out
}

// Bandpass filters x through the Butterworth band mask in the frequency
// domain (order 8) and min-max rescales the result to [0,1]. Inputs shorter
// than 3 samples are passed through.
func Bandpass(x []float64, low, high float64) []float64 {
	if len(x) < 3 {
		return append([]float64(nil), x...)
	}
	spectrum := TimeToFrequency(x)
	filter := ButterworthBandpass(len(x), low, high, 8)
	for i := range spectrum {
		spectrum[i] *= complex(filter[i], 0)
	}
	return MinMaxScale(FrequencyToTime(spectrum), 0, 1)
}

// MinMaxScale linearly rescales x so its extrema map to [lo, hi]. A
// constant input maps to lo.
func MinMaxScale(x []float64, lo, hi float64) []float64 {
	out := make([]float64, len(x))
	min, max := MinMax(x)
	span := max - min
	for i, v := range x {
		if span == 0 {
			out[i] = lo
		} else {
			out[i] = lo + (v-min)*(hi-lo)/span
		}
	}
	return out
}
