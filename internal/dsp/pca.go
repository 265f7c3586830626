package dsp

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCAComponent centers the N×C window, projects it onto its principal
// components and returns the projection whose spectral magnitude has the
// strongest band-normalized peak inside bins [low, high], together with all
// component projections (N×C, one column per component).
func PCAComponent(x [][]float64, low, high int) (component []float64, pcs [][]float64, ok bool) {
	n := len(x)
	if n == 0 {
		return nil, nil, false
	}
	cols := len(x[0])

	data := mat.NewDense(n, cols, nil)
	for i, row := range x {
		for j, v := range row {
			data.Set(i, j, v)
		}
	}

	var pc stat.PC
	if !pc.PrincipalComponents(data, nil) {
		return nil, nil, false
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	// Center, then project to PC space.
	centered := mat.NewDense(n, cols, nil)
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, data)
		mean := Mean(col)
		for i := 0; i < n; i++ {
			centered.Set(i, j, data.At(i, j)-mean)
		}
	}
	var proj mat.Dense
	proj.Mul(centered, &vecs)

	pcs = make([][]float64, n)
	for i := 0; i < n; i++ {
		pcs[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			pcs[i][j] = proj.At(i, j)
		}
	}

	// Pick the component with the most distinct in-band spectral peak.
	best := -1
	var bestVal float64
	for j := 0; j < cols; j++ {
		magnitude := MagnitudeSpectrum(Column(pcs, j))
		magnitude = normalizeL1Band(magnitude, low, high)
		peak, _, found := MaskedPeak(magnitude, low, high)
		if found && (best == -1 || peak > bestVal) {
			best, bestVal = j, peak
		}
	}
	if best == -1 {
		return nil, pcs, false
	}
	return Column(pcs, best), pcs, true
}
