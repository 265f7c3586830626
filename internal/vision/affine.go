package vision

import (
	"image"
	"math"
)

// Affine is a 4-DOF similarity transform
//
//	| A  -B  TX |
//	| B   A  TY |
//
// as produced by least-squares alignment of tracked corner pairs.
type Affine struct {
	A, B, TX, TY float64
}

// EstimateSimilarity fits the similarity transform mapping src points onto
// dst in the least-squares sense. ok is false for fewer than two pairs or a
// degenerate (collapsed) source configuration.
func EstimateSimilarity(src, dst []Point2f) (Affine, bool) {
	if len(src) < 2 || len(src) != len(dst) {
		return Affine{}, false
	}
	n := float64(len(src))

	var sx, sy, dx, dy float64
	for i := range src {
		sx += float64(src[i].X)
		sy += float64(src[i].Y)
		dx += float64(dst[i].X)
		dy += float64(dst[i].Y)
	}
	sx /= n
	sy /= n
	dx /= n
	dy /= n

	var num1, num2, den float64
	for i := range src {
		ax := float64(src[i].X) - sx
		ay := float64(src[i].Y) - sy
		bx := float64(dst[i].X) - dx
		by := float64(dst[i].Y) - dy
		num1 += ax*bx + ay*by
		num2 += ax*by - ay*bx
		den += ax*ax + ay*ay
	}
	if den < 1e-9 || math.IsNaN(den) {
		return Affine{}, false
	}

	a := num1 / den
	b := num2 / den
	return Affine{
		A:  a,
		B:  b,
		TX: dx - a*sx + b*sy,
		TY: dy - b*sx - a*sy,
	}, true
}

// Apply transforms one point.
func (t Affine) Apply(p Point2f) Point2f {
	x := float64(p.X)
	y := float64(p.Y)
	return Point2f{
		X: float32(t.A*x - t.B*y + t.TX),
		Y: float32(t.B*x + t.A*y + t.TY),
	}
}

// ApplyRect transforms a rectangle by mapping its top-left and bottom-right
// corners, preserving the stored-corner semantics of the tracked box/ROI.
func (t Affine) ApplyRect(r image.Rectangle) image.Rectangle {
	tl := t.Apply(Point2f{X: float32(r.Min.X), Y: float32(r.Min.Y)})
	br := t.Apply(Point2f{X: float32(r.Max.X), Y: float32(r.Max.Y)})
	return image.Rect(int(tl.X), int(tl.Y), int(br.X), int(br.Y))
}
