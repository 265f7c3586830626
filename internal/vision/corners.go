package vision

import (
	"image"
	"math"
	"sort"
)

// Point2f is a sub-pixel image coordinate.
type Point2f struct {
	X, Y float32
}

func (p Point2f) distTo(q Point2f) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Polygon is a closed region given by its vertices.
type Polygon []image.Point

// Contains reports whether (x, y) lies inside the polygon (ray casting).
func (pg Polygon) Contains(x, y float64) bool {
	inside := false
	n := len(pg)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := float64(pg[i].X), float64(pg[i].Y)
		xj, yj := float64(pg[j].X), float64(pg[j].Y)
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// GoodFeatures seeds trackable corners inside region using the Shi-Tomasi
// minimum-eigenvalue response: corners scoring below quality·maxResponse
// are rejected, survivors are taken strongest-first with a minimum spacing.
// blockSize is the structure tensor summation window (Harris scoring is not
// used).
func GoodFeatures(gray *image.Gray, region Polygon, maxCorners int, quality, minDistance float64, blockSize int) []Point2f {
	bounds := gray.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w < 3 || h < 3 {
		return nil
	}

	ix, iy := sobel(gray)

	// Min-eigenvalue response of the structure tensor summed over the
	// block window.
	resp := make([]float64, w*h)
	half := blockSize / 2
	var maxResp float64
	for y := half + 1; y < h-half-1; y++ {
		for x := half + 1; x < w-half-1; x++ {
			var sxx, syy, sxy float64
			for dy := -half; dy <= half; dy++ {
				for dx := -half; dx <= half; dx++ {
					gx := ix[(y+dy)*w+x+dx]
					gy := iy[(y+dy)*w+x+dx]
					sxx += gx * gx
					syy += gy * gy
					sxy += gx * gy
				}
			}
			lambda := ((sxx + syy) - math.Sqrt((sxx-syy)*(sxx-syy)+4*sxy*sxy)) / 2
			resp[y*w+x] = lambda
			if lambda > maxResp {
				maxResp = lambda
			}
		}
	}
	if maxResp == 0 {
		return nil
	}

	type candidate struct {
		pt   Point2f
		resp float64
	}
	threshold := quality * maxResp
	var candidates []candidate
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			r := resp[y*w+x]
			if r < threshold {
				continue
			}
			// 3×3 non-maximum suppression.
			if r < resp[(y-1)*w+x] || r < resp[(y+1)*w+x] ||
				r < resp[y*w+x-1] || r < resp[y*w+x+1] ||
				r < resp[(y-1)*w+x-1] || r < resp[(y-1)*w+x+1] ||
				r < resp[(y+1)*w+x-1] || r < resp[(y+1)*w+x+1] {
				continue
			}
			fx := float64(x)
			fy := float64(y)
			if region != nil && !region.Contains(fx, fy) {
				continue
			}
			candidates = append(candidates, candidate{
				pt:   Point2f{X: float32(bounds.Min.X + x), Y: float32(bounds.Min.Y + y)},
				resp: r,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].resp > candidates[j].resp })

	var out []Point2f
	for _, c := range candidates {
		if len(out) >= maxCorners {
			break
		}
		tooClose := false
		for _, p := range out {
			if c.pt.distTo(p) < minDistance {
				tooClose = true
				break
			}
		}
		if !tooClose {
			out = append(out, c.pt)
		}
	}
	return out
}

// sobel returns 3×3 Sobel gradients as float planes (border rows/cols are
// zero).
func sobel(gray *image.Gray) (ix, iy []float64) {
	bounds := gray.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	ix = make([]float64, w*h)
	iy = make([]float64, w*h)

	at := func(x, y int) float64 {
		return float64(gray.Pix[gray.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)])
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			ix[y*w+x] = (at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x-1, y) + at(x-1, y+1))
			iy[y*w+x] = (at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x, y-1) + at(x+1, y-1))
		}
	}
	return ix, iy
}
