package vision

import (
	"image"
	"math"
)

const (
	lkLevels     = 3
	lkWindow     = 10 // half-width of the 21×21 integration window
	lkIterations = 30
	lkEpsilon    = 0.01
)

// floatPlane is a grayscale plane in float64 with bilinear sampling.
type floatPlane struct {
	pix  []float64
	w, h int
}

func newFloatPlane(gray *image.Gray) *floatPlane {
	bounds := gray.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	p := &floatPlane{pix: make([]float64, w*h), w: w, h: h}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p.pix[y*w+x] = float64(gray.Pix[gray.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)])
		}
	}
	return p
}

func (p *floatPlane) at(x, y int) float64 {
	if x < 0 {
		x = 0
	} else if x >= p.w {
		x = p.w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= p.h {
		y = p.h - 1
	}
	return p.pix[y*p.w+x]
}

// sample reads the plane at a sub-pixel position with bilinear
// interpolation and clamped borders.
func (p *floatPlane) sample(x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)
	return (1-fx)*(1-fy)*p.at(x0, y0) +
		fx*(1-fy)*p.at(x0+1, y0) +
		(1-fx)*fy*p.at(x0, y0+1) +
		fx*fy*p.at(x0+1, y0+1)
}

// downsample halves the plane with a 2×2 box average.
func (p *floatPlane) downsample() *floatPlane {
	w := p.w / 2
	h := p.h / 2
	out := &floatPlane{pix: make([]float64, w*h), w: w, h: h}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.pix[y*w+x] = (p.at(2*x, 2*y) + p.at(2*x+1, 2*y) +
				p.at(2*x, 2*y+1) + p.at(2*x+1, 2*y+1)) / 4
		}
	}
	return out
}

func buildPyramid(gray *image.Gray, levels int) []*floatPlane {
	pyr := make([]*floatPlane, 0, levels)
	plane := newFloatPlane(gray)
	pyr = append(pyr, plane)
	for l := 1; l < levels; l++ {
		if plane.w < 2*lkWindow+2 || plane.h < 2*lkWindow+2 {
			break
		}
		plane = plane.downsample()
		pyr = append(pyr, plane)
	}
	return pyr
}

// PyramidalLK tracks sparse points from prev to next with iterative
// Lucas-Kanade flow over an image pyramid. status[i] is false when the
// point left the frame or its local system was degenerate.
func PyramidalLK(prev, next *image.Gray, pts []Point2f) (out []Point2f, status []bool) {
	out = make([]Point2f, len(pts))
	status = make([]bool, len(pts))
	if len(pts) == 0 {
		return out, status
	}

	prevPyr := buildPyramid(prev, lkLevels)
	nextPyr := buildPyramid(next, lkLevels)
	levels := len(prevPyr)
	if len(nextPyr) < levels {
		levels = len(nextPyr)
	}

	for i, pt := range pts {
		scale := math.Pow(2, float64(levels-1))
		px := float64(pt.X) / scale
		py := float64(pt.Y) / scale
		// Flow estimate carried down the pyramid.
		gx, gy := 0.0, 0.0
		ok := true

		for l := levels - 1; l >= 0; l-- {
			p := prevPyr[l]
			n := nextPyr[l]

			dx, dy, good := lkAtLevel(p, n, px, py, gx, gy)
			if !good {
				ok = false
				break
			}
			gx += dx
			gy += dy

			if l > 0 {
				px *= 2
				py *= 2
				gx *= 2
				gy *= 2
			}
		}

		nx := float64(pt.X) + gx
		ny := float64(pt.Y) + gy
		if !ok || nx < 0 || ny < 0 || nx > float64(nextPyr[0].w-1) || ny > float64(nextPyr[0].h-1) {
			status[i] = false
			out[i] = pt
			continue
		}
		status[i] = true
		out[i] = Point2f{X: float32(nx), Y: float32(ny)}
	}
	return out, status
}

// lkAtLevel solves the local flow system around (px, py) at one pyramid
// level, starting from the carried guess (gx, gy).
func lkAtLevel(prev, next *floatPlane, px, py, gx, gy float64) (dx, dy float64, ok bool) {
	// Template gradients and the 2×2 normal matrix over the window.
	size := 2*lkWindow + 1
	grads := make([][2]float64, size*size)
	var a11, a12, a22 float64
	idx := 0
	for wy := -lkWindow; wy <= lkWindow; wy++ {
		for wx := -lkWindow; wx <= lkWindow; wx++ {
			x := px + float64(wx)
			y := py + float64(wy)
			ixv := (prev.sample(x+1, y) - prev.sample(x-1, y)) / 2
			iyv := (prev.sample(x, y+1) - prev.sample(x, y-1)) / 2
			grads[idx] = [2]float64{ixv, iyv}
			a11 += ixv * ixv
			a12 += ixv * iyv
			a22 += iyv * iyv
			idx++
		}
	}

	det := a11*a22 - a12*a12
	if det < 1e-7 {
		return 0, 0, false
	}

	vx, vy := gx, gy
	for iter := 0; iter < lkIterations; iter++ {
		var b1, b2 float64
		idx = 0
		for wy := -lkWindow; wy <= lkWindow; wy++ {
			for wx := -lkWindow; wx <= lkWindow; wx++ {
				x := px + float64(wx)
				y := py + float64(wy)
				diff := next.sample(x+vx, y+vy) - prev.sample(x, y)
				b1 += diff * grads[idx][0]
				b2 += diff * grads[idx][1]
				idx++
			}
		}
		stepX := -(a22*b1 - a12*b2) / det
		stepY := -(-a12*b1 + a11*b2) / det
		vx += stepX
		vy += stepY
		if math.Hypot(stepX, stepY) < lkEpsilon {
			break
		}
	}

	if math.IsNaN(vx) || math.IsNaN(vy) {
		return 0, 0, false
	}
	return vx - gx, vy - gy, true
}
