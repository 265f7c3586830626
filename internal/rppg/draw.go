package rppg

import (
	"image"
	"image/color"

	"github.com/your-org/rppg/internal/dsp"
)

var (
	overlayRed   = color.RGBA{R: 255, A: 255}
	overlayGreen = color.RGBA{G: 255, A: 255}
)

// draw renders the tracking overlay into the RGB frame in place: face box,
// ROI, tracked corners and, once available, the filtered signal and its
// in-band power spectrum next to the box.
func (r *RPPG) draw(frame *image.RGBA) {
	drawRect(frame, r.roi, overlayGreen)
	drawRect(frame, r.box, overlayRed)

	for _, c := range r.corners {
		x := int(c.X)
		y := int(c.Y)
		drawLine(frame, x-5, y, x+5, y, overlayGreen)
		drawLine(frame, x, y-5, x, y+5, overlayGreen)
	}

	if len(r.sf) == 0 || len(r.powerSpectrum) == 0 {
		return
	}

	displayHeight := float64(r.box.Dy()) / 2
	displayWidth := float64(r.box.Dx()) * 0.8
	tlX := r.box.Min.X + r.box.Dx() + 20

	drawSeries(frame, r.sf, tlX, r.box.Min.Y, displayWidth, displayHeight)

	lo, hi := r.low, r.high
	if hi >= len(r.powerSpectrum) {
		hi = len(r.powerSpectrum) - 1
	}
	if lo < hi {
		drawSeries(frame, r.powerSpectrum[lo:hi+1],
			tlX, r.box.Min.Y+r.box.Dy()/2, displayWidth, displayHeight)
	}
}

// drawSeries plots a vector as a polyline scaled into the given area.
func drawSeries(frame *image.RGBA, series []float64, tlX, tlY int, width, height float64) {
	if len(series) < 2 {
		return
	}
	min, max := dsp.MinMax(series)
	span := max - min
	if span == 0 {
		return
	}
	heightMult := height / span
	widthMult := width / float64(len(series)-1)

	prevX := tlX
	prevY := tlY + int((max-series[0])*heightMult)
	for i := 1; i < len(series); i++ {
		x := tlX + int(float64(i)*widthMult)
		y := tlY + int((max-series[i])*heightMult)
		drawLine(frame, prevX, prevY, x, y, overlayRed)
		prevX, prevY = x, y
	}
}

func drawRect(frame *image.RGBA, r image.Rectangle, c color.RGBA) {
	drawLine(frame, r.Min.X, r.Min.Y, r.Max.X, r.Min.Y, c)
	drawLine(frame, r.Max.X, r.Min.Y, r.Max.X, r.Max.Y, c)
	drawLine(frame, r.Max.X, r.Max.Y, r.Min.X, r.Max.Y, c)
	drawLine(frame, r.Min.X, r.Max.Y, r.Min.X, r.Min.Y, c)
}

// drawLine rasterizes a segment with the integer midpoint algorithm,
// clipping against the frame bounds.
func drawLine(frame *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	bounds := frame.Bounds()
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if image.Pt(x0, y0).In(bounds) {
			frame.SetRGBA(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
