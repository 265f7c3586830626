package vision

import "image"

// ToGray converts an RGBA frame to 8-bit grayscale using integer Rec.601
// luma weights.
func ToGray(rgb *image.RGBA) *image.Gray {
	bounds := rgb.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			off := rgb.PixOffset(x, y)
			pix := rgb.Pix[off : off+3 : off+3]
			lum := (299*uint32(pix[0]) + 587*uint32(pix[1]) + 114*uint32(pix[2])) / 1000
			gray.Pix[gray.PixOffset(x, y)] = uint8(lum)
		}
	}
	return gray
}

// EqualizeHist spreads the grayscale histogram over the full value range,
// matching the preprocessing the detectors and the tracker expect.
func EqualizeHist(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	total := bounds.Dx() * bounds.Dy()
	out := image.NewGray(bounds)
	if total == 0 {
		return out
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := src.Pix[src.PixOffset(bounds.Min.X, y) : src.PixOffset(bounds.Min.X, y)+bounds.Dx()]
		for _, v := range row {
			hist[v]++
		}
	}

	// Cumulative distribution mapped to [0,255], anchored at the first
	// occupied bin.
	var lut [256]uint8
	var cum, cdfMin int
	seen := false
	for v := 0; v < 256; v++ {
		cum += hist[v]
		if !seen && hist[v] > 0 {
			cdfMin = cum
			seen = true
		}
		if seen && total > cdfMin {
			lut[v] = uint8((cum - cdfMin) * 255 / (total - cdfMin))
		} else {
			lut[v] = uint8(v)
		}
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		srcRow := src.Pix[src.PixOffset(bounds.Min.X, y) : src.PixOffset(bounds.Min.X, y)+bounds.Dx()]
		dstRow := out.Pix[out.PixOffset(bounds.Min.X, y) : out.PixOffset(bounds.Min.X, y)+bounds.Dx()]
		for i, v := range srcRow {
			dstRow[i] = lut[v]
		}
	}
	return out
}
