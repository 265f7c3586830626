package vision

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// texture renders a smooth band-limited pattern offset by (dx, dy);
// shifting the offset shifts the image content.
func texture(w, h int, dx, dy float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx := float64(x) - dx
			fy := float64(y) - dy
			v := 128 +
				50*math.Sin(fx*0.25)*math.Cos(fy*0.21) +
				30*math.Cos(fx*0.11+fy*0.17)
			img.Pix[img.PixOffset(x, y)] = uint8(math.Max(0, math.Min(255, v)))
		}
	}
	return img
}

func TestPyramidalLKRecoversTranslation(t *testing.T) {
	const shiftX, shiftY = 3.0, 2.0
	prev := texture(120, 120, 0, 0)
	next := texture(120, 120, shiftX, shiftY)

	pts := []Point2f{{40, 40}, {60, 50}, {50, 70}, {75, 65}}
	out, status := PyramidalLK(prev, next, pts)
	require.Len(t, out, len(pts))

	for i := range pts {
		require.True(t, status[i], "point %d lost", i)
		assert.InDelta(t, float64(pts[i].X)+shiftX, float64(out[i].X), 0.5)
		assert.InDelta(t, float64(pts[i].Y)+shiftY, float64(out[i].Y), 0.5)
	}
}

func TestPyramidalLKBackwardConsistency(t *testing.T) {
	prev := texture(120, 120, 0, 0)
	next := texture(120, 120, 2.5, -1.5)

	pts := []Point2f{{45, 55}, {65, 45}}
	fwd, st1 := PyramidalLK(prev, next, pts)
	back, st2 := PyramidalLK(next, prev, fwd)

	for i := range pts {
		require.True(t, st1[i] && st2[i])
		assert.Less(t, pts[i].distTo(back[i]), 1.0)
	}
}

func TestPyramidalLKRejectsOutOfFrame(t *testing.T) {
	prev := texture(80, 80, 0, 0)
	// A rightward shift carries a point sitting at the border out of the
	// frame.
	next := texture(80, 80, 6, 0)

	_, status := PyramidalLK(prev, next, []Point2f{{78, 40}})
	assert.False(t, status[0])
}

func TestPyramidalLKNoPoints(t *testing.T) {
	prev := texture(64, 64, 0, 0)
	out, status := PyramidalLK(prev, prev, nil)
	assert.Empty(t, out)
	assert.Empty(t, status)
}

func TestEstimateSimilarityRecoversTransform(t *testing.T) {
	angle := 10 * math.Pi / 180
	scale := 1.05
	tx, ty := 4.0, -2.0
	a := scale * math.Cos(angle)
	b := scale * math.Sin(angle)

	src := []Point2f{{10, 10}, {60, 15}, {35, 50}, {80, 70}, {20, 65}}
	dst := make([]Point2f, len(src))
	for i, p := range src {
		x := float64(p.X)
		y := float64(p.Y)
		dst[i] = Point2f{
			X: float32(a*x - b*y + tx),
			Y: float32(b*x + a*y + ty),
		}
	}

	tf, ok := EstimateSimilarity(src, dst)
	require.True(t, ok)
	assert.InDelta(t, a, tf.A, 1e-4)
	assert.InDelta(t, b, tf.B, 1e-4)
	assert.InDelta(t, tx, tf.TX, 1e-3)
	assert.InDelta(t, ty, tf.TY, 1e-3)

	for i, p := range src {
		got := tf.Apply(p)
		assert.InDelta(t, float64(dst[i].X), float64(got.X), 1e-2)
		assert.InDelta(t, float64(dst[i].Y), float64(got.Y), 1e-2)
	}
}

func TestEstimateSimilarityDegenerate(t *testing.T) {
	_, ok := EstimateSimilarity([]Point2f{{1, 1}}, []Point2f{{2, 2}})
	assert.False(t, ok)

	// All source points identical: no rotation/scale is defined.
	src := []Point2f{{5, 5}, {5, 5}, {5, 5}}
	dst := []Point2f{{6, 6}, {7, 7}, {8, 8}}
	_, ok = EstimateSimilarity(src, dst)
	assert.False(t, ok)
}

func TestApplyRectTranslation(t *testing.T) {
	tf := Affine{A: 1, B: 0, TX: 10, TY: 5}
	got := tf.ApplyRect(image.Rect(0, 0, 20, 30))
	assert.Equal(t, image.Rect(10, 5, 30, 35), got)
}
