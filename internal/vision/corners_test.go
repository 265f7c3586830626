package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squareImage draws a dark square on a light background.
func squareImage(w, h int, sq image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 220
	}
	for y := sq.Min.Y; y < sq.Max.Y; y++ {
		for x := sq.Min.X; x < sq.Max.X; x++ {
			img.Pix[img.PixOffset(x, y)] = 30
		}
	}
	return img
}

func fullRegion(w, h int) Polygon {
	return Polygon{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

func TestGoodFeaturesFindsSquareCorners(t *testing.T) {
	sq := image.Rect(80, 80, 140, 140)
	img := squareImage(200, 200, sq)

	corners := GoodFeatures(img, fullRegion(200, 200), 10, 0.1, 20, 3)
	require.NotEmpty(t, corners)

	expected := []Point2f{
		{80, 80}, {139, 80}, {80, 139}, {139, 139},
	}
	for _, want := range expected {
		found := false
		for _, got := range corners {
			if got.distTo(want) < 6 {
				found = true
				break
			}
		}
		assert.True(t, found, "no corner near (%v, %v)", want.X, want.Y)
	}
}

func TestGoodFeaturesRespectsMaxAndSpacing(t *testing.T) {
	sq := image.Rect(60, 60, 150, 150)
	img := squareImage(220, 220, sq)

	minDist := 25.0
	corners := GoodFeatures(img, fullRegion(220, 220), 3, 0.01, minDist, 3)
	assert.LessOrEqual(t, len(corners), 3)

	for i := range corners {
		for j := i + 1; j < len(corners); j++ {
			assert.GreaterOrEqual(t, corners[i].distTo(corners[j]), minDist)
		}
	}
}

func TestGoodFeaturesRespectsRegion(t *testing.T) {
	sq := image.Rect(80, 80, 140, 140)
	img := squareImage(200, 200, sq)

	// Region covering only the left half; right-side corners excluded.
	region := Polygon{{0, 0}, {100, 0}, {100, 200}, {0, 200}}
	corners := GoodFeatures(img, region, 10, 0.1, 10, 3)
	for _, c := range corners {
		assert.Less(t, c.X, float32(100))
	}
}

func TestGoodFeaturesFlatImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	assert.Empty(t, GoodFeatures(img, fullRegion(64, 64), 10, 0.01, 20, 3))
}

func TestPolygonContains(t *testing.T) {
	trapezoid := Polygon{{22, 21}, {78, 21}, {70, 65}, {30, 65}}
	assert.True(t, trapezoid.Contains(50, 40))
	assert.False(t, trapezoid.Contains(10, 40))
	assert.False(t, trapezoid.Contains(50, 80))
}
