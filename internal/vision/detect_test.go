package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNearestBoxPicksClosestTopLeft(t *testing.T) {
	boxes := []image.Rectangle{
		image.Rect(300, 300, 400, 400),
		image.Rect(105, 98, 205, 198),
		image.Rect(0, 0, 50, 50),
	}
	got := NearestBox(boxes, image.Pt(100, 100))
	assert.Equal(t, boxes[1], got)
}

func TestNearestBoxSingleCandidate(t *testing.T) {
	boxes := []image.Rectangle{image.Rect(10, 20, 110, 120)}
	assert.Equal(t, boxes[0], NearestBox(boxes, image.Pt(500, 500)))
}

func TestNearestBoxFirstAcquisition(t *testing.T) {
	// With no prior box the zero point decides; ties keep the first.
	boxes := []image.Rectangle{
		image.Rect(5, 5, 50, 50),
		image.Rect(200, 200, 260, 260),
	}
	assert.Equal(t, boxes[0], NearestBox(boxes, image.Point{}))
}
