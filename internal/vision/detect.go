package vision

import "image"

// Detector finds face bounding boxes in a frame. Both implementations share
// this contract: the color and grayscale planes are co-registered, and the
// returned rectangles are in frame coordinates.
type Detector interface {
	Detect(rgb *image.RGBA, gray *image.Gray) ([]image.Rectangle, error)
	Close()
}

// NearestBox picks the candidate whose top-left corner is closest (squared
// Euclidean) to prev. This keeps identity stable across flickering
// detections; on first acquisition prev is the zero point, so the box whose
// top-left is nearest the frame origin is taken. Ties keep the earlier box.
func NearestBox(boxes []image.Rectangle, prev image.Point) image.Rectangle {
	best := boxes[0]
	min := sqDist(best.Min, prev)
	for _, b := range boxes[1:] {
		if d := sqDist(b.Min, prev); d < min {
			min = d
			best = b
		}
	}
	return best
}

func sqDist(a, b image.Point) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}
