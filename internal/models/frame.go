package models

import "image"

// Frame is one co-registered pair of images handed to the pipeline.
// RGB is the color frame (the overlay path may draw into it); Gray is the
// histogram-equalized grayscale companion used for detection and tracking.
// Time is a monotonic integer timestamp; seconds = Time * timeBase.
type Frame struct {
	RGB  *image.RGBA
	Gray *image.Gray
	Time int64
}
