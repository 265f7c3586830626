package vision

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

const (
	cascadeShiftFactor  = 0.1
	cascadeScaleFactor  = 1.1
	cascadeIoUThreshold = 0.2
	cascadeQThreshold   = 5.0
)

// CascadeDetector is the `haar` detector variant: a multi-scale cascade
// over the grayscale plane with a minimum face size relative to the frame.
type CascadeDetector struct {
	classifier *pigo.Pigo
	relMinSize float64
}

// NewCascadeDetector loads a binary pigo face cascade. relMinSize is the
// minimum face size as a fraction of min(width, height); the main pipeline
// uses 0.4.
func NewCascadeDetector(cascadePath string, relMinSize float64) (*CascadeDetector, error) {
	data, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("read cascade file: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack cascade: %w", err)
	}
	return &CascadeDetector{classifier: classifier, relMinSize: relMinSize}, nil
}

// Detect runs the cascade over the grayscale plane and returns clustered,
// quality-filtered face boxes.
func (d *CascadeDetector) Detect(rgb *image.RGBA, gray *image.Gray) ([]image.Rectangle, error) {
	bounds := gray.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	minSize := int(d.relMinSize * float64(min(w, h)))
	if minSize < 20 {
		minSize = 20
	}

	params := pigo.CascadeParams{
		MinSize:     minSize,
		MaxSize:     max(w, h),
		ShiftFactor: cascadeShiftFactor,
		ScaleFactor: cascadeScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: gray.Pix,
			Rows:   h,
			Cols:   w,
			Dim:    gray.Stride,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, cascadeIoUThreshold)

	var boxes []image.Rectangle
	for _, det := range dets {
		if det.Q < cascadeQThreshold {
			continue
		}
		half := det.Scale / 2
		boxes = append(boxes, image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half))
	}
	return boxes, nil
}

func (d *CascadeDetector) Close() {}
