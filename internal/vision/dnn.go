package vision

import (
	"fmt"
	"image"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	dnnInputSize     = 300
	dnnConfThreshold = 0.5
)

// SSD mean subtraction values, BGR order.
var dnnMean = [3]float32{104.0, 177.0, 123.0}

// DNNDetector runs an SSD-style face detection model through ONNX Runtime.
// The model takes a 1×3×300×300 mean-subtracted BGR blob and emits
// 1×1×N×7 rows of (batch, class, confidence, x1, y1, x2, y2) with
// normalized corner coordinates.
type DNNDetector struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	maxDet       int
}

// NewDNNDetector loads the ONNX face detection model.
// opts may be nil (ORT defaults) or a pre-configured *ort.SessionOptions.
func NewDNNDetector(modelPath, inputName, outputName string, maxDetections int, opts *ort.SessionOptions) (*DNNDetector, error) {
	inputShape := ort.NewShape(1, 3, dnnInputSize, dnnInputSize)
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	outputShape := ort.NewShape(1, 1, int64(maxDetections), 7)
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		opts,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create detector session: %w", err)
	}

	return &DNNDetector{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		maxDet:       maxDetections,
	}, nil
}

// Detect runs the forward pass and denormalizes surviving boxes to frame
// coordinates.
func (d *DNNDetector) Detect(rgb *image.RGBA, gray *image.Gray) ([]image.Rectangle, error) {
	preprocessSSD(rgb, d.inputTensor.GetData())

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("run detection: %w", err)
	}

	bounds := rgb.Bounds()
	w := float32(bounds.Dx())
	h := float32(bounds.Dy())

	out := d.outputTensor.GetData()
	var boxes []image.Rectangle
	for i := 0; i < d.maxDet; i++ {
		row := out[i*7 : i*7+7]
		if row[2] <= dnnConfThreshold {
			continue
		}
		x1 := int(row[3] * w)
		y1 := int(row[4] * h)
		x2 := int(row[5] * w)
		y2 := int(row[6] * h)
		r := image.Rect(x1, y1, x2, y2)
		if !r.Empty() {
			boxes = append(boxes, r)
		}
	}
	return boxes, nil
}

func (d *DNNDetector) Close() {
	if d.session != nil {
		d.session.Destroy()
	}
	if d.inputTensor != nil {
		d.inputTensor.Destroy()
	}
	if d.outputTensor != nil {
		d.outputTensor.Destroy()
	}
}

// preprocessSSD resizes the frame to 300×300 and writes mean-subtracted
// CHW planes in BGR order in a single pass over the pixels.
func preprocessSSD(img *image.RGBA, dst []float32) {
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	minX := bounds.Min.X
	minY := bounds.Min.Y
	planeSize := dnnInputSize * dnnInputSize

	for y := 0; y < dnnInputSize; y++ {
		srcY := minY + y*srcH/dnnInputSize
		for x := 0; x < dnnInputSize; x++ {
			srcX := minX + x*srcW/dnnInputSize
			off := img.PixOffset(srcX, srcY)
			pix := img.Pix[off : off+3 : off+3]
			idx := y*dnnInputSize + x
			dst[idx] = float32(pix[2]) - dnnMean[0]             // B
			dst[planeSize+idx] = float32(pix[1]) - dnnMean[1]   // G
			dst[2*planeSize+idx] = float32(pix[0]) - dnnMean[2] // R
		}
	}
}
