package edges

import (
	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"

	"gocv.io/x/gocv"
)

// CannyDetector runs hysteresis edge detection between Threshold1 and Threshold2.
type CannyDetector struct{}

func NewCannyDetector() *CannyDetector {
	return &CannyDetector{}
}

func (d *CannyDetector) Algorithm() processing.Algorithm {
	return processing.Canny
}

func (d *CannyDetector) Detect(src *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	dst := gocv.NewMat()
	err := gocv.Canny(src.GetMat(), &dst, float32(params.Threshold1), float32(params.Threshold2))
	return finish(dst, err, src, "canny")
}
