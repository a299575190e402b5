package edges

import (
	"fmt"

	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"

	"gocv.io/x/gocv"
)

// ScharrDetector is Sobel's fixed 3×3 counterpart with better rotational symmetry.
type ScharrDetector struct{}

func NewScharrDetector() *ScharrDetector {
	return &ScharrDetector{}
}

func (d *ScharrDetector) Algorithm() processing.Algorithm {
	return processing.Scharr
}

func (d *ScharrDetector) Detect(src *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	srcMat := src.GetMat()

	gx := gocv.NewMat()
	defer gx.Close()
	if err := gocv.Scharr(srcMat, &gx, gocv.MatTypeCV64F, 1, 0, 1, 0, gocv.BorderDefault); err != nil {
		return nil, fmt.Errorf("scharr x: %w", err)
	}

	gy := gocv.NewMat()
	defer gy.Close()
	if err := gocv.Scharr(srcMat, &gy, gocv.MatTypeCV64F, 0, 1, 1, 0, gocv.BorderDefault); err != nil {
		return nil, fmt.Errorf("scharr y: %w", err)
	}

	dst, err := magnitudeTo8U(gx, gy)
	if err != nil {
		return nil, err
	}
	return wrap(dst, src, "scharr")
}
