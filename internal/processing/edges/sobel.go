package edges

import (
	"fmt"

	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"

	"gocv.io/x/gocv"
)

// OpenCV only implements Sobel apertures up to 7.
const maxSobelKernel = 7

// SobelDetector computes the gradient magnitude of KSize Sobel derivatives.
type SobelDetector struct{}

func NewSobelDetector() *SobelDetector {
	return &SobelDetector{}
}

func (d *SobelDetector) Algorithm() processing.Algorithm {
	return processing.Sobel
}

func (d *SobelDetector) Detect(src *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	ksize := processing.CoerceOdd(params.KSize)
	if err := safe.ValidateKernelSize(ksize, maxSobelKernel, "sobel"); err != nil {
		return nil, err
	}

	srcMat := src.GetMat()

	gx := gocv.NewMat()
	defer gx.Close()
	if err := gocv.Sobel(srcMat, &gx, gocv.MatTypeCV64F, 1, 0, ksize, 1, 0, gocv.BorderDefault); err != nil {
		return nil, fmt.Errorf("sobel x: %w", err)
	}

	gy := gocv.NewMat()
	defer gy.Close()
	if err := gocv.Sobel(srcMat, &gy, gocv.MatTypeCV64F, 0, 1, ksize, 1, 0, gocv.BorderDefault); err != nil {
		return nil, fmt.Errorf("sobel y: %w", err)
	}

	dst, err := magnitudeTo8U(gx, gy)
	if err != nil {
		return nil, err
	}
	return wrap(dst, src, "sobel")
}
