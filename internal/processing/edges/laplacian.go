package edges

import (
	"fmt"

	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"

	"gocv.io/x/gocv"
)

const maxLaplacianKernel = 31

// LaplacianDetector takes |∇²I| with a KSize aperture.
type LaplacianDetector struct{}

func NewLaplacianDetector() *LaplacianDetector {
	return &LaplacianDetector{}
}

func (d *LaplacianDetector) Algorithm() processing.Algorithm {
	return processing.Laplacian
}

func (d *LaplacianDetector) Detect(src *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	ksize := processing.CoerceOdd(params.KSize)
	if err := safe.ValidateKernelSize(ksize, maxLaplacianKernel, "laplacian"); err != nil {
		return nil, err
	}

	lap := gocv.NewMat()
	defer lap.Close()
	if err := gocv.Laplacian(src.GetMat(), &lap, gocv.MatTypeCV64F, ksize, 1, 0, gocv.BorderDefault); err != nil {
		return nil, fmt.Errorf("laplacian: %w", err)
	}

	dst, err := absTo8U(lap)
	if err != nil {
		return nil, err
	}
	return wrap(dst, src, "laplacian")
}
