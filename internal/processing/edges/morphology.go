package edges

import (
	"fmt"
	"image"

	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"

	"gocv.io/x/gocv"
)

// MorphologicalDetector computes dilation minus erosion with a square
// all-ones structuring element of size KSize.
type MorphologicalDetector struct{}

func NewMorphologicalDetector() *MorphologicalDetector {
	return &MorphologicalDetector{}
}

func (m *MorphologicalDetector) Algorithm() processing.Algorithm {
	return processing.Morphological
}

func (m *MorphologicalDetector) Detect(src *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	ksize := processing.CoerceOdd(params.KSize)
	if err := safe.ValidateKernelSize(ksize, processing.MaxKernelSize, "morphological gradient"); err != nil {
		return nil, err
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: ksize, Y: ksize})
	defer kernel.Close()
	if kernel.Empty() {
		return nil, fmt.Errorf("structuring element %dx%d could not be built", ksize, ksize)
	}

	dst := gocv.NewMat()
	err := gocv.MorphologyEx(src.GetMat(), &dst, gocv.MorphGradient, kernel)
	return finish(dst, err, src, "morphological")
}
