package filters

import (
	"context"
	"fmt"
	"image"

	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"

	"gocv.io/x/gocv"
)

// GaussianFilter smooths the raster ahead of edge detection.
type GaussianFilter struct{}

func NewGaussianFilter() *GaussianFilter {
	return &GaussianFilter{}
}

func (g *GaussianFilter) Name() string {
	return "blur"
}

func (g *GaussianFilter) ShouldExecute(params processing.Parameters) bool {
	return params.Blur
}

func (g *GaussianFilter) Apply(ctx context.Context, input *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return GaussianBlur(input, params.BlurKernel)
}

// GaussianBlur applies a kernelSize×kernelSize Gaussian with sigma derived
// from the size. Even sizes are bumped to the next odd value.
func GaussianBlur(src *safe.Mat, kernelSize int) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "gaussian blur"); err != nil {
		return nil, err
	}

	kernelSize = processing.CoerceOdd(kernelSize)
	if err := safe.ValidateKernelSize(kernelSize, processing.MaxKernelSize, "gaussian blur"); err != nil {
		return nil, err
	}

	dst := gocv.NewMat()
	if err := gocv.GaussianBlur(src.GetMat(), &dst, image.Point{X: kernelSize, Y: kernelSize}, 0, 0, gocv.BorderDefault); err != nil {
		dst.Close()
		return nil, fmt.Errorf("gaussian blur: %w", err)
	}

	result, err := safe.Wrap(dst, src.Tracker(), "blurred")
	if err != nil {
		return nil, fmt.Errorf("gaussian blur produced no output: %w", err)
	}
	return result, nil
}
