package filters

import (
	"context"
	"fmt"

	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"

	"gocv.io/x/gocv"
)

// InvertFilter replaces every pixel v with 255-v.
type InvertFilter struct{}

func NewInvertFilter() *InvertFilter {
	return &InvertFilter{}
}

func (i *InvertFilter) Name() string {
	return "invert"
}

func (i *InvertFilter) ShouldExecute(params processing.Parameters) bool {
	return params.Invert
}

func (i *InvertFilter) Apply(ctx context.Context, input *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return Invert(input)
}

func Invert(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "invert"); err != nil {
		return nil, err
	}

	dst := gocv.NewMat()
	if err := gocv.BitwiseNot(src.GetMat(), &dst); err != nil {
		dst.Close()
		return nil, fmt.Errorf("invert: %w", err)
	}

	result, err := safe.Wrap(dst, src.Tracker(), "inverted")
	if err != nil {
		return nil, fmt.Errorf("invert produced no output: %w", err)
	}
	return result, nil
}
