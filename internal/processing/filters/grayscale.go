package filters

import (
	"context"

	"edgevision/internal/codec"
	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"
)

// GrayscaleConverter reduces the decoded raster to a single luma channel.
type GrayscaleConverter struct{}

func NewGrayscaleConverter() *GrayscaleConverter {
	return &GrayscaleConverter{}
}

func (g *GrayscaleConverter) Name() string {
	return "grayscale"
}

func (g *GrayscaleConverter) ShouldExecute(params processing.Parameters) bool {
	return true
}

func (g *GrayscaleConverter) Apply(ctx context.Context, input *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return codec.ToGrayscale(input)
}
