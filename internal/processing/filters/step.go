package filters

import (
	"context"

	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"
)

// Step is one stage of the processing chain. Apply must not close input and
// must return a raster the caller owns.
type Step interface {
	Name() string
	ShouldExecute(params processing.Parameters) bool
	Apply(ctx context.Context, input *safe.Mat, params processing.Parameters) (*safe.Mat, error)
}
