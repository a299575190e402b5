package edges

import (
	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"
)

// IdentityDetector passes the grayscale raster through unchanged.
type IdentityDetector struct{}

func NewIdentityDetector() *IdentityDetector {
	return &IdentityDetector{}
}

func (d *IdentityDetector) Algorithm() processing.Algorithm {
	return processing.Identity
}

func (d *IdentityDetector) Detect(src *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	return src.Clone()
}
