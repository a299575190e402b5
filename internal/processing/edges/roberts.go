package edges

import (
	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"

	"gocv.io/x/gocv"
)

// RobertsDetector combines the 2×2 cross gradients as |gx|+|gy|.
type RobertsDetector struct{}

func NewRobertsDetector() *RobertsDetector {
	return &RobertsDetector{}
}

func (d *RobertsDetector) Algorithm() processing.Algorithm {
	return processing.Roberts
}

func (d *RobertsDetector) Detect(src *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	srcMat := src.GetMat()

	gx, err := filter(srcMat, robertsX, gocv.MatTypeCV64F)
	if err != nil {
		return nil, err
	}
	defer gx.Close()
	gy, err := filter(srcMat, robertsY, gocv.MatTypeCV64F)
	if err != nil {
		return nil, err
	}
	defer gy.Close()

	// Each |g| fits in 8 bits for 8-bit input, so the saturating add below
	// equals saturate(|gx|+|gy|).
	ax, err := absTo8U(gx)
	if err != nil {
		return nil, err
	}
	defer ax.Close()
	ay, err := absTo8U(gy)
	if err != nil {
		return nil, err
	}
	defer ay.Close()

	dst := gocv.NewMat()
	err = gocv.Add(ax, ay, &dst)
	return finish(dst, err, src, "roberts")
}
