package edges

import (
	"fmt"
	"image"

	"edgevision/internal/opencv/safe"

	"gocv.io/x/gocv"
)

var defaultAnchor = image.Point{X: -1, Y: -1}

var (
	prewittX = [][]float32{{1, 1, 1}, {0, 0, 0}, {-1, -1, -1}}
	prewittY = [][]float32{{-1, 0, 1}, {-1, 0, 1}, {-1, 0, 1}}

	robertsX = [][]float32{{1, 0}, {0, -1}}
	robertsY = [][]float32{{0, 1}, {-1, 0}}
)

// newKernel builds a CV_32F kernel from row-major coefficients.
func newKernel(rows [][]float32) gocv.Mat {
	kernel := gocv.NewMatWithSize(len(rows), len(rows[0]), gocv.MatTypeCV32F)
	for y, row := range rows {
		for x, v := range row {
			kernel.SetFloatAt(y, x, v)
		}
	}
	return kernel
}

// filter correlates src with coefficients into a Mat of the given depth.
// Depth -1 keeps the source depth and saturates. On error the returned Mat
// is already closed.
func filter(src gocv.Mat, coefficients [][]float32, depth gocv.MatType) (gocv.Mat, error) {
	kernel := newKernel(coefficients)
	defer kernel.Close()

	dst := gocv.NewMat()
	if err := gocv.Filter2D(src, &dst, depth, kernel, defaultAnchor, 0, gocv.BorderDefault); err != nil {
		dst.Close()
		return dst, fmt.Errorf("filter2d: %w", err)
	}
	return dst, nil
}

// magnitudeTo8U combines two CV_64F gradients as sqrt(gx²+gy²) and saturates to 8 bits.
func magnitudeTo8U(gx, gy gocv.Mat) (gocv.Mat, error) {
	mag := gocv.NewMat()
	defer mag.Close()

	if err := gocv.Magnitude(gx, gy, &mag); err != nil {
		return gocv.NewMat(), fmt.Errorf("gradient magnitude: %w", err)
	}
	if mag.Empty() {
		return gocv.NewMat(), fmt.Errorf("gradient magnitude is empty")
	}

	return absTo8U(mag)
}

// absTo8U takes |v| and saturates to [0,255].
func absTo8U(src gocv.Mat) (gocv.Mat, error) {
	dst := gocv.NewMat()
	if err := gocv.ConvertScaleAbs(src, &dst, 1, 0); err != nil {
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("convert scale abs: %w", err)
	}
	return dst, nil
}

// finish hands dst to the source's tracker, or releases it when the OpenCV
// call that filled it failed.
func finish(dst gocv.Mat, cvErr error, src *safe.Mat, tag string) (*safe.Mat, error) {
	if cvErr != nil {
		dst.Close()
		return nil, fmt.Errorf("%s: %w", tag, cvErr)
	}
	return wrap(dst, src, tag)
}

func wrap(dst gocv.Mat, src *safe.Mat, tag string) (*safe.Mat, error) {
	out, err := safe.Wrap(dst, src.Tracker(), tag)
	if err != nil {
		return nil, fmt.Errorf("%s produced no output: %w", tag, err)
	}
	return out, nil
}
