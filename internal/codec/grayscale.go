package codec

import (
	"fmt"

	"edgevision/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ToGrayscale converts BGR/BGRA rasters to single-channel luma. A
// single-channel input is cloned so the result is always caller-owned.
func ToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "grayscale conversion"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if src.Channels() == 1 {
		return src.Clone()
	}

	dst := gocv.NewMat()
	srcMat := src.GetMat()

	var code gocv.ColorConversionCode
	switch src.Channels() {
	case 3:
		code = gocv.ColorBGRToGray
	case 4:
		code = gocv.ColorBGRAToGray
	default:
		dst.Close()
		return nil, fmt.Errorf("unsupported channel count for grayscale conversion: %d", src.Channels())
	}

	if err := gocv.CvtColor(srcMat, &dst, code); err != nil {
		dst.Close()
		return nil, fmt.Errorf("grayscale conversion: %w", err)
	}

	gray, err := safe.Wrap(dst, src.Tracker(), "grayscale")
	if err != nil {
		return nil, fmt.Errorf("grayscale conversion produced no output: %w", err)
	}
	return gray, nil
}
