package codec

import (
	"fmt"

	"edgevision/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Decode reads compressed image bytes into a 3-channel BGR raster.
func Decode(data []byte, tracker safe.MemoryTracker) (*safe.Mat, error) {
	return decode(data, gocv.IMReadColor, tracker, "decoded")
}

// DecodeGrayscale reads compressed image bytes straight into a single-channel raster.
func DecodeGrayscale(data []byte, tracker safe.MemoryTracker) (*safe.Mat, error) {
	return decode(data, gocv.IMReadGrayScale, tracker, "decoded_gray")
}

func decode(data []byte, flags gocv.IMReadFlag, tracker safe.MemoryTracker, tag string) (*safe.Mat, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	mat, err := gocv.IMDecode(data, flags)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("%w: unrecognized or corrupt image data (%d bytes)", ErrDecode, len(data))
	}

	if err := safe.ValidateDimensions(mat.Cols(), mat.Rows(), "decode"); err != nil {
		mat.Close()
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	safeMat, err := safe.Wrap(mat, tracker, tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return safeMat, nil
}
