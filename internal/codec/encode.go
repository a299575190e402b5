package codec

import (
	"bytes"
	"fmt"

	"edgevision/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Encode serializes a raster to PNG. The returned slice is owned by Go.
func Encode(m *safe.Mat) ([]byte, error) {
	if err := safe.ValidateMatForOperation(m, "encode"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, m.GetMat())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	defer buf.Close()

	data := bytes.Clone(buf.GetBytes())
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty PNG output", ErrEncode)
	}
	return data, nil
}
