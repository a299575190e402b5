package edges

import (
	"fmt"

	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"

	"gocv.io/x/gocv"
)

// PrewittDetector sums the two directional responses as 8-bit values.
// Each response saturates on its own and the sum wraps modulo 256; there is
// no absolute value step, unlike the other gradient detectors.
type PrewittDetector struct{}

func NewPrewittDetector() *PrewittDetector {
	return &PrewittDetector{}
}

func (d *PrewittDetector) Algorithm() processing.Algorithm {
	return processing.Prewitt
}

func (d *PrewittDetector) Detect(src *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	srcMat := src.GetMat()

	px, err := filter(srcMat, prewittX, gocv.MatType(-1))
	if err != nil {
		return nil, err
	}
	defer px.Close()
	py, err := filter(srcMat, prewittY, gocv.MatType(-1))
	if err != nil {
		return nil, err
	}
	defer py.Close()

	if px.Empty() || py.Empty() {
		return nil, fmt.Errorf("prewitt filter produced no output")
	}

	sum := px.ToBytes()
	ys := py.ToBytes()
	if len(sum) != len(ys) {
		return nil, fmt.Errorf("prewitt responses differ in size: %d vs %d", len(sum), len(ys))
	}
	for i := range sum {
		sum[i] += ys[i]
	}

	return safe.NewMatFromBytes(px.Rows(), px.Cols(), gocv.MatTypeCV8UC1, sum, src.Tracker(), "prewitt")
}
