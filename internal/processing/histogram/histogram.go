package histogram

import (
	"fmt"

	"edgevision/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Bins is the number of intensity levels in an 8-bit raster.
const Bins = 256

// Histogram holds one count per intensity level, index = level.
type Histogram [Bins]int

// Compute counts the pixels of a single-channel 8-bit raster per intensity.
func Compute(src *safe.Mat) (Histogram, error) {
	var h Histogram

	if err := safe.ValidateMatForOperation(src, "histogram"); err != nil {
		return h, err
	}
	if err := safe.ValidateChannels(src, 1, "histogram"); err != nil {
		return h, err
	}
	if src.Type() != gocv.MatTypeCV8UC1 {
		return h, fmt.Errorf("histogram requires an 8-bit raster, got type %v", src.Type())
	}

	px, err := src.Bytes()
	if err != nil {
		return h, fmt.Errorf("histogram: %w", err)
	}
	for _, v := range px {
		h[v]++
	}

	if total, want := h.Total(), src.Rows()*src.Cols(); total != want {
		return h, fmt.Errorf("histogram counts %d pixels, raster has %d", total, want)
	}

	return h, nil
}

func (h Histogram) Total() int {
	total := 0
	for _, c := range h {
		total += c
	}
	return total
}

// Slice returns the counts as an ordered slice for JSON encoding.
func (h Histogram) Slice() []int {
	out := make([]int, Bins)
	copy(out, h[:])
	return out
}
