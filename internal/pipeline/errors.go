package pipeline

import "errors"

var (
	// ErrProcessingFailed is the only error Process and Run return. The cause
	// is logged, not propagated.
	ErrProcessingFailed = errors.New("processing failed")

	// ErrHistogramFailed is the only error Histogram returns.
	ErrHistogramFailed = errors.New("histogram failed")
)
