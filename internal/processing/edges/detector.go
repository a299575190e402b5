package edges

import (
	"context"
	"fmt"

	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"
)

// Detector turns a single-channel 8-bit raster into an 8-bit response map.
type Detector interface {
	Algorithm() processing.Algorithm
	Detect(src *safe.Mat, params processing.Parameters) (*safe.Mat, error)
}

// Registry maps every Algorithm variant to its Detector. Lookups for a
// variant without a handler fall back to the identity detector.
type Registry struct {
	detectors map[processing.Algorithm]Detector
	fallback  Detector
}

func NewRegistry() *Registry {
	r := &Registry{
		detectors: make(map[processing.Algorithm]Detector),
		fallback:  NewIdentityDetector(),
	}

	for _, d := range []Detector{
		r.fallback,
		NewCannyDetector(),
		NewSobelDetector(),
		NewLaplacianDetector(),
		NewScharrDetector(),
		NewPrewittDetector(),
		NewMorphologicalDetector(),
		NewRobertsDetector(),
	} {
		r.detectors[d.Algorithm()] = d
	}

	return r
}

func (r *Registry) For(alg processing.Algorithm) Detector {
	if d, ok := r.detectors[alg]; ok {
		return d
	}
	return r.fallback
}

// DetectStep adapts the registry to the processing chain for one algorithm.
type DetectStep struct {
	detector Detector
}

func NewDetectStep(registry *Registry, alg processing.Algorithm) *DetectStep {
	return &DetectStep{detector: registry.For(alg)}
}

func (s *DetectStep) Name() string {
	return s.detector.Algorithm().String()
}

func (s *DetectStep) ShouldExecute(params processing.Parameters) bool {
	return true
}

func (s *DetectStep) Apply(ctx context.Context, input *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateMatForOperation(input, s.Name()); err != nil {
		return nil, err
	}
	if err := safe.ValidateChannels(input, 1, s.Name()); err != nil {
		return nil, err
	}

	out, err := s.detector.Detect(input, params)
	if err != nil {
		return nil, fmt.Errorf("%s detector: %w", s.Name(), err)
	}
	return out, nil
}
