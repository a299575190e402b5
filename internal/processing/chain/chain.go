package chain

import (
	"context"
	"fmt"

	"edgevision/internal/debug/timing"
	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"
	"edgevision/internal/processing/filters"
)

type ProcessingChain struct {
	steps  []filters.Step
	timing *timing.Tracker
}

func NewProcessingChain(steps []filters.Step) *ProcessingChain {
	return &ProcessingChain{
		steps: steps,
	}
}

// WithTiming records the duration of every executed step under its name.
func (pc *ProcessingChain) WithTiming(tracker *timing.Tracker) *ProcessingChain {
	pc.timing = tracker
	return pc
}

// Execute runs the enabled steps in order. The input is never closed; every
// intermediate raster is closed as soon as the next step has consumed it.
func (pc *ProcessingChain) Execute(ctx context.Context, input *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	current := input

	release := func() {
		if current != input {
			current.Close()
		}
	}

	for _, step := range pc.steps {
		select {
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		default:
		}

		if !step.ShouldExecute(params) {
			continue
		}

		timingCtx := pc.timing.StartTiming(step.Name())
		result, err := step.Apply(ctx, current, params)
		pc.timing.EndTiming(timingCtx)
		if err != nil {
			release()
			return nil, fmt.Errorf("step %s failed: %w", step.Name(), err)
		}

		release()
		current = result
	}

	if current == input {
		return input.Clone()
	}
	return current, nil
}

// ActiveStepNames lists the steps that would run for params.
func (pc *ProcessingChain) ActiveStepNames(params processing.Parameters) []string {
	names := make([]string, 0, len(pc.steps))
	for _, step := range pc.steps {
		if step.ShouldExecute(params) {
			names = append(names, step.Name())
		}
	}
	return names
}
