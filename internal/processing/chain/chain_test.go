package chain

import (
	"context"
	"errors"
	"testing"

	"edgevision/internal/debug/timing"
	"edgevision/internal/opencv/memory"
	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"
	"edgevision/internal/processing/filters"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type failingStep struct{}

func (failingStep) Name() string { return "fail" }

func (failingStep) ShouldExecute(params processing.Parameters) bool { return true }

func (failingStep) Apply(ctx context.Context, input *safe.Mat, params processing.Parameters) (*safe.Mat, error) {
	return nil, errors.New("kaboom")
}

func input(t *testing.T, tracker safe.MemoryTracker) *safe.Mat {
	t.Helper()
	m, err := safe.NewMatFromBytes(2, 2, gocv.MatTypeCV8UC1, []byte{0, 50, 100, 255}, tracker, "input")
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestExecuteRunsEnabledStepsInOrder(t *testing.T) {
	tracker := memory.NewTracker(0)
	timer := timing.NewTracker()
	pc := NewProcessingChain([]filters.Step{
		filters.NewGrayscaleConverter(),
		filters.NewGaussianFilter(),
		filters.NewInvertFilter(),
	}).WithTiming(timer)

	params := processing.DefaultParameters()
	params.Invert = true
	assert.Equal(t, []string{"grayscale", "invert"}, pc.ActiveStepNames(params))

	out, err := pc.Execute(context.Background(), input(t, tracker), params)
	require.NoError(t, err)
	px, err := out.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 205, 155, 0}, px)
	out.Close()

	assert.Len(t, timer.GetTimings("invert"), 1)
	assert.Empty(t, timer.GetTimings("blur"))
	assert.Equal(t, int64(1), tracker.GetStats().ActiveMats, "only the input should remain")
}

func TestExecuteReleasesOnFailure(t *testing.T) {
	tracker := memory.NewTracker(0)
	pc := NewProcessingChain([]filters.Step{filters.NewGrayscaleConverter(), failingStep{}})
	assert.Equal(t, []string{"grayscale", "fail"}, pc.ActiveStepNames(processing.DefaultParameters()))

	_, err := pc.Execute(context.Background(), input(t, tracker), processing.DefaultParameters())
	assert.ErrorContains(t, err, "step fail failed")
	assert.Equal(t, int64(1), tracker.GetStats().ActiveMats)
}

func TestExecuteWithNoActiveStepsClones(t *testing.T) {
	pc := NewProcessingChain([]filters.Step{filters.NewInvertFilter()})
	in := input(t, nil)

	out, err := pc.Execute(context.Background(), in, processing.DefaultParameters())
	require.NoError(t, err)
	defer out.Close()
	assert.NotSame(t, in, out)
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pc := NewProcessingChain([]filters.Step{filters.NewGrayscaleConverter()})
	_, err := pc.Execute(ctx, input(t, nil), processing.DefaultParameters())
	assert.ErrorIs(t, err, context.Canceled)
}
