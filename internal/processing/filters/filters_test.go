package filters

import (
	"context"
	"testing"

	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func grayMat(t *testing.T, rows, cols int, data []byte) *safe.Mat {
	t.Helper()
	m, err := safe.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, data, nil, "test")
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func filled(n int, v byte) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = v
	}
	return data
}

func TestShouldExecute(t *testing.T) {
	p := processing.DefaultParameters()
	assert.True(t, NewGrayscaleConverter().ShouldExecute(p))
	assert.False(t, NewGaussianFilter().ShouldExecute(p))
	assert.False(t, NewInvertFilter().ShouldExecute(p))

	p.Blur, p.Invert = true, true
	assert.True(t, NewGaussianFilter().ShouldExecute(p))
	assert.True(t, NewInvertFilter().ShouldExecute(p))
}

func TestGaussianBlurKeepsFlatImageFlat(t *testing.T) {
	src := grayMat(t, 8, 8, filled(64, 90))

	for _, k := range []int{3, 4, 5, 8} {
		out, err := GaussianBlur(src, k)
		require.NoError(t, err, "kernel %d", k)
		px, err := out.Bytes()
		require.NoError(t, err)
		assert.Equal(t, filled(64, 90), px, "kernel %d", k)
		out.Close()
	}
}

func TestGaussianBlurSmoothsImpulse(t *testing.T) {
	data := make([]byte, 25)
	data[12] = 255
	src := grayMat(t, 5, 5, data)

	out, err := NewGaussianFilter().Apply(context.Background(), src, processing.Parameters{Blur: true, BlurKernel: 3})
	require.NoError(t, err)
	defer out.Close()

	px, err := out.Bytes()
	require.NoError(t, err)
	center, neighbour := px[2*5+2], px[2*5+1]
	assert.Less(t, center, uint8(255))
	assert.Greater(t, neighbour, uint8(0))
	assert.Greater(t, center, neighbour)
}

func TestGaussianBlurRejectsOversizedKernel(t *testing.T) {
	src := grayMat(t, 8, 8, filled(64, 90))

	for _, k := range []int{processing.MaxKernelSize + 1, 100001, 4294967297} {
		_, err := GaussianBlur(src, k)
		assert.Error(t, err, "kernel %d", k)
	}
}

func TestInvertComplement(t *testing.T) {
	data := []byte{0, 1, 127, 128, 254, 255}
	src := grayMat(t, 2, 3, data)

	out, err := NewInvertFilter().Apply(context.Background(), src, processing.Parameters{Invert: true})
	require.NoError(t, err)
	defer out.Close()

	px, err := out.Bytes()
	require.NoError(t, err)
	for i, v := range data {
		assert.Equal(t, 255-v, px[i])
	}
}

func TestStepsHonourCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := grayMat(t, 2, 2, filled(4, 1))
	for _, step := range []Step{NewGrayscaleConverter(), NewGaussianFilter(), NewInvertFilter()} {
		_, err := step.Apply(ctx, src, processing.DefaultParameters())
		assert.ErrorIs(t, err, context.Canceled, step.Name())
	}
}
