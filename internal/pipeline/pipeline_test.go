package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"edgevision/internal/debug/timing"
	"edgevision/internal/logger"
	"edgevision/internal/opencv/memory"
	"edgevision/internal/processing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkerboard draws a colored test card with hard edges.
func checkerboard(t *testing.T, w, h, cell int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.RGBA{R: 230, G: 180, B: 40, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 20, G: 40, B: 90, A: 255})
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func grayPixels(t *testing.T, data []byte) ([]byte, image.Rectangle) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	b := img.Bounds()
	px := make([]byte, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px = append(px, color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
		}
	}
	return px, b
}

func newTestPipeline() (*Pipeline, *memory.Tracker) {
	mem := memory.NewTracker(0)
	return New(WithMemoryTracker(mem), WithTiming(timing.NewTracker())), mem
}

func TestProcessEveryAlgorithm(t *testing.T) {
	p, mem := newTestPipeline()
	input := checkerboard(t, 32, 24, 8)

	for _, alg := range processing.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			out, err := p.Process(context.Background(), input, alg.String(), map[string]interface{}{})
			require.NoError(t, err)

			_, bounds := grayPixels(t, out)
			assert.Equal(t, 32, bounds.Dx())
			assert.Equal(t, 24, bounds.Dy())
		})
	}

	assert.Zero(t, mem.GetStats().ActiveMats, "leaked: %v", mem.Leaks())
	assert.NotEmpty(t, p.Timing().Averages())
}

func TestUnknownAlgorithmFallsBackToGrayscale(t *testing.T) {
	p, _ := newTestPipeline()
	input := checkerboard(t, 16, 16, 4)

	unknown, err := p.Process(context.Background(), input, "nonexistent-algo", map[string]interface{}{})
	require.NoError(t, err)
	identity, err := p.Run(context.Background(), input, processing.Identity, processing.DefaultParameters())
	require.NoError(t, err)

	got, _ := grayPixels(t, unknown)
	want, _ := grayPixels(t, identity)
	assert.Equal(t, want, got)

	// Two distinct luma levels, matching the two checkerboard colors.
	levels := map[byte]bool{}
	for _, v := range got {
		levels[v] = true
	}
	assert.Len(t, levels, 2)
}

func TestCannyInvertIsComplement(t *testing.T) {
	p, _ := newTestPipeline()
	input := checkerboard(t, 40, 40, 10)

	plain, err := p.Process(context.Background(), input, "canny", map[string]interface{}{"invert": false})
	require.NoError(t, err)
	inverted, err := p.Process(context.Background(), input, "canny", map[string]interface{}{"invert": true})
	require.NoError(t, err)

	a, _ := grayPixels(t, plain)
	b, _ := grayPixels(t, inverted)
	require.Len(t, b, len(a))

	edges := 0
	for i := range a {
		assert.Equal(t, 255-a[i], b[i], "index %d", i)
		if a[i] == 255 {
			edges++
		}
	}
	assert.Positive(t, edges)
}

func TestBlurChangesIdentityOutput(t *testing.T) {
	p, _ := newTestPipeline()
	input := checkerboard(t, 24, 24, 4)

	sharp, err := p.Process(context.Background(), input, "identity", nil)
	require.NoError(t, err)
	blurred, err := p.Process(context.Background(), input, "identity", map[string]interface{}{"blur": true, "blur_kernel": 4})
	require.NoError(t, err)

	a, _ := grayPixels(t, sharp)
	b, _ := grayPixels(t, blurred)
	assert.NotEqual(t, a, b)
}

func TestProcessFailuresCollapseToOneError(t *testing.T) {
	p, mem := newTestPipeline()

	tests := []struct {
		name      string
		data      []byte
		algorithm string
		params    map[string]interface{}
	}{
		{"nil input", nil, "sobel", nil},
		{"garbage input", []byte("not an image at all"), "canny", nil},
		{"sobel aperture too large", checkerboard(t, 16, 16, 4), "sobel", map[string]interface{}{"ksize": 9}},
		{"laplacian aperture too large", checkerboard(t, 16, 16, 4), "laplacian", map[string]interface{}{"ksize": 40}},
		{"blur kernel beyond bound", checkerboard(t, 16, 16, 4), "canny", map[string]interface{}{"blur": true, "blur_kernel": 4294967297}},
		{"structuring element beyond bound", checkerboard(t, 16, 16, 4), "morphological", map[string]interface{}{"ksize": processing.MaxKernelSize + 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Process(context.Background(), tt.data, tt.algorithm, tt.params)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrProcessingFailed), "got %v", err)
		})
	}

	assert.Zero(t, mem.GetStats().ActiveMats, "leaked: %v", mem.Leaks())
}

func TestRunLogsActiveSteps(t *testing.T) {
	var buf bytes.Buffer
	p := New(WithLogger(logger.NewWithWriter(&buf, "json", zerolog.DebugLevel)))

	params := processing.DefaultParameters()
	params.Invert = true
	_, err := p.Run(context.Background(), checkerboard(t, 8, 8, 2), processing.Sobel, params)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "processing completed", entry["message"])
	assert.Equal(t, []interface{}{"grayscale", "sobel", "invert"}, entry["steps"])
}

func TestProcessCancelledContext(t *testing.T) {
	p, _ := newTestPipeline()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, checkerboard(t, 8, 8, 2), "sobel", nil)
	assert.ErrorIs(t, err, ErrProcessingFailed)
}

func TestHistogram(t *testing.T) {
	p, mem := newTestPipeline()

	counts, err := p.Histogram(checkerboard(t, 20, 10, 5))
	require.NoError(t, err)
	require.Len(t, counts, 256)

	total, nonZero := 0, 0
	for _, c := range counts {
		assert.GreaterOrEqual(t, c, 0)
		total += c
		if c > 0 {
			nonZero++
		}
	}
	assert.Equal(t, 200, total)
	assert.Equal(t, 2, nonZero)
	assert.Zero(t, mem.GetStats().ActiveMats)
}

func TestHistogramMalformedInput(t *testing.T) {
	p, _ := newTestPipeline()

	for _, data := range [][]byte{nil, {}, []byte("\x89PNG garbage")} {
		counts, err := p.Histogram(data)
		assert.Nil(t, counts)
		assert.ErrorIs(t, err, ErrHistogramFailed)
	}
}

func TestConcurrentCallsAreIndependent(t *testing.T) {
	p, mem := newTestPipeline()
	input := checkerboard(t, 32, 32, 8)

	want := make(map[string][]byte)
	for _, alg := range processing.Algorithms() {
		out, err := p.Run(context.Background(), input, alg, processing.DefaultParameters())
		require.NoError(t, err)
		want[alg.String()] = out
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		alg := processing.Algorithms()[i%len(processing.Algorithms())]
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := p.Run(context.Background(), input, alg, processing.DefaultParameters())
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(out, want[alg.String()]) {
				errs <- fmt.Errorf("%s output differs under concurrency", alg)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Zero(t, mem.GetStats().ActiveMats)
}
