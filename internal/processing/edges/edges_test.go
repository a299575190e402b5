package edges

import (
	"context"
	"testing"

	"edgevision/internal/opencv/memory"
	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// singleBrightPixel is a 4×4 black image with one white pixel at (1,1).
func singleBrightPixel() []byte {
	data := make([]byte, 16)
	data[1*4+1] = 255
	return data
}

func grayMat(t *testing.T, rows, cols int, data []byte, tracker safe.MemoryTracker) *safe.Mat {
	t.Helper()
	m, err := safe.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, data, tracker, "input")
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func detect(t *testing.T, alg processing.Algorithm, src *safe.Mat, params processing.Parameters) []byte {
	t.Helper()
	out, err := NewRegistry().For(alg).Detect(src, params)
	require.NoError(t, err)
	defer out.Close()

	require.Equal(t, src.Rows(), out.Rows())
	require.Equal(t, src.Cols(), out.Cols())
	require.Equal(t, 1, out.Channels())

	px, err := out.Bytes()
	require.NoError(t, err)
	return px
}

func at(px []byte, cols, row, col int) byte {
	return px[row*cols+col]
}

func TestRegistryCoversEveryAlgorithm(t *testing.T) {
	r := NewRegistry()
	for _, alg := range processing.Algorithms() {
		assert.Equal(t, alg, r.For(alg).Algorithm())
	}
	assert.Equal(t, processing.Identity, r.For(processing.Algorithm(99)).Algorithm())
}

func TestGoldenSingleBrightPixel(t *testing.T) {
	params := processing.DefaultParameters()

	tests := []struct {
		alg  processing.Algorithm
		want map[[2]int]byte
	}{
		{
			// Sobel responds on the ring around the pixel, not at it.
			alg: processing.Sobel,
			want: map[[2]int]byte{
				{1, 1}: 0, {1, 2}: 255, {2, 1}: 255, {3, 3}: 0,
			},
		},
		{
			alg: processing.Laplacian,
			want: map[[2]int]byte{
				{1, 1}: 255, {2, 2}: 255, {3, 3}: 0,
			},
		},
		{
			alg: processing.Roberts,
			want: map[[2]int]byte{
				{1, 1}: 255, {2, 2}: 255, {3, 3}: 0, {0, 3}: 0,
			},
		},
		{
			alg: processing.Scharr,
			want: map[[2]int]byte{
				{1, 1}: 0, {1, 2}: 255, {2, 1}: 255, {3, 3}: 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.alg.String(), func(t *testing.T) {
			px := detect(t, tt.alg, grayMat(t, 4, 4, singleBrightPixel(), nil), params)
			for pos, want := range tt.want {
				assert.Equal(t, want, at(px, 4, pos[0], pos[1]), "pixel %v", pos)
			}
		})
	}
}

func TestMorphologicalGradientSquare(t *testing.T) {
	px := detect(t, processing.Morphological, grayMat(t, 4, 4, singleBrightPixel(), nil), processing.DefaultParameters())

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := byte(0)
			if y <= 2 && x <= 2 {
				want = 255
			}
			assert.Equal(t, want, at(px, 4, y, x), "pixel (%d,%d)", y, x)
		}
	}
}

func TestMorphologicalEvenKernelIsCoerced(t *testing.T) {
	data := make([]byte, 49)
	data[3*7+3] = 255
	params := processing.Parameters{KSize: 4}

	px := detect(t, processing.Morphological, grayMat(t, 7, 7, data, nil), params)

	// 4 becomes 5, so the dilation reaches two pixels out from the centre.
	assert.Equal(t, byte(255), at(px, 7, 1, 1))
	assert.Equal(t, byte(0), at(px, 7, 0, 0))
}

// reflect101 mirrors an out-of-range index the way BORDER_DEFAULT does.
func reflect101(i, n int) int {
	if i < 0 {
		return -i
	}
	if i >= n {
		return 2*n - 2 - i
	}
	return i
}

func saturatingCorrelate(src []byte, rows, cols int, k [][]float32) []byte {
	out := make([]byte, len(src))
	ay, ax := len(k)/2, len(k[0])/2
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			var sum float32
			for i, row := range k {
				for j, w := range row {
					sy := reflect101(y+i-ay, rows)
					sx := reflect101(x+j-ax, cols)
					sum += w * float32(src[sy*cols+sx])
				}
			}
			switch {
			case sum < 0:
				sum = 0
			case sum > 255:
				sum = 255
			}
			out[y*cols+x] = byte(sum)
		}
	}
	return out
}

func TestPrewittSumsSaturatedResponsesWithWraparound(t *testing.T) {
	const rows, cols = 5, 5
	data := make([]byte, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if x-y >= 1 {
				data[y*cols+x] = 200
			}
		}
	}

	px := detect(t, processing.Prewitt, grayMat(t, rows, cols, data, nil), processing.DefaultParameters())

	gx := saturatingCorrelate(data, rows, cols, prewittX)
	gy := saturatingCorrelate(data, rows, cols, prewittY)
	wrapped := false
	for i := range px {
		assert.Equal(t, gx[i]+gy[i], px[i], "index %d", i)
		if int(gx[i])+int(gy[i]) > 255 {
			wrapped = true
		}
	}
	assert.True(t, wrapped, "fixture should exercise 8-bit wraparound")
	assert.Equal(t, byte(254), at(px, cols, 2, 2))
}

func TestCannyProducesBinaryEdges(t *testing.T) {
	const rows, cols = 16, 16
	data := make([]byte, rows*cols)
	for y := 0; y < rows; y++ {
		for x := cols / 2; x < cols; x++ {
			data[y*cols+x] = 255
		}
	}

	px := detect(t, processing.Canny, grayMat(t, rows, cols, data, nil), processing.DefaultParameters())

	edges := 0
	for _, v := range px {
		assert.True(t, v == 0 || v == 255, "unexpected value %d", v)
		if v == 255 {
			edges++
		}
	}
	assert.Positive(t, edges)
	assert.Equal(t, byte(0), at(px, cols, 8, 0))
}

func TestIdentityReturnsCopy(t *testing.T) {
	data := []byte{10, 20, 30, 40}
	src := grayMat(t, 2, 2, data, nil)
	assert.Equal(t, data, detect(t, processing.Identity, src, processing.DefaultParameters()))
}

func TestSobelRejectsOversizedKernel(t *testing.T) {
	src := grayMat(t, 16, 16, make([]byte, 256), nil)

	_, err := NewSobelDetector().Detect(src, processing.Parameters{KSize: 9})
	assert.Error(t, err)

	_, err = NewLaplacianDetector().Detect(src, processing.Parameters{KSize: 33})
	assert.Error(t, err)
}

func TestMorphologicalRejectsOversizedKernel(t *testing.T) {
	tracker := memory.NewTracker(0)
	src := grayMat(t, 16, 16, make([]byte, 256), tracker)

	for _, k := range []int{processing.MaxKernelSize + 2, 100001, 4294967297} {
		_, err := NewMorphologicalDetector().Detect(src, processing.Parameters{KSize: k})
		assert.Error(t, err, "ksize %d", k)
	}

	out, err := NewMorphologicalDetector().Detect(src, processing.Parameters{KSize: processing.MaxKernelSize})
	require.NoError(t, err)
	out.Close()
	assert.Equal(t, int64(1), tracker.GetStats().ActiveMats)
}

func TestDetectStepValidatesInput(t *testing.T) {
	color3, err := safe.NewMatFromBytes(4, 4, gocv.MatTypeCV8UC3, make([]byte, 48), nil, "color")
	require.NoError(t, err)
	defer color3.Close()

	step := NewDetectStep(NewRegistry(), processing.Sobel)
	assert.Equal(t, "sobel", step.Name())

	_, err = step.Apply(context.Background(), color3, processing.DefaultParameters())
	assert.Error(t, err)
}

func TestDetectorsReleaseIntermediates(t *testing.T) {
	tracker := memory.NewTracker(0)
	src := grayMat(t, 8, 8, make([]byte, 64), tracker)

	r := NewRegistry()
	for _, alg := range processing.Algorithms() {
		out, err := r.For(alg).Detect(src, processing.DefaultParameters())
		require.NoError(t, err, alg.String())
		out.Close()
	}

	assert.Equal(t, int64(1), tracker.GetStats().ActiveMats)
}
