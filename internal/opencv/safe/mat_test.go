package safe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type countingTracker struct {
	live int
	tags []string
}

func (c *countingTracker) TrackAllocation(id uint64, size int64, tag string) {
	c.live++
	c.tags = append(c.tags, tag)
}

func (c *countingTracker) TrackDeallocation(id uint64, tag string) { c.live-- }

func TestWrapRejectsEmptyMat(t *testing.T) {
	_, err := Wrap(gocv.NewMat(), nil, "empty")
	assert.Error(t, err)
}

func TestNewMatFromBytesRejectsShortData(t *testing.T) {
	_, err := NewMatFromBytes(4, 4, gocv.MatTypeCV8UC1, make([]byte, 3), nil, "short")
	assert.Error(t, err)
}

func TestMatCloseIsIdempotentAndTracked(t *testing.T) {
	tracker := &countingTracker{}
	m, err := NewMatFromBytes(4, 4, gocv.MatTypeCV8UC1, make([]byte, 16), tracker, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, tracker.live)

	clone, err := m.Clone()
	require.NoError(t, err)
	assert.Equal(t, 2, tracker.live)
	assert.Equal(t, []string{"test", "test_clone"}, tracker.tags)

	m.Close()
	m.Close()
	clone.Close()
	assert.Equal(t, 0, tracker.live)
	assert.False(t, m.IsValid())
	assert.Zero(t, m.Rows())

	_, err = m.Bytes()
	assert.Error(t, err)
}

func TestNewMatFromBytesOwnsItsPixels(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	m, err := NewMatFromBytes(2, 2, gocv.MatTypeCV8UC1, data, nil, "px")
	require.NoError(t, err)
	defer m.Close()

	data[0], data[3] = 200, 201

	got, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)

	got[1] = 99
	again, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, again)
}

func TestValidateKernelSize(t *testing.T) {
	assert.NoError(t, ValidateKernelSize(3, 7, "sobel"))
	assert.Error(t, ValidateKernelSize(4, 7, "sobel"))
	assert.Error(t, ValidateKernelSize(9, 7, "sobel"))
	assert.NoError(t, ValidateKernelSize(41, 0, "blur"))
}
