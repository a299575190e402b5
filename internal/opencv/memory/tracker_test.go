package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCountsAllocations(t *testing.T) {
	tr := NewTracker(0)

	tr.TrackAllocation(1, 16, "decoded")
	tr.TrackAllocation(2, 8, "gray")
	tr.TrackDeallocation(1, "decoded")
	tr.TrackDeallocation(99, "unknown")

	stats := tr.GetStats()
	assert.Equal(t, int64(24), stats.TotalAllocated)
	assert.Equal(t, int64(16), stats.TotalReleased)
	assert.Equal(t, int64(1), stats.ActiveMats)
	assert.Equal(t, int64(2), stats.PeakActiveMats)
	assert.Equal(t, []string{"gray"}, tr.Leaks())
}

func TestTrackerLimit(t *testing.T) {
	tr := NewTracker(10)
	tr.TrackAllocation(1, 8, "a")
	assert.NoError(t, tr.CheckLimit())

	tr.TrackAllocation(2, 8, "b")
	assert.Error(t, tr.CheckLimit())
}

func TestTrackerConcurrentUse(t *testing.T) {
	tr := NewTracker(0)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			tr.TrackAllocation(id, 4, "x")
			tr.TrackDeallocation(id, "x")
		}(uint64(i))
	}
	wg.Wait()

	assert.Zero(t, tr.GetStats().ActiveMats)
	assert.Empty(t, tr.Leaks())
}
