package memory

import (
	"fmt"
	"sync"
	"time"
)

// Tracker records every raster allocation and release. It implements
// safe.MemoryTracker. Rasters are never pooled: each call owns its buffers.
type Tracker struct {
	allocations map[uint64]*AllocationRecord
	mu          sync.RWMutex
	stats       Stats
	maxAllowed  int64
}

type AllocationRecord struct {
	Tag       string
	CreatedAt time.Time
	Size      int64
}

type Stats struct {
	TotalAllocated int64 `json:"total_allocated_bytes"`
	TotalReleased  int64 `json:"total_released_bytes"`
	ActiveMats     int64 `json:"active_mats"`
	PeakActiveMats int64 `json:"peak_active_mats"`
	AllocCount     int64 `json:"alloc_count"`
}

// NewTracker returns a tracker. maxAllowed bounds live bytes reported by
// CheckLimit; zero disables the check.
func NewTracker(maxAllowed int64) *Tracker {
	return &Tracker{
		allocations: make(map[uint64]*AllocationRecord),
		maxAllowed:  maxAllowed,
	}
}

func (t *Tracker) TrackAllocation(id uint64, size int64, tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.allocations[id] = &AllocationRecord{
		Tag:       tag,
		CreatedAt: time.Now(),
		Size:      size,
	}
	t.stats.TotalAllocated += size
	t.stats.AllocCount++
	t.stats.ActiveMats++
	if t.stats.ActiveMats > t.stats.PeakActiveMats {
		t.stats.PeakActiveMats = t.stats.ActiveMats
	}
}

func (t *Tracker) TrackDeallocation(id uint64, tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, exists := t.allocations[id]
	if !exists {
		return
	}

	delete(t.allocations, id)
	t.stats.TotalReleased += record.Size
	t.stats.ActiveMats--
}

// CheckLimit reports an error when live raster bytes exceed the configured limit.
func (t *Tracker) CheckLimit() error {
	if t.maxAllowed <= 0 {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	live := t.stats.TotalAllocated - t.stats.TotalReleased
	if live > t.maxAllowed {
		return fmt.Errorf("memory limit exceeded: %d bytes allocated", live)
	}
	return nil
}

func (t *Tracker) GetStats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// Leaks returns the tags of allocations that were never released.
func (t *Tracker) Leaks() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tags := make([]string, 0, len(t.allocations))
	for _, record := range t.allocations {
		tags = append(tags, record.Tag)
	}
	return tags
}
