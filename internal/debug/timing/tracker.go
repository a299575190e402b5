package timing

import (
	"context"
	"sync"
	"time"
)

type timingKey struct{}

type TimingInfo struct {
	Operation string
	StartTime time.Time
}

// Tracker keeps a bounded window of recent durations per operation.
type Tracker struct {
	timings map[string][]time.Duration
	window  int
	mu      sync.RWMutex
}

const defaultWindow = 256

func NewTracker() *Tracker {
	return &Tracker{
		timings: make(map[string][]time.Duration),
		window:  defaultWindow,
	}
}

func (tt *Tracker) StartTiming(operation string) context.Context {
	if tt == nil {
		return context.Background()
	}

	return context.WithValue(context.Background(), timingKey{}, TimingInfo{
		Operation: operation,
		StartTime: time.Now(),
	})
}

// EndTiming records the elapsed time and returns it; zero for a nil tracker.
func (tt *Tracker) EndTiming(ctx context.Context) time.Duration {
	if tt == nil {
		return 0
	}

	timingInfo, ok := ctx.Value(timingKey{}).(TimingInfo)
	if !ok {
		return 0
	}

	duration := time.Since(timingInfo.StartTime)

	tt.mu.Lock()
	samples := append(tt.timings[timingInfo.Operation], duration)
	if len(samples) > tt.window {
		samples = samples[len(samples)-tt.window:]
	}
	tt.timings[timingInfo.Operation] = samples
	tt.mu.Unlock()

	return duration
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (tt *Tracker) GetAverageTime(operation string) time.Duration {
	timings := tt.GetTimings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, duration := range timings {
		total += duration
	}

	return total / time.Duration(len(timings))
}

// Averages returns the mean duration of every recorded operation.
func (tt *Tracker) Averages() map[string]time.Duration {
	tt.mu.RLock()
	operations := make([]string, 0, len(tt.timings))
	for operation := range tt.timings {
		operations = append(operations, operation)
	}
	tt.mu.RUnlock()

	result := make(map[string]time.Duration, len(operations))
	for _, operation := range operations {
		result[operation] = tt.GetAverageTime(operation)
	}
	return result
}
