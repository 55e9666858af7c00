// Package timing records how long each generation stage takes.
package timing

import (
	"slices"
	"sync"
	"time"
)

// DefaultHistory is how many samples are kept per stage.
const DefaultHistory = 50

// Tracker keeps a bounded history of durations per named stage.
type Tracker struct {
	timings map[string][]time.Duration
	mu      sync.RWMutex
	history int
	enabled bool
}

func NewTracker(history int) *Tracker {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Tracker{
		timings: make(map[string][]time.Duration),
		history: history,
		enabled: true,
	}
}

// Start begins timing stage. The returned func records and returns the elapsed time;
// calling it more than once records only the first call.
func (t *Tracker) Start(stage string) func() time.Duration {
	start := time.Now()
	var once sync.Once
	var elapsed time.Duration
	return func() time.Duration {
		once.Do(func() {
			elapsed = time.Since(start)
			t.Record(stage, elapsed)
		})
		return elapsed
	}
}

func (t *Tracker) Record(stage string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}

	samples := append(t.timings[stage], d)
	if len(samples) > t.history {
		samples = samples[len(samples)-t.history:]
	}
	t.timings[stage] = samples
}

func (t *Tracker) Timings(stage string) []time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.timings[stage])
}

func (t *Tracker) Average(stage string) time.Duration {
	samples := t.Timings(stage)
	if len(samples) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range samples {
		total += d
	}
	return total / time.Duration(len(samples))
}

// Averages returns the mean duration of every stage seen so far.
func (t *Tracker) Averages() map[string]time.Duration {
	t.mu.RLock()
	stages := make([]string, 0, len(t.timings))
	for stage := range t.timings {
		stages = append(stages, stage)
	}
	t.mu.RUnlock()

	out := make(map[string]time.Duration, len(stages))
	for _, stage := range stages {
		out[stage] = t.Average(stage)
	}
	return out
}

func (t *Tracker) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// Reset clears one stage, or every stage when stage is empty.
func (t *Tracker) Reset(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if stage == "" {
		t.timings = make(map[string][]time.Duration)
		return
	}
	delete(t.timings, stage)
}
