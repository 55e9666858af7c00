package models

import (
	"image"
	"sync"
	"time"
)

// ChartImage is one exported chart.
type ChartImage struct {
	Path     string
	Image    image.Image
	Width    int
	Height   int
	FileSize int64
}

// Result is the outcome of one generation request.
type Result struct {
	Request     Request
	Missing     []Star
	Candidates  int
	Problem     ChartImage
	Answer      ChartImage
	GeneratedAt time.Time
	Duration    time.Duration
}

// MissingLabels returns the removed-star list lines.
func (r *Result) MissingLabels() []string {
	labels := make([]string, len(r.Missing))
	for i, s := range r.Missing {
		labels[i] = s.Label()
	}
	return labels
}

// ResultRepository keeps recent generation results for the session.
type ResultRepository struct {
	mu             sync.RWMutex
	history        []*Result
	maxHistorySize int
}

// NewResultRepository creates a new result repository
func NewResultRepository() *ResultRepository {
	return &ResultRepository{
		history:        make([]*Result, 0),
		maxHistorySize: 10,
	}
}

// Add stores a result, dropping the oldest beyond the history limit.
func (r *ResultRepository) Add(result *Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, result)
	if len(r.history) > r.maxHistorySize {
		r.history[0] = nil
		r.history = r.history[1:]
	}
}

// Latest returns the most recent result or nil.
func (r *ResultRepository) Latest() *Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.history) == 0 {
		return nil
	}
	return r.history[len(r.history)-1]
}

// History returns a copy of stored results, oldest first.
func (r *ResultRepository) History() []*Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := make([]*Result, len(r.history))
	copy(history, r.history)
	return history
}

// Stats summarizes the stored results.
func (r *ResultRepository) Stats() ResultStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := ResultStats{Generated: len(r.history)}
	var total time.Duration
	for _, res := range r.history {
		total += res.Duration
		stats.TotalFileSize += res.Problem.FileSize + res.Answer.FileSize
	}
	if len(r.history) > 0 {
		stats.AverageDuration = total / time.Duration(len(r.history))
	}
	return stats
}

// ResultStats contains statistics about the result repository
type ResultStats struct {
	Generated       int
	TotalFileSize   int64
	AverageDuration time.Duration
}

// Clear removes all results.
func (r *ResultRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = make([]*Result, 0)
}

// Shutdown releases all resources
func (r *ResultRepository) Shutdown() {
	r.Clear()
}
