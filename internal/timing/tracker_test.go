package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerAverage(t *testing.T) {
	tr := NewTracker(0)
	tr.Record("render", 10*time.Millisecond)
	tr.Record("render", 30*time.Millisecond)

	assert.Equal(t, 20*time.Millisecond, tr.Average("render"))
	assert.Zero(t, tr.Average("select"))
	assert.Equal(t, map[string]time.Duration{"render": 20 * time.Millisecond}, tr.Averages())
}

func TestTrackerHistoryIsBounded(t *testing.T) {
	tr := NewTracker(3)
	for i := 1; i <= 5; i++ {
		tr.Record("select", time.Duration(i)*time.Second)
	}

	assert.Equal(t, []time.Duration{3 * time.Second, 4 * time.Second, 5 * time.Second}, tr.Timings("select"))
}

func TestTrackerStartRecordsOnce(t *testing.T) {
	tr := NewTracker(0)
	stop := tr.Start("generate")
	first := stop()
	second := stop()

	assert.Equal(t, first, second)
	assert.Len(t, tr.Timings("generate"), 1)
}

func TestTrackerDisabledAndReset(t *testing.T) {
	tr := NewTracker(0)
	tr.SetEnabled(false)
	tr.Record("render", time.Second)
	assert.Empty(t, tr.Timings("render"))

	tr.SetEnabled(true)
	tr.Record("render", time.Second)
	tr.Record("select", time.Second)
	tr.Reset("render")
	assert.Empty(t, tr.Timings("render"))
	assert.Len(t, tr.Timings("select"), 1)

	tr.Reset("")
	assert.Empty(t, tr.Averages())
}
