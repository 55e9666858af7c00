package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missingstar/internal/logger"
)

func TestCanvasIsReused(t *testing.T) {
	m := NewManager(logger.NewNop())
	defer m.Shutdown()

	a, err := m.Canvas(32, "a")
	require.NoError(t, err)
	m.Release(a)

	b, err := m.Canvas(32, "b")
	require.NoError(t, err)
	assert.Equal(t, a.ID(), b.ID())

	stats := m.Stats()
	assert.EqualValues(t, 1, stats.PoolHits)
	assert.EqualValues(t, 1, stats.PoolMisses)
	assert.EqualValues(t, 1, stats.ActiveMats)
	m.Release(b)
	assert.EqualValues(t, 0, m.Stats().ActiveMats)
}

func TestCanvasRespectsLimit(t *testing.T) {
	m := NewManager(logger.NewNop())
	defer m.Shutdown()
	m.stats.MaxAllowed = 32 * 32 * 4

	a, err := m.Canvas(32, "a")
	require.NoError(t, err)
	_, err = m.Canvas(32, "b")
	assert.Error(t, err)
	m.Release(a)
}
