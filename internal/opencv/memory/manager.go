// Package memory recycles chart canvases between requests and bounds how much pixel
// memory may be live at once.
package memory

import (
	"fmt"
	"image/color"
	"sync"

	"missingstar/internal/logger"
	"missingstar/internal/opencv/safe"
)

const (
	defaultMaxBytes = 512 * 1024 * 1024
	poolSize        = 2 // one problem and one answer chart
)

type Manager struct {
	pools       map[int]*Pool
	allocations map[uint64]int64
	mu          sync.Mutex
	stats       Stats
	logger      logger.Logger
}

type Stats struct {
	TotalAllocated int64
	TotalReleased  int64
	ActiveMats     int64
	PoolHits       int64
	PoolMisses     int64
	MaxAllowed     int64
}

func NewManager(log logger.Logger) *Manager {
	return &Manager{
		pools:       make(map[int]*Pool),
		allocations: make(map[uint64]int64),
		stats:       Stats{MaxAllowed: defaultMaxBytes},
		logger:      log,
	}
}

// Canvas returns a cleared transparent size x size canvas, reusing a pooled one when
// available.
func (m *Manager) Canvas(size int, tag string) (*safe.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pool, ok := m.pools[size]; ok {
		if mat := pool.Get(); mat != nil {
			if err := mat.Fill(color.RGBA{}); err != nil {
				mat.Close()
			} else {
				m.stats.PoolHits++
				m.track(mat)
				return mat, nil
			}
		}
	}

	want := int64(size) * int64(size) * 4
	if live := m.stats.TotalAllocated - m.stats.TotalReleased; live+want > m.stats.MaxAllowed {
		return nil, fmt.Errorf("memory limit exceeded: %d bytes live, %d requested", live, want)
	}

	m.stats.PoolMisses++
	mat, err := safe.NewCanvas(size, tag)
	if err != nil {
		return nil, err
	}
	m.track(mat)
	m.logger.Debug("MemoryManager", "allocated canvas", map[string]interface{}{
		"size": size,
		"tag":  tag,
	})
	return mat, nil
}

func (m *Manager) track(mat *safe.Mat) {
	size := mat.Bytes()
	m.allocations[mat.ID()] = size
	m.stats.TotalAllocated += size
	m.stats.ActiveMats++
}

// Release hands a canvas back for reuse, closing it when the pool is full.
func (m *Manager) Release(mat *safe.Mat) {
	if mat == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	size, ok := m.allocations[mat.ID()]
	if !ok {
		m.logger.Warning("MemoryManager", "releasing untracked canvas", map[string]interface{}{
			"tag": mat.Tag(),
		})
		mat.Close()
		return
	}
	delete(m.allocations, mat.ID())
	m.stats.TotalReleased += size
	m.stats.ActiveMats--

	key := mat.Rows()
	pool, ok := m.pools[key]
	if !ok {
		pool = NewPool(poolSize)
		m.pools[key] = pool
	}
	if !pool.Put(mat) {
		mat.Close()
	}
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Shutdown closes pooled canvases. Canvases still checked out are reported as leaks.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	pooled := 0
	for key, pool := range m.pools {
		pooled += pool.Cleanup()
		delete(m.pools, key)
	}
	m.logger.Info("MemoryManager", "released canvases", map[string]interface{}{
		"pooled": pooled,
		"leaked": len(m.allocations),
	})
}
