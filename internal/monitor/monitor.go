// Package monitor periodically samples process health and ships it to
// the metrics sink.
package monitor

import (
	"context"
	"runtime"
	"sync"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/terrain3d/backend/internal/cache"
	"github.com/terrain3d/backend/internal/influx"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Influx   *influx.Manager
	Cache    *cache.TerrainCache
	Logger   zerolog.Logger
	Interval time.Duration
}

// Snapshot is one sample of process state.
type Snapshot struct {
	Time           time.Time `json:"time"`
	Goroutines     int       `json:"goroutines"`
	HeapAllocMB    float64   `json:"heap_alloc_mb"`
	HeapSysMB      float64   `json:"heap_sys_mb"`
	NumGC          uint32    `json:"num_gc"`
	CachedTerrains int       `json:"cached_terrains"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = 30 * time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Sample reads the current process state.
func (s *Service) Sample() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	snap := Snapshot{
		Time:        time.Now(),
		Goroutines:  runtime.NumGoroutine(),
		HeapAllocMB: float64(mem.HeapAlloc) / 1024 / 1024,
		HeapSysMB:   float64(mem.HeapSys) / 1024 / 1024,
		NumGC:       mem.NumGC,
	}
	if s.deps.Cache != nil {
		snap.CachedTerrains = s.deps.Cache.Len()
	}
	return snap
}

// Start launches the sampling loop. Calling Start on a running
// service is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.report(s.Sample())
			case <-s.stopChan:
				return
			}
		}
	}()

	s.deps.Logger.Debug().Dur("interval", s.deps.Interval).Msg("Monitor started")
}

// Stop halts the sampling loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	s.isRunning = false
	close(s.stopChan)
	s.deps.Logger.Debug().Msg("Monitor stopped")
}

func (s *Service) report(snap Snapshot) {
	s.deps.Logger.Debug().
		Int("goroutines", snap.Goroutines).
		Float64("heapAllocMb", snap.HeapAllocMB).
		Int("cachedTerrains", snap.CachedTerrains).
		Msg("Process status")

	if s.deps.Influx == nil {
		return
	}

	point := influxdb2_write.NewPointWithMeasurement("process").
		AddField("goroutines", snap.Goroutines).
		AddField("heap_alloc_mb", snap.HeapAllocMB).
		AddField("heap_sys_mb", snap.HeapSysMB).
		AddField("num_gc", int64(snap.NumGC)).
		AddField("cached_terrains", snap.CachedTerrains).
		SetTime(snap.Time)

	if err := s.deps.Influx.WritePoint(context.Background(), influx.BucketAPIPerformance, point); err != nil {
		s.deps.Logger.Error().Err(err).Msg("Error writing process metric")
	}
}
