package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"runtime"
	"sync"
	"time"

	"github.com/Ko-stant/frontwatch/internal/config"
	"github.com/Ko-stant/frontwatch/internal/observer"
)

// StartProfiling starts the pprof server on its own port
func StartProfiling(cfg config.ProfilingConfig) {
	if !cfg.Enabled {
		return
	}

	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)

	go func() {
		log.Printf("Starting pprof server on :%s", cfg.Port)
		log.Printf("CPU profile: http://localhost:%s/debug/pprof/profile", cfg.Port)
		log.Printf("Heap profile: http://localhost:%s/debug/pprof/heap", cfg.Port)
		log.Printf("Goroutine profile: http://localhost:%s/debug/pprof/goroutine", cfg.Port)

		if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
			log.Printf("pprof server failed: %v", err)
		}
	}()
}

// PerformanceMetrics holds performance tracking data
type PerformanceMetrics struct {
	mu              sync.Mutex
	Broadcasts      int64
	Refreshes       int64
	HandleLosses    int64
	AvgRefreshTime  time.Duration
	PeakGoroutines  int
	PeakMemoryUsage uint64
	StartTime       time.Time
}

func NewPerformanceMetrics() *PerformanceMetrics {
	return &PerformanceMetrics{
		StartTime: time.Now(),
	}
}

func (pm *PerformanceMetrics) TrackBroadcast() {
	pm.mu.Lock()
	pm.Broadcasts++
	pm.mu.Unlock()
}

// TrackObserver folds the observer's counters in. The refresh average is a
// running average over samples taken at each report.
func (pm *PerformanceMetrics) TrackObserver(stats observer.Stats) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if stats.Refreshes > pm.Refreshes {
		samples := stats.Refreshes
		pm.AvgRefreshTime = (pm.AvgRefreshTime*time.Duration(pm.Refreshes) + stats.LastRefresh*time.Duration(samples-pm.Refreshes)) / time.Duration(samples)
	}
	pm.Refreshes = stats.Refreshes
	pm.HandleLosses = stats.HandleLosses
}

// UpdateSystemMetrics updates system-level metrics
func (pm *PerformanceMetrics) UpdateSystemMetrics() {
	goroutines := runtime.NumGoroutine()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	pm.mu.Lock()
	defer pm.mu.Unlock()
	if goroutines > pm.PeakGoroutines {
		pm.PeakGoroutines = goroutines
	}
	if m.Alloc > pm.PeakMemoryUsage {
		pm.PeakMemoryUsage = m.Alloc
	}
}

// LogMetrics logs current performance metrics
func (pm *PerformanceMetrics) LogMetrics() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	uptime := time.Since(pm.StartTime)
	log.Printf("=== Performance Metrics ===")
	log.Printf("Uptime: %v", uptime)
	log.Printf("Refreshes: %d", pm.Refreshes)
	log.Printf("Handle losses: %d", pm.HandleLosses)
	log.Printf("Broadcasts: %d", pm.Broadcasts)
	log.Printf("Average refresh time: %v", pm.AvgRefreshTime)
	log.Printf("Peak goroutines: %d", pm.PeakGoroutines)
	log.Printf("Peak memory usage: %d bytes", pm.PeakMemoryUsage)

	if pm.Refreshes > 0 {
		log.Printf("Refreshes per second: %.2f", float64(pm.Refreshes)/uptime.Seconds())
	}
}

// StartMetricsReporting starts periodic metrics reporting
func StartMetricsReporting(ctx context.Context, metrics *PerformanceMetrics, obs *observer.Observer, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.TrackObserver(obs.Stats())
				metrics.UpdateSystemMetrics()
				metrics.LogMetrics()
			}
		}
	}()
}
