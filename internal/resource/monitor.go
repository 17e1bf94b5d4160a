// Package resource ports the teacher's ResourceMonitor: it watches available
// memory and CPU load and computes how many concurrent browser tabs the
// inspection stage's browser pool may open right now.
package resource

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Monitor samples memory/CPU on an interval and caches the derived tab ceiling.
type Monitor struct {
	config Config

	lastMemStats runtime.MemStats
	totalMemory  uint64

	cachedMaxTabs int
	lastCacheTime time.Time
	cacheMu       sync.RWMutex

	lastCPUTime time.Time
	lastCPUUsage float64
	cpuUsageMu   sync.RWMutex

	mu sync.RWMutex

	cancelFunc context.CancelFunc
	isRunning  bool
}

// Config bounds the monitor's decisions.
type Config struct {
	SafetyReserveMemory int64 // bytes kept untouched for the rest of the system
	SafetyThreshold     int64 // bytes below which new tabs are refused
	CPULoadThreshold    int   // percent; >=200 disables the CPU check
	MaxTabsLimit        int   // absolute ceiling regardless of headroom
	TabMemoryUsage      int64 // average bytes one browser tab consumes
}

// Status is a point-in-time memory snapshot, exposed for diagnostics/tests.
type Status struct {
	TotalMemory     uint64
	AllocatedMemory uint64
	AvailableMemory int64
	SafetyReserve   int64
	SafetyThreshold int64
	MemoryPressure  string
}

// NewMonitor queries real system memory via gopsutil, falling back to a 4GB
// assumption if that fails (matches the teacher's own fallback).
func NewMonitor(config Config) *Monitor {
	if config.TabMemoryUsage == 0 {
		config.TabMemoryUsage = 100 * 1024 * 1024
	}

	vmStat, err := mem.VirtualMemory()
	var totalMem uint64
	if err != nil {
		log.Warn().Err(err).Msg("failed to read system memory, using default")
		totalMem = 4 * 1024 * 1024 * 1024
	} else {
		totalMem = vmStat.Total
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &Monitor{
		config:       config,
		totalMemory:  totalMem,
		lastMemStats: memStats,
		lastCPUTime:  time.Now(),
	}
}

// Start launches the background sampling goroutine. Idempotent. A
// non-positive interval samples once a second.
func (rm *Monitor) Start(interval time.Duration) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.isRunning {
		return
	}
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	rm.cancelFunc = cancel
	rm.isRunning = true
	go rm.loop(ctx, interval)
}

func (rm *Monitor) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var memStats runtime.MemStats
			runtime.ReadMemStats(&memStats)
			rm.mu.Lock()
			rm.lastMemStats = memStats
			rm.mu.Unlock()

			cpuUsage := rm.sampleCPU()
			rm.cpuUsageMu.Lock()
			rm.lastCPUUsage = cpuUsage
			rm.lastCPUTime = time.Now()
			rm.cpuUsageMu.Unlock()
		}
	}
}

func (rm *Monitor) sampleCPU() float64 {
	percentages, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		log.Warn().Err(err).Msg("failed to sample CPU usage")
		return 0.0
	}
	if len(percentages) == 0 {
		return 0.0
	}
	return percentages[0]
}

// Stop cancels the sampling goroutine. Idempotent.
func (rm *Monitor) Stop() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.isRunning && rm.cancelFunc != nil {
		rm.cancelFunc()
		rm.isRunning = false
		rm.cancelFunc = nil
	}
}

// MaxTabs computes the current allowed browser-tab ceiling from available
// memory, CPU core count, and the configured absolute limit. Cached for 1s.
func (rm *Monitor) MaxTabs() int {
	rm.cacheMu.RLock()
	if time.Since(rm.lastCacheTime) < time.Second && rm.cachedMaxTabs > 0 {
		cached := rm.cachedMaxTabs
		rm.cacheMu.RUnlock()
		return cached
	}
	rm.cacheMu.RUnlock()

	rm.mu.RLock()
	memStats := rm.lastMemStats
	rm.mu.RUnlock()

	allocatedMemory := memStats.Alloc
	availableMemory := int64(rm.totalMemory) - int64(allocatedMemory) - rm.config.SafetyReserveMemory

	maxTabsByMemory := 1
	if availableMemory > rm.config.SafetyThreshold {
		surplus := availableMemory - rm.config.SafetyThreshold
		maxTabsByMemory = int(surplus / rm.config.TabMemoryUsage)
		if maxTabsByMemory < 1 {
			maxTabsByMemory = 1
		}
	}

	maxTabsByCPU := runtime.NumCPU()

	result := maxTabsByMemory
	if maxTabsByCPU < result {
		result = maxTabsByCPU
	}
	if rm.config.MaxTabsLimit > 0 && rm.config.MaxTabsLimit < result {
		result = rm.config.MaxTabsLimit
	}
	if result < 1 {
		result = 1
	}

	rm.cacheMu.Lock()
	rm.cachedMaxTabs = result
	rm.lastCacheTime = time.Now()
	rm.cacheMu.Unlock()

	return result
}

// CheckAvailability reports whether a new tab may be created right now, and
// why not if it can't.
func (rm *Monitor) CheckAvailability() (canCreate bool, reason string) {
	rm.mu.RLock()
	memStats := rm.lastMemStats
	rm.mu.RUnlock()

	allocatedMemory := memStats.Alloc
	availableMemory := int64(rm.totalMemory) - int64(allocatedMemory) - rm.config.SafetyReserveMemory

	if availableMemory < rm.config.SafetyThreshold {
		availableMemoryMB := availableMemory / (1024 * 1024)
		return false, fmt.Sprintf("insufficient memory (%dMB available)", availableMemoryMB)
	}

	if rm.config.CPULoadThreshold < 200 {
		rm.cpuUsageMu.RLock()
		cpuUsage := rm.lastCPUUsage
		rm.cpuUsageMu.RUnlock()

		if cpuUsage > float64(rm.config.CPULoadThreshold) {
			return false, fmt.Sprintf("CPU load too high (%.1f%%)", cpuUsage)
		}
	}

	return true, ""
}

// MemoryStatus reports a snapshot for diagnostics.
func (rm *Monitor) MemoryStatus() Status {
	rm.mu.RLock()
	memStats := rm.lastMemStats
	rm.mu.RUnlock()

	allocatedMemory := memStats.Alloc
	availableMemory := int64(rm.totalMemory) - int64(allocatedMemory) - rm.config.SafetyReserveMemory

	var pressure string
	availableMemoryMB := availableMemory / (1024 * 1024)
	switch {
	case availableMemoryMB < 200:
		pressure = "emergency"
	case availableMemoryMB < 300:
		pressure = "critical"
	case availableMemoryMB < 500:
		pressure = "warning"
	default:
		pressure = "normal"
	}

	return Status{
		TotalMemory:     rm.totalMemory,
		AllocatedMemory: allocatedMemory,
		AvailableMemory: availableMemory,
		SafetyReserve:   rm.config.SafetyReserveMemory,
		SafetyThreshold: rm.config.SafetyThreshold,
		MemoryPressure:  pressure,
	}
}
