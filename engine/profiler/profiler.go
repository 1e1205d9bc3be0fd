// package profiler tracks frame rate, sample throughput and memory
// statistics for the render loop, logging at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Stronautt/PathTracer/log"
)

var logger = log.New("profiler")

// Profiler tracks frame timing and memory statistics.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
}

// NewProfiler creates a profiler with a 1-second reporting interval.
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Tick should be called once per frame. Logs performance statistics when
// the update interval has elapsed: FPS, accumulated samples, heap usage,
// and allocation rate.
//
// Parameters:
//   - sampleCount: the accumulator's current sample count
//
// Returns:
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick(sampleCount uint32) bool {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	logger.Debugf("FPS: %.2f | Samples: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s",
		fps, sampleCount, allocMB, allocRateMB)

	p.frameCount = 0
	p.lastTime = now
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
