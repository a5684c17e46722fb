// Package profiler keeps frame statistics for the viewer: how many frames were presented or
// skipped, how long frames took, and a periodic FPS and memory line in the log.
package profiler

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/anonymousomeone/mandelbrowser/engine/renderer"
	"github.com/anonymousomeone/mandelbrowser/log"
)

// Stats is a snapshot of everything recorded since the profiler was created.
type Stats struct {
	Presented       int
	SkippedZeroSize int
	SkippedAcquire  int
	MeanDelta       time.Duration
	MaxDelta        time.Duration
	Elapsed         time.Duration
}

// Frames returns the number of recorded frames, presented or skipped.
func (s Stats) Frames() int {
	return s.Presented + s.SkippedZeroSize + s.SkippedAcquire
}

// FPS returns presented frames per second over the whole run.
func (s Stats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Presented) / s.Elapsed.Seconds()
}

// Rows returns the stats as label/value pairs, in display order.
func (s Stats) Rows() [][]string {
	return [][]string{
		{"frames presented", fmt.Sprint(s.Presented)},
		{"skipped (zero size)", fmt.Sprint(s.SkippedZeroSize)},
		{"skipped (acquire)", fmt.Sprint(s.SkippedAcquire)},
		{"mean frame time", s.MeanDelta.Round(time.Microsecond).String()},
		{"max frame time", s.MaxDelta.Round(time.Microsecond).String()},
		{"average fps", fmt.Sprintf("%.2f", s.FPS())},
	}
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	mu     sync.Mutex
	logger log.Logger
	now    func() time.Time

	start          time.Time
	stats          Stats
	deltaSum       time.Duration
	deltaCount     int
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	logging        bool
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithUpdateInterval sets how often the FPS line is logged.
func WithUpdateInterval(d time.Duration) Option {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(opts ...Option) *Profiler {
	p := &Profiler{
		logger:         log.New("profiler"),
		now:            time.Now,
		updateInterval: time.Second,
		logging:        true,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.start = p.now()
	p.lastTime = p.start
	return p
}

// Record adds one RenderFrame result. Only presented frames contribute their delta time and
// count toward the FPS line.
//
// Parameters:
//   - outcome: what RenderFrame returned
//   - delta: the renderer's delta time in seconds
//
// Returns:
//   - bool: true if the FPS line was logged by this call
func (p *Profiler) Record(outcome renderer.FrameOutcome, delta float32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch outcome {
	case renderer.FrameSkippedZeroSize:
		p.stats.SkippedZeroSize++
		return false
	case renderer.FrameSkippedAcquire:
		p.stats.SkippedAcquire++
		return false
	}

	p.stats.Presented++
	d := time.Duration(float64(delta) * float64(time.Second))
	if p.stats.Presented > 1 {
		// the first delta spans renderer setup, not a frame
		p.deltaSum += d
		p.deltaCount++
		if d > p.stats.MaxDelta {
			p.stats.MaxDelta = d
		}
	}
	return p.tick()
}

// SetLogging turns the periodic FPS line on or off. Statistics are recorded either way.
func (p *Profiler) SetLogging(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logging = enabled
}

// tick logs performance statistics when the update interval has elapsed. Must be called with p.mu held.
func (p *Profiler) tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}
	if !p.logging {
		p.frameCount = 0
		p.lastTime = currentTime
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
	}

	p.logger.Infof("FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (+%d, last: %d µs) | Sys: %.2f MB",
		fps, allocMB, allocRateMB, gcCount, gcCount-p.lastGCCount, lastPauseUs, sysMB)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Stats returns the statistics recorded so far.
func (p *Profiler) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stats
	s.Elapsed = p.now().Sub(p.start)
	if p.deltaCount > 0 {
		s.MeanDelta = p.deltaSum / time.Duration(p.deltaCount)
	}
	return s
}
