package telemetry

import (
	"math"

	"github.com/pthm-cable/dust/particles"
)

// Collector accumulates events within time windows and produces DispatchStats.
type Collector struct {
	windowDurationSec    float64
	windowDurationFrames int32
	dt                   float32

	// Current window tracking
	windowStartFrame int32

	// Event counters for current window
	dispatches       int
	resamples        int
	resampleFailures int

	// Reused between flushes
	scratch []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per frame (used for frame-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	framesPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if framesPerWindow < 1 {
		framesPerWindow = 1
	}

	return &Collector{
		windowDurationSec:    windowDurationSec,
		windowDurationFrames: framesPerWindow,
		dt:                   dt,
	}
}

// RecordDispatch records one update dispatch.
func (c *Collector) RecordDispatch() {
	c.dispatches++
}

// RecordResample records a resample attempt.
func (c *Collector) RecordResample(ok bool) {
	if ok {
		c.resamples++
	} else {
		c.resampleFailures++
	}
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame int32) bool {
	return currentFrame-c.windowStartFrame >= c.windowDurationFrames
}

// Flush produces a DispatchStats from the cloud state and resets counters
// for the next window. s may be nil when no cloud exists.
func (c *Collector) Flush(currentFrame int32, s *particles.State, p particles.Params) DispatchStats {
	var nonFinite int
	c.scratch, nonFinite = Displacements(s, c.scratch)
	mean, p50, p90, maxDisp := ComputeDisplacementStats(c.scratch)

	count := 0
	if s != nil {
		count = s.Len()
	}

	stats := DispatchStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		SimTimeSec:       float64(currentFrame) * float64(c.dt),

		Count:     count,
		Mode:      p.Mode.String(),
		Enabled:   p.Enabled,
		Amplitude: float64(p.Amplitude),

		Dispatches:       c.dispatches,
		Resamples:        c.resamples,
		ResampleFailures: c.resampleFailures,

		DispMean:  mean,
		DispP50:   p50,
		DispP90:   p90,
		DispMax:   maxDisp,
		NonFinite: nonFinite,
	}

	// Reset for next window
	c.windowStartFrame = currentFrame
	c.dispatches = 0
	c.resamples = 0
	c.resampleFailures = 0

	return stats
}

// WindowDurationFrames returns the number of frames per window.
func (c *Collector) WindowDurationFrames() int32 {
	return c.windowDurationFrames
}
