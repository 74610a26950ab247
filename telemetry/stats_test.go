package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/dust/particles"
	"github.com/pthm-cable/dust/sampler"
)

func TestComputeDisplacementStats(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	mean, p50, p90, maxDisp := ComputeDisplacementStats(values)

	if math.Abs(mean-0.55) > 1e-9 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	// Empirical quantiles pick sample values.
	if math.Abs(p50-0.5) > 1e-9 {
		t.Errorf("p50 = %v, want 0.5", p50)
	}
	if math.Abs(p90-0.9) > 1e-9 {
		t.Errorf("p90 = %v, want 0.9", p90)
	}
	if maxDisp != 1.0 {
		t.Errorf("max = %v, want 1.0", maxDisp)
	}
}

func TestComputeDisplacementStatsEmpty(t *testing.T) {
	mean, p50, p90, maxDisp := ComputeDisplacementStats(nil)
	if mean != 0 || p50 != 0 || p90 != 0 || maxDisp != 0 {
		t.Errorf("expected zeros for empty input, got %v %v %v %v", mean, p50, p90, maxDisp)
	}
}

func testState(n int) *particles.State {
	set := sampler.NewSampleSet(n)
	for i := 0; i < n; i++ {
		set.Positions[3*i] = float32(i)
		set.Normals[3*i+1] = 1
	}
	return particles.NewState(set)
}

func TestDisplacements(t *testing.T) {
	s := testState(4)
	s.Live[1] += 0.5   // particle 0 moves 0.5 along y
	s.Live[3*2+2] -= 2 // particle 2 moves 2 along z
	s.Live[3*3] = float32(math.NaN())

	got, nonFinite := Displacements(s, nil)
	if nonFinite != 1 {
		t.Errorf("nonFinite = %d, want 1", nonFinite)
	}
	want := []float64{0.5, 0, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("displacement %d = %v, want %v", i, got[i], want[i])
		}
	}

	got, nonFinite = Displacements(nil, got)
	if len(got) != 0 || nonFinite != 0 {
		t.Errorf("nil state should produce nothing, got %v %d", got, nonFinite)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0, 0.1)
	if c.WindowDurationFrames() != 10 {
		t.Fatalf("expected 10 frames per window, got %d", c.WindowDurationFrames())
	}

	s := testState(10)
	s.Live[1] = 0.25

	for f := int32(1); f <= 10; f++ {
		c.RecordDispatch()
		if f < 10 && c.ShouldFlush(f) {
			t.Fatalf("flush too early at frame %d", f)
		}
	}
	c.RecordResample(true)
	c.RecordResample(false)
	if !c.ShouldFlush(10) {
		t.Fatal("expected flush at frame 10")
	}

	p := particles.DefaultParams()
	stats := c.Flush(10, s, p)
	if stats.Count != 10 || stats.Dispatches != 10 || stats.Resamples != 1 || stats.ResampleFailures != 1 {
		t.Errorf("unexpected counters: %+v", stats)
	}
	if stats.Mode != "radial" || !stats.Enabled {
		t.Errorf("unexpected params: %+v", stats)
	}
	if math.Abs(stats.SimTimeSec-1.0) > 1e-6 {
		t.Errorf("sim time = %v, want 1.0", stats.SimTimeSec)
	}
	if math.Abs(stats.DispMax-0.25) > 1e-6 || math.Abs(stats.DispMean-0.025) > 1e-6 {
		t.Errorf("unexpected displacement stats: %+v", stats)
	}

	// Counters reset for the next window.
	next := c.Flush(20, nil, p)
	if next.Dispatches != 0 || next.Resamples != 0 || next.Count != 0 || next.WindowStartFrame != 10 {
		t.Errorf("expected reset window, got %+v", next)
	}
}
