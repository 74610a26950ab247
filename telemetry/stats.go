package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/dust/particles"
)

// DispatchStats holds aggregated statistics for a time window.
type DispatchStats struct {
	WindowStartFrame int32   `csv:"-"`
	WindowEndFrame   int32   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// Cloud and parameters at window end
	Count     int     `csv:"count"`
	Mode      string  `csv:"mode"`
	Enabled   bool    `csv:"enabled"`
	Amplitude float64 `csv:"amplitude"`

	// Events during window
	Dispatches       int `csv:"dispatches"`
	Resamples        int `csv:"resamples"`
	ResampleFailures int `csv:"resample_failures"`

	// Distance of live positions from rest (sampled at window end)
	DispMean float64 `csv:"disp_mean"`
	DispP50  float64 `csv:"disp_p50"`
	DispP90  float64 `csv:"disp_p90"`
	DispMax  float64 `csv:"disp_max"`

	// Particles whose live position is NaN or Inf
	NonFinite int `csv:"non_finite"`
}

// Displacements appends the distance of every particle from its rest
// position to buf. Non-finite distances are skipped and counted.
func Displacements(s *particles.State, buf []float64) ([]float64, int) {
	buf = buf[:0]
	if s == nil {
		return buf, 0
	}
	nonFinite := 0
	for i := 0; i < s.Len(); i++ {
		d := float64(s.Displacement(i))
		if math.IsNaN(d) || math.IsInf(d, 0) {
			nonFinite++
			continue
		}
		buf = append(buf, d)
	}
	return buf, nonFinite
}

// ComputeDisplacementStats calculates mean, median, p90 and max.
// values is sorted in place.
func ComputeDisplacementStats(values []float64) (mean, p50, p90, max float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	sort.Float64s(values)
	mean = stat.Mean(values, nil)
	p50 = stat.Quantile(0.5, stat.Empirical, values, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, values, nil)
	return mean, p50, p90, values[n-1]
}

// LogValue implements slog.LogValuer for structured logging.
func (s DispatchStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_end", int(s.WindowEndFrame)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("count", s.Count),
		slog.String("mode", s.Mode),
		slog.Bool("enabled", s.Enabled),
		slog.Int("dispatches", s.Dispatches),
		slog.Int("resamples", s.Resamples),
		slog.Int("resample_failures", s.ResampleFailures),
		slog.Float64("disp_mean", s.DispMean),
		slog.Float64("disp_p90", s.DispP90),
		slog.Float64("disp_max", s.DispMax),
		slog.Int("non_finite", s.NonFinite),
	)
}

// LogStats logs the window.
func (s DispatchStats) LogStats() {
	slog.Info("stats", "window", s)
}
