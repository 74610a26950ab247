package main

import (
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/dust/config"
	"github.com/pthm-cable/dust/mesh"
	"github.com/pthm-cable/dust/scene"
	"github.com/pthm-cable/dust/telemetry"
)

// Targets are the displacement statistics the tuner aims for.
type Targets struct {
	P90    float64 // p90 displacement as a fraction of the model radius
	Spread float64 // mean / p90 displacement
}

// FitnessEvaluator runs headless scenes and scores their displacement stats.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	count       int
	seeds       []int64
	baseConfig  *config.Config
	mesh        *mesh.Mesh
	radius      float64
	targets     Targets
	statsWindow float64

	mu      sync.Mutex
	lastCV  float64 // p90 variation across windows from the most recent Evaluate
	lastP90 float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, count int, seeds []int64, baseCfg *config.Config, m *mesh.Mesh, targets Targets) *FitnessEvaluator {
	lo, hi := m.Bounds()
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		count:       count,
		seeds:       seeds,
		baseConfig:  baseCfg,
		mesh:        m,
		radius:      float64(hi.Sub(lo).Len()/2) * baseCfg.Model.Scale,
		targets:     targets,
		statsWindow: 1.0,
	}
}

// LastCV returns the window-to-window p90 variation of the most recent evaluation.
func (fe *FitnessEvaluator) LastCV() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastCV
}

// LastP90 returns the mean p90 displacement ratio of the most recent evaluation.
func (fe *FitnessEvaluator) LastP90() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastP90
}

// nonFinitePenalty is added per window that saw a NaN or Inf position.
const nonFinitePenalty = 10.0

// runResult holds the windows collected from a single run.
type runResult struct {
	windows []telemetry.DispatchStats
	err     error
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.run(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total, cvSum, p90Sum float64
	n := 0
	for _, r := range results {
		if r.err != nil || len(r.windows) == 0 {
			total += nonFinitePenalty
			n++
			continue
		}
		total += fe.computeFitness(r.windows)
		p90s := make([]float64, len(r.windows))
		for i, w := range r.windows {
			p90s[i] = w.DispP90 / fe.radius
		}
		cvSum += cv(p90s)
		p90Sum += stat.Mean(p90s, nil)
		n++
	}

	fe.mu.Lock()
	fe.lastCV = cvSum / float64(n)
	fe.lastP90 = p90Sum / float64(n)
	fe.mu.Unlock()

	return total / float64(n)
}

// run steps one headless scene for maxTicks frames.
func (fe *FitnessEvaluator) run(x []float64, seed int64) runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	s, err := scene.New(cfg, fe.mesh, "tune", scene.Options{
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		Count:          fe.count,
	})
	if err != nil {
		return runResult{err: err}
	}
	defer s.Close()

	var r runResult
	s.OnStats(func(st telemetry.DispatchStats) {
		r.windows = append(r.windows, st)
	})
	for s.Frame() < fe.maxTicks {
		s.Step(cfg.Derived.DT32)
	}
	return r
}

// copyConfig returns a copy of the base config. Config holds no references,
// so a value copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Particles.Seed = 0
	return &cfg
}

// computeFitness is the squared relative error against the targets, averaged
// over windows.
func (fe *FitnessEvaluator) computeFitness(windows []telemetry.DispatchStats) float64 {
	var sum float64
	for _, w := range windows {
		if w.NonFinite > 0 {
			sum += nonFinitePenalty
			continue
		}
		p90 := w.DispP90 / fe.radius
		ep := (p90 - fe.targets.P90) / fe.targets.P90

		var spread float64
		if w.DispP90 > 0 {
			spread = w.DispMean / w.DispP90
		}
		es := (spread - fe.targets.Spread) / fe.targets.Spread

		sum += ep*ep + es*es
	}
	return sum / float64(len(windows))
}

// cv returns the coefficient of variation (stddev / mean).
func cv(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := stat.Mean(values, nil)
	if m == 0 {
		return 0
	}
	return stat.StdDev(values, nil) / m
}
