package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/dust/config"
	"github.com/pthm-cable/dust/telemetry"
)

func TestParamVectorNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		assert.InDelta(t, raw[i], back[i], 1e-12, pv.Specs[i].Name)
	}
}

func TestParamVectorClamp(t *testing.T) {
	pv := NewParamVector()
	v := make([]float64, pv.Dim())
	for i := range v {
		v[i] = -1
	}
	for i, c := range pv.Clamp(v) {
		assert.Equal(t, pv.Specs[i].Min, c)
	}
}

func TestApplyToConfigUpdatesDerivedParams(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	pv := NewParamVector()
	pv.ApplyToConfig(cfg, []float64{0.001, 2, 3, 4})

	assert.Equal(t, []float64{0.001, 2, 3, 4}, pv.ExtractFromConfig(cfg))
	assert.Equal(t, float32(0.001), cfg.Derived.Params.Amplitude)
	assert.Equal(t, float32(2), cfg.Derived.Params.Speed)
	assert.Equal(t, float32(3), cfg.Derived.Params.Frequency)
	assert.Equal(t, float32(4), cfg.Derived.Params.RestFrequency)
}

func TestComputeFitnessIsZeroOnTarget(t *testing.T) {
	fe := &FitnessEvaluator{radius: 1, targets: Targets{P90: 0.01, Spread: 0.5}}

	onTarget := []telemetry.DispatchStats{{DispP90: 0.01, DispMean: 0.005}}
	assert.InDelta(t, 0, fe.computeFitness(onTarget), 1e-12)

	off := []telemetry.DispatchStats{{DispP90: 0.02, DispMean: 0.005}}
	assert.Greater(t, fe.computeFitness(off), 0.0)

	broken := []telemetry.DispatchStats{{DispP90: 0.01, DispMean: 0.005, NonFinite: 3}}
	assert.Equal(t, nonFinitePenalty, fe.computeFitness(broken))
}

func TestCV(t *testing.T) {
	assert.Zero(t, cv([]float64{1}))
	assert.Zero(t, cv([]float64{2, 2, 2}))
	assert.Greater(t, cv([]float64{1, 3}), 0.0)
}
