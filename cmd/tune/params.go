package main

import (
	"github.com/pthm-cable/dust/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the oscillation parameters searched by the tuner.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "amplitude", Path: "oscillation.amplitude", Min: 0.00005, Max: 0.01, Default: 0.0005},
			{Name: "speed", Path: "oscillation.speed", Min: 0.1, Max: 5.0, Default: 1.0},
			{Name: "frequency", Path: "oscillation.frequency", Min: 1.0, Max: 20.0, Default: 6.28},
			{Name: "rest_frequency", Path: "oscillation.rest_frequency", Min: 1.0, Max: 20.0, Default: 10.28},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into both the oscillation section
// and the derived update parameters. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Oscillation.Amplitude = clamped[0]
	cfg.Oscillation.Speed = clamped[1]
	cfg.Oscillation.Frequency = clamped[2]
	cfg.Oscillation.RestFrequency = clamped[3]

	cfg.Derived.Params.Amplitude = float32(clamped[0])
	cfg.Derived.Params.Speed = float32(clamped[1])
	cfg.Derived.Params.Frequency = float32(clamped[2])
	cfg.Derived.Params.RestFrequency = float32(clamped[3])
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Oscillation.Amplitude,
		cfg.Oscillation.Speed,
		cfg.Oscillation.Frequency,
		cfg.Oscillation.RestFrequency,
	}
}
