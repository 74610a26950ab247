package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/dust/particles"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 50000, cfg.Particles.Count)
	assert.Equal(t, 0.05, cfg.Camera.Damping)
	assert.Equal(t, [3]float64{0.5, 0, 0}, cfg.Particles.Offset)

	p := cfg.Derived.Params
	assert.Equal(t, particles.DefaultParams(), p)
	assert.InDelta(t, 1.0/60, cfg.Derived.DT32, 1e-6)
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	overlay := "particles:\n  count: 2000\noscillation:\n  mode: noise\n  amplitude: 0.002\n"
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Particles.Count)
	assert.Equal(t, 100000, cfg.Particles.MaxCount, "unset fields keep defaults")
	assert.Equal(t, particles.ModeNoise, cfg.Derived.Params.Mode)
	assert.Equal(t, float32(0.002), cfg.Derived.Params.Amplitude)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
	}{
		{"count below range", "particles:\n  count: 10\n"},
		{"count above range", "particles:\n  count: 1000000\n"},
		{"zero step", "particles:\n  count_step: 0\n"},
		{"zero scale", "model:\n  scale: 0\n"},
		{"unknown mode", "oscillation:\n  mode: spiral\n"},
		{"bad yaml", "particles: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.overlay), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Particles.Count = 3000

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3000, back.Particles.Count)
	assert.Equal(t, cfg.Derived, back.Derived)
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	defer func() { global = saved }()

	global = nil
	assert.Panics(t, func() { Cfg() })

	MustInit("")
	assert.NotNil(t, Cfg())
}
