// Package config provides configuration loading and access for the visualizer.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/dust/particles"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Camera      CameraConfig      `yaml:"camera"`
	Model       ModelConfig       `yaml:"model"`
	Particles   ParticlesConfig   `yaml:"particles"`
	Oscillation OscillationConfig `yaml:"oscillation"`
	Parallel    ParallelConfig    `yaml:"parallel"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	TargetFPS  int      `yaml:"target_fps"`
	Background [3]uint8 `yaml:"background"` // RGB clear color
}

// CameraConfig holds orbit camera settings.
type CameraConfig struct {
	Fovy        float64    `yaml:"fovy"` // Vertical field of view in degrees
	Near        float64    `yaml:"near"`
	Far         float64    `yaml:"far"`
	Distance    float64    `yaml:"distance"` // Initial distance from target
	MinDistance float64    `yaml:"min_distance"`
	MaxDistance float64    `yaml:"max_distance"`
	Damping     float64    `yaml:"damping"` // Fraction of pending camera motion applied per frame
	Target      [3]float64 `yaml:"target"`
}

// ModelConfig describes the source mesh.
type ModelConfig struct {
	Path      string     `yaml:"path"`      // Model file loaded by raylib; empty uses Primitive
	Primitive string     `yaml:"primitive"` // cube, sphere, plane, torus
	Texture   string     `yaml:"texture"`   // Diffuse texture used to color particles
	Scale     float64    `yaml:"scale"`
	Position  [3]float64 `yaml:"position"`
	Visible   bool       `yaml:"visible"`
}

// ParticlesConfig holds point cloud parameters.
type ParticlesConfig struct {
	Count       int        `yaml:"count"`
	MinCount    int        `yaml:"min_count"`
	MaxCount    int        `yaml:"max_count"`
	CountStep   int        `yaml:"count_step"`
	SpriteScale float64    `yaml:"sprite_scale"`
	Offset      [3]float64 `yaml:"offset"` // Cloud position relative to the world origin
	Visible     bool       `yaml:"visible"`
	Seed        int64      `yaml:"seed"` // Sampler seed; 0 = derive from run seed
}

// OscillationConfig holds the per-particle update parameters.
type OscillationConfig struct {
	Mode          string  `yaml:"mode"` // radial, rest, noise
	Enabled       bool    `yaml:"enabled"`
	Amplitude     float64 `yaml:"amplitude"`
	Speed         float64 `yaml:"speed"`
	Frequency     float64 `yaml:"frequency"`
	RestFrequency float64 `yaml:"rest_frequency"` // Phase multiplier of the rest-relative rule
	NoiseSeed     int64   `yaml:"noise_seed"`
}

// ParallelConfig holds dispatcher settings.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // Minimum particle count for the worker pool
}

// PhysicsConfig holds clock parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // Fixed step for headless runs
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds per dispatch stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32          // Physics.DT as float32
	ScreenW32 float32          // Screen.Width as float32
	ScreenH32 float32          // Screen.Height as float32
	Params    particles.Params // Oscillation as update parameters
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects values the sampler or dispatcher cannot work with.
func (c *Config) validate() error {
	p := c.Particles
	if p.MinCount < 1 || p.MaxCount < p.MinCount {
		return fmt.Errorf("particles: invalid count range [%d, %d]", p.MinCount, p.MaxCount)
	}
	if p.Count < p.MinCount || p.Count > p.MaxCount {
		return fmt.Errorf("particles: count %d outside [%d, %d]", p.Count, p.MinCount, p.MaxCount)
	}
	if p.CountStep < 1 {
		return fmt.Errorf("particles: count_step must be positive, got %d", p.CountStep)
	}
	if c.Model.Scale <= 0 {
		return fmt.Errorf("model: scale must be positive, got %v", c.Model.Scale)
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics: dt must be positive, got %v", c.Physics.DT)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	mode, err := particles.ParseMode(c.Oscillation.Mode)
	if err != nil {
		return fmt.Errorf("oscillation: %w", err)
	}
	c.Derived.Params = particles.Params{
		Mode:          mode,
		Enabled:       c.Oscillation.Enabled,
		Amplitude:     float32(c.Oscillation.Amplitude),
		Speed:         float32(c.Oscillation.Speed),
		Frequency:     float32(c.Oscillation.Frequency),
		RestFrequency: float32(c.Oscillation.RestFrequency),
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
