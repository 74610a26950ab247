// Package scene holds the headless core of the visualizer: an ECS world with
// the source model and its particle cloud, the clock, the per-frame
// animation callbacks and the sample/update pipeline.
package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/dust/components"
	"github.com/pthm-cable/dust/config"
	"github.com/pthm-cable/dust/mesh"
	"github.com/pthm-cable/dust/particles"
	"github.com/pthm-cable/dust/sampler"
	"github.com/pthm-cable/dust/telemetry"
)

// Animation callback names registered by New.
const (
	AnimParticles = "particles"
	AnimTelemetry = "telemetry"
)

// Options configures a Scene beyond the loaded config.
type Options struct {
	Seed           int64   // Sampler seed when the config leaves it at 0
	LogStats       bool    // Log dispatch and perf stats every window
	StatsWindowSec float64 // 0 = config
	OutputDir      string  // CSV output; empty disables
	Count          int     // Initial particle count; 0 = config
	Mode           string  // Oscillation mode override; empty = config
}

// Scene owns the model and cloud entities and advances them.
type Scene struct {
	world *ecs.World

	modelMapper *ecs.Map2[components.Node, components.Model]
	cloudMapper *ecs.Map2[components.Node, components.Cloud]
	cloudFilter *ecs.Filter2[components.Node, components.Cloud]

	nodeMap  *ecs.Map[components.Node]
	modelMap *ecs.Map[components.Model]
	cloudMap *ecs.Map[components.Cloud]

	modelEntity ecs.Entity
	cloudEntity ecs.Entity

	sampleSeed int64
	count      int // last requested particle count
	params     particles.Params

	dispatcher *particles.Dispatcher

	clock Clock
	loop  AnimationLoop

	// Telemetry
	logStats         bool
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.DispatchStats)
	lastStats        telemetry.DispatchStats
}

// New builds a scene around m. source names the mesh in logs and snapshots.
// A failed initial sample is logged and leaves the scene without particles.
func New(cfg *config.Config, m *mesh.Mesh, source string, opts Options) (*Scene, error) {
	if m == nil {
		return nil, errors.New("scene: nil mesh")
	}

	params := cfg.Derived.Params
	if opts.Mode != "" {
		mode, err := particles.ParseMode(opts.Mode)
		if err != nil {
			return nil, err
		}
		params.Mode = mode
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	sampleSeed := cfg.Particles.Seed
	if sampleSeed == 0 {
		sampleSeed = opts.Seed
	}

	world := ecs.NewWorld()
	s := &Scene{
		world:       world,
		modelMapper: ecs.NewMap2[components.Node, components.Model](world),
		cloudMapper: ecs.NewMap2[components.Node, components.Cloud](world),
		cloudFilter: ecs.NewFilter2[components.Node, components.Cloud](world),
		nodeMap:     ecs.NewMap[components.Node](world),
		modelMap:    ecs.NewMap[components.Model](world),
		cloudMap:    ecs.NewMap[components.Cloud](world),

		sampleSeed: sampleSeed,
		params:     params,
		dispatcher: particles.NewDispatcher(
			particles.NewUpdater(cfg.Oscillation.NoiseSeed),
			cfg.Parallel.Workers,
			cfg.Parallel.Threshold,
		),

		logStats:         opts.LogStats,
		collector:        telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	s.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	mp := cfg.Model.Position
	s.modelEntity = s.modelMapper.NewEntity(
		&components.Node{
			Position: mgl32.Vec3{float32(mp[0]), float32(mp[1]), float32(mp[2])},
			Scale:    float32(cfg.Model.Scale),
			Visible:  cfg.Model.Visible,
		},
		&components.Model{Mesh: m, Source: source},
	)

	off := cfg.Particles.Offset
	s.cloudEntity = s.cloudMapper.NewEntity(
		&components.Node{
			Position: mgl32.Vec3{float32(off[0]), float32(off[1]), float32(off[2])},
			Scale:    1,
			Visible:  cfg.Particles.Visible,
		},
		&components.Cloud{SpriteScale: float32(cfg.Particles.SpriteScale)},
	)

	s.loop.Add(AnimParticles, s.dispatchClouds)
	s.loop.Add(AnimTelemetry, func(ctx FrameContext) {
		s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
		s.flushTelemetry(ctx.Frame)
	})

	count := cfg.Particles.Count
	if opts.Count > 0 {
		count = opts.Count
	}
	// Host policy: keep running without particles. Later placement changes
	// retry with this count.
	s.count = count
	_ = s.Resample(count)

	return s, nil
}

// dispatchClouds advances every cloud to the frame time with a copy of the
// current parameters.
func (s *Scene) dispatchClouds(ctx FrameContext) {
	s.perfCollector.StartPhase(telemetry.PhaseDispatch)
	params := s.params
	query := s.cloudFilter.Query()
	for query.Next() {
		_, cloud := query.Get()
		if cloud.State == nil {
			continue
		}
		s.dispatcher.Dispatch(cloud.State, ctx.Time, params)
		s.collector.RecordDispatch()
	}
}

// Resample rebuilds the cloud with count particles drawn from the model at
// its current placement. On failure the previous cloud and count are kept.
func (s *Scene) Resample(count int) error {
	s.perfCollector.StartPhase(telemetry.PhaseResample)
	start := time.Now()

	node := s.nodeMap.Get(s.modelEntity)
	model := s.modelMap.Get(s.modelEntity)
	model.SyncTransform(node)

	set, err := s.sample(model.Mesh, count)
	if err != nil {
		s.collector.RecordResample(false)
		slog.Error("resample failed",
			"source", model.Source,
			"count", count,
			"error", err,
		)
		return err
	}

	s.count = count
	cloud := s.cloudMap.Get(s.cloudEntity)
	cloud.Samples = set
	cloud.State = particles.NewState(set)
	cloud.Generation++
	s.collector.RecordResample(true)
	s.bookmarkDetector.RunawayLimit = runawayLimit(model.Mesh, node.Scale)

	if err := s.outputManager.WriteSamples(set); err != nil {
		slog.Error("failed to write samples", "error", err)
	}

	slog.Info("resampled",
		"source", model.Source,
		"count", count,
		"generation", cloud.Generation,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *Scene) sample(m *mesh.Mesh, count int) (*sampler.SampleSet, error) {
	smp, err := sampler.New(m)
	if err != nil {
		return nil, err
	}
	return smp.Sample(rand.New(rand.NewSource(s.sampleSeed)), count)
}

// runawayLimit is the world-space bounding radius of m.
func runawayLimit(m *mesh.Mesh, scale float32) float64 {
	lo, hi := m.Bounds()
	return float64(hi.Sub(lo).Len() / 2 * scale)
}

// Step advances the clock by dt and runs the animation callbacks.
func (s *Scene) Step(dt float32) FrameContext {
	ctx := s.clock.Advance(dt)
	s.loop.Run(ctx)
	return ctx
}

// BeginFrame starts perf timing for one frame.
func (s *Scene) BeginFrame() { s.perfCollector.StartFrame() }

// EndFrame records the frame's perf sample.
func (s *Scene) EndFrame() { s.perfCollector.EndFrame() }

// Params returns the current update parameters.
func (s *Scene) Params() particles.Params { return s.params }

// SetParams replaces the update parameters from the next dispatch on. When
// switching away from radial mode nothing is reset; the rest-relative and
// noise rules recompute from rest on their own.
func (s *Scene) SetParams(p particles.Params) { s.params = p }

// SetModelScale rescales the model uniformly and resamples. On failure the
// previous scale and cloud are kept.
func (s *Scene) SetModelScale(scale float32) error {
	if scale <= 0 {
		return fmt.Errorf("%w: model scale %v", sampler.ErrInvalidArgument, scale)
	}
	node := s.nodeMap.Get(s.modelEntity)
	if node.Scale == scale {
		return nil
	}
	old := node.Scale
	node.Scale = scale
	if err := s.Resample(s.count); err != nil {
		node.Scale = old
		s.modelMap.Get(s.modelEntity).SyncTransform(node)
		return err
	}
	return nil
}

// SetModelPosition moves the model and resamples.
func (s *Scene) SetModelPosition(p mgl32.Vec3) error {
	node := s.nodeMap.Get(s.modelEntity)
	if node.Position == p {
		return nil
	}
	old := node.Position
	node.Position = p
	if err := s.Resample(s.count); err != nil {
		node.Position = old
		s.modelMap.Get(s.modelEntity).SyncTransform(node)
		return err
	}
	return nil
}

// SetCloudOffset moves the whole cloud. Particle buffers are untouched.
func (s *Scene) SetCloudOffset(p mgl32.Vec3) {
	s.nodeMap.Get(s.cloudEntity).Position = p
}

// SetSpriteScale sets the drawn particle size.
func (s *Scene) SetSpriteScale(v float32) {
	s.cloudMap.Get(s.cloudEntity).SpriteScale = v
}

// SetModelVisible toggles drawing of the source model.
func (s *Scene) SetModelVisible(v bool) {
	s.nodeMap.Get(s.modelEntity).Visible = v
}

// SetCloudVisible toggles drawing of the particles.
func (s *Scene) SetCloudVisible(v bool) {
	s.nodeMap.Get(s.cloudEntity).Visible = v
}

// Model returns the model entity's components.
func (s *Scene) Model() (*components.Node, *components.Model) {
	return s.nodeMap.Get(s.modelEntity), s.modelMap.Get(s.modelEntity)
}

// Cloud returns the cloud entity's components.
func (s *Scene) Cloud() (*components.Node, *components.Cloud) {
	return s.nodeMap.Get(s.cloudEntity), s.cloudMap.Get(s.cloudEntity)
}

// State returns the live particle buffers, or nil before the first
// successful sample.
func (s *Scene) State() *particles.State {
	return s.cloudMap.Get(s.cloudEntity).State
}

// Count returns the current particle count.
func (s *Scene) Count() int {
	return s.cloudMap.Get(s.cloudEntity).Count()
}

// Loop exposes the animation callback registry.
func (s *Scene) Loop() *AnimationLoop { return &s.loop }

// Frame returns the number of frames stepped.
func (s *Scene) Frame() int32 { return s.clock.Frame() }

// Time returns elapsed simulated seconds.
func (s *Scene) Time() float32 { return s.clock.Time() }

// Perf returns the frame timing collector.
func (s *Scene) Perf() *telemetry.PerfCollector { return s.perfCollector }

// LastStats returns the most recently flushed window.
func (s *Scene) LastStats() telemetry.DispatchStats { return s.lastStats }

// OnStats registers a callback for every flushed stats window.
func (s *Scene) OnStats(fn func(telemetry.DispatchStats)) { s.statsCallback = fn }

// Close stops the worker pool and closes output files.
func (s *Scene) Close() error {
	s.dispatcher.Close()
	return s.outputManager.Close()
}
