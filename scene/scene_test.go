package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/dust/config"
	"github.com/pthm-cable/dust/mesh"
	"github.com/pthm-cable/dust/particles"
	"github.com/pthm-cable/dust/sampler"
	"github.com/pthm-cable/dust/telemetry"
)

const dt = float32(1.0 / 60.0)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func newCubeScene(t *testing.T, opts Options) *Scene {
	t.Helper()
	if opts.Count == 0 {
		opts.Count = 2000
	}
	if opts.Seed == 0 {
		opts.Seed = 7
	}
	s, err := New(loadConfig(t), mesh.Cube(1), "cube", opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestClockAdvance(t *testing.T) {
	var c Clock
	ctx := c.Advance(0.5)
	assert.Equal(t, FrameContext{Frame: 1, Time: 0.5, Dt: 0.5}, ctx)

	ctx = c.Advance(-1)
	assert.Equal(t, int32(2), ctx.Frame)
	assert.Equal(t, float32(0.5), ctx.Time, "negative dt must not move time backwards")
	assert.Zero(t, ctx.Dt)

	assert.Equal(t, int32(2), c.Frame())
	assert.Equal(t, c.Now().Time, c.Time())
}

func TestAnimationLoopOrder(t *testing.T) {
	var l AnimationLoop
	var calls []string
	record := func(name string) AnimationFunc {
		return func(FrameContext) { calls = append(calls, name) }
	}

	l.Add("a", record("a"))
	l.Add("b", record("b"))
	l.Add("c", record("c"))
	l.Add("b", record("b2"))

	l.Run(FrameContext{})
	assert.Equal(t, []string{"a", "b2", "c"}, calls)
	assert.Equal(t, []string{"a", "b", "c"}, l.Names())

	assert.True(t, l.Remove("a"))
	assert.False(t, l.Remove("a"))
	calls = nil
	l.Run(FrameContext{})
	assert.Equal(t, []string{"b2", "c"}, calls)
	assert.Equal(t, 2, l.Len())
}

func TestNewSamplesInitialCloud(t *testing.T) {
	s := newCubeScene(t, Options{})

	assert.Equal(t, 2000, s.Count())
	_, cloud := s.Cloud()
	assert.Equal(t, uint32(1), cloud.Generation)
	require.NotNil(t, s.State())
	require.NoError(t, cloud.Samples.Validate())

	st := s.State()
	assert.Equal(t, st.Rest, st.Live, "live starts at rest")
	for i := 0; i < st.Len(); i++ {
		p := st.RestPosition(i)
		for k := 0; k < 3; k++ {
			require.LessOrEqual(t, abs32(p[k]), float32(0.5+1e-5), "particle %d at %v", i, p)
		}
	}
	assert.Equal(t, []string{AnimParticles, AnimTelemetry}, s.Loop().Names())
}

func TestNewRejectsUnknownMode(t *testing.T) {
	_, err := New(loadConfig(t), mesh.Cube(1), "cube", Options{Mode: "spiral"})
	assert.Error(t, err)

	_, err = New(loadConfig(t), nil, "none", Options{})
	assert.Error(t, err)
}

func TestStepDispatchesRadialDrift(t *testing.T) {
	s := newCubeScene(t, Options{})

	ctx := s.Step(dt)
	assert.Equal(t, int32(1), ctx.Frame)
	assert.Equal(t, dt, s.Time())

	st := s.State()
	moved := 0
	for i := 0; i < st.Len(); i++ {
		d := st.Displacement(i)
		require.LessOrEqual(t, d, s.Params().Amplitude*1.0001)
		if d > 0 {
			moved++
		}
	}
	assert.Greater(t, moved, st.Len()*9/10)
}

func TestDisabledParamsLeaveCloudAtRest(t *testing.T) {
	s := newCubeScene(t, Options{})
	p := s.Params()
	p.Enabled = false
	s.SetParams(p)

	for i := 0; i < 10; i++ {
		s.Step(dt)
	}
	assert.Equal(t, s.State().Rest, s.State().Live)
}

func TestRestRelativeModeStaysNearRest(t *testing.T) {
	s := newCubeScene(t, Options{Mode: "rest"})
	require.Equal(t, particles.ModeRestRelative, s.Params().Mode)

	for i := 0; i < 120; i++ {
		s.Step(dt)
	}
	st := s.State()
	for i := 0; i < st.Len(); i++ {
		// |rest*osc*phase + osc*(1,1,1)| <= amp*(|rest|+sqrt(3)), |rest| <= sqrt(3)/2
		require.LessOrEqual(t, st.Displacement(i), s.Params().Amplitude*3)
	}
}

func TestResampleFailureKeepsPreviousCloud(t *testing.T) {
	s := newCubeScene(t, Options{})
	before := s.State()

	err := s.Resample(0)
	assert.ErrorIs(t, err, sampler.ErrInvalidArgument)
	assert.Same(t, before, s.State())
	assert.Equal(t, 2000, s.Count())

	_, cloud := s.Cloud()
	assert.Equal(t, uint32(1), cloud.Generation)
}

func TestInvalidMeshRunsWithoutParticles(t *testing.T) {
	line := mesh.New("line", []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}, nil, nil, nil)
	s, err := New(loadConfig(t), line, "line", Options{Count: 100, Seed: 1})
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.State())
	assert.Zero(t, s.Count())
	assert.NotPanics(t, func() {
		for i := 0; i < 5; i++ {
			s.Step(dt)
		}
	})
}

func TestSetModelScaleResamples(t *testing.T) {
	s := newCubeScene(t, Options{})

	require.NoError(t, s.SetModelScale(2))
	_, cloud := s.Cloud()
	assert.Equal(t, uint32(2), cloud.Generation)
	assert.Equal(t, 2000, s.Count())

	var extent float32
	st := s.State()
	for i := 0; i < st.Len(); i++ {
		p := st.RestPosition(i)
		extent = max(extent, abs32(p.X()), abs32(p.Y()), abs32(p.Z()))
	}
	assert.InDelta(t, 1.0, extent, 1e-4)

	assert.Error(t, s.SetModelScale(0))
	node, _ := s.Model()
	assert.Equal(t, float32(2), node.Scale)
}

func TestSameSeedSamplesSameCloud(t *testing.T) {
	a := newCubeScene(t, Options{Seed: 99})
	b := newCubeScene(t, Options{Seed: 99})
	assert.Equal(t, a.State().Rest, b.State().Rest)
}

func TestCloudOffsetDoesNotResample(t *testing.T) {
	s := newCubeScene(t, Options{})
	before := s.State()

	s.SetCloudOffset(mgl32.Vec3{1, 2, 3})
	node, cloud := s.Cloud()
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, node.Position)
	assert.Same(t, before, cloud.State)
}

func TestSnapshotRestore(t *testing.T) {
	a := newCubeScene(t, Options{Seed: 5})
	for i := 0; i < 30; i++ {
		a.Step(dt)
	}

	path, err := a.SaveSnapshot(t.TempDir())
	require.NoError(t, err)
	snap, err := telemetry.LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, int32(30), snap.Frame)

	b := newCubeScene(t, Options{Seed: 1234})
	require.NoError(t, b.Restore(snap))
	assert.Equal(t, a.Frame(), b.Frame())
	assert.Equal(t, a.State().Rest, b.State().Rest)
	assert.Equal(t, a.State().Live, b.State().Live)

	a.Step(dt)
	b.Step(dt)
	assert.Equal(t, a.State().Live, b.State().Live)
}

func TestRestoreFailureRollsBack(t *testing.T) {
	s := newCubeScene(t, Options{Seed: 5})
	before := s.State()
	snap := s.Snapshot(nil)
	snap.ModelScale = 0
	snap.SampleSeed = 999
	snap.Count = 500
	snap.Live = nil

	err := s.Restore(snap)
	require.ErrorIs(t, err, sampler.ErrInvalidMesh)

	node, model := s.Model()
	assert.Equal(t, float32(1), node.Scale)
	assert.Equal(t, int64(5), s.sampleSeed)
	assert.Same(t, before, s.State())
	assert.Equal(t, 2000, s.Count())
	assert.False(t, model.Mesh.Transform.Dirty())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, model.Mesh.Transform.Scale())

	// Later placement changes resample at the scene's own count.
	require.NoError(t, s.SetModelScale(2))
	assert.Equal(t, 2000, s.Count())
	assert.Equal(t, int64(5), s.sampleSeed)
}

func TestRestoreRejectsShortLiveBuffer(t *testing.T) {
	a := newCubeScene(t, Options{Seed: 5})
	snap := a.Snapshot(nil)
	snap.Live = snap.Live[:len(snap.Live)-3]

	b := newCubeScene(t, Options{Seed: 1234})
	before := b.State()
	assert.Error(t, b.Restore(snap))
	assert.Same(t, before, b.State())
	assert.Zero(t, b.Frame())
}

func TestOutputDirReceivesTelemetry(t *testing.T) {
	dir := t.TempDir()
	s := newCubeScene(t, Options{OutputDir: dir, StatsWindowSec: 0.1})

	var windows []telemetry.DispatchStats
	s.OnStats(func(st telemetry.DispatchStats) { windows = append(windows, st) })

	for i := 0; i < 30; i++ {
		s.BeginFrame()
		s.Step(dt)
		s.EndFrame()
	}
	require.NoError(t, s.Close())

	require.Len(t, windows, 5)
	assert.Equal(t, 2000, windows[0].Count)
	assert.Equal(t, 6, windows[1].Dispatches)
	assert.Equal(t, windows[4], s.LastStats())

	for _, name := range []string{"config.yaml", "samples.csv", "perf.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	data, err := os.ReadFile(filepath.Join(dir, "dispatch.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 6, "header plus one row per window")
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
