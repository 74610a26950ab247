package particles

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/dust/mesh"
	"github.com/pthm-cable/dust/sampler"
)

func TestHashGolden(t *testing.T) {
	// Changing any of these means bumping HashVersion.
	require.Equal(t, 1, HashVersion)
	tests := []struct {
		i    uint32
		bits uint32
	}{
		{0, 506671},
		{1, 11058922},
		{2, 8027852},
		{12345, 16015021},
		{math.MaxUint32, 15084105},
	}
	for _, tt := range tests {
		want := float32(tt.bits) / (1 << 24)
		assert.Equal(t, want, Hash(tt.i), "Hash(%d)", tt.i)
	}
}

func TestHashDeterministicAndInRange(t *testing.T) {
	var buckets [10]int
	const n = 100000
	for i := uint32(0); i < n; i++ {
		h := Hash(i)
		if h != Hash(i) {
			t.Fatalf("Hash(%d) not repeatable", i)
		}
		if h < 0 || h >= 1 {
			t.Fatalf("Hash(%d) = %v outside [0,1)", i, h)
		}
		buckets[int(h*10)]++
	}
	for b, c := range buckets {
		assert.InDelta(t, n/10, c, 500, "bucket %d", b)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"radial", ModeRadial, true},
		{"Rest", ModeRestRelative, true},
		{"rest-relative", ModeRestRelative, true},
		{" noise ", ModeNoise, true},
		{"spiral", ModeRadial, false},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		back, err := ParseMode(got.String())
		require.NoError(t, err)
		assert.Equal(t, got, back)
	}
	assert.Equal(t, ModeRadial, ModeNoise.Next())
	assert.Equal(t, "Mode(9)", Mode(9).String())
}

func TestRadialZeroAmplitudeIsIdentity(t *testing.T) {
	p := DefaultParams()
	p.Amplitude = 0
	rng := rand.New(rand.NewSource(1))
	for k := 0; k < 1000; k++ {
		pos := mgl32.Vec3{rng.Float32()*4 - 2, rng.Float32()*4 - 2, rng.Float32()*4 - 2}
		phase := rng.Float32()
		tm := rng.Float32() * 1000
		assert.Equal(t, pos, StepRadial(pos, phase, tm, p))
	}
}

func TestRadialDisabledIsIdentity(t *testing.T) {
	p := DefaultParams()
	p.Enabled = false
	p.Amplitude = 0.5
	pos := mgl32.Vec3{1, 2, 3}
	assert.Equal(t, pos, StepRadial(pos, 0.3, 1.7, p))

	u := NewUpdater(1)
	for _, m := range []Mode{ModeRadial, ModeRestRelative, ModeNoise} {
		p.Mode = m
		assert.Equal(t, pos, u.Step(7, mgl32.Vec3{}, pos, mgl32.Vec3{0, 1, 0}, 1.7, p), m.String())
	}
}

func TestRadialMovesAlongDirection(t *testing.T) {
	p := DefaultParams()
	p.Amplitude = 0.1
	p.Speed = 1
	p.Frequency = 0
	// sin(pi/2) = 1: full amplitude outward.
	got := StepRadial(mgl32.Vec3{0, 2, 0}, 0, math.Pi/2, p)
	assert.InDelta(t, 2.1, got.Y(), 1e-6)
	assert.Zero(t, got.X())
	assert.Zero(t, got.Z())

	// The origin has no direction.
	assert.Equal(t, mgl32.Vec3{}, StepRadial(mgl32.Vec3{}, 0, math.Pi/2, p))
}

func TestRestRelativeBounded(t *testing.T) {
	p := DefaultParams()
	p.Mode = ModeRestRelative
	p.Amplitude = 0.01

	rest := mgl32.Vec3{0.5, -0.25, 0.5}
	for k := 0; k < 2000; k++ {
		tm := float32(k) * 0.37
		phase := Hash(uint32(k))
		got := StepRestRelative(rest, phase, tm, p)
		// |osc| <= amplitude, so each coordinate moves at most
		// |rest|*amplitude + amplitude.
		for c := 0; c < 3; c++ {
			limit := float64(abs32(rest[c])*p.Amplitude + p.Amplitude + 1e-6)
			assert.LessOrEqual(t, math.Abs(float64(got[c]-rest[c])), limit)
		}
	}

	p.Amplitude = 0
	assert.Equal(t, rest, StepRestRelative(rest, 0.42, 3.3, p))
}

func TestRestRelativeFormula(t *testing.T) {
	p := DefaultParams()
	p.Amplitude = 0.01
	rest := mgl32.Vec3{1, 0, 0}
	phase := Hash(3)
	const tm = 1.3

	osc := math.Sin(tm*float64(p.Speed)+float64(phase)*float64(p.RestFrequency)) *
		float64(p.Amplitude) * math.Sin(tm)
	scale := 1 + osc*float64(phase)

	got := StepRestRelative(rest, phase, tm, p)
	assert.InDelta(t, 1*scale+osc, float64(got.X()), 1e-6)
	assert.InDelta(t, osc, float64(got.Y()), 1e-6)
	assert.InDelta(t, osc, float64(got.Z()), 1e-6)

	// The scaled point stays on the surface side, not collapsed toward osc.
	assert.InDelta(t, 1.0, float64(got.X()), 2*float64(p.Amplitude))
}

func TestRestRelativeIgnoresLive(t *testing.T) {
	u := NewUpdater(1)
	p := DefaultParams()
	p.Mode = ModeRestRelative
	rest := mgl32.Vec3{1, 0, 0}
	a := u.Step(3, rest, mgl32.Vec3{5, 5, 5}, mgl32.Vec3{1, 0, 0}, 2, p)
	b := u.Step(3, rest, mgl32.Vec3{-9, 0, 1}, mgl32.Vec3{1, 0, 0}, 2, p)
	assert.Equal(t, a, b)
}

func TestNoiseStaysOnNormalLine(t *testing.T) {
	u := NewUpdater(7)
	p := DefaultParams()
	p.Mode = ModeNoise
	p.Amplitude = 0.05
	p.Frequency = 3

	rest := mgl32.Vec3{0.2, 0.5, -0.1}
	normal := mgl32.Vec3{0, 1, 0}
	for k := 0; k < 200; k++ {
		got := u.Step(k, rest, rest, normal, float32(k)*0.1, p)
		assert.Equal(t, rest.X(), got.X())
		assert.Equal(t, rest.Z(), got.Z())
		assert.LessOrEqual(t, abs32(got.Y()-rest.Y()), p.Amplitude*1.1)
	}

	// Same seed, same field.
	v := NewUpdater(7)
	assert.Equal(t,
		u.Step(11, rest, rest, normal, 4.2, p),
		v.Step(11, rest, rest, normal, 4.2, p))
}

func sampledState(t testing.TB, n int) *State {
	t.Helper()
	set, err := sampler.Sample(mesh.UVSphere(1, 32, 16), n, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	return NewState(set)
}

func TestNewStateCopiesSamples(t *testing.T) {
	set, err := sampler.Sample(mesh.Cube(1), 100, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	s := NewState(set)

	require.Equal(t, 100, s.Len())
	assert.Equal(t, set.Positions, s.Rest)
	assert.Equal(t, set.Positions, s.Live)

	s.Live[0] = 42
	assert.NotEqual(t, s.Live[0], s.Rest[0])
	assert.NotEqual(t, float32(42), set.Positions[0])
	assert.InDelta(t, 42-float64(set.Positions[0]), s.Displacement(0), 1e-5)

	s.Reset()
	assert.Equal(t, s.Rest, s.Live)
}

func TestDispatchParallelMatchesSerial(t *testing.T) {
	u := NewUpdater(3)
	serial := NewDispatcher(u, 1, 1)
	parallel := NewDispatcher(u, 4, 16)
	defer parallel.Close()

	for _, m := range []Mode{ModeRadial, ModeRestRelative, ModeNoise} {
		t.Run(m.String(), func(t *testing.T) {
			p := DefaultParams()
			p.Mode = m
			p.Amplitude = 0.01

			a := sampledState(t, 5000)
			b := sampledState(t, 5000)
			for frame := 0; frame < 10; frame++ {
				tm := float32(frame) / 60
				serial.Dispatch(a, tm, p)
				parallel.Dispatch(b, tm, p)
			}
			assert.Equal(t, a.Live, b.Live)
			assert.NotEqual(t, a.Rest, a.Live)
		})
	}
}

func TestDispatchRadialZeroAmplitude(t *testing.T) {
	d := NewDispatcher(NewUpdater(1), 2, 8)
	defer d.Close()

	s := sampledState(t, 1000)
	p := DefaultParams()
	p.Amplitude = 0
	for frame := 0; frame < 5; frame++ {
		d.Dispatch(s, float32(frame), p)
	}
	assert.Equal(t, s.Rest, s.Live)
}

func TestDispatcherCloseAndRestart(t *testing.T) {
	d := NewDispatcher(NewUpdater(1), 3, 1)
	s := sampledState(t, 300)
	p := DefaultParams()

	d.Dispatch(s, 1, p)
	d.Close()
	d.Close()
	d.Dispatch(s, 2, p)
	d.Close()

	ref := sampledState(t, 300)
	serial := NewDispatcher(NewUpdater(1), 1, 1)
	serial.Dispatch(ref, 1, p)
	serial.Dispatch(ref, 2, p)
	assert.Equal(t, ref.Live, s.Live)
}

func TestDispatchEmptyState(t *testing.T) {
	d := NewDispatcher(NewUpdater(1), 0, 0)
	assert.Greater(t, d.Workers(), 0)
	d.Dispatch(&State{}, 1, DefaultParams())
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
