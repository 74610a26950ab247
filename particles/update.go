package particles

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"
)

// StepRadial moves live along its direction from the origin by
// sin(t*speed + phase*frequency) * amplitude. A particle sitting exactly on
// the origin has no direction and stays put.
func StepRadial(live mgl32.Vec3, phase, t float32, p Params) mgl32.Vec3 {
	if !p.Enabled || p.Amplitude == 0 {
		return live
	}
	l := live.Len()
	if l == 0 {
		return live
	}
	d := sin32(t*p.Speed+phase*p.Frequency) * p.Amplitude
	return live.Add(live.Mul(d / l))
}

// StepRestRelative derives the live position from rest:
//
//	osc = sin(t*speed + phase*restFrequency) * amplitude * sin(t)
//	pos = rest*(1 + osc*phase) + osc
//
// The scale factor stays within amplitude of 1, so particles never leave the
// neighbourhood of the surface and amplitude 0 returns rest exactly.
func StepRestRelative(rest mgl32.Vec3, phase, t float32, p Params) mgl32.Vec3 {
	osc := sin32(t*p.Speed+phase*p.RestFrequency) * p.Amplitude * sin32(t)
	s := 1 + osc*phase
	return mgl32.Vec3{rest[0]*s + osc, rest[1]*s + osc, rest[2]*s + osc}
}

// Updater applies the configured oscillation rule to one particle at a time.
// It is safe for concurrent use.
type Updater struct {
	noise opensimplex.Noise32
}

// NewUpdater creates an updater whose noise field is seeded with seed.
func NewUpdater(seed int64) *Updater {
	return &Updater{noise: opensimplex.New32(seed)}
}

// Step returns the next live position of particle i.
func (u *Updater) Step(i int, rest, live, normal mgl32.Vec3, t float32, p Params) mgl32.Vec3 {
	if !p.Enabled {
		return live
	}
	phase := Hash(uint32(i))
	switch p.Mode {
	case ModeRestRelative:
		return StepRestRelative(rest, phase, t, p)
	case ModeNoise:
		return u.stepNoise(rest, normal, phase, t, p)
	default:
		return StepRadial(live, phase, t, p)
	}
}

func (u *Updater) stepNoise(rest, normal mgl32.Vec3, phase, t float32, p Params) mgl32.Vec3 {
	q := rest.Mul(p.Frequency)
	n := u.noise.Eval4(q[0], q[1], q[2], t*p.Speed+phase)
	return rest.Add(normal.Mul(n * p.Amplitude))
}

func sin32(x float32) float32 {
	return float32(math.Sin(float64(x)))
}
