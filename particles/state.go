package particles

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/dust/sampler"
)

// State holds the per-particle buffers of one point cloud. Rest and Normals
// never change after creation; Live is rewritten by every dispatch. A new
// sample set means a new State.
type State struct {
	Rest    []float32 // N*3
	Live    []float32 // N*3
	Normals []float32 // N*3
}

// NewState copies the positions and normals of set. Live starts at rest.
func NewState(set *sampler.SampleSet) *State {
	s := &State{
		Rest:    append([]float32(nil), set.Positions...),
		Live:    append([]float32(nil), set.Positions...),
		Normals: append([]float32(nil), set.Normals...),
	}
	return s
}

// Len returns the particle count.
func (s *State) Len() int {
	return len(s.Rest) / 3
}

func (s *State) RestPosition(i int) mgl32.Vec3 {
	return vec3At(s.Rest, i)
}

func (s *State) LivePosition(i int) mgl32.Vec3 {
	return vec3At(s.Live, i)
}

func (s *State) Normal(i int) mgl32.Vec3 {
	return vec3At(s.Normals, i)
}

// Displacement returns how far particle i has drifted from rest.
func (s *State) Displacement(i int) float32 {
	return s.LivePosition(i).Sub(s.RestPosition(i)).Len()
}

// Reset moves every particle back to rest.
func (s *State) Reset() {
	copy(s.Live, s.Rest)
}

func vec3At(buf []float32, i int) mgl32.Vec3 {
	return mgl32.Vec3{buf[3*i], buf[3*i+1], buf[3*i+2]}
}

func (s *State) setLive(i int, p mgl32.Vec3) {
	s.Live[3*i], s.Live[3*i+1], s.Live[3*i+2] = p[0], p[1], p[2]
}
