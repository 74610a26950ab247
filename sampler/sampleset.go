package sampler

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SampleSet holds N surface samples as flat, index-aligned buffers laid out
// the way GPU vertex buffers expect them.
type SampleSet struct {
	Positions []float32 // N*3, world space
	UVs       []float32 // N*2
	Normals   []float32 // N*3, world space, unit length
}

// NewSampleSet allocates buffers for n samples.
func NewSampleSet(n int) *SampleSet {
	return &SampleSet{
		Positions: make([]float32, n*3),
		UVs:       make([]float32, n*2),
		Normals:   make([]float32, n*3),
	}
}

// Len returns the number of samples.
func (s *SampleSet) Len() int {
	return len(s.Positions) / 3
}

func (s *SampleSet) Position(i int) mgl32.Vec3 {
	return mgl32.Vec3{s.Positions[3*i], s.Positions[3*i+1], s.Positions[3*i+2]}
}

func (s *SampleSet) Normal(i int) mgl32.Vec3 {
	return mgl32.Vec3{s.Normals[3*i], s.Normals[3*i+1], s.Normals[3*i+2]}
}

func (s *SampleSet) UV(i int) mgl32.Vec2 {
	return mgl32.Vec2{s.UVs[2*i], s.UVs[2*i+1]}
}

func (s *SampleSet) set(i int, p, n mgl32.Vec3, uv mgl32.Vec2) {
	s.Positions[3*i], s.Positions[3*i+1], s.Positions[3*i+2] = p[0], p[1], p[2]
	s.Normals[3*i], s.Normals[3*i+1], s.Normals[3*i+2] = n[0], n[1], n[2]
	s.UVs[2*i], s.UVs[2*i+1] = uv[0], uv[1]
}

// Validate checks the buffer length invariant.
func (s *SampleSet) Validate() error {
	n := s.Len()
	if len(s.Positions) != n*3 || len(s.Normals) != n*3 || len(s.UVs) != n*2 {
		return fmt.Errorf("sample set buffers disagree: positions=%d normals=%d uvs=%d",
			len(s.Positions), len(s.Normals), len(s.UVs))
	}
	return nil
}

// TexelAt maps a texture coordinate to a pixel in a width x height image.
// (0,0) is the top-left texel, v grows downward and coordinates outside [0,1)
// wrap around.
func TexelAt(u, v float32, width, height int) (x, y int) {
	x = wrapTexel(u, width)
	y = wrapTexel(v, height)
	return x, y
}

func wrapTexel(c float32, size int) int {
	if size <= 0 {
		return 0
	}
	p := int(math.Floor(float64(c) * float64(size)))
	p %= size
	if p < 0 {
		p += size
	}
	return p
}
