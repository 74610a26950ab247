// Package sampler draws area-weighted random points from the surface of a mesh.
package sampler

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/dust/mesh"
)

// Sampler holds the cumulative area distribution of a mesh. Areas are
// measured in mesh-local space, so the distribution survives transform
// changes; the world matrix is read at sample time. Under non-uniform scale
// the world-space density is therefore not area-proportional.
type Sampler struct {
	mesh  *mesh.Mesh
	cdf   []float64
	total float64
}

// New validates m and builds its triangle distribution.
func New(m *mesh.Mesh) (*Sampler, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mesh", ErrInvalidMesh)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMesh, err)
	}
	n := m.TriangleCount()
	if n == 0 {
		return nil, fmt.Errorf("%w: %q has no triangles", ErrInvalidMesh, m.Name)
	}
	if m.Transform.Dirty() {
		return nil, fmt.Errorf("%w: %q", ErrNotReady, m.Name)
	}

	areas := make([]float64, n)
	for t := range areas {
		areas[t] = float64(m.TriangleArea(t))
	}
	cdf := make([]float64, n)
	floats.CumSum(cdf, areas)

	total := cdf[n-1]
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: %q has surface area %v", ErrInvalidMesh, m.Name, total)
	}

	return &Sampler{mesh: m, cdf: cdf, total: total}, nil
}

// Mesh returns the sampled mesh.
func (s *Sampler) Mesh() *mesh.Mesh { return s.mesh }

// TotalArea returns the local-space surface area.
func (s *Sampler) TotalArea() float64 { return s.total }

// Pick maps r in [0,1) to a triangle index with probability proportional to
// its area. Zero-area triangles are never chosen.
func (s *Sampler) Pick(r float64) int {
	x := r * s.total
	t := sort.Search(len(s.cdf), func(i int) bool { return s.cdf[i] > x })
	if t == len(s.cdf) {
		t--
	}
	return t
}

// Sample draws count points.
func (s *Sampler) Sample(rng *rand.Rand, count int) (*SampleSet, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: sample count %d", ErrInvalidArgument, count)
	}
	set := NewSampleSet(count)
	if err := s.SampleInto(rng, set); err != nil {
		return nil, err
	}
	return set, nil
}

// SampleInto fills every slot of set with a fresh sample.
func (s *Sampler) SampleInto(rng *rand.Rand, set *SampleSet) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if set.Len() == 0 {
		return fmt.Errorf("%w: empty sample set", ErrInvalidArgument)
	}
	world, ok := s.mesh.Transform.WorldMatrix()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotReady, s.mesh.Name)
	}
	normalMat := s.mesh.Transform.NormalMatrix()
	if normalMat.Det() == 0 {
		return fmt.Errorf("%w: %q has a singular transform", ErrInvalidMesh, s.mesh.Name)
	}

	for i := 0; i < set.Len(); i++ {
		p, n, uv := s.draw(rng)
		wp := world.Mul4x1(p.Vec4(1)).Vec3()
		wn := normalMat.Mul3x1(n)
		if l := wn.Len(); l > 0 {
			wn = wn.Mul(1 / l)
		}
		set.set(i, wp, wn, uv)
	}
	return nil
}

// draw returns a local-space point, normal and uv.
func (s *Sampler) draw(rng *rand.Rand) (mgl32.Vec3, mgl32.Vec3, mgl32.Vec2) {
	m := s.mesh
	t := s.Pick(rng.Float64())
	a, b, c := m.Triangle(t)

	sq := math.Sqrt(rng.Float64())
	r2 := rng.Float64()
	u := float32(1 - sq)
	v := float32(r2 * sq)
	w := 1 - u - v

	p := m.Positions[a].Mul(u).Add(m.Positions[b].Mul(v)).Add(m.Positions[c].Mul(w))

	var n mgl32.Vec3
	if m.Normals != nil {
		n = m.Normals[a].Mul(u).Add(m.Normals[b].Mul(v)).Add(m.Normals[c].Mul(w))
	}
	if n.Len() == 0 {
		n = m.FaceNormal(t)
	}

	var uv mgl32.Vec2
	if m.UVs != nil {
		uv = m.UVs[a].Mul(u).Add(m.UVs[b].Mul(v)).Add(m.UVs[c].Mul(w))
	}
	return p, n, uv
}

// Sample builds a sampler for m and draws count points from it.
func Sample(m *mesh.Mesh, count int, rng *rand.Rand) (*SampleSet, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: sample count %d", ErrInvalidArgument, count)
	}
	s, err := New(m)
	if err != nil {
		return nil, err
	}
	return s.Sample(rng, count)
}
