// Package mesh provides triangulated surface meshes with a world transform.
//
// Texture coordinates follow the glTF convention: (0,0) is the top-left corner of
// the texture, u grows to the right and v grows downward.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrMalformed is returned by Validate when mesh buffers are inconsistent.
var ErrMalformed = errors.New("malformed mesh")

// Mesh is a triangulated surface. Normals and UVs are optional; when present
// they are per-vertex and index-aligned with Positions.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2

	// Indices lists triangle corners three at a time. Nil means Positions
	// is already a flat triangle list.
	Indices []uint32

	Transform Transform
}

// New creates a mesh with an identity transform whose world matrix is current.
func New(name string, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2, indices []uint32) *Mesh {
	m := &Mesh{
		Name:      name,
		Positions: positions,
		Normals:   normals,
		UVs:       uvs,
		Indices:   indices,
		Transform: NewTransform(),
	}
	m.Transform.UpdateWorldMatrix()
	return m
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m.Indices != nil {
		return len(m.Indices) / 3
	}
	return len(m.Positions) / 3
}

// Triangle returns the vertex indices of triangle t.
func (m *Mesh) Triangle(t int) (a, b, c uint32) {
	if m.Indices != nil {
		return m.Indices[3*t], m.Indices[3*t+1], m.Indices[3*t+2]
	}
	base := uint32(3 * t)
	return base, base + 1, base + 2
}

// TriangleArea returns the local-space area of triangle t.
func (m *Mesh) TriangleArea(t int) float32 {
	a, b, c := m.Triangle(t)
	pa, pb, pc := m.Positions[a], m.Positions[b], m.Positions[c]
	return 0.5 * pb.Sub(pa).Cross(pc.Sub(pa)).Len()
}

// FaceNormal returns the unit geometric normal of triangle t in local space,
// or the zero vector for a degenerate triangle.
func (m *Mesh) FaceNormal(t int) mgl32.Vec3 {
	a, b, c := m.Triangle(t)
	pa, pb, pc := m.Positions[a], m.Positions[b], m.Positions[c]
	n := pb.Sub(pa).Cross(pc.Sub(pa))
	if n.Len() == 0 {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

// SurfaceArea returns the total local-space area.
func (m *Mesh) SurfaceArea() float64 {
	var total float64
	for t := 0; t < m.TriangleCount(); t++ {
		total += float64(m.TriangleArea(t))
	}
	return total
}

// Bounds returns the local-space axis-aligned bounding box.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return lo, hi
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

// Validate checks index ranges and attribute lengths.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if m.Indices != nil {
		if len(m.Indices)%3 != 0 {
			return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrMalformed, len(m.Indices))
		}
		for i, idx := range m.Indices {
			if int(idx) >= n {
				return fmt.Errorf("%w: index %d at %d out of range (%d vertices)", ErrMalformed, idx, i, n)
			}
		}
	} else if n%3 != 0 {
		return fmt.Errorf("%w: %d non-indexed vertices is not a multiple of 3", ErrMalformed, n)
	}
	if m.Normals != nil && len(m.Normals) != n {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrMalformed, len(m.Normals), n)
	}
	if m.UVs != nil && len(m.UVs) != n {
		return fmt.Errorf("%w: %d uvs for %d vertices", ErrMalformed, len(m.UVs), n)
	}
	for i, p := range m.Positions {
		if !finite(p[0]) || !finite(p[1]) || !finite(p[2]) {
			return fmt.Errorf("%w: non-finite position at %d", ErrMalformed, i)
		}
	}
	return nil
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
