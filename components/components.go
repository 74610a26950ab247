// Package components defines ECS components for the scene.
package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/dust/mesh"
	"github.com/pthm-cable/dust/particles"
	"github.com/pthm-cable/dust/sampler"
)

// Node places an entity in the world.
type Node struct {
	Position mgl32.Vec3
	Scale    float32
	Visible  bool
}

// Model owns the source mesh that particles are sampled from. The mesh
// transform mirrors the entity's Node; see SyncTransform.
type Model struct {
	Mesh   *mesh.Mesh
	Source string // file path or primitive name
}

// SyncTransform copies the node placement into the mesh transform and
// refreshes its world matrix. It reports whether anything changed.
func (m *Model) SyncTransform(n *Node) bool {
	t := &m.Mesh.Transform
	scale := mgl32.Vec3{n.Scale, n.Scale, n.Scale}
	if t.Position() == n.Position && t.Scale() == scale && !t.Dirty() {
		return false
	}
	t.SetPosition(n.Position)
	t.SetScale(scale)
	t.UpdateWorldMatrix()
	return true
}

// Cloud holds the particles sampled from a model. Samples keeps the UVs and
// normals for coloring; State holds the buffers the updater writes.
type Cloud struct {
	Samples     *sampler.SampleSet
	State       *particles.State
	SpriteScale float32
	Generation  uint32 // incremented on every resample
}

// Count returns the number of particles, or 0 when nothing is sampled.
func (c *Cloud) Count() int {
	if c.State == nil {
		return 0
	}
	return c.State.Len()
}
