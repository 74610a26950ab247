package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places a mesh in the world. Setters mark the cached world matrix
// dirty; UpdateWorldMatrix must run before the matrix is consumed.
type Transform struct {
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3

	world mgl32.Mat4
	dirty bool
}

// NewTransform returns an identity transform that still needs UpdateWorldMatrix.
func NewTransform() Transform {
	return Transform{
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
		world:    mgl32.Ident4(),
		dirty:    true,
	}
}

func (t *Transform) Position() mgl32.Vec3 { return t.position }
func (t *Transform) Rotation() mgl32.Quat { return t.rotation }
func (t *Transform) Scale() mgl32.Vec3    { return t.scale }

// Dirty reports whether the world matrix is stale.
func (t *Transform) Dirty() bool { return t.dirty }

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.dirty = true
}

func (t *Transform) SetRotation(q mgl32.Quat) {
	t.rotation = q.Normalize()
	t.dirty = true
}

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.dirty = true
}

// SetUniformScale sets the same scale on all three axes.
func (t *Transform) SetUniformScale(s float32) {
	t.SetScale(mgl32.Vec3{s, s, s})
}

// UpdateWorldMatrix recomputes M = T * R * S.
func (t *Transform) UpdateWorldMatrix() {
	translate := mgl32.Translate3D(t.position.X(), t.position.Y(), t.position.Z())
	rotate := t.rotation.Mat4()
	scale := mgl32.Scale3D(t.scale.X(), t.scale.Y(), t.scale.Z())
	t.world = translate.Mul4(rotate).Mul4(scale)
	t.dirty = false
}

// WorldMatrix returns the cached matrix and false if it is stale.
func (t *Transform) WorldMatrix() (mgl32.Mat4, bool) {
	return t.world, !t.dirty
}

// NormalMatrix returns the inverse-transpose of the upper 3x3 of the world
// matrix. A singular transform yields the zero matrix.
func (t *Transform) NormalMatrix() mgl32.Mat3 {
	return t.world.Mat3().Inv().Transpose()
}
