package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubeTopology(t *testing.T) {
	m := Cube(1)

	require.NoError(t, m.Validate())
	assert.Equal(t, 12, m.TriangleCount())
	assert.InDelta(t, 6.0, m.SurfaceArea(), 1e-5)

	lo, hi := m.Bounds()
	assert.Equal(t, mgl32.Vec3{-0.5, -0.5, -0.5}, lo)
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, hi)
}

func TestCubeWindingMatchesNormals(t *testing.T) {
	m := Cube(2)
	for tri := 0; tri < m.TriangleCount(); tri++ {
		a, _, _ := m.Triangle(tri)
		face := m.FaceNormal(tri)
		if face.Dot(m.Normals[a]) < 0.99 {
			t.Errorf("triangle %d: face normal %v disagrees with vertex normal %v", tri, face, m.Normals[a])
		}
	}
}

func TestPrimitivesValid(t *testing.T) {
	for _, name := range PrimitiveNames() {
		t.Run(name, func(t *testing.T) {
			m, err := Primitive(name)
			require.NoError(t, err)
			require.NoError(t, m.Validate())
			assert.Greater(t, m.TriangleCount(), 0)
			assert.Greater(t, m.SurfaceArea(), 0.0)
			_, ok := m.Transform.WorldMatrix()
			assert.True(t, ok, "primitive should come with a current world matrix")
		})
	}
}

func TestUnknownPrimitive(t *testing.T) {
	_, err := Primitive("teapot")
	assert.Error(t, err)
}

func TestSphereAreaApproachesAnalytic(t *testing.T) {
	m := UVSphere(1, 96, 48)
	want := 4 * math.Pi
	got := m.SurfaceArea()
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("sphere area = %v, want ~%v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tri := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	tests := []struct {
		name string
		mesh *Mesh
		ok   bool
	}{
		{"non-indexed triangle", New("t", tri, nil, nil, nil), true},
		{"indexed triangle", New("t", tri, nil, nil, []uint32{0, 1, 2}), true},
		{"ragged indices", New("t", tri, nil, nil, []uint32{0, 1}), false},
		{"index out of range", New("t", tri, nil, nil, []uint32{0, 1, 3}), false},
		{"ragged vertices", New("t", tri[:2], nil, nil, nil), false},
		{"normal count mismatch", New("t", tri, tri[:1], nil, nil), false},
		{"uv count mismatch", New("t", tri, nil, []mgl32.Vec2{{0, 0}}, nil), false},
		{"nan position", New("t", []mgl32.Vec3{{float32(math.NaN()), 0, 0}, {1, 0, 0}, {0, 1, 0}}, nil, nil, nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
			}
		})
	}
}

func TestTransformDirtyTracking(t *testing.T) {
	tr := NewTransform()
	_, ok := tr.WorldMatrix()
	assert.False(t, ok, "fresh transform is stale until updated")

	tr.UpdateWorldMatrix()
	_, ok = tr.WorldMatrix()
	assert.True(t, ok)

	tr.SetUniformScale(2)
	_, ok = tr.WorldMatrix()
	assert.False(t, ok, "setter must invalidate the world matrix")

	tr.UpdateWorldMatrix()
	m, ok := tr.WorldMatrix()
	require.True(t, ok)
	p := m.Mul4x1(mgl32.Vec4{1, 2, 3, 1}).Vec3()
	assert.Equal(t, mgl32.Vec3{2, 4, 6}, p)
}

func TestTransformOrder(t *testing.T) {
	tr := NewTransform()
	tr.SetScale(mgl32.Vec3{2, 1, 1})
	tr.SetRotation(mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}))
	tr.SetPosition(mgl32.Vec3{0, 0, 5})
	tr.UpdateWorldMatrix()

	m, _ := tr.WorldMatrix()
	// Scale x by 2, rotate +X onto +Y, then translate.
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	assert.InDelta(t, 0, p.X(), 1e-5)
	assert.InDelta(t, 2, p.Y(), 1e-5)
	assert.InDelta(t, 5, p.Z(), 1e-5)
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	tr := NewTransform()
	tr.SetScale(mgl32.Vec3{4, 1, 1})
	tr.UpdateWorldMatrix()

	// A slanted surface normal must tilt away from the stretched axis.
	n := mgl32.Vec3{1, 1, 0}.Normalize()
	got := tr.NormalMatrix().Mul3x1(n).Normalize()

	// Tangent (1,-1,0) stretches to (4,-1,0); the transformed normal stays perpendicular.
	tangent := mgl32.Vec3{4, -1, 0}
	assert.InDelta(t, 0, got.Dot(tangent), 1e-5)
}
