package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/dust/components"
	"github.com/pthm-cable/dust/mesh"
)

// LoadModel reads a model file through raylib and merges its meshes into a
// single mesh.Mesh. The raylib model is unloaded before returning. Must be
// called after the window is created.
func LoadModel(path string) (*mesh.Mesh, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}

	model := rl.LoadModel(path)
	defer rl.UnloadModel(model)

	meshes := model.GetMeshes()
	if len(meshes) == 0 {
		return nil, fmt.Errorf("loading model %s: no meshes", path)
	}

	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		uvs       []mgl32.Vec2
		indices   []uint32
	)
	hasNormals, hasUVs := true, true
	for _, m := range meshes {
		hasNormals = hasNormals && m.Normals != nil
		hasUVs = hasUVs && m.Texcoords != nil
	}

	for _, m := range meshes {
		n := int(m.VertexCount)
		if n == 0 || m.Vertices == nil {
			continue
		}
		base := uint32(len(positions))

		verts := unsafe.Slice(m.Vertices, n*3)
		for i := 0; i < n; i++ {
			positions = append(positions, mgl32.Vec3{verts[3*i], verts[3*i+1], verts[3*i+2]})
		}
		if hasNormals {
			ns := unsafe.Slice(m.Normals, n*3)
			for i := 0; i < n; i++ {
				normals = append(normals, mgl32.Vec3{ns[3*i], ns[3*i+1], ns[3*i+2]})
			}
		}
		if hasUVs {
			ts := unsafe.Slice(m.Texcoords, n*2)
			for i := 0; i < n; i++ {
				uvs = append(uvs, mgl32.Vec2{ts[2*i], ts[2*i+1]})
			}
		}

		if m.Indices != nil {
			idx := unsafe.Slice(m.Indices, int(m.TriangleCount)*3)
			for _, ix := range idx {
				indices = append(indices, base+uint32(ix))
			}
		} else {
			for i := 0; i < n; i++ {
				indices = append(indices, base+uint32(i))
			}
		}
	}

	out := mesh.New(filepath.Base(path), positions, normals, uvs, indices)
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("loading model %s: %w", path, err)
	}
	out.Transform.UpdateWorldMatrix()
	return out, nil
}

// ModelRenderer draws a mesh with flat shading from a fixed light.
type ModelRenderer struct {
	Color    rl.Color
	LightDir mgl32.Vec3
	Wire     bool
}

// NewModelRenderer creates a model renderer.
func NewModelRenderer() *ModelRenderer {
	return &ModelRenderer{
		Color:    rl.Color{R: 180, G: 180, B: 190, A: 255},
		LightDir: mgl32.Vec3{0.4, 1, 0.6}.Normalize(),
	}
}

// Draw renders the model's mesh at its world transform. Must be called
// inside BeginMode3D.
func (r *ModelRenderer) Draw(node *components.Node, model *components.Model) {
	if !node.Visible || model.Mesh == nil {
		return
	}
	m := model.Mesh
	world, ok := m.Transform.WorldMatrix()
	if !ok {
		return
	}
	normalMat := m.Transform.NormalMatrix()

	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		pa := Vec3(world.Mul4x1(m.Positions[a].Vec4(1)).Vec3())
		pb := Vec3(world.Mul4x1(m.Positions[b].Vec4(1)).Vec3())
		pc := Vec3(world.Mul4x1(m.Positions[c].Vec4(1)).Vec3())

		if r.Wire {
			rl.DrawLine3D(pa, pb, r.Color)
			rl.DrawLine3D(pb, pc, r.Color)
			rl.DrawLine3D(pc, pa, r.Color)
			continue
		}

		n := normalMat.Mul3x1(m.FaceNormal(t)).Normalize()
		light := 0.35 + 0.65*max(0, n.Dot(r.LightDir))
		rl.DrawTriangle3D(pa, pb, pc, rl.ColorBrightness(r.Color, light-1))
	}
}
