package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Cube builds an axis-aligned cube centred on the origin with edge length size.
// Each face has its own four vertices so normals and UVs stay per-face:
// 24 vertices, 12 triangles.
func Cube(size float32) *Mesh {
	h := size / 2
	type face struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3 // top-left, top-right, bottom-right, bottom-left seen from outside
	}
	faces := []face{
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{h, h, h}, {h, h, -h}, {h, -h, -h}, {h, -h, h}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-h, h, -h}, {-h, h, h}, {-h, -h, h}, {-h, -h, -h}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-h, h, -h}, {h, h, -h}, {h, h, h}, {-h, h, h}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-h, -h, h}, {h, -h, h}, {h, -h, -h}, {-h, -h, -h}}},
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-h, h, h}, {h, h, h}, {h, -h, h}, {-h, -h, h}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{h, h, -h}, {-h, h, -h}, {-h, -h, -h}, {h, -h, -h}}},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	positions := make([]mgl32.Vec3, 0, 24)
	normals := make([]mgl32.Vec3, 0, 24)
	texcoords := make([]mgl32.Vec2, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(positions))
		for k := 0; k < 4; k++ {
			positions = append(positions, f.corners[k])
			normals = append(normals, f.normal)
			texcoords = append(texcoords, uvs[k])
		}
		// Corners are clockwise seen from outside; emit counter-clockwise.
		indices = append(indices, base, base+3, base+2, base, base+2, base+1)
	}
	return New("cube", positions, normals, texcoords, indices)
}

// UVSphere builds a latitude/longitude sphere.
func UVSphere(radius float32, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	var positions, normals []mgl32.Vec3
	var uvs []mgl32.Vec2
	for ring := 0; ring <= rings; ring++ {
		theta := float64(ring) * math.Pi / float64(rings)
		sinTheta, cosTheta := math.Sincos(theta)
		for seg := 0; seg <= segments; seg++ {
			phi := float64(seg) * 2 * math.Pi / float64(segments)
			sinPhi, cosPhi := math.Sincos(phi)

			n := mgl32.Vec3{float32(cosPhi * sinTheta), float32(cosTheta), float32(sinPhi * sinTheta)}
			positions = append(positions, n.Mul(radius))
			normals = append(normals, n)
			uvs = append(uvs, mgl32.Vec2{float32(seg) / float32(segments), float32(ring) / float32(rings)})
		}
	}

	var indices []uint32
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments) + 1
			// Pole rows collapse to zero-area triangles; skip them.
			if ring != 0 {
				indices = append(indices, current, current+1, next)
			}
			if ring != rings-1 {
				indices = append(indices, current+1, next+1, next)
			}
		}
	}
	return New("sphere", positions, normals, uvs, indices)
}

// Plane builds a single quad in the XZ plane facing +Y.
func Plane(width, depth float32) *Mesh {
	w, d := width/2, depth/2
	positions := []mgl32.Vec3{{-w, 0, -d}, {w, 0, -d}, {w, 0, d}, {-w, 0, d}}
	up := mgl32.Vec3{0, 1, 0}
	normals := []mgl32.Vec3{up, up, up, up}
	uvs := []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	indices := []uint32{0, 2, 1, 0, 3, 2}
	return New("plane", positions, normals, uvs, indices)
}

// Torus builds a ring around the Y axis with major radius R and tube radius r.
func Torus(R, r float32, segments, sides int) *Mesh {
	segments = max(segments, 3)
	sides = max(sides, 3)

	var positions, normals []mgl32.Vec3
	var uvs []mgl32.Vec2
	for i := 0; i <= segments; i++ {
		u := float64(i) / float64(segments) * 2 * math.Pi
		su, cu := math.Sincos(u)
		for j := 0; j <= sides; j++ {
			v := float64(j) / float64(sides) * 2 * math.Pi
			sv, cv := math.Sincos(v)

			n := mgl32.Vec3{float32(cv * cu), float32(sv), float32(cv * su)}
			centre := mgl32.Vec3{R * float32(cu), 0, R * float32(su)}
			positions = append(positions, centre.Add(n.Mul(r)))
			normals = append(normals, n)
			uvs = append(uvs, mgl32.Vec2{float32(i) / float32(segments), float32(j) / float32(sides)})
		}
	}

	var indices []uint32
	stride := uint32(sides + 1)
	for i := 0; i < segments; i++ {
		for j := 0; j < sides; j++ {
			a := uint32(i)*stride + uint32(j)
			b := a + stride
			indices = append(indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return New("torus", positions, normals, uvs, indices)
}

var primitives = map[string]func() *Mesh{
	"cube":   func() *Mesh { return Cube(1) },
	"sphere": func() *Mesh { return UVSphere(0.5, 48, 24) },
	"plane":  func() *Mesh { return Plane(1, 1) },
	"torus":  func() *Mesh { return Torus(0.4, 0.15, 48, 24) },
}

// Primitive builds a named unit-sized primitive.
func Primitive(name string) (*Mesh, error) {
	build, ok := primitives[name]
	if !ok {
		return nil, fmt.Errorf("unknown primitive %q (have %v)", name, PrimitiveNames())
	}
	return build(), nil
}

// PrimitiveNames lists the names accepted by Primitive.
func PrimitiveNames() []string {
	names := make([]string, 0, len(primitives))
	for name := range primitives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
