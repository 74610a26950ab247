package renderer

import (
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/dust/components"
	"github.com/pthm-cable/dust/sampler"
)

// PointCloudRenderer draws a particle cloud as small cubes. Each particle
// takes its color from the diffuse texture at its UV, or from its surface
// normal when no texture is loaded.
type PointCloudRenderer struct {
	image *rl.Image

	// Per-particle colors, rebuilt when the cloud is resampled
	colors     []rl.Color
	generation uint32
}

// NewPointCloudRenderer creates a point cloud renderer.
func NewPointCloudRenderer() *PointCloudRenderer {
	return &PointCloudRenderer{}
}

// LoadTexture loads the image particles are colored from. An empty path
// switches to normal coloring.
func (r *PointCloudRenderer) LoadTexture(path string) error {
	r.unloadImage()
	r.generation = 0
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("loading texture: %w", err)
	}
	img := rl.LoadImage(path)
	if img == nil || img.Width == 0 || img.Height == 0 {
		return fmt.Errorf("loading texture %s: empty image", path)
	}
	r.image = img
	return nil
}

// Draw renders the cloud's live positions offset by its node. Must be
// called inside BeginMode3D.
func (r *PointCloudRenderer) Draw(node *components.Node, cloud *components.Cloud) {
	if !node.Visible || cloud.State == nil {
		return
	}
	if cloud.Generation != r.generation || len(r.colors) != cloud.Count() {
		r.colors = r.buildColors(cloud.Samples, r.colors[:0])
		r.generation = cloud.Generation
	}

	size := cloud.SpriteScale * node.Scale
	if size <= 0 {
		return
	}
	cube := rl.Vector3{X: size, Y: size, Z: size}

	live := cloud.State.Live
	off := node.Position
	for i := 0; i < cloud.Count(); i++ {
		p := rl.Vector3{
			X: off[0] + live[3*i]*node.Scale,
			Y: off[1] + live[3*i+1]*node.Scale,
			Z: off[2] + live[3*i+2]*node.Scale,
		}
		rl.DrawCubeV(p, cube, r.colors[i])
	}
}

func (r *PointCloudRenderer) buildColors(set *sampler.SampleSet, dst []rl.Color) []rl.Color {
	n := set.Len()
	if r.image == nil {
		for i := 0; i < n; i++ {
			dst = append(dst, NormalColor(set.Normal(i)))
		}
		return dst
	}

	w, h := int(r.image.Width), int(r.image.Height)
	for i := 0; i < n; i++ {
		uv := set.UV(i)
		x, y := sampler.TexelAt(uv.X(), uv.Y(), w, h)
		c := rl.GetImageColor(*r.image, int32(x), int32(y))
		c.A = 255
		dst = append(dst, c)
	}
	return dst
}

// NormalColor maps a unit normal to an RGB color.
func NormalColor(n mgl32.Vec3) rl.Color {
	ch := func(v float32) uint8 {
		return uint8(clamp01(v*0.5+0.5) * 255)
	}
	return rl.Color{R: ch(n[0]), G: ch(n[1]), B: ch(n[2]), A: 255}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (r *PointCloudRenderer) unloadImage() {
	if r.image != nil {
		rl.UnloadImage(r.image)
		r.image = nil
	}
}

// Unload frees resources.
func (r *PointCloudRenderer) Unload() {
	r.unloadImage()
	r.colors = nil
}
