// Frame dump tool - steps a scene offscreen and writes one rendered frame to
// a PNG file.
//
// Usage: go run ./cmd/framedump -frames 120 -out frame.png
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/dust/camera"
	"github.com/pthm-cable/dust/config"
	"github.com/pthm-cable/dust/mesh"
	"github.com/pthm-cable/dust/renderer"
	"github.com/pthm-cable/dust/scene"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "frame.png", "Output PNG path")
	width := flag.Int("width", 1024, "Render width")
	height := flag.Int("height", 768, "Render height")
	frames := flag.Int("frames", 60, "Fixed steps to run before rendering")
	seed := flag.Int64("seed", 1, "Sampler seed when the config has none")
	count := flag.Int("count", 0, "Particle count (0 = use config)")
	yaw := flag.Float64("yaw", 0.6, "Camera yaw in radians")
	pitch := flag.Float64("pitch", 0.4, "Camera pitch in radians")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Frame Dump")
	defer rl.CloseWindow()

	source := cfg.Model.Primitive
	var m *mesh.Mesh
	var err error
	if cfg.Model.Path != "" {
		m, err = renderer.LoadModel(cfg.Model.Path)
		source = cfg.Model.Path
	} else {
		m, err = mesh.Primitive(cfg.Model.Primitive)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", source, err)
		os.Exit(1)
	}

	sc, err := scene.New(cfg, m, source, scene.Options{Seed: *seed, Count: *count})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build scene: %v\n", err)
		os.Exit(1)
	}
	defer sc.Close()

	for i := 0; i < *frames; i++ {
		sc.Step(cfg.Derived.DT32)
	}

	cam := camera.New(float32(*width), float32(*height), float32(cfg.Camera.Fovy), float32(cfg.Camera.Distance))
	cam.Yaw = float32(*yaw)
	cam.Pitch = float32(*pitch)

	background := renderer.NewBackgroundRenderer(int32(*width), int32(*height), cfg.Screen.Background)
	background.Init()
	defer background.Unload()

	models := renderer.NewModelRenderer()
	clouds := renderer.NewPointCloudRenderer()
	defer clouds.Unload()
	if cfg.Model.Texture != "" {
		if err := clouds.LoadTexture(cfg.Model.Texture); err != nil {
			slog.Warn("texture not loaded, coloring by normal", "error", err)
		}
	}

	// Create render texture
	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	bg := cfg.Screen.Background
	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Color{R: bg[0], G: bg[1], B: bg[2], A: 255})
	background.Draw()
	rl.BeginMode3D(renderer.Camera3D(cam))
	models.Draw(sc.Model())
	clouds.Draw(sc.Cloud())
	rl.EndMode3D()
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	// Export to PNG
	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Frame %d rendered to: %s (%dx%d, %d particles)\n",
			sc.Frame(), *outPath, *width, *height, sc.Count())
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
