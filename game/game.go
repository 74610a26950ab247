// Package game runs a scene inside a raylib window: camera, input, renderers
// and the parameter panel. Headless runs skip everything but the scene.
package game

import (
	"fmt"
	"log/slog"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/dust/camera"
	"github.com/pthm-cable/dust/config"
	"github.com/pthm-cable/dust/mesh"
	"github.com/pthm-cable/dust/renderer"
	"github.com/pthm-cable/dust/scene"
	"github.com/pthm-cable/dust/telemetry"
	"github.com/pthm-cable/dust/ui"
)

const (
	panelWidth = 300
	title      = "Dust"
	controls   = "Drag: orbit | Wheel: zoom | Space: pause | M: mode | S: snapshot | R: reset view | F1: controls"
)

var keyHints = []ui.KeyHint{
	{Key: "Space", Action: "Pause"},
	{Key: "M", Action: "Cycle mode"},
	{Key: "S", Action: "Snapshot"},
	{Key: "R", Action: "Reset view"},
	{Key: "F11", Action: "Fullscreen"},
}

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = config
	OutputDir      string
	Headless       bool
	Count          int    // 0 = config
	Mode           string // empty = config
	SnapshotPath   string // restore from this snapshot file
}

// Game holds the scene and everything needed to show it.
type Game struct {
	scene    *scene.Scene
	cfg      *config.Config
	headless bool
	paused   bool

	snapshotDir string

	camera     *camera.Orbit
	background *renderer.BackgroundRenderer
	models     *renderer.ModelRenderer
	clouds     *renderer.PointCloudRenderer

	overlays  *ui.OverlayRegistry
	hud       *ui.HUD
	panel     *ui.Panel
	controls  *ui.ControlsPanel
	perfPanel *ui.PerfPanel

	settings ui.Settings
	pending  ui.Changes

	screenWidth, screenHeight float32
}

// NewGameWithOptions builds a game from the global config. In graphical mode
// the raylib window must already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	m, source, err := loadSourceMesh(cfg, opts.Headless)
	if err != nil {
		return nil, err
	}

	sc, err := scene.New(cfg, m, source, scene.Options{
		Seed:           opts.Seed,
		LogStats:       opts.LogStats,
		StatsWindowSec: opts.StatsWindowSec,
		OutputDir:      opts.OutputDir,
		Count:          opts.Count,
		Mode:           opts.Mode,
	})
	if err != nil {
		return nil, err
	}

	if opts.SnapshotPath != "" {
		snap, err := telemetry.LoadSnapshot(opts.SnapshotPath)
		if err != nil {
			sc.Close()
			return nil, err
		}
		if err := sc.Restore(snap); err != nil {
			sc.Close()
			return nil, fmt.Errorf("restoring %s: %w", opts.SnapshotPath, err)
		}
	}

	g := &Game{
		scene:       sc,
		cfg:         cfg,
		headless:    opts.Headless,
		snapshotDir: "snapshots",
	}
	if opts.OutputDir != "" {
		g.snapshotDir = filepath.Join(opts.OutputDir, "snapshots")
	}

	if !opts.Headless {
		g.initGraphics()
	}
	g.syncSettings()
	return g, nil
}

// loadSourceMesh returns the configured model file, or the configured
// primitive when there is no file, it fails to load, or there is no window
// to load it with.
func loadSourceMesh(cfg *config.Config, headless bool) (*mesh.Mesh, string, error) {
	if path := cfg.Model.Path; path != "" {
		if headless {
			slog.Warn("model files need a window, using primitive",
				"path", path,
				"primitive", cfg.Model.Primitive,
			)
		} else {
			m, err := renderer.LoadModel(path)
			if err == nil {
				return m, path, nil
			}
			slog.Error("failed to load model, using primitive", "path", path, "error", err)
		}
	}

	m, err := mesh.Primitive(cfg.Model.Primitive)
	if err != nil {
		return nil, "", err
	}
	return m, cfg.Model.Primitive, nil
}

func (g *Game) initGraphics() {
	cfg := g.cfg
	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())

	cam := camera.New(g.screenWidth, g.screenHeight, float32(cfg.Camera.Fovy), float32(cfg.Camera.Distance))
	cam.Near = float32(cfg.Camera.Near)
	cam.Far = float32(cfg.Camera.Far)
	cam.Damping = float32(cfg.Camera.Damping)
	cam.MinDistance = float32(cfg.Camera.MinDistance)
	cam.MaxDistance = float32(cfg.Camera.MaxDistance)
	t := cfg.Camera.Target
	cam.Target[0], cam.Target[1], cam.Target[2] = float32(t[0]), float32(t[1]), float32(t[2])
	cam.SaveHome()
	g.camera = cam

	g.background = renderer.NewBackgroundRenderer(int32(g.screenWidth), int32(g.screenHeight), cfg.Screen.Background)
	g.background.Init()
	g.models = renderer.NewModelRenderer()
	g.clouds = renderer.NewPointCloudRenderer()
	if cfg.Model.Texture != "" {
		if err := g.clouds.LoadTexture(cfg.Model.Texture); err != nil {
			slog.Error("failed to load texture, coloring by normal", "error", err)
		}
	}

	g.overlays = ui.NewOverlayRegistry()
	g.hud = ui.NewHUD()
	g.panel = ui.NewPanel(g.screenWidth-panelWidth-10, 10, panelWidth, ui.CountRange{
		Min:  cfg.Particles.MinCount,
		Max:  cfg.Particles.MaxCount,
		Step: cfg.Particles.CountStep,
	})
	g.controls = ui.NewControlsPanel(10, 250, 220, keyHints)
	g.perfPanel = ui.NewPerfPanel(10, int32(g.screenHeight)-200)
}

// syncSettings copies the scene's state into the panel settings.
func (g *Game) syncSettings() {
	modelNode, _ := g.scene.Model()
	cloudNode, cloud := g.scene.Cloud()
	g.settings = ui.Settings{
		ModelVisible: modelNode.Visible,
		ModelScale:   modelNode.Scale,
		Count:        g.scene.Count(),
		SpriteScale:  cloud.SpriteScale,
		CloudVisible: cloudNode.Visible,
		Offset:       cloudNode.Position,
		Params:       g.scene.Params(),
	}
	if g.settings.Count == 0 {
		g.settings.Count = g.cfg.Particles.Count
	}
}

// applyChanges pushes panel edits into the scene. Edits that fail are
// reverted in the panel on the next sync.
func (g *Game) applyChanges(c ui.Changes) {
	if c == 0 {
		return
	}
	s := &g.settings

	if c.Has(ui.ChangedModelVisible) {
		g.scene.SetModelVisible(s.ModelVisible)
	}
	if c.Has(ui.ChangedCloudVisible) {
		g.scene.SetCloudVisible(s.CloudVisible)
	}
	if c.Has(ui.ChangedSpriteScale) {
		g.scene.SetSpriteScale(s.SpriteScale)
	}
	if c.Has(ui.ChangedOffset) {
		g.scene.SetCloudOffset(s.Offset)
	}
	if c.Has(ui.ChangedParams) {
		g.scene.SetParams(s.Params)
	}

	// Count first so a scale change in the same frame samples the new count.
	if c.Has(ui.ChangedCount | ui.ResampleRequested) {
		_ = g.scene.Resample(s.Count) // logged by the scene
	}
	if c.Has(ui.ChangedModelScale) {
		if err := g.scene.SetModelScale(s.ModelScale); err != nil {
			slog.Error("model scale rejected", "scale", s.ModelScale, "error", err)
		}
	}

	if c.Has(ui.ResetRequested) {
		if st := g.scene.State(); st != nil {
			st.Reset()
		}
	}

	g.syncSettings()
}

// UpdateHeadless advances one fixed step without touching raylib.
func (g *Game) UpdateHeadless() {
	g.scene.BeginFrame()
	g.scene.Step(g.cfg.Derived.DT32)
	g.scene.EndFrame()
}

// Update handles input, applies panel edits and advances the scene by the
// last frame's duration.
func (g *Game) Update() {
	g.scene.BeginFrame()

	g.handleInput()
	g.applyChanges(g.pending)
	g.pending = 0

	if !g.paused {
		g.scene.Step(rl.GetFrameTime())
	}
	g.camera.Update()
}

// Draw renders the frame and closes the frame's perf sample.
func (g *Game) Draw() {
	g.scene.Perf().StartPhase(telemetry.PhaseRender)

	bg := g.cfg.Screen.Background
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: bg[0], G: bg[1], B: bg[2], A: 255})

	if g.overlays.IsEnabled(ui.OverlayBackground) {
		g.background.Draw()
	}

	rl.BeginMode3D(renderer.Camera3D(g.camera))
	if g.overlays.IsEnabled(ui.OverlayGrid) {
		rl.DrawGrid(20, 0.5)
	}
	g.models.Wire = g.overlays.IsEnabled(ui.OverlayWireframe)
	g.models.Draw(g.scene.Model())
	g.clouds.Draw(g.scene.Cloud())
	rl.EndMode3D()

	g.drawUI()

	rl.EndDrawing()
	g.scene.EndFrame()
	g.scene.Perf().RecordPresent()
}

func (g *Game) drawUI() {
	if g.overlays.IsEnabled(ui.OverlayHUD) {
		params := g.scene.Params()
		_, cloud := g.scene.Cloud()
		stats := g.scene.LastStats()
		g.hud.Draw(ui.HUDData{
			Title:       title,
			Frame:       g.scene.Frame(),
			Time:        g.scene.Time(),
			FPS:         rl.GetFPS(),
			Mode:        params.Mode.String(),
			Enabled:     params.Enabled,
			Paused:      g.paused,
			Count:       g.scene.Count(),
			Generation:  cloud.Generation,
			SpriteScale: cloud.SpriteScale,
			MeanDisp:    stats.DispMean,
			MaxDisp:     stats.DispMax,
		})
		g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), controls)
	}

	if g.overlays.IsEnabled(ui.OverlayPanel) {
		g.pending |= g.panel.Draw(&g.settings)
	}

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.scene.Perf().Stats())
	}

	g.controls.Draw(g.overlays)
}

// Unload releases GPU resources and closes the scene.
func (g *Game) Unload() {
	if !g.headless {
		g.background.Unload()
		g.clouds.Unload()
	}
	if err := g.scene.Close(); err != nil {
		slog.Error("failed to close scene", "error", err)
	}
}

// Tick returns the number of frames stepped.
func (g *Game) Tick() int32 { return g.scene.Frame() }

// Time returns elapsed simulated seconds.
func (g *Game) Time() float32 { return g.scene.Time() }

// Scene exposes the underlying scene.
func (g *Game) Scene() *scene.Scene { return g.scene }
