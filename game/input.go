package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/dust/ui"
)

// Orbit and zoom sensitivity.
const (
	dragRadiansPerPixel = 0.005
	keyRadiansPerFrame  = 0.02
	wheelZoomStep       = 0.1
	keyZoomStep         = 0.25
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	if rl.IsKeyPressed(rl.KeyF1) {
		g.controls.Toggle()
	}

	// Overlay hotkeys
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if id, on, ok := g.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", id, "enabled", on)
		}
	}

	if rl.IsKeyPressed(rl.KeyM) {
		g.settings.Params.Mode = g.settings.Params.Mode.Next()
		g.pending |= ui.ChangedParams
	}

	if rl.IsKeyPressed(rl.KeyS) {
		path, err := g.scene.SaveSnapshot(g.snapshotDir)
		if err != nil {
			slog.Error("failed to save snapshot", "error", err)
		} else {
			slog.Info("snapshot saved", "path", path, "frame", g.scene.Frame())
		}
	}

	// Camera controls
	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.background.Resize(w, h)
	g.panel.SetPosition(w-panelWidth-10, 10)
	g.perfPanel.SetPosition(10, int32(h)-200)
}

// handleCameraInput processes orbit and zoom controls.
func (g *Game) handleCameraInput() {
	mouse := rl.GetMousePosition()
	overPanel := g.overlays.IsEnabled(ui.OverlayPanel) && g.panel.Contains(mouse)

	// Left drag orbits unless the drag belongs to the panel
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) && !overPanel {
		d := rl.GetMouseDelta()
		g.camera.Rotate(-d.X*dragRadiansPerPixel, d.Y*dragRadiansPerPixel)
	}

	// Arrow keys orbit too
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Rotate(-keyRadiansPerFrame, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Rotate(keyRadiansPerFrame, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Rotate(0, keyRadiansPerFrame)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Rotate(0, -keyRadiansPerFrame)
	}

	// Zoom controls: mouse wheel or +/- keys
	if wheel := rl.GetMouseWheelMove(); wheel != 0 && !overPanel {
		g.camera.Zoom(wheel * wheelZoomStep)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.Zoom(keyZoomStep)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.Zoom(-keyZoomStep)
	}

	// R or Home resets the view
	if rl.IsKeyPressed(rl.KeyR) || rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
