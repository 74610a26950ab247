package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/dust/components"
	"github.com/pthm-cable/dust/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title   string
	Frame   int32
	Time    float32
	FPS     int32
	Mode    string
	Enabled bool
	Paused  bool

	Count       int
	Generation  uint32
	SpriteScale float32
	MeanDisp    float64
	MaxDisp     float64
}

// GetFieldValue implements InspectableData.
func (d HUDData) GetFieldValue(id string) (any, bool) {
	switch id {
	case "count":
		return d.Count, true
	case "generation":
		return d.Generation, true
	case "sprite_scale":
		return d.SpriteScale, true
	case "mean_disp":
		return d.MeanDisp, true
	case "max_disp":
		return d.MaxDisp, true
	}
	return nil, false
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	cloud    SectionDescriptor
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		cloud:    cloudSection(),
	}
}

// cloudSection turns the cloud field metadata into a HUD section.
func cloudSection() SectionDescriptor {
	var fields []FieldDescriptor
	for _, fd := range components.CloudFieldDescriptors() {
		field := FieldDescriptor{
			ID:     fd.ID,
			Label:  fd.Label,
			Widget: WidgetText,
			Format: fd.Format,
			Range:  FieldRange{Min: fd.Min, Max: fd.Max},
		}
		field.TextGetter = func(data any) string {
			v, ok := data.(InspectableData).GetFieldValue(fd.ID)
			if !ok {
				return "-"
			}
			return fmt.Sprintf(fd.Format, v)
		}
		if fd.IsBar {
			field.Widget = WidgetBar
			field.Getter = func(data any) float32 {
				v, _ := data.(InspectableData).GetFieldValue(fd.ID)
				f, _ := v.(float32)
				if fd.Max <= fd.Min {
					return f
				}
				return (f - fd.Min) / (fd.Max - fd.Min)
			}
		}
		fields = append(fields, field)
	}
	return SectionDescriptor{ID: "cloud", Title: "Cloud", Fields: fields}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Frame: %d | Time: %.1fs | FPS: %d", data.Frame, data.Time, data.FPS),
		10, 35, 16, rl.LightGray,
	)

	mode := data.Mode
	if !data.Enabled {
		mode += " (off)"
	}
	rl.DrawText(fmt.Sprintf("Oscillation: %s", mode), 10, 55, 16, rl.LightGray)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)

	r := h.renderer
	const width = 220
	r.DrawPanel(6, 98, width, 6*r.Theme.LineHeight+r.Theme.Padding)
	r.DrawSection(12, 102, h.cloud, data, width-12)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders per-phase frame timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s",
		stats.AvgFrameDuration.Round(time.Microsecond),
		stats.MaxFrameDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range telemetry.Phases() {
		avg := stats.PhaseAvg[name]
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
