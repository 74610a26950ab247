package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/dust/particles"
)

// Settings are the values the panel edits.
type Settings struct {
	ModelVisible bool
	ModelScale   float32

	Count        int
	SpriteScale  float32
	CloudVisible bool
	Offset       mgl32.Vec3

	Params particles.Params
}

// Changes is a bit set of the settings touched in one Draw.
type Changes uint16

const (
	ChangedModelVisible Changes = 1 << iota
	ChangedModelScale
	ChangedCount
	ChangedSpriteScale
	ChangedCloudVisible
	ChangedOffset
	ChangedParams
	ResampleRequested
	ResetRequested
)

// Has reports whether any of the bits in f are set.
func (c Changes) Has(f Changes) bool { return c&f != 0 }

// CountRange bounds the particle count slider.
type CountRange struct {
	Min, Max, Step int
}

// folder is a collapsible group of controls.
type folder struct {
	title string
	open  bool
}

// Panel is the parameter panel on the right side of the screen.
type Panel struct {
	renderer *Renderer
	x, y     float32
	width    float32
	counts   CountRange

	model, cloud, position, oscillation folder
}

// NewPanel creates a panel anchored at (x, y).
func NewPanel(x, y, width float32, counts CountRange) *Panel {
	return &Panel{
		renderer:    NewRenderer(),
		x:           x,
		y:           y,
		width:       width,
		counts:      counts,
		model:       folder{title: "Model", open: true},
		cloud:       folder{title: "Particles", open: true},
		position:    folder{title: "Position", open: false},
		oscillation: folder{title: "Oscillation", open: true},
	}
}

// SetPosition moves the panel, e.g. after a window resize.
func (p *Panel) SetPosition(x, y float32) {
	p.x = x
	p.y = y
}

// Contains reports whether a screen point is over the panel, so mouse
// input there can be kept away from the camera.
func (p *Panel) Contains(pt rl.Vector2) bool {
	return pt.X >= p.x && pt.X <= p.x+p.width && pt.Y >= p.y && pt.Y <= p.y+p.height()
}

const (
	rowHeight    = 20
	rowSpacing   = 26
	folderHeight = 24
)

func (p *Panel) height() float32 {
	h := float32(folderHeight+4) * 4
	if p.model.open {
		h += rowSpacing * 2
	}
	if p.cloud.open {
		h += rowSpacing * 4
	}
	if p.position.open {
		h += rowSpacing * 3
	}
	if p.oscillation.open {
		h += rowSpacing * 6
	}
	return h + rowSpacing + float32(p.renderer.Theme.Padding)*2
}

// Draw renders the panel, applies edits to s and reports what changed.
func (p *Panel) Draw(s *Settings) Changes {
	var changes Changes

	pad := float32(p.renderer.Theme.Padding)
	p.renderer.DrawPanel(int32(p.x), int32(p.y), int32(p.width), int32(p.height()))
	y := p.y + pad

	if p.folder(&p.model, &y) {
		if v := p.checkBox(&y, "Visible", s.ModelVisible); v != s.ModelVisible {
			s.ModelVisible = v
			changes |= ChangedModelVisible
		}
		if v := p.slider(&y, "Scale", "%.2f", s.ModelScale, 0.1, 5, 0.05); v != s.ModelScale {
			s.ModelScale = v
			changes |= ChangedModelScale
		}
	}

	if p.folder(&p.cloud, &y) {
		c := p.counts
		v := p.slider(&y, "Count", "%.0f", float32(s.Count), float32(c.Min), float32(c.Max), float32(c.Step))
		if n := int(v); n != s.Count {
			s.Count = n
			changes |= ChangedCount
		}
		if v := p.slider(&y, "Sprite", "%.2f", s.SpriteScale, 0.01, 1, 0.01); v != s.SpriteScale {
			s.SpriteScale = v
			changes |= ChangedSpriteScale
		}
		if v := p.checkBox(&y, "Visible", s.CloudVisible); v != s.CloudVisible {
			s.CloudVisible = v
			changes |= ChangedCloudVisible
		}
		if gui.Button(p.row(y), "Resample") {
			changes |= ResampleRequested
		}
		y += rowSpacing
	}

	if p.folder(&p.position, &y) {
		for i, axis := range [3]string{"X", "Y", "Z"} {
			if v := p.slider(&y, axis, "%.1f", s.Offset[i], -10, 10, 0.1); v != s.Offset[i] {
				s.Offset[i] = v
				changes |= ChangedOffset
			}
		}
	}

	if p.folder(&p.oscillation, &y) {
		prm := &s.Params
		before := *prm
		prm.Enabled = p.checkBox(&y, "Enabled", prm.Enabled)
		if gui.Button(p.row(y), fmt.Sprintf("Mode: %s", prm.Mode)) {
			prm.Mode = prm.Mode.Next()
		}
		y += rowSpacing
		prm.Amplitude = p.slider(&y, "Amplitude", "%.4f", prm.Amplitude, 0, 0.01, 0.0001)
		prm.Speed = p.slider(&y, "Speed", "%.1f", prm.Speed, 0, 5, 0.1)
		prm.Frequency = p.slider(&y, "Frequency", "%.1f", prm.Frequency, 1, 20, 0.1)
		if gui.Button(p.row(y), "Reset to rest") {
			changes |= ResetRequested
		}
		y += rowSpacing
		if *prm != before {
			changes |= ChangedParams
		}
	}

	return changes
}

// folder draws a folder header and reports whether its body is open.
func (p *Panel) folder(f *folder, y *float32) bool {
	mark := "+"
	if f.open {
		mark = "-"
	}
	bounds := rl.Rectangle{X: p.x + 6, Y: *y, Width: p.width - 12, Height: folderHeight}
	if gui.Button(bounds, fmt.Sprintf("%s %s", mark, f.title)) {
		f.open = !f.open
	}
	*y += folderHeight + 4
	return f.open
}

func (p *Panel) row(y float32) rl.Rectangle {
	pad := float32(p.renderer.Theme.Padding)
	return rl.Rectangle{X: p.x + pad, Y: y, Width: p.width - pad*2, Height: rowHeight}
}

func (p *Panel) checkBox(y *float32, label string, v bool) bool {
	pad := float32(p.renderer.Theme.Padding)
	bounds := rl.Rectangle{X: p.x + pad, Y: *y + 2, Width: 16, Height: 16}
	out := gui.CheckBox(bounds, label, v)
	*y += rowSpacing
	return out
}

// slider draws a labelled slider and returns the value snapped to step.
func (p *Panel) slider(y *float32, label, format string, v, lo, hi, step float32) float32 {
	pad := float32(p.renderer.Theme.Padding)
	labelW := float32(p.renderer.Theme.LabelWidth) + 10
	valueW := float32(56)

	p.renderer.DrawLabel(int32(p.x+pad), int32(*y+4), label)
	bounds := rl.Rectangle{
		X:      p.x + pad + labelW,
		Y:      *y,
		Width:  p.width - pad*2 - labelW - valueW,
		Height: rowHeight,
	}
	out := gui.SliderBar(bounds, "", "", v, lo, hi)
	out = quantize(out, lo, hi, step)
	if out == quantize(v, lo, hi, step) {
		// Off-step values from config survive until the slider moves.
		out = v
	}
	p.renderer.DrawValue(int32(bounds.X+bounds.Width+6), int32(*y+4), fmt.Sprintf(format, out))

	*y += rowSpacing
	return out
}

// quantize snaps v to lo + k*step and clamps it to [lo, hi].
func quantize(v, lo, hi, step float32) float32 {
	if step > 0 {
		k := math.Round(float64((v - lo) / step))
		v = lo + float32(k)*step
	}
	return min(max(v, lo), hi)
}
