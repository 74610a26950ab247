package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// KeyHint is one line of the key legend.
type KeyHint struct {
	Key    string
	Action string
}

// ControlsPanel lists the overlay toggles and the action keys.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	hints    []KeyHint
}

// NewControlsPanel creates a hidden controls panel.
func NewControlsPanel(x, y, width int32, hints []KeyHint) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		hints:    hints,
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and returns the Y just below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	rows := len(c.hints) + 1
	for _, cat := range categories {
		rows += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := int32(rows)*lineHeight + padding*3 + lineHeight

	r.DrawPanel(c.x, c.y, c.width, panelHeight)
	y := c.y + padding

	rl.DrawText("Controls [F1]", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		y = r.DrawSectionHeader(c.x+padding, y, categoryLabel(category))
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}

	y = r.DrawSectionHeader(c.x+padding, y, "Keys")
	for _, h := range c.hints {
		c.drawKey(c.x+padding, y, h.Action, h.Key, c.width-padding*2)
		y += lineHeight
	}

	return y
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := r.Theme.BarBg
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = r.Theme.ActiveColor
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		c.drawKeyLabel(x, y, desc.KeyLabel, width)
	}
}

// drawKey draws an action with its key right aligned.
func (c *ControlsPanel) drawKey(x, y int32, action, key string, width int32) {
	c.renderer.DrawLabel(x+14, y, action)
	c.drawKeyLabel(x, y, key, width)
}

func (c *ControlsPanel) drawKeyLabel(x, y int32, key string, width int32) {
	r := c.renderer
	keyText := fmt.Sprintf("[%s]", key)
	keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
	rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, r.Theme.MutedColor)
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "view":
		return "View"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
