package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

const backgroundFS = `#version 330
in vec2 fragTexCoord;
out vec4 finalColor;

uniform vec2 resolution;
uniform vec3 baseColor;

void main() {
    vec2 uv = gl_FragCoord.xy / resolution;
    float d = distance(uv, vec2(0.5, 0.55));
    float glow = 1.0 - smoothstep(0.0, 0.9, d);
    vec3 col = baseColor * (0.55 + 0.9 * glow);
    col += vec3(0.02, 0.025, 0.04) * uv.y;
    finalColor = vec4(col, 1.0);
}
`

// BackgroundRenderer fills the screen with a soft radial gradient of the
// clear color.
type BackgroundRenderer struct {
	shader        rl.Shader
	resolutionLoc int32
	baseColorLoc  int32

	screenW, screenH float32
	baseColor        [3]float32
	initialized      bool
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(screenW, screenH int32, base [3]uint8) *BackgroundRenderer {
	return &BackgroundRenderer{
		screenW: float32(screenW),
		screenH: float32(screenH),
		baseColor: [3]float32{
			float32(base[0]) / 255.0,
			float32(base[1]) / 255.0,
			float32(base[2]) / 255.0,
		},
	}
}

// Init initializes the renderer (must be called after raylib window is created).
func (b *BackgroundRenderer) Init() {
	if b.initialized {
		return
	}

	b.shader = rl.LoadShaderFromMemory("", backgroundFS)
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.baseColorLoc = rl.GetShaderLocation(b.shader, "baseColor")

	b.setResolution()
	rl.SetShaderValue(b.shader, b.baseColorLoc, b.baseColor[:], rl.ShaderUniformVec3)

	b.initialized = true
}

func (b *BackgroundRenderer) setResolution() {
	resolution := []float32{b.screenW, b.screenH}
	rl.SetShaderValue(b.shader, b.resolutionLoc, resolution, rl.ShaderUniformVec2)
}

// Resize updates the screen dimensions.
func (b *BackgroundRenderer) Resize(w, h float32) {
	b.screenW, b.screenH = w, h
	if b.initialized {
		b.setResolution()
	}
}

// Draw renders the background. Call before BeginMode3D.
func (b *BackgroundRenderer) Draw() {
	if !b.initialized {
		b.Init()
	}

	rl.BeginShaderMode(b.shader)
	rl.DrawRectangle(0, 0, int32(b.screenW), int32(b.screenH), rl.White)
	rl.EndShaderMode()
}

// Unload frees resources.
func (b *BackgroundRenderer) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}
