package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/dust/camera"
)

// Vec3 converts a math vector to raylib's layout.
func Vec3(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// Matrix converts a column-major mgl32 matrix to a raylib matrix.
func Matrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M4: m[4], M8: m[8], M12: m[12],
		M1: m[1], M5: m[5], M9: m[9], M13: m[13],
		M2: m[2], M6: m[6], M10: m[10], M14: m[14],
		M3: m[3], M7: m[7], M11: m[11], M15: m[15],
	}
}

// Camera3D returns the raylib camera for an orbit pose.
func Camera3D(c *camera.Orbit) rl.Camera3D {
	return rl.Camera3D{
		Position:   Vec3(c.Position()),
		Target:     Vec3(c.Target),
		Up:         Vec3(c.Up()),
		Fovy:       c.Fovy,
		Projection: rl.CameraPerspective,
	}
}
