// Package camera provides an orbiting perspective camera with damped input.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pitch is kept this far from the poles so the view never flips.
const polarMargin = 0.01

// Orbit circles a target point. Input accumulates into pending deltas that
// Update bleeds into the pose, a fraction per frame, so motion eases out
// after the user lets go.
type Orbit struct {
	// Target is the point the camera looks at.
	Target mgl32.Vec3

	// Yaw rotates around +Y (0 looks down -Z from +Z); Pitch raises the
	// camera above the target's horizontal plane. Radians.
	Yaw, Pitch float32

	// Distance from target
	Distance float32

	// Projection
	Fovy      float32 // degrees
	Near, Far float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Damping is the fraction of pending motion applied per Update.
	// 0 applies input immediately.
	Damping float32

	// Distance constraints
	MinDistance, MaxDistance float32

	yawDelta, pitchDelta float32
	zoomDelta            float32 // log-distance units

	home pose
}

type pose struct {
	target         mgl32.Vec3
	yaw, pitch, di float32
}

// New creates a camera at the given distance on +Z looking at the origin.
func New(viewportW, viewportH, fovy, distance float32) *Orbit {
	c := &Orbit{
		Distance:    distance,
		Fovy:        fovy,
		Near:        0.1,
		Far:         1000,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		Damping:     0.05,
		MinDistance: 0.1,
		MaxDistance: 100,
	}
	c.SaveHome()
	return c
}

// SaveHome records the current pose as the one Reset returns to.
func (c *Orbit) SaveHome() {
	c.home = pose{target: c.Target, yaw: c.Yaw, pitch: c.Pitch, di: c.Distance}
}

// Rotate queues an orbit by the given angles in radians.
func (c *Orbit) Rotate(dYaw, dPitch float32) {
	c.yawDelta += dYaw
	c.pitchDelta += dPitch
}

// Zoom queues a dolly. Positive amounts move closer; an amount of ln(2)
// halves the distance once fully applied.
func (c *Orbit) Zoom(amount float32) {
	c.zoomDelta -= amount
}

// Update applies pending motion. Call once per frame.
func (c *Orbit) Update() {
	f := c.Damping
	if f <= 0 || f > 1 {
		f = 1
	}

	c.Yaw += c.yawDelta * f
	c.Pitch += c.pitchDelta * f
	c.Distance *= float32(math.Exp(float64(c.zoomDelta * f)))

	keep := 1 - f
	c.yawDelta *= keep
	c.pitchDelta *= keep
	c.zoomDelta *= keep

	limit := float32(math.Pi/2 - polarMargin)
	c.Pitch = clamp(c.Pitch, -limit, limit)
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
	c.Yaw = wrapAngle(c.Yaw)
}

// Settled reports whether pending motion has decayed below eps.
func (c *Orbit) Settled(eps float32) bool {
	return absf(c.yawDelta) < eps && absf(c.pitchDelta) < eps && absf(c.zoomDelta) < eps
}

// Position returns the camera's world position.
func (c *Orbit) Position() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	dir := mgl32.Vec3{
		cp * float32(math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		cp * float32(math.Cos(float64(c.Yaw))),
	}
	return c.Target.Add(dir.Mul(c.Distance))
}

// Up returns the camera up vector.
func (c *Orbit) Up() mgl32.Vec3 {
	return mgl32.Vec3{0, 1, 0}
}

// Aspect returns the viewport aspect ratio.
func (c *Orbit) Aspect() float32 {
	if c.ViewportH == 0 {
		return 1
	}
	return c.ViewportW / c.ViewportH
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Orbit) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, c.Up())
}

// ProjectionMatrix returns the perspective projection for the viewport.
func (c *Orbit) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fovy), c.Aspect(), c.Near, c.Far)
}

// Resize updates viewport dimensions.
func (c *Orbit) Resize(viewportW, viewportH float32) {
	if viewportW <= 0 || viewportH <= 0 {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Reset returns the camera to its home pose and drops pending motion.
func (c *Orbit) Reset() {
	c.Target = c.home.target
	c.Yaw = c.home.yaw
	c.Pitch = c.home.pitch
	c.Distance = c.home.di
	c.yawDelta, c.pitchDelta, c.zoomDelta = 0, 0, 0
}

// wrapAngle keeps yaw in [-pi, pi).
func wrapAngle(a float32) float32 {
	if a >= -math.Pi && a < math.Pi {
		return a
	}
	r := math.Mod(float64(a)+math.Pi, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	w := float32(r - math.Pi)
	if w >= math.Pi {
		w = -math.Pi
	}
	return w
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
