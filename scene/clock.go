package scene

// FrameContext is passed to every animation callback of one frame.
type FrameContext struct {
	Frame int32   // frames advanced so far, including this one
	Time  float32 // elapsed simulated seconds
	Dt    float32 // seconds since the previous frame
}

// Clock tracks simulated time. It only moves forward.
type Clock struct {
	frame int32
	time  float32
}

// Advance moves the clock forward by dt seconds and returns the new frame.
// Negative dt is treated as zero.
func (c *Clock) Advance(dt float32) FrameContext {
	if dt < 0 {
		dt = 0
	}
	c.frame++
	c.time += dt
	return FrameContext{Frame: c.frame, Time: c.time, Dt: dt}
}

// Now returns the current frame without advancing.
func (c *Clock) Now() FrameContext {
	return FrameContext{Frame: c.frame, Time: c.time}
}

// Frame returns the number of frames advanced.
func (c *Clock) Frame() int32 { return c.frame }

// Time returns elapsed simulated seconds.
func (c *Clock) Time() float32 { return c.time }
