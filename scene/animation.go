package scene

// AnimationFunc runs once per frame.
type AnimationFunc func(FrameContext)

type animation struct {
	name string
	fn   AnimationFunc
}

// AnimationLoop is an ordered registry of per-frame callbacks. Callbacks
// run in the order they were first added.
type AnimationLoop struct {
	entries []animation
}

// Add registers fn under name. Adding an existing name replaces its
// callback and keeps its position.
func (l *AnimationLoop) Add(name string, fn AnimationFunc) {
	for i := range l.entries {
		if l.entries[i].name == name {
			l.entries[i].fn = fn
			return
		}
	}
	l.entries = append(l.entries, animation{name: name, fn: fn})
}

// Remove unregisters name and reports whether it was present.
func (l *AnimationLoop) Remove(name string) bool {
	for i := range l.entries {
		if l.entries[i].name == name {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Run calls every callback with ctx.
func (l *AnimationLoop) Run(ctx FrameContext) {
	for _, a := range l.entries {
		a.fn(ctx)
	}
}

// Names returns the registered names in run order.
func (l *AnimationLoop) Names() []string {
	names := make([]string, len(l.entries))
	for i, a := range l.entries {
		names[i] = a.name
	}
	return names
}

// Len returns the number of registered callbacks.
func (l *AnimationLoop) Len() int { return len(l.entries) }
