package components

// FieldDescriptor describes a displayed value for UI display.
type FieldDescriptor struct {
	ID     string  // Unique identifier
	Label  string  // Display name
	Format string  // Printf format (e.g., "%.2f")
	Min    float32 // Minimum value (for bars)
	Max    float32 // Maximum value (for bars)
	IsBar  bool    // True to render as progress bar
	Group  string  // Logical grouping
}

// CloudFieldDescriptors returns metadata for the HUD's cloud readout.
func CloudFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "count", Label: "Particles", Format: "%d", Group: "cloud"},
		{ID: "generation", Label: "Resamples", Format: "%d", Group: "cloud"},
		{ID: "sprite_scale", Label: "Sprite", Format: "%.2f", Min: 0.01, Max: 1, IsBar: true, Group: "cloud"},
		{ID: "mean_disp", Label: "Mean drift", Format: "%.5f", Group: "motion"},
		{ID: "max_disp", Label: "Max drift", Format: "%.5f", Group: "motion"},
	}
}
