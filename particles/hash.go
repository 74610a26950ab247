package particles

// HashVersion identifies the phase hash below. Bump it if Hash ever changes,
// since recorded fixtures and golden values depend on it.
const HashVersion = 1

// Hash maps a particle index to a phase in [0,1). It is a PCG-style
// permutation followed by an xorshift-multiply finalizer, so it has no seed
// and returns the same value for the same index on every run.
func Hash(i uint32) float32 {
	state := i*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	h := (word >> 22) ^ word
	// Top 24 bits fit a float32 mantissa exactly.
	return float32(h>>8) / (1 << 24)
}
