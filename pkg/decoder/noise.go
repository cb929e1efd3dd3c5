package decoder

// Linear congruential generator constants (Numerical Recipes).
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
)

// noiseScale maps a 32-bit state onto [0, 255).
const noiseScale = 255.0 / (1 << 32)

// Noise returns n pseudo-random samples in [0, 255). The generator state
// starts at seed and is advanced as state = state*1664525 + 1013904223
// (mod 2^32) before every sample, so equal seeds give identical output on
// every platform.
func Noise(n int, seed uint32) []float64 {
	out := make([]float64, n)
	state := seed
	for i := range out {
		state = state*lcgMultiplier + lcgIncrement
		out[i] = float64(state) * noiseScale
	}
	return out
}
