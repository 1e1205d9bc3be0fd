// package sampling holds the CPU mirrors of the shader's stochastic math:
// the PCG hash RNG, the Duff orthonormal basis, cosine-hemisphere and GGX
// sampling, the Cook-Torrance BRDF, the MIS power heuristic and the Welford
// running mean. The WGSL modules implement identical formulas; keeping a CPU
// twin lets the statistical laws be tested without a GPU.
package sampling

// Rng is the per-pixel PCG-hash random generator. State is explicit so the
// test harness owns it; the shader keeps it in a thread-private cell.
type Rng struct {
	state uint32
}

// NewRng seeds from pixel coordinates and frame index exactly as the path
// kernel does: hash(x + y*65536 + frame*16777259).
func NewRng(x, y, frame uint32) *Rng {
	return &Rng{state: PcgHash(x + y*65536 + frame*16777259)}
}

// PcgHash is the single-round PCG permutation used for seeding.
func PcgHash(v uint32) uint32 {
	state := v*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// NextU32 advances the LCG state and returns a permuted 32-bit output.
func (r *Rng) NextU32() uint32 {
	r.state = r.state*747796405 + 2891336453
	word := ((r.state >> ((r.state >> 28) + 4)) ^ r.state) * 277803737
	return (word >> 22) ^ word
}

// Float32 returns a uniform sample in [0, 1).
func (r *Rng) Float32() float32 {
	return float32(r.NextU32()) / 4294967296.0
}

// Float32Pair returns two independent uniform samples.
func (r *Rng) Float32Pair() (float32, float32) {
	return r.Float32(), r.Float32()
}
