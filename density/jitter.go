package density

import "math/rand/v2"

// jitterStream separates jitter sequences from any other PCG stream seeded
// with the same value.
const jitterStream = 0x6a6974746572

// JitterFactors fills out with the multiplicative factors of one jitter:
// 1 + (u/100)*strength, u uniform on [-100, 100], drawn in payout order.
// Identical seed and strength always reproduce identical factors.
func JitterFactors(seed uint64, strength float64, out []float64) {
	rng := rand.New(rand.NewPCG(seed, jitterStream))
	for i := range out {
		u := float64(rng.IntN(201) - 100)
		out[i] = 1 + (u/100)*strength
	}
}
