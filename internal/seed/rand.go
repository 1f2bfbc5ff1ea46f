package seed

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/chacha20"
)

// StreamRand reads pseudo-randomness from a ChaCha20 keystream instead of
// math/rand's global source, so two runs with the same root seed produce
// byte-identical draws independent of host entropy or prior call order on
// unrelated streams.
type StreamRand struct {
	cipher *chacha20.Cipher
	buf    [8]byte
}

func newStreamRand(cipher *chacha20.Cipher) *StreamRand {
	return &StreamRand{cipher: cipher}
}

func (r *StreamRand) nextUint64() uint64 {
	var zero, out [8]byte
	r.cipher.XORKeyStream(out[:], zero[:])
	return binary.LittleEndian.Uint64(out[:])
}

// Float64 returns a uniform draw in [0, 1).
func (r *StreamRand) Float64() float64 {
	// 53 bits of mantissa precision, mirroring math/rand's technique.
	return float64(r.nextUint64()>>11) / (1 << 53)
}

// Intn returns a uniform draw in [0, n).
func (r *StreamRand) Intn(n int) int {
	if n <= 0 {
		panic("seed: Intn called with n <= 0")
	}
	return int(r.nextUint64() % uint64(n))
}

// NormFloat64 returns a standard-normal draw via the Box-Muller transform.
func (r *StreamRand) NormFloat64() float64 {
	u1 := r.Float64()
	if u1 < 1e-300 {
		u1 = 1e-300
	}
	u2 := r.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// LogNormal returns a draw from a log-normal distribution parameterized by
// the mean and stddev of the underlying normal.
func (r *StreamRand) LogNormal(mu, sigma float64) float64 {
	return math.Exp(mu + sigma*r.NormFloat64())
}

// Bool returns true with probability p.
func (r *StreamRand) Bool(p float64) bool {
	return r.Float64() < p
}
