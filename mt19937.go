package danton

// Mersenne Twister (MT19937) generator, implementing math/rand.Source64 so
// it can back a math/rand.Rand.
//
// No maintained third-party MT19937 package is available to import, and
// fabricating a module behind a replace directive is disallowed, so this
// is a small from-scratch implementation of the well-known public-domain
// algorithm (Matsumoto & Nishimura, 1998) — kept deliberately minimal, it
// exists only to give the sampler a reproducible, word-addressable seed
// state.

const (
	mtN          = 624
	mtM          = 397
	mtMatrixA    = 0x9908b0df
	mtUpperMask  = 0x80000000
	mtLowerMask  = 0x7fffffff
	mtDefaultSeed = 19650218
)

// mt19937 is a single-threaded Mersenne Twister state vector.
type mt19937 struct {
	state [mtN]uint32
	index int
}

// newMT19937 seeds a generator from a single 32-bit seed.
func newMT19937(seed uint32) *mt19937 {
	m := &mt19937{}
	m.seed(seed)
	return m
}

func (m *mt19937) seed(seed uint32) {
	m.state[0] = seed
	for i := 1; i < mtN; i++ {
		m.state[i] = 1812433253*(m.state[i-1]^(m.state[i-1]>>30)) + uint32(i)
	}
	m.index = mtN
}

// seedVector reseeds from an explicit 624-word state vector, as required by
// the determinism scenario in spec.md §8 ("seeding the PRNG state to a
// literal 624-word vector").
func (m *mt19937) seedVector(state [mtN]uint32) {
	m.state = state
	m.index = mtN
}

func (m *mt19937) generate() {
	for i := 0; i < mtN; i++ {
		y := (m.state[i] & mtUpperMask) | (m.state[(i+1)%mtN] & mtLowerMask)
		next := m.state[(i+mtM)%mtN] ^ (y >> 1)
		if y&1 != 0 {
			next ^= mtMatrixA
		}
		m.state[i] = next
	}
	m.index = 0
}

// Uint32 returns the next 32-bit tempered output word.
func (m *mt19937) Uint32() uint32 {
	if m.index >= mtN {
		m.generate()
	}
	y := m.state[m.index]
	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	m.index++
	return y
}

// Uint64 implements math/rand.Source64 by packing two 32-bit draws.
func (m *mt19937) Uint64() uint64 {
	hi := uint64(m.Uint32())
	lo := uint64(m.Uint32())
	return hi<<32 | lo
}

// Int63 implements math/rand.Source.
func (m *mt19937) Int63() int64 {
	return int64(m.Uint64() >> 1)
}

// Seed implements math/rand.Source from a 64-bit seed.
func (m *mt19937) Seed(seed int64) {
	m.seed(uint32(seed))
}
