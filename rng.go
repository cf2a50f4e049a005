package danton

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"

	"github.com/Raimer/danton/internal/engines"
)

// Rng is the component-B reproducible uniform-[0,1] stream: a single
// Mersenne Twister per Context, exposed through math/rand.Rand so the
// rest of the package can draw from it without knowing the underlying
// algorithm. The engines receive it as a RandomFunc (see Shim).
type Rng struct {
	source *mt19937
	r      *mathrand.Rand
}

// NewRng seeds a Rng from the OS entropy pool, per spec.md §4.B.
func NewRng() (*Rng, error) {
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("%w: rng: reading entropy pool: %v", ErrIO, err)
	}
	src := newMT19937(binary.LittleEndian.Uint32(seed[:]))
	return &Rng{source: src, r: mathrand.New(src)}, nil
}

// NewRngFromState builds a Rng seeded directly from a literal 624-word
// generator state, the determinism hook needed by the fixed-seed
// reproducibility scenario of spec.md §8.
func NewRngFromState(state [624]uint32) *Rng {
	src := &mt19937{}
	src.seedVector(state)
	return &Rng{source: src, r: mathrand.New(src)}
}

// Float64 draws a uniform double on [0, 1).
func (g *Rng) Float64() float64 { return g.r.Float64() }

// Uint32 draws a raw tempered 32-bit word, for callers that want the
// untransformed stream.
func (g *Rng) Uint32() uint32 { return g.source.Uint32() }

// Shim returns an engines.RandomFunc bound to this Rng, for handing to
// an engine adapter constructor.
//
// spec.md §4.B describes the reference implementation's two shims as
// "recovering the owning context by pointer arithmetic / user-data
// slot" — a C idiom for smuggling state through a bare function
// pointer. Go closures make that recovery unnecessary: Shim binds the
// Rng directly into the returned closure, so the callback needs no
// side table at all. This is the "standardise on the user-data
// pattern" resolution spec.md §9 asks reimplementations to make, taken
// to its natural conclusion in a language with first-class closures.
func (g *Rng) Shim() engines.RandomFunc {
	return g.Float64
}
