// Package entropy isolates the game's randomness behind a seedable source.
// Shuffles and die rolls draw from a PCG generator so a game can be replayed
// from its seed. A zero seed is replaced by one read from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"time"
)

// Source is the randomness the engine consumes.
type Source interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Rand is a seeded Source.
type Rand struct {
	*mrand.Rand
	seed int64
}

// New returns a source for seed. A zero seed picks one at random.
func New(seed int64) *Rand {
	return Derive(seed, 0)
}

// Derive returns the source for a given day of a seeded game. Restored games
// use it so that play continues deterministically from where it was saved.
func Derive(seed int64, day int) *Rand {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return &Rand{
		Rand: mrand.New(mrand.NewPCG(uint64(seed), uint64(day))),
		seed: seed,
	}
}

// Seed returns the effective seed.
func (r *Rand) Seed() int64 {
	return r.seed
}

// CryptoSeed reads a non-zero seed from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to the clock.
		return time.Now().UnixNano() | 1
	}
	n := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if n == 0 {
		n = 1
	}
	return n
}
