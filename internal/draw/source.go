// Package draw turns pack, box and case configurations plus a card pool into
// concrete pulls.
package draw

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	mathrand "math/rand/v2"
)

// Source provides randomness to the draw engine.
type Source interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: every value is uniformly distributed in [0, 1) with 53 bits of precision.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand. It is safe for
// concurrent use.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Float64 panics with "draw: crypto/rand failure: <err>" if crypto/rand fails.
func (cryptoSource) Float64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("draw: crypto/rand failure: " + err.Error())
	}
	return float64(binary.LittleEndian.Uint64(b[:])>>11) / (1 << 53)
}

// NewSeededSource returns a deterministic PCG-backed Source. Two sources built
// from the same seed yield the same sequence. It is not safe for concurrent use.
func NewSeededSource(seed uint64) Source {
	return mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SeedFromString derives a seed from arbitrary text so that simulator runs can
// be replayed from a human-readable seed.
func SeedFromString(s string) uint64 {
	h := sha256.Sum256([]byte(s))
	return binary.LittleEndian.Uint64(h[:8])
}
