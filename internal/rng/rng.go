// Package rng provides the explicit, injectable randomness used by the
// engine. Matches never touch ambient randomness: every shuffle and AI
// noise draw flows from a seed carried in the match config.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// aiSeedOffset derives the AI noise stream from the match seed. Keeping
// the streams separate means replaying a move log reproduces every deal
// without re-running any AI decision.
const aiSeedOffset = 0x5eed

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ForMatch returns the RNG driving shuffles and deals for a match seed.
func ForMatch(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// ForAI returns the RNG driving AI noise for a match seed. Same seed,
// same sequence of decisions.
func ForAI(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed + aiSeedOffset))
}
