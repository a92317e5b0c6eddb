package ports

import (
	"math/rand/v2"
)

// RNGPort provides seeded random sources for deterministic Monte-Carlo runs.
// Implementations must derive the stream from (name, seed) alone, never from
// process-wide state, so concurrent consumers cannot interfere.
type RNGPort interface {
	// SeededSource returns a deterministic random source for a named
	// operation. Identical name and seed yield an identical stream.
	SeededSource(name string, seed int64) rand.Source
}
