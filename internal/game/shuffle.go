// internal/game/shuffle.go
//
// Unbiased tile shuffling for the board display.
// Uses the Fisher–Yates (Durstenfeld) shuffle over a copy of the input, so
// callers' slices are never reordered under them. Randomness is math/rand:
// display ordering needs uniformity, not unpredictability.

package game

import (
	"math/rand"
	"sync"
	"time"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// SeedShuffle re-seeds the package shuffler. Tests use this to make board
// orderings reproducible.
func SeedShuffle(seed int64) {
	rngMu.Lock()
	rng = rand.New(rand.NewSource(seed))
	rngMu.Unlock()
}

// Shuffle returns a uniformly random permutation of items. The input slice
// is left untouched.
func Shuffle(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	rngMu.Lock()
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	rngMu.Unlock()
	return out
}

// ShuffledTiles returns the full 16-tile universe of a puzzle in random
// order, for a fresh board.
func ShuffledTiles(p *Puzzle) []string {
	return Shuffle(AllTiles(p))
}
