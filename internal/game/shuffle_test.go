package game

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffleIsPermutation(t *testing.T) {
	SeedShuffle(1)
	in := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	orig := append([]string(nil), in...)

	out := Shuffle(in)
	assert.Equal(t, orig, in, "input must not be mutated")

	sortedIn := append([]string(nil), in...)
	sortedOut := append([]string(nil), out...)
	sort.Strings(sortedIn)
	sort.Strings(sortedOut)
	assert.Equal(t, sortedIn, sortedOut, "output must be a permutation of input")
}

func TestShuffleEmptyAndSingle(t *testing.T) {
	assert.Empty(t, Shuffle(nil))
	assert.Equal(t, []string{"only"}, Shuffle([]string{"only"}))
}

// Every element should land in every position roughly equally often. With
// 4 elements and 8000 runs each cell expects 2000; a ±25% band is far looser
// than the noise floor yet catches any systematic bias.
func TestShuffleRoughlyUniform(t *testing.T) {
	SeedShuffle(42)
	items := []string{"a", "b", "c", "d"}
	const runs = 8000

	counts := make(map[string][4]int)
	for i := 0; i < runs; i++ {
		out := Shuffle(items)
		for pos, v := range out {
			c := counts[v]
			c[pos]++
			counts[v] = c
		}
	}

	expected := runs / len(items)
	for v, c := range counts {
		for pos, n := range c {
			assert.InDelta(t, expected, n, float64(expected)/4,
				"element %q at position %d", v, pos)
		}
	}
}

func TestShuffledTiles(t *testing.T) {
	SeedShuffle(7)
	p := testPuzzle()
	tiles := ShuffledTiles(p)
	require.Len(t, tiles, TotalTiles)

	want := append([]string(nil), AllTiles(p)...)
	got := append([]string(nil), tiles...)
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
}
