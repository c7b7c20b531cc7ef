package puzzle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frisconnections/go-server/internal/game"
)

func TestValidate(t *testing.T) {
	t.Run("sample puzzle is well formed", func(t *testing.T) {
		assert.NoError(t, Validate(Sample()))
	})

	t.Run("nil puzzle", func(t *testing.T) {
		assert.Error(t, Validate(nil))
	})

	t.Run("wrong category count", func(t *testing.T) {
		p := Sample()
		p.Categories = p.Categories[:3]
		assert.ErrorContains(t, Validate(p), "expected 4 categories")
	})

	t.Run("duplicate difficulty", func(t *testing.T) {
		p := Sample()
		p.Categories[1].Difficulty = game.Yellow
		// Keep items distinct so only the difficulty check trips.
		assert.ErrorContains(t, Validate(p), "duplicate difficulty Yellow")
	})

	t.Run("invalid difficulty", func(t *testing.T) {
		p := Sample()
		p.Categories[0].Difficulty = 9
		assert.ErrorContains(t, Validate(p), "invalid difficulty")
	})

	t.Run("wrong item count", func(t *testing.T) {
		p := Sample()
		p.Categories[2].Items = p.Categories[2].Items[:3]
		assert.ErrorContains(t, Validate(p), "has 3 items")
	})

	t.Run("duplicate item across categories", func(t *testing.T) {
		p := Sample()
		p.Categories[3].Items[0] = p.Categories[0].Items[0]
		assert.ErrorContains(t, Validate(p), "duplicate item")
	})
}

func TestDateKey(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2024, 3, 1, 23, 30, 0, 0, loc)
	assert.Equal(t, "2024-03-02", DateKey(ts))
}

func TestPickIndex(t *testing.T) {
	t.Run("deterministic for same inputs", func(t *testing.T) {
		a := pickIndex("2024-03-01", "salt", 10)
		b := pickIndex("2024-03-01", "salt", 10)
		assert.Equal(t, a, b)
	})

	t.Run("always in range", func(t *testing.T) {
		for _, key := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
			for _, n := range []int{1, 2, 7, 100} {
				idx := pickIndex(key, "salt", n)
				assert.GreaterOrEqual(t, idx, 0)
				assert.Less(t, idx, n)
			}
		}
	})

	t.Run("zero candidates", func(t *testing.T) {
		assert.Zero(t, pickIndex("2024-03-01", "salt", 0))
	})

	t.Run("salt changes the pick", func(t *testing.T) {
		// Not guaranteed for any single day, so look across many.
		diff := false
		for d := 1; d <= 28; d++ {
			key := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
			if pickIndex(key, "a", 50) != pickIndex(key, "b", 50) {
				diff = true
				break
			}
		}
		assert.True(t, diff)
	})
}

func TestMemoryProvider(t *testing.T) {
	ctx := context.Background()
	today := Sample()
	today.Date = "2024-03-01"
	past := Sample()
	past.ID = 2
	past.PuzzleNumber = 2
	past.Date = "2024-02-29"

	m := &Memory{Puzzles: []*game.Puzzle{today, past}, Date: "2024-03-01"}

	t.Run("today by date", func(t *testing.T) {
		p, err := m.Today(ctx)
		require.NoError(t, err)
		assert.Equal(t, today.ID, p.ID)
	})

	t.Run("by number", func(t *testing.T) {
		p, err := m.ByNumber(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, p.ID)
	})

	t.Run("missing number", func(t *testing.T) {
		_, err := m.ByNumber(ctx, 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no puzzle for the date", func(t *testing.T) {
		empty := &Memory{Puzzles: []*game.Puzzle{past}, Date: "2024-03-05"}
		_, err := empty.Today(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
