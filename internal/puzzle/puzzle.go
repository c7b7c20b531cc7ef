// internal/puzzle/puzzle.go
//
// Puzzle content delivery. A Provider hands out validated puzzles for
// "today" or by puzzle number; ErrNotFound distinguishes "no puzzle" (a
// neutral state the UI shows calmly) from real storage failures.
//
// Shape validation happens here, at the boundary, so the game engine can
// assume every puzzle it sees has exactly four categories of four distinct
// items, one category per difficulty.

package puzzle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frisconnections/go-server/internal/game"
)

// ErrNotFound means no puzzle exists for the requested day or number.
var ErrNotFound = errors.New("puzzle not found")

// Provider is the content source the rest of the server consumes.
type Provider interface {
	// Today returns the puzzle assigned to the current date, or ErrNotFound.
	Today(ctx context.Context) (*game.Puzzle, error)

	// ByNumber returns a past (or current) puzzle by its number, or
	// ErrNotFound.
	ByNumber(ctx context.Context, number int) (*game.Puzzle, error)
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Validate checks the structural invariants: exactly four categories, one
// per difficulty level, four items each, sixteen pairwise-distinct items.
func Validate(p *game.Puzzle) error {
	if p == nil {
		return errors.New("puzzle: nil")
	}
	if len(p.Categories) != 4 {
		return fmt.Errorf("puzzle %d: expected 4 categories, got %d", p.ID, len(p.Categories))
	}
	seenDiff := make(map[game.Difficulty]bool, 4)
	seenItem := make(map[string]bool, game.TotalTiles)
	for _, c := range p.Categories {
		if !c.Difficulty.Valid() {
			return fmt.Errorf("puzzle %d: category %q has invalid difficulty %d", p.ID, c.Name, c.Difficulty)
		}
		if seenDiff[c.Difficulty] {
			return fmt.Errorf("puzzle %d: duplicate difficulty %s", p.ID, c.Difficulty.Name())
		}
		seenDiff[c.Difficulty] = true
		if len(c.Items) != game.TilesPerGroup {
			return fmt.Errorf("puzzle %d: category %q has %d items", p.ID, c.Name, len(c.Items))
		}
		for _, it := range c.Items {
			if seenItem[it] {
				return fmt.Errorf("puzzle %d: duplicate item %q", p.ID, it)
			}
			seenItem[it] = true
		}
	}
	return nil
}

// Memory is a fixed-content Provider for tests and offline development.
type Memory struct {
	Puzzles []*game.Puzzle
	Date    string // date key considered "today"; empty matches Puzzles[0]
}

func (m *Memory) Today(ctx context.Context) (*game.Puzzle, error) {
	if m.Date == "" {
		if len(m.Puzzles) == 0 {
			return nil, ErrNotFound
		}
		return m.Puzzles[0], nil
	}
	for _, p := range m.Puzzles {
		if p.Date == m.Date {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ByNumber(ctx context.Context, number int) (*game.Puzzle, error) {
	for _, p := range m.Puzzles {
		if p.PuzzleNumber == number {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

// Sample returns the built-in San Francisco demo puzzle, used to seed an
// empty database and in tests.
func Sample() *game.Puzzle {
	return &game.Puzzle{
		ID:           1,
		Date:         "2024-01-15",
		PuzzleNumber: 1,
		Categories: []game.Category{
			{
				ID: 1, Name: "SF HILLS", Difficulty: game.Yellow,
				Items: []string{"Twin Peaks", "Nob Hill", "Russian Hill", "Telegraph Hill"},
			},
			{
				ID: 2, Name: "THINGS IN GOLDEN GATE PARK", Difficulty: game.Green,
				Items: []string{"Bison", "Museum", "Windmill", "Gardens"},
			},
			{
				ID: 3, Name: "FOOD INVENTED IN SF", Difficulty: game.Blue,
				Items: []string{"Irish Coffee", "Sourdough", "Mission Burrito", "Cioppino"},
			},
			{
				ID: 4, Name: "TECH TERMS WITH SF MEANINGS", Difficulty: game.Purple,
				Items: []string{"Oracle", "Salesforce", "Uber", "Twitter"},
			},
		},
	}
}
