// internal/game/evaluate.go
//
// Pure guess classification against a puzzle.
// Responsibilities:
//   - FindMatchingCategory: exact set-equality match of a 4-item guess.
//   - OneAway: "shares exactly 3 with some category" check.
//   - ItemDifficulties: per-item difficulty lookup for the guess log.
//
// All functions here are deterministic and side-effect free. Callers enforce
// the 4-item cardinality before evaluating; behavior for other sizes is
// whatever set arithmetic yields.

package game

// FindMatchingCategory returns the category whose items equal the guessed
// items as an unordered set, or nil when none matches. Comparison is
// case-sensitive exact string match, order-independent.
func FindMatchingCategory(p *Puzzle, items []string) *Category {
	guess := toSet(items)
	for i := range p.Categories {
		c := &p.Categories[i]
		if len(guess) != len(c.Items) {
			continue
		}
		all := true
		for _, it := range c.Items {
			if _, ok := guess[it]; !ok {
				all = false
				break
			}
		}
		if all {
			return c
		}
	}
	return nil
}

// OneAway reports whether some category shares exactly three of its four
// items with the guess. Only meaningful when FindMatchingCategory returned
// nil; exact matches are checked first and take precedence. If several
// categories each share three, the answer is still simply true.
func OneAway(p *Puzzle, items []string) bool {
	guess := toSet(items)
	for i := range p.Categories {
		n := 0
		for _, it := range p.Categories[i].Items {
			if _, ok := guess[it]; ok {
				n++
			}
		}
		if n == 3 {
			return true
		}
	}
	return false
}

// ItemDifficulties maps each guessed item to the difficulty of its owning
// category. Items outside the puzzle universe fall back to Yellow.
func ItemDifficulties(p *Puzzle, items []string) []Difficulty {
	out := make([]Difficulty, len(items))
	for i, it := range items {
		out[i] = Yellow
		for j := range p.Categories {
			if containsItem(p.Categories[j].Items, it) {
				out[i] = p.Categories[j].Difficulty
				break
			}
		}
	}
	return out
}

// AllTiles flattens the puzzle's categories into the 16-item universe,
// in category order.
func AllTiles(p *Puzzle) []string {
	out := make([]string, 0, TotalTiles)
	for i := range p.Categories {
		out = append(out, p.Categories[i].Items...)
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

func containsItem(items []string, item string) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}
