// internal/game/state.go
//
// The game state machine for a single Connections session.
// State transitions: playing → won (four categories solved),
// playing → lost (four incorrect guesses), playing → playing otherwise.
//
// Every operation takes a *GameState and returns a fresh one; inputs are
// never mutated. Business-rule violations (submitting without four tiles,
// acting on a finished game, selecting a solved tile) are no-ops that return
// the input state unchanged — the UI disables those actions, but the engine
// stays defensive regardless.

package game

const oneAwayToast = "One away..."

// New creates a fresh playing state for a puzzle, with a randomly ordered
// board and an empty guess log.
func New(p *Puzzle, sessionID string) *GameState {
	return &GameState{
		Puzzle:        p,
		SelectedTiles: []string{},
		SolvedGroups:  []SolvedGroup{},
		GuessHistory:  []GuessResult{},
		Status:        StatusPlaying,
		ShuffledItems: ShuffledTiles(p),
		SessionID:     sessionID,
	}
}

// clone produces a shallow copy with freshly copied slice headers, so that
// appends on the copy never alias the original's backing arrays.
func (s *GameState) clone() *GameState {
	c := *s
	c.SelectedTiles = append([]string(nil), s.SelectedTiles...)
	c.SolvedGroups = append([]SolvedGroup(nil), s.SolvedGroups...)
	c.GuessHistory = append([]GuessResult(nil), s.GuessHistory...)
	c.ShuffledItems = append([]string(nil), s.ShuffledItems...)
	return &c
}

// solvedItems flattens the already-solved categories' items in solve order.
func (s *GameState) solvedItems() []string {
	out := make([]string, 0, len(s.SolvedGroups)*TilesPerGroup)
	for _, g := range s.SolvedGroups {
		out = append(out, g.Category.Items...)
	}
	return out
}

// AvailableTiles returns the items still in play: the full universe minus
// everything in a solved group. Solved tiles leave the selectable pool
// entirely.
func (s *GameState) AvailableTiles() []string {
	if s.Puzzle == nil {
		return nil
	}
	solved := toSet(s.solvedItems())
	out := make([]string, 0, TotalTiles)
	for _, it := range AllTiles(s.Puzzle) {
		if _, ok := solved[it]; !ok {
			out = append(out, it)
		}
	}
	return out
}

// displayOrder is the board ordering after a solve or shuffle: solved items
// pinned first in solve order, then a fresh shuffle of the unsolved rest.
func (s *GameState) displayOrder() []string {
	return append(s.solvedItems(), Shuffle(s.AvailableTiles())...)
}

// CanSelectTile reports whether tapping tile would have any effect: the game
// is live, the tile is still on the board, and either it is already selected
// (tap deselects) or there is room for a fourth selection.
func (s *GameState) CanSelectTile(tile string) bool {
	if s.Status != StatusPlaying {
		return false
	}
	if !containsItem(s.AvailableTiles(), tile) {
		return false
	}
	return containsItem(s.SelectedTiles, tile) || len(s.SelectedTiles) < TilesPerGroup
}

// ToggleSelection selects an unselected tile or deselects a selected one.
// With four tiles already selected, taps on further tiles are ignored rather
// than displacing the oldest selection.
func (s *GameState) ToggleSelection(tile string) *GameState {
	if !s.CanSelectTile(tile) {
		return s
	}
	c := s.clone()
	if containsItem(c.SelectedTiles, tile) {
		kept := c.SelectedTiles[:0]
		for _, t := range c.SelectedTiles {
			if t != tile {
				kept = append(kept, t)
			}
		}
		c.SelectedTiles = kept
	} else {
		c.SelectedTiles = append(c.SelectedTiles, tile)
	}
	return c
}

// CanSubmit reports whether a guess can be submitted right now.
func (s *GameState) CanSubmit() bool {
	return s.Status == StatusPlaying && len(s.SelectedTiles) == TilesPerGroup
}

// SubmitGuess evaluates a four-item guess and advances the state machine.
// Returns the new state, whether the guess was correct, and the matched
// category if any. A wrong-sized guess or a finished game returns the input
// state unchanged.
//
// Correct guesses are free: AttemptsUsed only moves on a miss, and the
// incremented value is the attempt number recorded in the guess log.
func (s *GameState) SubmitGuess(items []string) (*GameState, bool, *Category) {
	if s.Status != StatusPlaying || len(items) != TilesPerGroup {
		return s, false, nil
	}

	category := FindMatchingCategory(s.Puzzle, items)
	isCorrect := category != nil
	oneAway := !isCorrect && OneAway(s.Puzzle, items)

	c := s.clone()
	if !isCorrect {
		c.AttemptsUsed++
	}

	guess := GuessResult{
		Items:            append([]string(nil), items...),
		IsCorrect:        isCorrect,
		IsOneAway:        oneAway,
		AttemptNumber:    c.AttemptsUsed,
		ItemDifficulties: ItemDifficulties(s.Puzzle, items),
	}
	if isCorrect {
		cc := *category
		guess.Category = &cc
	}
	c.GuessHistory = append(c.GuessHistory, guess)

	c.SelectedTiles = []string{}
	if isCorrect {
		c.SolvedGroups = append(c.SolvedGroups, SolvedGroup{
			Category: *category,
			SolvedAt: len(c.SolvedGroups),
		})
		c.ShuffledItems = c.displayOrder()
		c.ShowToast, c.ToastMessage = false, ""
		if len(c.SolvedGroups) == len(c.Puzzle.Categories) {
			c.Status = StatusWon
		}
	} else {
		c.ShowToast = oneAway
		c.ToastMessage = ""
		if oneAway {
			c.ToastMessage = oneAwayToast
		}
		if c.AttemptsUsed >= MaxAttempts {
			c.Status = StatusLost
		}
	}
	return c, isCorrect, category
}

// ShuffleDisplay reorders the unsolved portion of the board and clears the
// current selection; a selection never survives a visual reorder.
func (s *GameState) ShuffleDisplay() *GameState {
	if s.Status != StatusPlaying {
		return s
	}
	c := s.clone()
	c.ShuffledItems = c.displayOrder()
	c.SelectedTiles = []string{}
	return c
}

// DeselectAll clears the selection. Allowed even on a finished game, since
// it affects only the UI, never the outcome.
func (s *GameState) DeselectAll() *GameState {
	if len(s.SelectedTiles) == 0 {
		return s
	}
	c := s.clone()
	c.SelectedTiles = []string{}
	return c
}

// RemainingAttempts is how many incorrect guesses are left before a loss.
func (s *GameState) RemainingAttempts() int {
	if n := MaxAttempts - s.AttemptsUsed; n > 0 {
		return n
	}
	return 0
}
