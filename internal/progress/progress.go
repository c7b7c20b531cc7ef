// internal/progress/progress.go
//
// Serialization of in-flight game state to the key-value store, and
// reconstruction back into a live GameState. One record per puzzle id, so
// replaying an old puzzle never clobbers today's progress.
//
// Two rules govern loading:
//   - A record is honored only for the same puzzle id AND the same local
//     calendar day it was written; anything else reads as "no progress".
//   - Solved groups are never trusted from storage. They are rebuilt from
//     the guess history, which is the authoritative log, so the two can
//     never diverge.
//
// Corrupt or unparseable records read as absent; this layer never returns
// an error to the caller.

package progress

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/frisconnections/go-server/internal/game"
	"github.com/frisconnections/go-server/internal/kv"
)

// Storage keys. The unnumbered progress key is the pre-namespacing legacy
// format, read only to relocate its record.
const (
	legacyProgressKey = "frisconnections-progress"
	sessionIDKey      = "frisconnections-session-id"
	onboardingKey     = "frisconnections-onboarding-seen"
)

func progressKey(puzzleID int) string {
	return fmt.Sprintf("frisconnections_puzzle_%d_progress", puzzleID)
}

// Record is the stored shape of an in-flight (or finished) game. Solved
// groups are persisted as category ids only; the full groups are derived
// from GuessHistory on load.
type Record struct {
	SessionID     string             `json:"sessionId"`
	PuzzleID      int                `json:"puzzleId"`
	SelectedTiles []string           `json:"selectedTiles"`
	SolvedGroups  []int              `json:"solvedGroups"`
	AttemptsUsed  int                `json:"attemptsUsed"`
	GameStatus    game.Status        `json:"gameStatus"`
	GuessHistory  []game.GuessResult `json:"guessHistory"`
	Timestamp     int64              `json:"timestamp"` // unix milliseconds
}

// migrateLegacy relocates a pre-namespacing global record to its per-puzzle
// key. Runs before every load and save; idempotent, and unparseable legacy
// data is simply dropped.
func migrateLegacy(st kv.Store) {
	raw, ok := st.Get(legacyProgressKey)
	if !ok {
		return
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.PuzzleID == 0 {
		st.Remove(legacyProgressKey)
		return
	}
	st.Set(progressKey(rec.PuzzleID), raw)
	st.Remove(legacyProgressKey)
}

// Save writes the state's progress record under its puzzle's key.
func Save(st kv.Store, s *game.GameState, now time.Time) {
	if s == nil || s.Puzzle == nil {
		return
	}
	migrateLegacy(st)

	solvedIDs := make([]int, 0, len(s.SolvedGroups))
	for _, g := range s.SolvedGroups {
		solvedIDs = append(solvedIDs, g.Category.ID)
	}
	rec := Record{
		SessionID:     s.SessionID,
		PuzzleID:      s.Puzzle.ID,
		SelectedTiles: s.SelectedTiles,
		SolvedGroups:  solvedIDs,
		AttemptsUsed:  s.AttemptsUsed,
		GameStatus:    s.Status,
		GuessHistory:  s.GuessHistory,
		Timestamp:     now.UnixMilli(),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	st.Set(progressKey(s.Puzzle.ID), string(b))
}

// Load reconstructs a GameState for p from stored progress. The second
// return is false when there is nothing usable: no record, a record for a
// different puzzle, a record from another calendar day, or corrupt JSON.
func Load(st kv.Store, p *game.Puzzle, now time.Time) (*game.GameState, bool) {
	if p == nil {
		return nil, false
	}
	migrateLegacy(st)

	raw, ok := st.Get(progressKey(p.ID))
	if !ok {
		return nil, false
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, false
	}
	if rec.PuzzleID != p.ID {
		return nil, false
	}
	// Same local calendar day only; stale games start fresh.
	saved := time.UnixMilli(rec.Timestamp).In(now.Location())
	if saved.Year() != now.Year() || saved.YearDay() != now.YearDay() {
		return nil, false
	}

	solved := RebuildSolvedGroups(p, rec.GuessHistory)
	s := &game.GameState{
		Puzzle:        p,
		SelectedTiles: rec.SelectedTiles,
		SolvedGroups:  solved,
		AttemptsUsed:  rec.AttemptsUsed,
		Status:        rec.GameStatus,
		GuessHistory:  rec.GuessHistory,
		SessionID:     rec.SessionID,
	}
	if s.SelectedTiles == nil {
		s.SelectedTiles = []string{}
	}
	if s.GuessHistory == nil {
		s.GuessHistory = []game.GuessResult{}
	}
	if s.Status == "" {
		s.Status = game.StatusPlaying
	}
	// Board order is not persisted; rebuild it solved-first.
	rest := game.Shuffle(s.AvailableTiles())
	order := make([]string, 0, game.TotalTiles)
	for _, g := range s.SolvedGroups {
		order = append(order, g.Category.Items...)
	}
	s.ShuffledItems = append(order, rest...)
	return s, true
}

// RebuildSolvedGroups derives the solved-group sequence from the guess log:
// correct guesses in chronological order, each tagged with its ordinal.
// Running it twice over the same history yields identical output.
func RebuildSolvedGroups(p *game.Puzzle, history []game.GuessResult) []game.SolvedGroup {
	out := []game.SolvedGroup{}
	for _, g := range history {
		if !g.IsCorrect {
			continue
		}
		cat := game.FindMatchingCategory(p, g.Items)
		if cat == nil {
			continue
		}
		out = append(out, game.SolvedGroup{Category: *cat, SolvedAt: len(out)})
	}
	return out
}

// Clear removes the progress record for a puzzle.
func Clear(st kv.Store, puzzleID int) {
	st.Remove(progressKey(puzzleID))
}

// SessionID returns the browser-lifetime session identifier, creating and
// persisting a fresh UUID on first use.
func SessionID(st kv.Store) string {
	if id, ok := st.Get(sessionIDKey); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	st.Set(sessionIDKey, id)
	return id
}

// SeenOnboarding reports whether the how-to-play intro was already shown.
func SeenOnboarding(st kv.Store) bool {
	v, ok := st.Get(onboardingKey)
	return ok && v == "true"
}

// MarkOnboardingSeen records that the intro was shown.
func MarkOnboardingSeen(st kv.Store) {
	st.Set(onboardingKey, "true")
}
