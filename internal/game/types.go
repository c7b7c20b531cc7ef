// internal/game/types.go
//
// Core type definitions for the Connections game engine.
// Defines:
//   - Puzzle/Category: a day's puzzle content (4 categories × 4 items).
//   - Difficulty: 1..4 ordinal mapped to the Yellow..Purple colors.
//   - GameState: state for a single in-progress or finished game.
//   - GuessResult/SolvedGroup: the append-only guess log and its derivations.

package game

// Gameplay constants. A puzzle always carries exactly TotalTiles items split
// across four categories; the game ends after MaxAttempts incorrect guesses.
const (
	MaxAttempts   = 4
	TilesPerGroup = 4
	TotalTiles    = 16
)

// Status is the lifecycle state of a single game.
// Terminal values (StatusWon/StatusLost) never transition further.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Difficulty ranks a category from easiest (Yellow) to hardest (Purple).
type Difficulty int

const (
	Yellow Difficulty = 1
	Green  Difficulty = 2
	Blue   Difficulty = 3
	Purple Difficulty = 4
)

// Name returns the display color name for a difficulty.
func (d Difficulty) Name() string {
	switch d {
	case Yellow:
		return "Yellow"
	case Green:
		return "Green"
	case Blue:
		return "Blue"
	case Purple:
		return "Purple"
	}
	return "Unknown"
}

// Valid reports whether d is one of the four defined levels.
func (d Difficulty) Valid() bool { return d >= Yellow && d <= Purple }

// Category is a themed group of exactly four items.
type Category struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Difficulty Difficulty `json:"difficulty"`
	Items      []string   `json:"items"`
}

// Puzzle is one day's content: exactly four categories, one per difficulty,
// sixteen pairwise-distinct items. The provider validates this shape before
// a puzzle reaches the engine; the engine assumes it holds.
type Puzzle struct {
	ID           int        `json:"id"`
	Date         string     `json:"date"` // YYYY-MM-DD
	PuzzleNumber int        `json:"puzzle_number"`
	Categories   []Category `json:"categories"`
}

// SolvedGroup records one correctly guessed category. SolvedAt is the ordinal
// position in the solve order (0-based), not a wall-clock time, so that the
// value is stable under replay from the guess log.
type SolvedGroup struct {
	Category Category `json:"category"`
	SolvedAt int      `json:"solvedAt"`
}

// GuessResult is one entry in the append-only guess log. Every submitted
// guess lands here, correct or not.
type GuessResult struct {
	Items            []string     `json:"items"`
	IsCorrect        bool         `json:"isCorrect"`
	IsOneAway        bool         `json:"isOneAway,omitempty"`
	Category         *Category    `json:"category,omitempty"`
	AttemptNumber    int          `json:"attemptNumber"`
	ItemDifficulties []Difficulty `json:"itemDifficulties"`
}

// GameState holds everything for a single play session of one puzzle.
// Operations on it are copy-on-write: the engine never mutates a caller's
// state, it returns a new one.
type GameState struct {
	Puzzle        *Puzzle       `json:"puzzle"`
	SelectedTiles []string      `json:"selectedTiles"`
	SolvedGroups  []SolvedGroup `json:"solvedGroups"`
	AttemptsUsed  int           `json:"attemptsUsed"`
	Status        Status        `json:"gameStatus"`
	GuessHistory  []GuessResult `json:"guessHistory"`
	ShuffledItems []string      `json:"shuffledItems"`
	SessionID     string        `json:"sessionId,omitempty"`

	// Transient toast signal for the UI. Carried in state so a persistence
	// round-trip reproduces what the player last saw.
	ShowToast    bool   `json:"showToast"`
	ToastMessage string `json:"toastMessage"`
}
