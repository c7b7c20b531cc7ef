// internal/play/manager.go
//
// Orchestration of live play sessions. This is the layer that ties the pure
// game engine to its collaborators: the puzzle provider, the key-value
// progress store, the statistics aggregator, and the fire-and-forget
// telemetry recorder.
//
// Rules enforced here rather than in the engine:
//   - Progress is persisted after every mutating operation.
//   - Resuming same-day progress rebuilds solved groups from the guess log.
//   - Statistics and the telemetry completion fire exactly once per game,
//     on the transition into won/lost — never again on resume, and never
//     for replays of past puzzles (streaks belong to today's puzzle only).

package play

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/frisconnections/go-server/internal/game"
	"github.com/frisconnections/go-server/internal/kv"
	"github.com/frisconnections/go-server/internal/progress"
	"github.com/frisconnections/go-server/internal/puzzle"
	"github.com/frisconnections/go-server/internal/stats"
	"github.com/frisconnections/go-server/internal/telemetry"
)

// ErrNoGame means the play id is unknown (or the game was evicted).
var ErrNoGame = errors.New("play: game not found")

// ErrNoPuzzle means the provider had nothing for the request. Callers show
// a neutral "no puzzle today" state, not an error.
var ErrNoPuzzle = errors.New("play: no puzzle available")

// entry is one live game plus its exactly-once bookkeeping.
type entry struct {
	id    string
	state *game.GameState
	today bool // playing today's puzzle (stats-eligible)
	done  bool // terminal transition already processed
}

// Manager owns the live games of one deployment.
type Manager struct {
	provider puzzle.Provider
	store    kv.Store
	recorder *telemetry.Recorder
	now      func() time.Time

	mu    sync.Mutex
	games map[string]*entry
}

// NewManager wires a Manager. now may be nil for the wall clock.
func NewManager(p puzzle.Provider, st kv.Store, rec *telemetry.Recorder, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		provider: p,
		store:    st,
		recorder: rec,
		now:      now,
		games:    make(map[string]*entry),
	}
}

// Snapshot is the client-facing view of a live game.
type Snapshot struct {
	PlayID string          `json:"playId"`
	State  *game.GameState `json:"state"`
	Today  bool            `json:"today"`
}

// Open starts (or resumes) a game. number==0 requests today's puzzle; a
// positive number replays that past puzzle. Returns ErrNoPuzzle when the
// provider has nothing.
func (m *Manager) Open(ctx context.Context, number int) (Snapshot, error) {
	var p *game.Puzzle
	var err error
	if number == 0 {
		p, err = m.provider.Today(ctx)
	} else {
		p, err = m.provider.ByNumber(ctx, number)
	}
	if errors.Is(err, puzzle.ErrNotFound) {
		return Snapshot{}, ErrNoPuzzle
	}
	if err != nil {
		return Snapshot{}, err
	}

	now := m.now()
	sessionID := progress.SessionID(m.store)
	isToday := p.Date == puzzle.DateKey(now)

	e := &entry{id: playID(), today: isToday}
	if st, ok := progress.Load(m.store, p, now); ok {
		st.SessionID = sessionID
		e.state = st
		// A resumed finished game must not re-fire stats or completion.
		e.done = st.Status != game.StatusPlaying
	} else {
		e.state = game.New(p, sessionID)
		progress.Save(m.store, e.state, now)
	}

	m.recorder.SendCreateSession(telemetry.Session{
		SessionID:        sessionID,
		PuzzleID:         p.ID,
		AttemptsUsed:     e.state.AttemptsUsed,
		SolvedCategories: solvedIDs(e.state),
		StartTime:        now.UTC(),
	})

	m.mu.Lock()
	m.games[e.id] = e
	m.mu.Unlock()
	return m.snapshot(e), nil
}

// Toggle selects or deselects a tile.
func (m *Manager) Toggle(id, tile string) (Snapshot, error) {
	return m.mutate(id, func(e *entry) {
		e.state = e.state.ToggleSelection(tile)
	})
}

// Shuffle reorders the board.
func (m *Manager) Shuffle(id string) (Snapshot, error) {
	return m.mutate(id, func(e *entry) {
		e.state = e.state.ShuffleDisplay()
	})
}

// Deselect clears the selection.
func (m *Manager) Deselect(id string) (Snapshot, error) {
	return m.mutate(id, func(e *entry) {
		e.state = e.state.DeselectAll()
	})
}

// Get returns the current snapshot without mutating anything.
func (m *Manager) Get(id string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.games[id]
	if !ok {
		return Snapshot{}, ErrNoGame
	}
	return m.snapshot(e), nil
}

// SubmitResult is what a guess submission reports back.
type SubmitResult struct {
	Snapshot
	IsCorrect bool           `json:"isCorrect"`
	Category  *game.Category `json:"category,omitempty"`
}

// Submit evaluates the current four-tile selection. The guess lands in the
// log and telemetry regardless of correctness; on the transition into a
// terminal state the statistics update and session completion fire, once.
func (m *Manager) Submit(id string) (SubmitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.games[id]
	if !ok {
		return SubmitResult{}, ErrNoGame
	}

	before := e.state
	after, isCorrect, category := before.SubmitGuess(before.SelectedTiles)
	if after == before {
		// Rejected no-op (not enough tiles, or game already over).
		return SubmitResult{Snapshot: m.snapshot(e)}, nil
	}
	e.state = after

	now := m.now()
	progress.Save(m.store, after, now)

	last := after.GuessHistory[len(after.GuessHistory)-1]
	g := telemetry.Guess{
		SessionID:        after.SessionID,
		PuzzleID:         after.Puzzle.ID,
		GuessedItems:     last.Items,
		ItemDifficulties: last.ItemDifficulties,
		IsCorrect:        last.IsCorrect,
		AttemptNumber:    last.AttemptNumber,
	}
	if category != nil {
		cid := category.ID
		g.CategoryID = &cid
	}
	m.recorder.SendGuess(g)
	m.recorder.SendUpdateSession(after.SessionID, after.AttemptsUsed, solvedIDs(after))

	if after.Status != game.StatusPlaying && !e.done {
		e.done = true
		m.recorder.SendCompleteSession(after.SessionID, after.AttemptsUsed, solvedIDs(after))
		if e.today {
			m.applyStats(after, now)
		}
	}

	return SubmitResult{Snapshot: m.snapshot(e), IsCorrect: isCorrect, Category: category}, nil
}

// applyStats folds a finished game into the durable statistics.
func (m *Manager) applyStats(st *game.GameState, now time.Time) {
	solved := make([]game.Difficulty, 0, len(st.SolvedGroups))
	for _, g := range st.SolvedGroups {
		solved = append(solved, g.Category.Difficulty)
	}
	stats.Apply(m.store, stats.PuzzleResult{
		PuzzleID:     st.Puzzle.ID,
		Date:         st.Puzzle.Date,
		Won:          st.Status == game.StatusWon,
		AttemptsUsed: st.AttemptsUsed,
	}, solved, now)
}

// Stats returns the enhanced statistics plus any consistency findings.
func (m *Manager) Stats() (stats.EnhancedStats, []string) {
	return stats.LoadEnhanced(m.store), stats.Validate(m.store)
}

// ClearProgress drops the saved record for a puzzle, forcing a fresh start
// on next open.
func (m *Manager) ClearProgress(puzzleID int) {
	progress.Clear(m.store, puzzleID)
}

func (m *Manager) mutate(id string, f func(*entry)) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.games[id]
	if !ok {
		return Snapshot{}, ErrNoGame
	}
	f(e)
	progress.Save(m.store, e.state, m.now())
	return m.snapshot(e), nil
}

func (m *Manager) snapshot(e *entry) Snapshot {
	return Snapshot{PlayID: e.id, State: e.state, Today: e.today}
}

func solvedIDs(st *game.GameState) []int {
	out := make([]int, 0, len(st.SolvedGroups))
	for _, g := range st.SolvedGroups {
		out = append(out, g.Category.ID)
	}
	return out
}

// playID returns a compact 16-hex-char identifier.
func playID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
