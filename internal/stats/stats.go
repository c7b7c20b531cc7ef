// internal/stats/stats.go
//
// Longitudinal player statistics, updated exactly once per finished game of
// today's puzzle. Two records live in the key-value store: the compact
// UserStats (streaks and win counts) and EnhancedStats (per-puzzle history
// plus a per-difficulty breakdown).
//
// Corrupt stored data reads as zero-valued stats; this layer never surfaces
// a parse failure to the game.

package stats

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/frisconnections/go-server/internal/game"
	"github.com/frisconnections/go-server/internal/kv"
)

const (
	statsKey         = "frisconnections-stats"
	enhancedStatsKey = "frisconnections-enhanced-stats"
)

// UserStats are the cross-puzzle headline numbers.
// Invariants: GamesWon ≤ GamesPlayed, CurrentStreak ≤ MaxStreak.
type UserStats struct {
	GamesPlayed    int    `json:"gamesPlayed"`
	GamesWon       int    `json:"gamesWon"`
	CurrentStreak  int    `json:"currentStreak"`
	MaxStreak      int    `json:"maxStreak"`
	LastPlayedDate string `json:"lastPlayedDate"` // YYYY-MM-DD, empty if never played
}

// PuzzleResult is one finished puzzle's outcome in the history list.
type PuzzleResult struct {
	PuzzleID     int    `json:"puzzleId"`
	Date         string `json:"date"`
	Won          bool   `json:"won"`
	AttemptsUsed int    `json:"attemptsUsed"`
}

// Line is a won/total counter pair for one difficulty color.
type Line struct {
	Won   int `json:"won"`
	Total int `json:"total"`
}

// Breakdown counts solved categories per difficulty color.
type Breakdown struct {
	Yellow Line `json:"yellow"`
	Green  Line `json:"green"`
	Blue   Line `json:"blue"`
	Purple Line `json:"purple"`
}

// line returns the counter pair for a difficulty.
func (b *Breakdown) line(d game.Difficulty) *Line {
	switch d {
	case game.Green:
		return &b.Green
	case game.Blue:
		return &b.Blue
	case game.Purple:
		return &b.Purple
	default:
		return &b.Yellow
	}
}

// EnhancedStats extends UserStats with per-puzzle history (id-descending,
// deduplicated) and the difficulty breakdown.
type EnhancedStats struct {
	UserStats
	PuzzleHistory       []PuzzleResult `json:"puzzleHistory"`
	DifficultyBreakdown Breakdown      `json:"difficultyBreakdown"`
	LastUpdated         time.Time      `json:"lastUpdated"`
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

func previousDate(day string) string {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return ""
	}
	return dateKey(t.AddDate(0, 0, -1))
}

// Update applies one finished game to the headline stats. A win on the
// calendar day right after LastPlayedDate extends the streak, a win after a
// gap restarts it at 1, and any loss resets it to 0. MaxStreak never
// decreases.
func (s *UserStats) Update(won bool, now time.Time) {
	today := dateKey(now)
	s.GamesPlayed++
	if won {
		s.GamesWon++
		if s.LastPlayedDate == previousDate(today) {
			s.CurrentStreak++
		} else {
			s.CurrentStreak = 1
		}
		if s.CurrentStreak > s.MaxStreak {
			s.MaxStreak = s.CurrentStreak
		}
	} else {
		s.CurrentStreak = 0
	}
	s.LastPlayedDate = today
}

// Record applies one finished game to the enhanced stats: headline update,
// history upsert, and one total (plus one won, on a winning game) per solved
// category's difficulty.
func (s *EnhancedStats) Record(result PuzzleResult, solved []game.Difficulty, now time.Time) {
	s.Update(result.Won, now)
	s.upsertHistory(result)
	for _, d := range solved {
		line := s.DifficultyBreakdown.line(d)
		line.Total++
		if result.Won {
			line.Won++
		}
	}
	s.LastUpdated = now
}

// LoadUserStats reads the headline stats, zero-valued when absent or corrupt.
func LoadUserStats(st kv.Store) UserStats {
	var s UserStats
	if raw, ok := st.Get(statsKey); ok {
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return UserStats{}
		}
	}
	return s
}

// SaveUserStats writes the headline stats.
func SaveUserStats(st kv.Store, s UserStats) {
	if b, err := json.Marshal(s); err == nil {
		st.Set(statsKey, string(b))
	}
}

// LoadEnhanced reads the enhanced stats, zero-valued when absent or corrupt.
func LoadEnhanced(st kv.Store) EnhancedStats {
	var s EnhancedStats
	if raw, ok := st.Get(enhancedStatsKey); ok {
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return EnhancedStats{}
		}
	}
	if s.PuzzleHistory == nil {
		s.PuzzleHistory = []PuzzleResult{}
	}
	return s
}

// SaveEnhanced writes the enhanced stats.
func SaveEnhanced(st kv.Store, s EnhancedStats) {
	if b, err := json.Marshal(s); err == nil {
		st.Set(enhancedStatsKey, string(b))
	}
}

// Apply records one finished game against both stored stats records.
func Apply(st kv.Store, result PuzzleResult, solved []game.Difficulty, now time.Time) {
	u := LoadUserStats(st)
	u.Update(result.Won, now)
	SaveUserStats(st, u)

	e := LoadEnhanced(st)
	e.Record(result, solved, now)
	// Keep the embedded headline numbers aligned with the basic record.
	e.UserStats = u
	SaveEnhanced(st, e)
}

// upsertHistory replaces any entry with the same puzzle id and keeps the
// list sorted most-recent-first by id.
func (s *EnhancedStats) upsertHistory(result PuzzleResult) {
	kept := s.PuzzleHistory[:0]
	for _, r := range s.PuzzleHistory {
		if r.PuzzleID != result.PuzzleID {
			kept = append(kept, r)
		}
	}
	s.PuzzleHistory = append(kept, result)
	sort.Slice(s.PuzzleHistory, func(i, j int) bool {
		return s.PuzzleHistory[i].PuzzleID > s.PuzzleHistory[j].PuzzleID
	})
}

// Validate runs the read-only consistency check over the stored stats and
// returns human-readable issue descriptions. It reports, it never repairs.
func Validate(st kv.Store) []string {
	var issues []string
	u := LoadUserStats(st)
	if u.GamesPlayed < 0 || u.GamesWon < 0 || u.CurrentStreak < 0 || u.MaxStreak < 0 {
		issues = append(issues, "stats: negative counter")
	}
	if u.GamesWon > u.GamesPlayed {
		issues = append(issues, fmt.Sprintf("stats: gamesWon %d exceeds gamesPlayed %d", u.GamesWon, u.GamesPlayed))
	}
	if u.CurrentStreak > u.MaxStreak {
		issues = append(issues, fmt.Sprintf("stats: currentStreak %d exceeds maxStreak %d", u.CurrentStreak, u.MaxStreak))
	}

	e := LoadEnhanced(st)
	for _, d := range []game.Difficulty{game.Yellow, game.Green, game.Blue, game.Purple} {
		line := e.DifficultyBreakdown.line(d)
		if line.Won < 0 || line.Total < 0 {
			issues = append(issues, fmt.Sprintf("breakdown: negative counter in %s", d.Name()))
		}
		if line.Won > line.Total {
			issues = append(issues, fmt.Sprintf("breakdown: %s won %d exceeds total %d", d.Name(), line.Won, line.Total))
		}
	}
	seen := make(map[int]bool, len(e.PuzzleHistory))
	for _, r := range e.PuzzleHistory {
		if seen[r.PuzzleID] {
			issues = append(issues, fmt.Sprintf("history: duplicate puzzle id %d", r.PuzzleID))
		}
		seen[r.PuzzleID] = true
	}
	return issues
}
