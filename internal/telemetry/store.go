// internal/telemetry/store.go
//
// SQLite-backed Sink. Mirrors the anonymous_sessions / anonymous_guesses
// tables; list-valued columns are stored as JSON text.

package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// SQLSink writes telemetry rows to the server database.
type SQLSink struct{ db *sql.DB }

// NewSQLSink constructs a Sink over db.
func NewSQLSink(db *sql.DB) *SQLSink { return &SQLSink{db: db} }

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func (s *SQLSink) CreateSession(ctx context.Context, sess Session) error {
	start := sess.StartTime
	if start.IsZero() {
		start = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO anonymous_sessions
            (session_id, puzzle_id, completed, attempts_used, solved_categories, start_time)
        VALUES (?, ?, ?, ?, ?, ?)`,
		sess.SessionID, sess.PuzzleID, sess.Completed, sess.AttemptsUsed,
		jsonText(sess.SolvedCategories), start.Format(time.RFC3339),
	)
	return err
}

func (s *SQLSink) UpdateSession(ctx context.Context, sessionID string, attemptsUsed int, solvedCategories []int) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE anonymous_sessions
        SET attempts_used=?, solved_categories=?
        WHERE session_id=?`,
		attemptsUsed, jsonText(solvedCategories), sessionID,
	)
	return err
}

func (s *SQLSink) CompleteSession(ctx context.Context, sessionID string, attemptsUsed int, solvedCategories []int) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE anonymous_sessions
        SET completed=1, attempts_used=?, solved_categories=?, end_time=?
        WHERE session_id=?`,
		attemptsUsed, jsonText(solvedCategories), time.Now().UTC().Format(time.RFC3339), sessionID,
	)
	return err
}

func (s *SQLSink) RecordGuess(ctx context.Context, g Guess) error {
	var categoryID any
	if g.CategoryID != nil {
		categoryID = *g.CategoryID
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO anonymous_guesses
            (session_id, puzzle_id, guessed_items, item_difficulties, is_correct, category_id, attempt_number)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.SessionID, g.PuzzleID, jsonText(g.GuessedItems), jsonText(g.ItemDifficulties),
		g.IsCorrect, categoryID, g.AttemptNumber,
	)
	return err
}

// GuessCount reports how many guesses a session has recorded, for
// diagnostics endpoints.
func (s *SQLSink) GuessCount(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM anonymous_guesses WHERE session_id=?`, sessionID,
	).Scan(&n)
	return n, err
}

var _ Sink = (*SQLSink)(nil)
