// internal/puzzle/store.go
//
// SQLite-backed Provider plus the daily rotation job.
//
// Puzzles live in two tables: puzzles (id, date, puzzle_number, published)
// and categories (id, puzzle_id, name, difficulty, items-as-JSON).
// AdvanceDaily assigns an unpublished puzzle to today's date; the pick among
// candidates is deterministic, HMAC(salt, date-key) mod the candidate count,
// so every replica of the server agrees on the day's puzzle without
// coordination.

package puzzle

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/frisconnections/go-server/internal/game"
)

// SQLStore is the database-backed Provider.
type SQLStore struct {
	db   *sql.DB
	salt string
}

// NewSQLStore constructs a Provider over db. salt seeds the deterministic
// daily pick.
func NewSQLStore(db *sql.DB, salt string) *SQLStore {
	return &SQLStore{db: db, salt: salt}
}

func (s *SQLStore) Today(ctx context.Context) (*game.Puzzle, error) {
	return s.byClause(ctx, `date=? AND published=1`, DateKey(time.Now()))
}

func (s *SQLStore) ByNumber(ctx context.Context, number int) (*game.Puzzle, error) {
	return s.byClause(ctx, `puzzle_number=?`, number)
}

// byClause loads one puzzle and its categories, validates the shape, and
// maps sql.ErrNoRows to ErrNotFound.
func (s *SQLStore) byClause(ctx context.Context, where string, arg any) (*game.Puzzle, error) {
	var p game.Puzzle
	err := s.db.QueryRowContext(ctx,
		`SELECT id, date, puzzle_number FROM puzzles WHERE `+where, arg,
	).Scan(&p.ID, &p.Date, &p.PuzzleNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, difficulty, items
        FROM categories
        WHERE puzzle_id=?
        ORDER BY difficulty ASC`, p.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c game.Category
		var items string
		if err := rows.Scan(&c.ID, &c.Name, &c.Difficulty, &items); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(items), &c.Items); err != nil {
			return nil, fmt.Errorf("puzzle %d category %d: %w", p.ID, c.ID, err)
		}
		p.Categories = append(p.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// pickIndex returns a deterministic index for a date key using
// HMAC(salt, key) % n.
func pickIndex(key, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(key))
	sum := h.Sum(nil)
	// first 8 bytes to uint64 for modulus distribution
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n))
}

// AdvanceDaily publishes a puzzle for now's date. No-op when one is already
// assigned. Among unpublished candidates the pick is HMAC-deterministic; the
// assigned puzzle gets the next puzzle_number. Returns the published puzzle
// id, or ErrNotFound when the content pool is exhausted.
func (s *SQLStore) AdvanceDaily(ctx context.Context, now time.Time) (int, error) {
	today := DateKey(now)

	var existing int
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM puzzles WHERE date=? AND published=1`, today,
	).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM puzzles WHERE published=0 ORDER BY id ASC`,
	)
	if err != nil {
		return 0, err
	}
	var candidates []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		candidates = append(candidates, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, ErrNotFound
	}

	chosen := candidates[pickIndex(today, s.salt, len(candidates))]

	var maxNumber sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(puzzle_number) FROM puzzles WHERE published=1`,
	).Scan(&maxNumber); err != nil {
		return 0, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE puzzles SET date=?, puzzle_number=?, published=1 WHERE id=?`,
		today, maxNumber.Int64+1, chosen,
	)
	if err != nil {
		return 0, err
	}
	return chosen, nil
}

// Seed inserts a puzzle (and its categories) as published content. Used to
// bootstrap an empty database with the sample puzzle.
func (s *SQLStore) Seed(ctx context.Context, p *game.Puzzle) error {
	if err := Validate(p); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO puzzles (id, date, puzzle_number, published) VALUES (?,?,?,1)`,
		p.ID, p.Date, p.PuzzleNumber,
	); err != nil {
		return err
	}
	for _, c := range p.Categories {
		items, err := json.Marshal(c.Items)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (id, puzzle_id, name, difficulty, items) VALUES (?,?,?,?,?)`,
			c.ID, p.ID, c.Name, c.Difficulty, string(items),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Count reports how many puzzles exist, for the seeding decision and
// diagnostics.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM puzzles`).Scan(&n)
	return n, err
}

var _ Provider = (*SQLStore)(nil)
