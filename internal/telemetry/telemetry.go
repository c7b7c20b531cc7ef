// internal/telemetry/telemetry.go
//
// Best-effort gameplay analytics. The game core hands guess records and
// session lifecycle updates to a Recorder and moves on; delivery runs on a
// single background worker, failures are logged and swallowed, and a full
// queue drops rather than blocks. Local game state never waits on, or rolls
// back for, anything in this package.

package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/frisconnections/go-server/internal/game"
)

// Guess is one submitted guess, correct or not.
type Guess struct {
	SessionID        string            `json:"session_id"`
	PuzzleID         int               `json:"puzzle_id"`
	GuessedItems     []string          `json:"guessed_items"`
	ItemDifficulties []game.Difficulty `json:"item_difficulties"`
	IsCorrect        bool              `json:"is_correct"`
	CategoryID       *int              `json:"category_id,omitempty"`
	AttemptNumber    int               `json:"attempt_number"`
}

// Session is the lifecycle record for one anonymous play session of one
// puzzle.
type Session struct {
	SessionID        string    `json:"session_id"`
	PuzzleID         int       `json:"puzzle_id"`
	Completed        bool      `json:"completed"`
	AttemptsUsed     int       `json:"attempts_used"`
	SolvedCategories []int     `json:"solved_categories"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time,omitempty"`
}

// Sink is where telemetry lands. Implementations may write SQL, HTTP, or
// nothing at all; errors they return are logged by the Recorder and
// otherwise ignored.
type Sink interface {
	CreateSession(ctx context.Context, s Session) error
	UpdateSession(ctx context.Context, sessionID string, attemptsUsed int, solvedCategories []int) error
	CompleteSession(ctx context.Context, sessionID string, attemptsUsed int, solvedCategories []int) error
	RecordGuess(ctx context.Context, g Guess) error
}

// Noop discards everything. Used in tests and offline play.
type Noop struct{}

func (Noop) CreateSession(context.Context, Session) error              { return nil }
func (Noop) UpdateSession(context.Context, string, int, []int) error   { return nil }
func (Noop) CompleteSession(context.Context, string, int, []int) error { return nil }
func (Noop) RecordGuess(context.Context, Guess) error                  { return nil }

// event is one queued delivery.
type event struct {
	run func(ctx context.Context) error
	tag string
}

// Recorder decouples gameplay from the sink: Send* methods enqueue and
// return immediately; one worker goroutine drains the queue. Close stops
// the worker after draining what was already queued.
type Recorder struct {
	sink    Sink
	queue   chan event
	done    chan struct{}
	timeout time.Duration
	once    sync.Once
}

// NewRecorder starts a Recorder over sink with the given queue capacity.
func NewRecorder(sink Sink, capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 64
	}
	r := &Recorder{
		sink:    sink,
		queue:   make(chan event, capacity),
		done:    make(chan struct{}),
		timeout: 5 * time.Second,
	}
	go r.loop()
	return r
}

func (r *Recorder) loop() {
	defer close(r.done)
	for ev := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := ev.run(ctx); err != nil {
			log.Warn().Err(err).Str("event", ev.tag).Msg("telemetry delivery failed")
		}
		cancel()
	}
}

// enqueue adds an event without ever blocking the caller; when the queue is
// full the event is dropped and logged.
func (r *Recorder) enqueue(tag string, run func(ctx context.Context) error) {
	select {
	case r.queue <- event{run: run, tag: tag}:
	default:
		log.Warn().Str("event", tag).Msg("telemetry queue full, dropping")
	}
}

// SendCreateSession enqueues a session-created record.
func (r *Recorder) SendCreateSession(s Session) {
	r.enqueue("create_session", func(ctx context.Context) error {
		return r.sink.CreateSession(ctx, s)
	})
}

// SendUpdateSession enqueues a progress update.
func (r *Recorder) SendUpdateSession(sessionID string, attemptsUsed int, solvedCategories []int) {
	r.enqueue("update_session", func(ctx context.Context) error {
		return r.sink.UpdateSession(ctx, sessionID, attemptsUsed, solvedCategories)
	})
}

// SendCompleteSession enqueues the terminal session update.
func (r *Recorder) SendCompleteSession(sessionID string, attemptsUsed int, solvedCategories []int) {
	r.enqueue("complete_session", func(ctx context.Context) error {
		return r.sink.CompleteSession(ctx, sessionID, attemptsUsed, solvedCategories)
	})
}

// SendGuess enqueues one guess record.
func (r *Recorder) SendGuess(g Guess) {
	r.enqueue("record_guess", func(ctx context.Context) error {
		return r.sink.RecordGuess(ctx, g)
	})
}

// Close drains queued events and stops the worker. Safe to call more than
// once; later calls just wait for the drain.
func (r *Recorder) Close() {
	r.once.Do(func() { close(r.queue) })
	<-r.done
}
