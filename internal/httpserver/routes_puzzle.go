// internal/httpserver/routes_puzzle.go
//
// Puzzle content endpoints.
//   - GET /puzzle/today    → today's puzzle, or {"puzzle":null} when none is
//                            assigned (neutral state, still a 200).
//   - GET /puzzle/{number} → a past puzzle by number, 404 when unknown.

package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/frisconnections/go-server/internal/game"
	"github.com/frisconnections/go-server/internal/puzzle"
)

type puzzleRes struct {
	Puzzle *game.Puzzle `json:"puzzle"`
}

// mountPuzzle registers the /puzzle routes.
func (s *Server) mountPuzzle() {
	s.r.Route("/puzzle", func(r chi.Router) {
		r.Get("/today", s.handleToday)
		r.Get("/{number}", s.handleByNumber)
	})
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	p, err := s.provider.Today(r.Context())
	if errors.Is(err, puzzle.ErrNotFound) {
		writeJSON(w, puzzleRes{Puzzle: nil})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load today's puzzle")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, puzzleRes{Puzzle: p})
}

func (s *Server) handleByNumber(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || n <= 0 {
		http.Error(w, `{"error":"invalid_puzzle_number"}`, http.StatusBadRequest)
		return
	}
	p, err := s.provider.ByNumber(r.Context(), n)
	if errors.Is(err, puzzle.ErrNotFound) {
		http.Error(w, `{"error":"puzzle_not_found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Int("number", n).Msg("load puzzle")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, puzzleRes{Puzzle: p})
}
