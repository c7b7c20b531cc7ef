// internal/httpserver/routes_play.go
//
// Server-hosted play sessions.
//   - POST /play/new            → open today's puzzle (or ?number= replay)
//   - GET  /play/{id}           → current snapshot
//   - POST /play/{id}/select    → toggle one tile
//   - POST /play/{id}/submit    → submit the current selection
//   - POST /play/{id}/shuffle   → reshuffle unsolved tiles
//   - POST /play/{id}/deselect  → clear selection
//   - GET  /play/{id}/stats     → enhanced statistics + consistency findings
//
// Invalid game moves are not HTTP errors: the engine treats them as no-ops
// and the handler returns the unchanged snapshot.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/frisconnections/go-server/internal/play"
)

// mountPlay registers the /play routes.
func (s *Server) mountPlay() {
	s.r.Route("/play", func(r chi.Router) {
		r.Post("/new", s.handlePlayNew)
		r.Get("/{id}", s.handlePlayGet)
		r.Post("/{id}/select", s.handlePlaySelect)
		r.Post("/{id}/submit", s.handlePlaySubmit)
		r.Post("/{id}/shuffle", s.handlePlayShuffle)
		r.Post("/{id}/deselect", s.handlePlayDeselect)
		r.Get("/{id}/stats", s.handlePlayStats)
	})
}

type playNewReq struct {
	Number int `json:"number"` // 0 = today's puzzle
}

func (s *Server) handlePlayNew(w http.ResponseWriter, r *http.Request) {
	var req playNewReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	snap, err := s.manager.Open(r.Context(), req.Number)
	if errors.Is(err, play.ErrNoPuzzle) {
		// Neutral informational state, not a failure.
		writeJSON(w, map[string]any{"available": false})
		return
	}
	if err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"available": true, "game": snap})
}

func (s *Server) handlePlayGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

type selectReq struct {
	Tile string `json:"tile"`
}

func (s *Server) handlePlaySelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Tile == "" {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	snap, err := s.manager.Toggle(chi.URLParam(r, "id"), req.Tile)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handlePlaySubmit(w http.ResponseWriter, r *http.Request) {
	res, err := s.manager.Submit(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handlePlayShuffle(w http.ResponseWriter, r *http.Request) {
	snap, err := s.manager.Shuffle(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handlePlayDeselect(w http.ResponseWriter, r *http.Request) {
	snap, err := s.manager.Deselect(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handlePlayStats(w http.ResponseWriter, r *http.Request) {
	if _, err := s.manager.Get(chi.URLParam(r, "id")); err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	enhanced, issues := s.manager.Stats()
	writeJSON(w, map[string]any{"stats": enhanced, "issues": issues})
}
