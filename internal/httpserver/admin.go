// internal/httpserver/admin.go
//
// Admin surface: daily puzzle rotation, behind an HS256 admin token.
// The deploy cron calls POST /admin/advance-puzzle once per day with a JWT
// signed by ADMIN_JWT_SECRET carrying {"role":"admin"}.

package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/frisconnections/go-server/internal/puzzle"
)

// mountAdmin registers the gated /admin routes.
func (s *Server) mountAdmin() {
	s.r.With(requireAdmin).Post("/admin/advance-puzzle", s.handleAdvancePuzzle)
}

// requireAdmin enforces a valid admin JWT on the request.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(getEnv("ADMIN_JWT_SECRET", "dev_secret_change_me")), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
			return
		}
		if role, _ := claims["role"].(string); role != "admin" {
			http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts a bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// handleAdvancePuzzle assigns a puzzle to today's date. Idempotent within a
// day; 409 when the unpublished pool is empty.
func (s *Server) handleAdvancePuzzle(w http.ResponseWriter, r *http.Request) {
	id, err := s.advancer.AdvanceDaily(r.Context(), time.Now())
	if errors.Is(err, puzzle.ErrNotFound) {
		http.Error(w, `{"error":"no_puzzle_available"}`, http.StatusConflict)
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("advance daily puzzle")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"success": true, "newPuzzleId": id})
}
