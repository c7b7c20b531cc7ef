package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frisconnections/go-server/internal/game"
	"github.com/frisconnections/go-server/internal/kv"
	"github.com/frisconnections/go-server/internal/play"
	"github.com/frisconnections/go-server/internal/puzzle"
	"github.com/frisconnections/go-server/internal/telemetry"
)

// fakeAdvancer is a canned Advancer for the admin route tests.
type fakeAdvancer struct {
	id  int
	err error
}

func (f *fakeAdvancer) AdvanceDaily(context.Context, time.Time) (int, error) {
	return f.id, f.err
}

// newTestServer spins up a Server over in-memory everything. The sample
// puzzle is dated today so play sessions count as today's game.
func newTestServer(t *testing.T, adv Advancer) (*httptest.Server, *puzzle.Memory) {
	t.Helper()
	game.SeedShuffle(7)

	today := puzzle.Sample()
	today.Date = puzzle.DateKey(time.Now())
	provider := &puzzle.Memory{Puzzles: []*game.Puzzle{today}, Date: today.Date}

	rec := telemetry.NewRecorder(telemetry.Noop{}, 16)
	t.Cleanup(rec.Close)
	manager := play.NewManager(provider, kv.NewMemory(), rec, nil)

	srv := httptest.NewServer(New(provider, manager, adv).Router())
	t.Cleanup(srv.Close)
	return srv, provider
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func postJSON(t *testing.T, url string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	res, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestHealthAndRoot(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var health map[string]bool
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &health))
	assert.True(t, health["ok"])

	var root map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/", &root))
	assert.Equal(t, "frisconnections-go", root["service"])
}

func TestPuzzleToday(t *testing.T) {
	srv, provider := newTestServer(t, nil)

	var res struct {
		Puzzle *game.Puzzle `json:"puzzle"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/puzzle/today", &res))
	require.NotNil(t, res.Puzzle)
	assert.Len(t, res.Puzzle.Categories, 4)

	t.Run("no puzzle assigned is a neutral null", func(t *testing.T) {
		provider.Date = "1999-01-01"
		var res struct {
			Puzzle *game.Puzzle `json:"puzzle"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/puzzle/today", &res))
		assert.Nil(t, res.Puzzle)
	})
}

func TestPuzzleByNumber(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var res struct {
		Puzzle *game.Puzzle `json:"puzzle"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/puzzle/1", &res))
	require.NotNil(t, res.Puzzle)
	assert.Equal(t, 1, res.Puzzle.PuzzleNumber)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/puzzle/99", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/puzzle/abc", nil))
}

func TestPlayFlow(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var opened struct {
		Available bool          `json:"available"`
		Game      play.Snapshot `json:"game"`
	}
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/play/new", map[string]int{"number": 0}, &opened))
	require.True(t, opened.Available)
	id := opened.Game.PlayID
	require.NotEmpty(t, id)

	base := srv.URL + "/play/" + id

	// Select the yellow group.
	var snap play.Snapshot
	for _, tile := range []string{"Twin Peaks", "Nob Hill", "Russian Hill", "Telegraph Hill"} {
		require.Equal(t, http.StatusOK, postJSON(t, base+"/select", map[string]string{"tile": tile}, &snap))
	}
	require.Len(t, snap.State.SelectedTiles, 4)

	var submitted play.SubmitResult
	require.Equal(t, http.StatusOK, postJSON(t, base+"/submit", nil, &submitted))
	assert.True(t, submitted.IsCorrect)
	require.NotNil(t, submitted.Category)
	assert.Equal(t, "SF HILLS", submitted.Category.Name)
	assert.Zero(t, submitted.State.AttemptsUsed, "correct guesses are free")

	t.Run("get reflects the solve", func(t *testing.T) {
		var got play.Snapshot
		require.Equal(t, http.StatusOK, getJSON(t, base, &got))
		require.Len(t, got.State.SolvedGroups, 1)
		assert.Empty(t, got.State.SelectedTiles)
	})

	t.Run("submit without a full selection is a no-op", func(t *testing.T) {
		var res play.SubmitResult
		require.Equal(t, http.StatusOK, postJSON(t, base+"/submit", nil, &res))
		assert.False(t, res.IsCorrect)
		assert.Len(t, res.State.GuessHistory, 1)
	})

	t.Run("shuffle and deselect", func(t *testing.T) {
		var res play.Snapshot
		require.Equal(t, http.StatusOK, postJSON(t, base+"/select", map[string]string{"tile": "Bison"}, &res))
		require.Len(t, res.State.SelectedTiles, 1)
		require.Equal(t, http.StatusOK, postJSON(t, base+"/shuffle", nil, &res))
		assert.Empty(t, res.State.SelectedTiles, "shuffle clears the selection")
		assert.Len(t, res.State.ShuffledItems, 16)

		require.Equal(t, http.StatusOK, postJSON(t, base+"/select", map[string]string{"tile": "Bison"}, &res))
		require.Equal(t, http.StatusOK, postJSON(t, base+"/deselect", nil, &res))
		assert.Empty(t, res.State.SelectedTiles)
	})

	t.Run("stats endpoint", func(t *testing.T) {
		var res struct {
			Stats  json.RawMessage `json:"stats"`
			Issues []string        `json:"issues"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, base+"/stats", &res))
		assert.Empty(t, res.Issues)
	})

	t.Run("select without a tile is a 400", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, postJSON(t, base+"/select", map[string]string{}, nil))
	})

	t.Run("unknown game id is a 404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/play/deadbeef00000000", nil))
		assert.Equal(t, http.StatusNotFound, postJSON(t, srv.URL+"/play/deadbeef00000000/submit", nil, nil))
	})
}

func TestPlayNewNoPuzzle(t *testing.T) {
	srv, provider := newTestServer(t, nil)
	provider.Date = "1999-01-01"

	var res struct {
		Available bool `json:"available"`
	}
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/play/new", map[string]int{"number": 0}, &res))
	assert.False(t, res.Available)
}

func TestNotFoundIsJSON(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	res, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	var body struct {
		Error string `json:"error"`
		Path  string `json:"path"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "not_found", body.Error)
	assert.Equal(t, "/nope", body.Path)
}

func adminToken(t *testing.T, secret, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func postWithAuth(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func TestAdminAdvancePuzzle(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "test_secret")
	adv := &fakeAdvancer{id: 42}
	srv, _ := newTestServer(t, adv)
	url := srv.URL + "/admin/advance-puzzle"

	t.Run("missing token", func(t *testing.T) {
		res := postWithAuth(t, url, "")
		defer res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("bad signature", func(t *testing.T) {
		res := postWithAuth(t, url, adminToken(t, "wrong_secret", "admin"))
		defer res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("wrong role", func(t *testing.T) {
		res := postWithAuth(t, url, adminToken(t, "test_secret", "viewer"))
		defer res.Body.Close()
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		res := postWithAuth(t, url, adminToken(t, "test_secret", "admin"))
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		var body struct {
			Success     bool `json:"success"`
			NewPuzzleID int  `json:"newPuzzleId"`
		}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.Equal(t, 42, body.NewPuzzleID)
	})

	t.Run("empty pool is a conflict", func(t *testing.T) {
		adv.err = puzzle.ErrNotFound
		res := postWithAuth(t, url, adminToken(t, "test_secret", "admin"))
		defer res.Body.Close()
		assert.Equal(t, http.StatusConflict, res.StatusCode)
	})

	t.Run("storage failure is a 500", func(t *testing.T) {
		adv.err = errors.New("db down")
		res := postWithAuth(t, url, adminToken(t, "test_secret", "admin"))
		defer res.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	})
}

func TestAdminRoutesDisabledWithoutAdvancer(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	res := postWithAuth(t, srv.URL+"/admin/advance-puzzle", "")
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
