package web

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arashv/shogun-dojo/internal/dojo"
	"github.com/arashv/shogun-dojo/internal/duel"
	"github.com/arashv/shogun-dojo/internal/profile"
	"github.com/arashv/shogun-dojo/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	profiles := profile.NewService(st)
	engine := duel.NewEngine(profiles, duel.Config{
		DisableTimers: true,
		Rand:          rand.New(rand.NewSource(11)),
	})
	d := dojo.New(profiles, engine, rand.New(rand.NewSource(11)))

	return NewServer(d, st, nil, Config{DevMode: true})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDuelFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/duel/invite", map[string]any{
		"chatId":     "chat",
		"challenger": map[string]string{"id": "alice", "name": "Alice"},
		"target":     map[string]string{"id": "bob", "name": "Bob"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// A second invitation for the same pair conflicts.
	rec = doJSON(t, s, http.MethodPost, "/duel/invite", map[string]any{
		"chatId":     "chat",
		"challenger": map[string]string{"id": "bob"},
		"target":     map[string]string{"id": "alice"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/duel/submit", map[string]string{
		"playerId": "alice", "move": "strike",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/duel/submit", map[string]string{
		"playerId": "bob", "move": "scissors",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "resolved", res.Status)

	rec = doJSON(t, s, http.MethodGet, "/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []dojo.Row
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].ID)
	assert.Equal(t, 1.0, rows[0].Points)
}

func TestSubmitRejections(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/duel/submit", map[string]string{
		"playerId": "nobody", "move": "strike",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/duel/invite", map[string]any{
		"challenger": map[string]string{"id": "alice"},
		"target":     map[string]string{"id": "bob"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/duel/submit", map[string]string{
		"playerId": "alice", "move": "katana",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSelfDuelRejected(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/duel/invite", map[string]any{
		"challenger": map[string]string{"id": "alice"},
		"target":     map[string]string{"id": "alice"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHonorAndProfile(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/honor", map[string]any{
		"actorId": "actor",
		"target":  map[string]string{"id": "p1", "name": "Kenji"},
		"amount":  6,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/profile/p1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var card dojo.Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, 6.0, card.Points)
	assert.Equal(t, 5, card.Rank.Threshold)
}

func TestSelfHonorRejected(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/honor", map[string]any{
		"actorId": "p1",
		"target":  map[string]string{"id": "p1"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRewardRequiresAdminOutsideDevMode(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	profiles := profile.NewService(st)
	engine := duel.NewEngine(profiles, duel.Config{DisableTimers: true})
	d := dojo.New(profiles, engine, nil)
	s := NewServer(d, st, nil, Config{AdminToken: "secret"})

	rec := doJSON(t, s, http.MethodPost, "/reward", map[string]any{"amount": 2})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{"amount": 2}))
	req := httptest.NewRequest(http.MethodPost, "/reward", &buf)
	req.Header.Set("X-Admin-Token", "secret")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFlavorEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, kind := range []string{"welcome", "tea", "spirit", "intro", "rules"} {
		rec := doJSON(t, s, http.MethodGet, "/flavor/"+kind, nil)
		assert.Equal(t, http.StatusOK, rec.Code, kind)
	}
	rec := doJSON(t, s, http.MethodGet, "/flavor/noodles", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
