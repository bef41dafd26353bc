package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arashv/shogun-dojo/internal/dojo"
	"github.com/arashv/shogun-dojo/internal/duel"
)

// rejectionStatus maps engine rejections to HTTP statuses. Everything here
// is a recoverable rejection value, never a 5xx.
func rejectionStatus(err error) int {
	switch {
	case errors.Is(err, duel.ErrAlreadyActive), errors.Is(err, duel.ErrAlreadyChosen):
		return http.StatusConflict
	case errors.Is(err, duel.ErrNoActiveSession):
		return http.StatusNotFound
	case errors.Is(err, duel.ErrInvalidMove),
		errors.Is(err, duel.ErrSelfDuel),
		errors.Is(err, dojo.ErrSelfHonor),
		errors.Is(err, dojo.ErrUnknownClass):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type inviteRequest struct {
	ChatID     string           `json:"chatId"`
	Challenger duel.Participant `json:"challenger"`
	Target     duel.Participant `json:"target"`
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Challenger.ID == "" || req.Target.ID == "" {
		writeError(w, http.StatusBadRequest, "challenger and target required")
		return
	}

	session, err := s.dojo.Engine().Invite(r.Context(), req.ChatID, req.Challenger, req.Target)
	if err != nil {
		writeError(w, rejectionStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"sessionId": session.ID,
		"key":       session.Key,
		"deadline":  session.Deadline.Format(time.RFC3339),
	})
}

type submitRequest struct {
	PlayerID string `json:"playerId"`
	Move     string `json:"move"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId required")
		return
	}

	session, err := s.dojo.Engine().Submit(r.Context(), req.PlayerID, req.Move)
	if err != nil {
		writeError(w, rejectionStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": session.ID,
		"status":    session.Status().String(),
	})
}

type cancelRequest struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !decode(w, r, &req) {
		return
	}
	cancelled := s.dojo.Engine().Cancel(req.Key, req.Reason)
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

type honorRequest struct {
	ActorID string           `json:"actorId"`
	Target  duel.Participant `json:"target"`
	Amount  float64          `json:"amount"`
}

func (s *Server) handleHonor(w http.ResponseWriter, r *http.Request) {
	var req honorRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.dojo.Honor(r.Context(), req.ActorID, req.Target, req.Amount)
	if err != nil {
		writeError(w, rejectionStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type seppukuRequest struct {
	Target duel.Participant `json:"target"`
	Amount float64          `json:"amount"`
}

func (s *Server) handleSeppuku(w http.ResponseWriter, r *http.Request) {
	var req seppukuRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.dojo.Seppuku(r.Context(), req.Target, req.Amount)
	if err != nil {
		writeError(w, rejectionStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type rewardRequest struct {
	Amount float64 `json:"amount"`
}

func (s *Server) handleReward(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.dojo.BulkReward(r.Context(), req.Amount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type classRequest struct {
	Player duel.Participant `json:"player"`
	Class  string           `json:"class"`
}

func (s *Server) handleClass(w http.ResponseWriter, r *http.Request) {
	var req classRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := s.dojo.ChooseClass(r.Context(), req.Player, req.Class)
	if err != nil {
		writeError(w, rejectionStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playerId": p.ID,
		"class":    p.Class,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.dojo.Leaderboard(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "player ID required")
		return
	}
	card, err := s.dojo.ProfileCard(r.Context(), duel.Participant{ID: playerID, Name: r.URL.Query().Get("name")})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDuelHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	duels, err := s.store.ListDuels(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, duels)
}

func (s *Server) handleActiveDuels(w http.ResponseWriter, r *http.Request) {
	type activeDuel struct {
		SessionID  string           `json:"sessionId"`
		Key        string           `json:"key"`
		Challenger duel.Participant `json:"challenger"`
		Target     duel.Participant `json:"target"`
		Deadline   time.Time        `json:"deadline"`
		Status     string           `json:"status"`
	}

	sessions := s.dojo.Engine().Registry().Active()
	out := make([]activeDuel, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, activeDuel{
			SessionID:  sess.ID,
			Key:        sess.Key,
			Challenger: sess.Challenger,
			Target:     sess.Target,
			Deadline:   sess.Deadline,
			Status:     sess.Status().String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFlavor(w http.ResponseWriter, r *http.Request) {
	var line string
	switch chi.URLParam(r, "kind") {
	case "welcome":
		line = s.dojo.Welcome()
	case "tea":
		line = s.dojo.Tea()
	case "spirit":
		line = s.dojo.Spirit()
	case "intro":
		line = s.dojo.Intro()
	case "rules":
		line = s.dojo.Rules()
	default:
		writeError(w, http.StatusNotFound, "unknown flavor")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"line": line})
}
