package web

import (
	"net/http"
	"time"

	"github.com/arashv/shogun-dojo/internal/store"
)

func (s *Server) handlePushKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": s.push.PublicKey()})
}

type pushSubscribeRequest struct {
	PlayerID     string `json:"playerId"`
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
}

func (s *Server) handlePushSubscribe(w http.ResponseWriter, r *http.Request) {
	var req pushSubscribeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == "" || req.Subscription.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "playerId and subscription endpoint required")
		return
	}

	sub := &store.PushSubscription{
		PlayerID:  req.PlayerID,
		Endpoint:  req.Subscription.Endpoint,
		P256dh:    req.Subscription.Keys.P256dh,
		Auth:      req.Subscription.Keys.Auth,
		CreatedAt: time.Now(),
	}
	if err := s.store.SavePushSubscription(r.Context(), sub); err != nil {
		s.log.WithError(err).Error("failed to save push subscription")
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

type pushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func (s *Server) handlePushUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req pushUnsubscribeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint required")
		return
	}
	if err := s.store.DeletePushSubscription(r.Context(), req.Endpoint); err != nil {
		s.log.WithError(err).Error("failed to delete push subscription")
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}
