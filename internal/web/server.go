package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/arashv/shogun-dojo/internal/dojo"
	"github.com/arashv/shogun-dojo/internal/duel"
	"github.com/arashv/shogun-dojo/internal/push"
	"github.com/arashv/shogun-dojo/internal/store"
)

// Server is the HTTP adapter over the dojo: liveness probe, read views, the
// announcement stream, push subscription management and the command surface
// a chat transport (or the dev tooling) drives duels through.
type Server struct {
	log    *logrus.Entry
	router *chi.Mux
	dojo   *dojo.Service
	store  store.Store
	push   *push.Service // nil when web push is not configured
	sse    *SSEHub

	adminToken string
	devMode    bool
}

// Config holds server configuration.
type Config struct {
	DevMode bool
	// AdminToken guards the bulk reward endpoint. Empty disables it outside
	// dev mode.
	AdminToken string
}

// NewServer creates the HTTP server. pushSvc may be nil.
func NewServer(d *dojo.Service, st store.Store, pushSvc *push.Service, cfg Config) *Server {
	s := &Server{
		log:        logrus.WithField("component", "web"),
		router:     chi.NewRouter(),
		dojo:       d,
		store:      st,
		push:       pushSvc,
		sse:        NewSSEHub(),
		adminToken: cfg.AdminToken,
		devMode:    cfg.DevMode,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// Liveness, kept dead simple so platform probes stay cheap.
	r.Get("/", s.handleHome)
	r.Get("/healthz", s.handleHealth)

	// Read views.
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/profile/{playerID}", s.handleProfile)
	r.Get("/duels", s.handleDuelHistory)
	r.Get("/duels/active", s.handleActiveDuels)
	r.Get("/flavor/{kind}", s.handleFlavor)

	// Announcement stream.
	r.Get("/events", s.sse.HandleConnection)

	// Push subscription management.
	if s.push != nil {
		r.Get("/push/key", s.handlePushKey)
		r.Post("/push/subscribe", s.handlePushSubscribe)
		r.Delete("/push/subscribe", s.handlePushUnsubscribe)
	}

	// Command surface for transport adapters.
	r.Post("/duel/invite", s.handleInvite)
	r.Post("/duel/submit", s.handleSubmit)
	r.Post("/duel/cancel", s.handleCancel)
	r.Post("/honor", s.handleHonor)
	r.Post("/seppuku", s.handleSeppuku)
	r.Post("/class", s.handleClass)
	r.With(s.requireAdmin).Post("/reward", s.handleReward)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// StartSSE starts the announcement fan-out over the engine's event stream.
func (s *Server) StartSSE(events <-chan duel.Event) {
	go s.sse.Run(events)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Shogun Dojo alive ⚔️\n"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireAdmin guards privileged endpoints. In dev mode everything is
// allowed; otherwise the configured token must match.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.devMode {
			next.ServeHTTP(w, r)
			return
		}
		if s.adminToken == "" || r.Header.Get("X-Admin-Token") != s.adminToken {
			writeError(w, http.StatusForbidden, "admin token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
