package duel

import (
	"sort"
	"strings"
	"sync"
)

// PairKey normalizes an unordered participant pair so invitations in either
// direction collide on the same key.
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

// Registry tracks the active sessions, at most one per unordered pair.
// Admission and removal are race-free: two near-simultaneous invitations for
// the same pair yield exactly one session and one ErrAlreadyActive.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	order    []string // pair keys in admission order, for stable routing
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add admits a session. The pair-key uniqueness check is the sole admission
// rule.
func (r *Registry) Add(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.Key]; exists {
		return ErrAlreadyActive
	}
	r.sessions[s.Key] = s
	r.order = append(r.order, s.Key)
	return nil
}

// Get returns the session for a pair key, or nil.
func (r *Registry) Get(key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[key]
}

// Remove drops the session for a pair key and returns it, or nil if it was
// already gone. Safe to call more than once.
func (r *Registry) Remove(key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		return nil
	}
	delete(r.sessions, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return s
}

// FindForPlayer routes a submission to the oldest session the player is
// party to and has not yet sealed a pick in. A player may be party to more
// than one session when two different opponents invited them; uniqueness is
// per pair, not per player. Returns ErrAlreadyChosen when the player has a
// session but has already picked everywhere, ErrNoActiveSession when they
// have none.
func (r *Registry) FindForPlayer(playerID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := false
	for _, key := range r.order {
		s := r.sessions[key]
		if s == nil || !s.isParticipant(playerID) {
			continue
		}
		seen = true
		if !s.hasChosen(playerID) {
			return s, nil
		}
	}
	if seen {
		return nil, ErrAlreadyChosen
	}
	return nil, ErrNoActiveSession
}

// Active returns the live sessions in admission order.
func (r *Registry) Active() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.order))
	for _, key := range r.order {
		if s := r.sessions[key]; s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Len reports the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
