package duel

import (
	"sync"
	"time"
)

// Status tracks where a session is in its lifecycle.
type Status int

const (
	StatusAwaitingChoices Status = iota // collecting sealed picks
	StatusResolving                     // both picks present, outcome being decided
	StatusResolved                      // terminal, success path
	StatusCancelled                     // terminal, setup-failure path
)

func (s Status) String() string {
	switch s {
	case StatusAwaitingChoices:
		return "awaiting_choices"
	case StatusResolving:
		return "resolving"
	case StatusResolved:
		return "resolved"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Participant identifies one duelist. Name is the last-observed display
// name, refreshed on every interaction.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is the state machine for a single pairing. It collects up to two
// sealed picks, arms a deadline, and leaves AwaitingChoices exactly once.
//
// Every transition runs under the session's own mutex; that mutex is the
// single mutual-exclusion boundary guaranteeing that "both choices present"
// is observed and acted on exactly once, whichever of the second submission
// or the deadline gets there first. Sessions never share locks with each
// other.
type Session struct {
	ID         string
	Key        string
	ChatID     string
	Challenger Participant
	Target     Participant
	CreatedAt  time.Time
	Deadline   time.Time

	mu      sync.Mutex
	status  Status
	choices map[string]Move
	timer   *time.Timer
}

func newSession(id, key, chatID string, challenger, target Participant, now time.Time, wait time.Duration) *Session {
	return &Session{
		ID:         id,
		Key:        key,
		ChatID:     chatID,
		Challenger: challenger,
		Target:     target,
		CreatedAt:  now,
		Deadline:   now.Add(wait),
		status:     StatusAwaitingChoices,
		choices:    make(map[string]Move, 2),
	}
}

// Participants returns both duelists, challenger first.
func (s *Session) Participants() [2]Participant {
	return [2]Participant{s.Challenger, s.Target}
}

func (s *Session) isParticipant(playerID string) bool {
	return playerID == s.Challenger.ID || playerID == s.Target.ID
}

// Status returns the session's current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) hasChosen(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.choices[playerID]
	return ok
}

// armTimer schedules the deadline callback. Called once, right after the
// session is admitted to the registry.
func (s *Session) armTimer(wait time.Duration, onDeadline func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusAwaitingChoices {
		return
	}
	s.timer = time.AfterFunc(wait, onDeadline)
}

// submit seals a pick for one participant. A repeat submission from the same
// participant is rejected with ErrAlreadyChosen and leaves the recorded
// choice unchanged. both reports whether this submission completed the pair.
func (s *Session) submit(playerID string, m Move) (both bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusAwaitingChoices {
		return false, ErrNoActiveSession
	}
	if !s.isParticipant(playerID) {
		return false, ErrNoActiveSession
	}
	if _, ok := s.choices[playerID]; ok {
		return false, ErrAlreadyChosen
	}

	s.choices[playerID] = m
	return len(s.choices) == 2, nil
}

// beginResolve moves the session out of AwaitingChoices when both picks are
// present. It returns the sealed picks and ok=true for exactly one caller;
// every later attempt (a racing deadline, a duplicate event) gets ok=false.
func (s *Session) beginResolve() (picks map[string]Move, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusAwaitingChoices || len(s.choices) != 2 {
		return nil, false
	}
	s.status = StatusResolving
	s.stopTimerLocked()
	return s.copyChoicesLocked(), true
}

// expire runs the deadline transition: any participant still missing a pick
// gets one drawn from pick, then the session moves to Resolving. timedOut
// lists who was assigned a random move. ok=false means the session had
// already left AwaitingChoices and the expiry is a no-op.
func (s *Session) expire(pick func() Move) (picks map[string]Move, timedOut []Participant, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusAwaitingChoices {
		return nil, nil, false
	}
	for _, p := range [2]Participant{s.Challenger, s.Target} {
		if _, chosen := s.choices[p.ID]; !chosen {
			s.choices[p.ID] = pick()
			timedOut = append(timedOut, p)
		}
	}
	s.status = StatusResolving
	s.stopTimerLocked()
	return s.copyChoicesLocked(), timedOut, true
}

// cancel moves an AwaitingChoices session to Cancelled. Reports false when
// the session already left AwaitingChoices (resolution wins the race).
func (s *Session) cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusAwaitingChoices {
		return false
	}
	s.status = StatusCancelled
	s.stopTimerLocked()
	return true
}

func (s *Session) markResolved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusResolving {
		s.status = StatusResolved
	}
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) copyChoicesLocked() map[string]Move {
	picks := make(map[string]Move, len(s.choices))
	for id, m := range s.choices {
		picks[id] = m
	}
	return picks
}
