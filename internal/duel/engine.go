package duel

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arashv/shogun-dojo/internal/rank"
)

// DefaultWaitWindow is how long both duelists have to seal a pick before a
// random move is assigned for whoever is missing.
const DefaultWaitWindow = 60 * time.Second

// ProfileDirectory is the slice of the profile layer the engine needs:
// pre-duel snapshots and the post-duel mutation. Implementations must
// serialize concurrent mutations to the same profile.
type ProfileDirectory interface {
	// Snapshot returns the current profile state for a participant, creating
	// the profile on first sight and refreshing its display name.
	Snapshot(ctx context.Context, p Participant) (Contestant, error)
	// ApplyResult applies a decided outcome to both profiles and reports the
	// new totals plus any rank changes.
	ApplyResult(ctx context.Context, res Result) (ApplySummary, error)
}

// ApplySummary reports the profile state after a duel outcome was applied.
type ApplySummary struct {
	WinnerPoints float64
	LoserPoints  float64
	RankChanges  []rank.ChangeEvent
}

// Config tunes an Engine.
type Config struct {
	// WaitWindow overrides DefaultWaitWindow when positive.
	WaitWindow time.Duration
	// Rand seeds the random elements (timeout moves, ninja evasion). Nil
	// falls back to a time-seeded source.
	Rand *rand.Rand
	// DisableTimers skips arming real deadline timers; deadlines then only
	// fire through Tick. Used by tests.
	DisableTimers bool
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Engine owns the duel session registry and drives every session through its
// lifecycle. Individual sessions serialize their own transitions; the engine
// adds no global lock around them, so unrelated duels never contend.
type Engine struct {
	log      *logrus.Entry
	registry *Registry
	profiles ProfileDirectory

	wait      time.Duration
	useTimers bool
	now       func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	subMu       sync.Mutex
	subscribers []chan Event
}

// NewEngine creates a duel engine backed by the given profile directory.
func NewEngine(profiles ProfileDirectory, cfg Config) *Engine {
	wait := cfg.WaitWindow
	if wait <= 0 {
		wait = DefaultWaitWindow
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		log:       logrus.WithField("component", "duel"),
		registry:  NewRegistry(),
		profiles:  profiles,
		wait:      wait,
		useTimers: !cfg.DisableTimers,
		now:       now,
		rng:       rng,
	}
}

// Registry exposes the session registry for read-side consumers.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Subscribe returns a channel receiving every event the engine emits. Slow
// consumers drop events rather than stall the engine.
func (e *Engine) Subscribe() <-chan Event {
	ch := make(chan Event, 100)
	e.subMu.Lock()
	e.subscribers = append(e.subscribers, ch)
	e.subMu.Unlock()
	return ch
}

func (e *Engine) emit(ev Event) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subscribers {
		select {
		case ch <- ev:
		default:
			e.log.Warn("subscriber event channel full, dropping event")
		}
	}
}

// Invite creates a session for the pair and starts the pick window. It fails
// with ErrSelfDuel for self-pairing and ErrAlreadyActive while a session for
// the same unordered pair is still pending.
func (e *Engine) Invite(ctx context.Context, chatID string, challenger, target Participant) (*Session, error) {
	if challenger.ID == target.ID {
		return nil, ErrSelfDuel
	}

	s := newSession(uuid.New().String(), PairKey(challenger.ID, target.ID), chatID,
		challenger, target, e.now(), e.wait)
	if err := e.registry.Add(s); err != nil {
		return nil, err
	}

	// Make sure both profiles exist and carry fresh names. Best effort; the
	// duel stands either way.
	for _, p := range s.Participants() {
		if _, err := e.profiles.Snapshot(ctx, p); err != nil {
			e.log.WithError(err).WithField("player", p.ID).Warn("profile snapshot failed on invite")
		}
	}

	if e.useTimers {
		s.armTimer(e.wait, func() { e.handleDeadline(s) })
	}

	e.log.WithFields(logrus.Fields{
		"session":    s.ID,
		"key":        s.Key,
		"challenger": challenger.ID,
		"target":     target.ID,
	}).Info("duel session created")

	e.emit(DuelStarted{
		SessionID:  s.ID,
		Key:        s.Key,
		ChatID:     s.ChatID,
		Challenger: challenger,
		Target:     target,
		Deadline:   s.Deadline,
	})
	return s, nil
}

// Submit routes a sealed pick to the player's pending session. The token is
// parsed leniently (ParseMove); the second pick of a pair triggers
// resolution synchronously before Submit returns.
func (e *Engine) Submit(ctx context.Context, playerID, token string) (*Session, error) {
	move, err := ParseMove(token)
	if err != nil {
		return nil, err
	}

	s, err := e.registry.FindForPlayer(playerID)
	if err != nil {
		return nil, err
	}

	both, err := s.submit(playerID, move)
	if err != nil {
		return nil, err
	}

	e.emit(ChoiceSealed{SessionID: s.ID, Key: s.Key, PlayerID: playerID})

	if both {
		if picks, ok := s.beginResolve(); ok {
			e.finish(ctx, s, picks, nil)
		}
	}
	return s, nil
}

// Cancel ends a session that never got off the ground, e.g. when a private
// prompt could not be delivered. It is a no-op (returning false) once the
// session has begun resolving.
func (e *Engine) Cancel(key, reason string) bool {
	s := e.registry.Get(key)
	if s == nil {
		return false
	}
	if !s.cancel() {
		return false
	}
	e.registry.Remove(key)

	e.log.WithFields(logrus.Fields{"session": s.ID, "reason": reason}).Info("duel cancelled")
	e.emit(DuelCancelled{
		SessionID:    s.ID,
		Key:          s.Key,
		ChatID:       s.ChatID,
		Reason:       reason,
		Participants: s.Participants(),
	})
	return true
}

// Tick fires the deadline transition for every session whose deadline has
// passed. With timers enabled this is a safety net; with timers disabled it
// is the only deadline driver.
func (e *Engine) Tick(now time.Time) {
	for _, s := range e.registry.Active() {
		if !now.Before(s.Deadline) {
			e.handleDeadline(s)
		}
	}
}

// handleDeadline is the timer callback. If the session already resolved this
// is a harmless no-op; otherwise missing picks are filled randomly and the
// session resolves.
func (e *Engine) handleDeadline(s *Session) {
	picks, timedOut, ok := s.expire(e.randomMove)
	if !ok {
		return
	}
	for _, p := range timedOut {
		e.log.WithFields(logrus.Fields{"session": s.ID, "player": p.ID}).Info("pick window expired, random move assigned")
		e.emit(MoveTimedOut{SessionID: s.ID, Key: s.Key, Player: p})
	}
	e.finish(context.Background(), s, picks, timedOut)
}

// finish runs exactly once per session: the caller already won the
// AwaitingChoices exit. It removes the session from the registry, decides
// the outcome, applies it, and emits the single announcement. Persistence
// failures are logged, never re-run resolution.
func (e *Engine) finish(ctx context.Context, s *Session, picks map[string]Move, timedOut []Participant) {
	e.registry.Remove(s.Key)

	a := e.snapshot(ctx, s.Challenger)
	b := e.snapshot(ctx, s.Target)
	a.Move = picks[a.ID]
	b.Move = picks[b.ID]

	e.rngMu.Lock()
	res := Resolve(a, b, e.rng)
	e.rngMu.Unlock()

	if res.Err != nil {
		e.log.WithError(res.Err).WithField("session", s.ID).Error("duel failed closed as tie")
	}

	ann := Announcement{
		SessionID:  s.ID,
		Key:        s.Key,
		ChatID:     s.ChatID,
		Challenger: s.Challenger,
		Target:     s.Target,
		Tie:        res.Tie,
	}

	if res.Tie {
		ann.Winner = DuelistLine{Participant: Participant{ID: a.ID, Name: a.Name}, Move: a.Move, Points: Round2(a.Points)}
		ann.Loser = DuelistLine{Participant: Participant{ID: b.ID, Name: b.Name}, Move: b.Move, Points: Round2(b.Points)}
	} else {
		sum, err := e.profiles.ApplyResult(ctx, res)
		if err != nil {
			// The outcome is decided in memory; the store write is best
			// effort and must not re-run resolution.
			e.log.WithError(err).WithField("session", s.ID).Error("applying duel outcome failed")
			sum = ApplySummary{
				WinnerPoints: res.Winner.Points + res.Gain,
				LoserPoints:  max(0, res.Loser.Points-res.Loss),
			}
		}
		ann.LossWaived = res.LossWaived
		ann.Winner = DuelistLine{
			Participant: Participant{ID: res.Winner.ID, Name: res.Winner.Name},
			Move:        res.Winner.Move,
			Delta:       Round2(res.Gain),
			Points:      Round2(sum.WinnerPoints),
		}
		ann.Loser = DuelistLine{
			Participant: Participant{ID: res.Loser.ID, Name: res.Loser.Name},
			Move:        res.Loser.Move,
			Delta:       Round2(-res.Loss),
			Points:      Round2(sum.LoserPoints),
		}
		ann.RankChanges = sum.RankChanges
	}

	s.markResolved()

	e.log.WithFields(logrus.Fields{
		"session": s.ID,
		"tie":     res.Tie,
		"winner":  ann.Winner.ID,
		"loser":   ann.Loser.ID,
	}).Info("duel resolved")

	e.emit(DuelResolved{Announcement: ann})
}

// snapshot loads a contestant, falling back to a fresh in-memory profile
// when the store is unavailable so a decided duel can still announce.
func (e *Engine) snapshot(ctx context.Context, p Participant) Contestant {
	c, err := e.profiles.Snapshot(ctx, p)
	if err != nil {
		e.log.WithError(err).WithField("player", p.ID).Error("profile snapshot failed, using defaults")
		return Contestant{ID: p.ID, Name: p.Name}
	}
	return c
}

func (e *Engine) randomMove() Move {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return Moves[e.rng.Intn(len(Moves))]
}
