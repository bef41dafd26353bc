// Package profile owns every mutation of player profiles. All score changes
// (duel outcomes, honor grants, seppuku penalties, bulk rewards) funnel
// through Service.Mutate, which serializes concurrent writers per identity,
// clamps points at zero and keeps the cached rank in sync with the rank
// ladder.
package profile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arashv/shogun-dojo/internal/duel"
	"github.com/arashv/shogun-dojo/internal/rank"
	"github.com/arashv/shogun-dojo/internal/store"
)

// Service wraps the store with per-identity mutual exclusion. Mutations to
// different players never contend with each other.
type Service struct {
	log   *logrus.Entry
	store store.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a profile service over the given store.
func NewService(st store.Store) *Service {
	return &Service{
		log:   logrus.WithField("component", "profile"),
		store: st,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Service) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Mutate loads (or lazily creates) the profile, applies fn, clamps points at
// zero, recomputes the cached rank and persists, all under the identity's
// lock. displayName refreshes the stored name when non-empty.
//
// On a persist failure the returned profile and rank change still describe
// the decided in-memory state; the error reports the write problem so the
// caller can log it without re-running the decision.
func (s *Service) Mutate(ctx context.Context, id, displayName string, fn func(*store.Profile)) (*store.Profile, *rank.ChangeEvent, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load profile %s: %w", id, err)
	}

	now := time.Now()
	if p == nil {
		p = &store.Profile{
			ID:          id,
			DisplayName: displayName,
			Rank:        rank.FromPoints(0).Name,
			FirstSeen:   now,
		}
		if p.DisplayName == "" {
			p.DisplayName = id
		}
	}
	if displayName != "" {
		p.DisplayName = displayName
	}

	if fn != nil {
		fn(p)
	}
	if p.Points < 0 {
		p.Points = 0
	}

	newTier, change := rank.Evaluate(p.ID, p.DisplayName, p.Rank, p.Points)
	p.Rank = newTier.Name
	p.UpdatedAt = now

	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return p, change, fmt.Errorf("persist profile %s: %w", id, err)
	}
	return p, change, nil
}

// Get returns the profile for an identity, creating it on first sight.
func (s *Service) Get(ctx context.Context, id, displayName string) (*store.Profile, error) {
	p, _, err := s.Mutate(ctx, id, displayName, nil)
	return p, err
}

// GrantHonor adds points to a player outside of duels.
func (s *Service) GrantHonor(ctx context.Context, id, displayName string, amount float64) (*store.Profile, *rank.ChangeEvent, error) {
	return s.Mutate(ctx, id, displayName, func(p *store.Profile) {
		p.Points += amount
	})
}

// GrantPenalty removes points from a player; the total never drops below
// zero.
func (s *Service) GrantPenalty(ctx context.Context, id, displayName string, amount float64) (*store.Profile, *rank.ChangeEvent, error) {
	return s.Mutate(ctx, id, displayName, func(p *store.Profile) {
		p.Points -= amount
	})
}

// SetClass switches the player's class. Blades carry over; they only ever
// matter while the class is samurai.
func (s *Service) SetClass(ctx context.Context, id, displayName string, class duel.Class) (*store.Profile, error) {
	p, _, err := s.Mutate(ctx, id, displayName, func(p *store.Profile) {
		p.Class = class
	})
	return p, err
}

// BulkReward adds points to every known profile. It reports how many
// profiles were actually written (failed writes are logged and skipped) plus
// the rank changes the reward caused, in leaderboard order.
func (s *Service) BulkReward(ctx context.Context, amount float64) (int, []rank.ChangeEvent, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("list profiles: %w", err)
	}

	rewarded := 0
	var changes []rank.ChangeEvent
	for _, p := range profiles {
		_, change, err := s.Mutate(ctx, p.ID, "", func(p *store.Profile) {
			p.Points += amount
		})
		if err != nil {
			s.log.WithError(err).WithField("player", p.ID).Error("bulk reward write failed")
			continue
		}
		rewarded++
		if change != nil {
			changes = append(changes, *change)
		}
	}
	return rewarded, changes, nil
}

// Leaderboard returns every profile ordered by points descending.
func (s *Service) Leaderboard(ctx context.Context) ([]store.Profile, error) {
	return s.store.ListProfiles(ctx)
}

// Snapshot implements duel.ProfileDirectory: the pre-duel view of one
// contestant, creating the profile on first sight.
func (s *Service) Snapshot(ctx context.Context, part duel.Participant) (duel.Contestant, error) {
	p, err := s.Get(ctx, part.ID, part.Name)
	if err != nil {
		return duel.Contestant{}, err
	}
	return duel.Contestant{
		ID:     p.ID,
		Name:   p.DisplayName,
		Class:  p.Class,
		Points: p.Points,
		Streak: p.Streak,
		Blades: p.Blades,
	}, nil
}

// ApplyResult implements duel.ProfileDirectory: winner and loser mutations
// for a decided duel. Persist failures are logged and do not re-run the
// decision; the returned summary always reflects the decided state.
func (s *Service) ApplyResult(ctx context.Context, res duel.Result) (duel.ApplySummary, error) {
	var sum duel.ApplySummary

	winner, wChange, err := s.Mutate(ctx, res.Winner.ID, res.Winner.Name, func(p *store.Profile) {
		p.Points += res.Gain
		p.Wins++
		p.Streak++
		p.ClassXP++
		if res.Winner.Class == duel.ClassSamurai {
			p.Blades = res.WinnerBlades
		}
	})
	if winner == nil {
		return sum, fmt.Errorf("apply duel result to winner: %w", err)
	}
	if err != nil {
		s.log.WithError(err).Error("winner profile write failed")
	}

	loser, lChange, err := s.Mutate(ctx, res.Loser.ID, res.Loser.Name, func(p *store.Profile) {
		p.Points -= res.Loss
		p.Losses++
		p.Streak = 0
	})
	if loser == nil {
		return sum, fmt.Errorf("apply duel result to loser: %w", err)
	}
	if err != nil {
		s.log.WithError(err).Error("loser profile write failed")
	}

	sum.WinnerPoints = winner.Points
	sum.LoserPoints = loser.Points
	if wChange != nil {
		sum.RankChanges = append(sum.RankChanges, *wChange)
	}
	if lChange != nil {
		sum.RankChanges = append(sum.RankChanges, *lChange)
	}
	return sum, nil
}
