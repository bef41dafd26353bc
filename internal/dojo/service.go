// Package dojo is the service layer binding the duel engine and the profile
// ledger to the chat-facing operations: honor grants, seppuku penalties,
// bulk rewards, class choice, profile cards, the leaderboard and the dojo's
// flavor lines. Chat parsing and rendering stay with the transport; this
// package works in identities and structured results.
package dojo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arashv/shogun-dojo/internal/duel"
	"github.com/arashv/shogun-dojo/internal/profile"
	"github.com/arashv/shogun-dojo/internal/rank"
	"github.com/arashv/shogun-dojo/internal/store"
)

// Default amounts carried over from the dojo's chat commands.
const (
	DefaultHonorAmount   = 1.0
	DefaultSeppukuAmount = 1.0
	DefaultBulkReward    = 2.0
)

var (
	// ErrSelfHonor rejects granting honor to yourself.
	ErrSelfHonor = errors.New("cannot grant honor to yourself")
	// ErrUnknownClass rejects an unrecognized class token.
	ErrUnknownClass = errors.New("unknown class")
)

// Service exposes the dojo's operations to any transport adapter.
type Service struct {
	log      *logrus.Entry
	profiles *profile.Service
	engine   *duel.Engine

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a dojo service. rng seeds the flavor line picks; nil falls
// back to a time-seeded source.
func New(profiles *profile.Service, engine *duel.Engine, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		log:      logrus.WithField("component", "dojo"),
		profiles: profiles,
		engine:   engine,
		rng:      rng,
	}
}

// Engine returns the duel engine for transports that drive duels directly.
func (s *Service) Engine() *duel.Engine {
	return s.engine
}

// HonorResult reports a direct point mutation outside of duels.
type HonorResult struct {
	Message    string            `json:"message"`
	Points     float64           `json:"points"`
	RankChange *rank.ChangeEvent `json:"rankChange,omitempty"`
}

// Honor grants points to another player. Self-grants are rejected.
func (s *Service) Honor(ctx context.Context, actorID string, target duel.Participant, amount float64) (*HonorResult, error) {
	if actorID == target.ID {
		return nil, ErrSelfHonor
	}
	if amount <= 0 {
		amount = DefaultHonorAmount
	}

	p, change, err := s.profiles.GrantHonor(ctx, target.ID, target.Name, amount)
	if p == nil {
		return nil, err
	}
	if err != nil {
		s.log.WithError(err).Warn("honor grant write failed")
	}

	return &HonorResult{
		Message:    fmt.Sprintf(s.pick(honorMessages), p.DisplayName, p.DisplayName),
		Points:     duel.Round2(p.Points),
		RankChange: change,
	}, nil
}

// Seppuku deducts points from a player. Unlike honor it may be
// self-inflicted. Points never drop below zero.
func (s *Service) Seppuku(ctx context.Context, target duel.Participant, amount float64) (*HonorResult, error) {
	if amount <= 0 {
		amount = DefaultSeppukuAmount
	}

	p, change, err := s.profiles.GrantPenalty(ctx, target.ID, target.Name, amount)
	if p == nil {
		return nil, err
	}
	if err != nil {
		s.log.WithError(err).Warn("seppuku write failed")
	}

	return &HonorResult{
		Message:    fmt.Sprintf(s.pick(seppukuMessages), p.DisplayName, p.DisplayName),
		Points:     duel.Round2(p.Points),
		RankChange: change,
	}, nil
}

// BulkResult reports an all-hands reward.
type BulkResult struct {
	Amount      float64            `json:"amount"`
	Players     int                `json:"players"`
	RankChanges []rank.ChangeEvent `json:"rankChanges,omitempty"`
}

// BulkReward grants points to every known profile. Whether the caller is
// allowed to do this (group admin checks) is the transport's concern.
func (s *Service) BulkReward(ctx context.Context, amount float64) (*BulkResult, error) {
	if amount <= 0 {
		amount = DefaultBulkReward
	}
	count, changes, err := s.profiles.BulkReward(ctx, amount)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"players": count, "amount": amount}).Info("bulk reward granted")
	return &BulkResult{Amount: amount, Players: count, RankChanges: changes}, nil
}

// ChooseClass switches the player's class by free-text token.
func (s *Service) ChooseClass(ctx context.Context, p duel.Participant, token string) (*store.Profile, error) {
	class, ok := duel.ParseClass(token)
	if !ok {
		return nil, ErrUnknownClass
	}
	return s.profiles.SetClass(ctx, p.ID, p.Name, class)
}

// Card is the profile view shown on request.
type Card struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	Points      float64    `json:"points"`
	Rank        rank.Tier  `json:"rank"`
	NextRank    *rank.Tier `json:"nextRank,omitempty"`
	ToNext      float64    `json:"toNext,omitempty"` // points missing to the next tier
	Wins        int        `json:"wins"`
	Losses      int        `json:"losses"`
	Streak      int        `json:"streak"`
	Class       duel.Class `json:"class,omitempty"`
	Blades      int        `json:"blades,omitempty"`
	ClassXP     int        `json:"classXp"`
	FirstSeen   time.Time  `json:"firstSeen"`
}

// ProfileCard returns the player's profile view, creating the profile on
// first sight.
func (s *Service) ProfileCard(ctx context.Context, part duel.Participant) (*Card, error) {
	p, err := s.profiles.Get(ctx, part.ID, part.Name)
	if err != nil {
		return nil, err
	}

	card := &Card{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Points:      duel.Round2(p.Points),
		Rank:        rank.FromPoints(p.Points),
		Wins:        p.Wins,
		Losses:      p.Losses,
		Streak:      p.Streak,
		Class:       p.Class,
		Blades:      p.Blades,
		ClassXP:     p.ClassXP,
		FirstSeen:   p.FirstSeen,
	}
	if next, ok := rank.Next(p.Points); ok {
		card.NextRank = &next
		card.ToNext = duel.Round2(float64(next.Threshold) - p.Points)
	}
	return card, nil
}

// Row is one leaderboard line.
type Row struct {
	Position    int     `json:"position"`
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Points      float64 `json:"points"`
	Rank        string  `json:"rank"`
}

// Leaderboard returns every known player ordered by points descending.
func (s *Service) Leaderboard(ctx context.Context) ([]Row, error) {
	profiles, err := s.profiles.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(profiles))
	for i, p := range profiles {
		rows = append(rows, Row{
			Position:    i + 1,
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Points:      duel.Round2(p.Points),
			Rank:        p.Rank,
		})
	}
	return rows, nil
}

// Welcome returns a line for greeting a newcomer.
func (s *Service) Welcome() string { return s.pick(welcomeLines) }

// Tea returns a tea-ceremony line.
func (s *Service) Tea() string { return s.pick(teaLines) }

// Spirit returns a warrior-spirit line.
func (s *Service) Spirit() string { return s.pick(spiritLines) }

// Intro returns the shogun's self-introduction.
func (s *Service) Intro() string { return shogunIntro }

// Rules returns the dojo rules text.
func (s *Service) Rules() string { return dojoRules }

func (s *Service) pick(lines []string) string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return lines[s.rng.Intn(len(lines))]
}
