package store

import (
	"context"
	"time"

	"github.com/arashv/shogun-dojo/internal/duel"
)

// Profile is the persisted record for one player identity. Points are the
// sole score of record; Rank is a cached function of Points, recomputed on
// every mutation.
type Profile struct {
	ID          string
	DisplayName string
	Points      float64
	Wins        int
	Losses      int
	Streak      int
	Class       duel.Class
	Blades      int
	ClassXP     int
	Rank        string
	FirstSeen   time.Time
	UpdatedAt   time.Time
}

// DuelRecord is one row of duel history, written after a session leaves the
// registry.
type DuelRecord struct {
	ID             string
	PairKey        string
	ChatID         string
	ChallengerID   string
	TargetID       string
	ChallengerMove string
	TargetMove     string
	Outcome        string // "win", "tie" or "cancelled"
	WinnerID       string // empty on tie/cancel
	LoserID        string
	Gain           float64
	Loss           float64
	LossWaived     bool
	ResolvedAt     time.Time
}

// PushSubscription is one browser push endpoint registered by a player for
// private prompt delivery.
type PushSubscription struct {
	ID        int
	PlayerID  string
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}

// Store is the persistence boundary. The duel engine only needs get/put
// semantics on profiles; the rest is reporting and delivery surface.
type Store interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error
	ListProfiles(ctx context.Context) ([]Profile, error)

	RecordDuel(ctx context.Context, d *DuelRecord) error
	ListDuels(ctx context.Context, limit int) ([]DuelRecord, error)

	SavePushSubscription(ctx context.Context, sub *PushSubscription) error
	GetPushSubscriptions(ctx context.Context, playerID string) ([]PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error

	Close() error
}
