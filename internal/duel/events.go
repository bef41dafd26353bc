package duel

import (
	"math"
	"time"

	"github.com/arashv/shogun-dojo/internal/rank"
)

// Event is the interface for everything the engine reports outward. The
// transport layer, the duel recorder and the push notifier all consume the
// same stream.
type Event interface {
	event() // marker method
}

// DuelStarted is emitted once a session is admitted. Consumers deliver the
// private pick prompts; if either participant cannot be reached privately,
// the consumer calls Engine.Cancel with the session key.
type DuelStarted struct {
	SessionID  string
	Key        string
	ChatID     string
	Challenger Participant
	Target     Participant
	Deadline   time.Time
}

func (DuelStarted) event() {}

// ChoiceSealed acknowledges one recorded pick. The move itself stays sealed.
type ChoiceSealed struct {
	SessionID string
	Key       string
	PlayerID  string
}

func (ChoiceSealed) event() {}

// MoveTimedOut reports that the deadline passed before this participant
// picked and a random move was chosen for them.
type MoveTimedOut struct {
	SessionID string
	Key       string
	Player    Participant
}

func (MoveTimedOut) event() {}

// DuelResolved carries the single announcement for a finished duel.
type DuelResolved struct {
	Announcement Announcement
}

func (DuelResolved) event() {}

// DuelCancelled reports a session that ended without resolution, e.g. when a
// private prompt could not be delivered.
type DuelCancelled struct {
	SessionID    string
	Key          string
	ChatID       string
	Reason       string
	Participants [2]Participant
}

func (DuelCancelled) event() {}

// DuelistLine is one side of an announcement: who they are, what they threw,
// and where their score ended up. Delta and Points are rounded to two
// decimals for display.
type DuelistLine struct {
	Participant
	Move   Move    `json:"move"`
	Delta  float64 `json:"delta"`
	Points float64 `json:"points"`
}

// Announcement is the payload delivered to the originating chat after a duel
// resolves: both names, both moves, winner/loser labels, deltas, new totals
// and any rank changes, in that order.
type Announcement struct {
	SessionID   string             `json:"sessionId"`
	Key         string             `json:"key"`
	ChatID      string             `json:"chatId"`
	Challenger  Participant        `json:"challenger"`
	Target      Participant        `json:"target"`
	Tie         bool               `json:"tie"`
	Winner      DuelistLine        `json:"winner"` // challenger on a tie
	Loser       DuelistLine        `json:"loser"`  // target on a tie
	LossWaived  bool               `json:"lossWaived"`
	RankChanges []rank.ChangeEvent `json:"rankChanges,omitempty"`
}

// Round2 rounds a score to two decimals, the precision every announcement
// uses.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
