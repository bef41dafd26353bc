// Package recorder persists duel history. It trails the engine's event
// stream; a failed write is logged and never replays or blocks a decided
// duel.
package recorder

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arashv/shogun-dojo/internal/duel"
	"github.com/arashv/shogun-dojo/internal/store"
)

// Recorder writes resolved and cancelled duels to the history table.
type Recorder struct {
	log   *logrus.Entry
	store store.Store
}

// New creates a duel recorder.
func New(st store.Store) *Recorder {
	return &Recorder{
		log:   logrus.WithField("component", "recorder"),
		store: st,
	}
}

// Run consumes engine events until ctx is cancelled.
func (r *Recorder) Run(ctx context.Context, events <-chan duel.Event) {
	r.log.Info("duel recorder started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info("duel recorder shutting down")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			r.handleEvent(ctx, event)
		}
	}
}

func (r *Recorder) handleEvent(ctx context.Context, event duel.Event) {
	switch e := event.(type) {
	case duel.DuelResolved:
		r.recordResolved(ctx, e.Announcement)
	case duel.DuelCancelled:
		r.recordCancelled(ctx, e)
	}
}

func (r *Recorder) recordResolved(ctx context.Context, ann duel.Announcement) {
	rec := &store.DuelRecord{
		ID:         ann.SessionID,
		PairKey:    ann.Key,
		ChatID:     ann.ChatID,
		Gain:       ann.Winner.Delta,
		Loss:       -ann.Loser.Delta,
		LossWaived: ann.LossWaived,
		ResolvedAt: time.Now(),
	}

	// Announcement lines are winner-first; map them back to the invitation
	// roles for the history row.
	first, second := ann.Winner, ann.Loser
	if first.ID != ann.Challenger.ID {
		first, second = second, first
	}
	rec.ChallengerID = ann.Challenger.ID
	rec.TargetID = ann.Target.ID
	rec.ChallengerMove = string(first.Move)
	rec.TargetMove = string(second.Move)

	if ann.Tie {
		rec.Outcome = "tie"
	} else {
		rec.Outcome = "win"
		rec.WinnerID = ann.Winner.ID
		rec.LoserID = ann.Loser.ID
	}

	if err := r.store.RecordDuel(ctx, rec); err != nil {
		r.log.WithError(err).WithField("session", ann.SessionID).Error("failed to record duel")
		return
	}
	r.log.WithField("session", ann.SessionID).Debug("duel recorded")
}

func (r *Recorder) recordCancelled(ctx context.Context, e duel.DuelCancelled) {
	rec := &store.DuelRecord{
		ID:           e.SessionID,
		PairKey:      e.Key,
		ChatID:       e.ChatID,
		ChallengerID: e.Participants[0].ID,
		TargetID:     e.Participants[1].ID,
		Outcome:      "cancelled",
		ResolvedAt:   time.Now(),
	}
	if err := r.store.RecordDuel(ctx, rec); err != nil {
		r.log.WithError(err).WithField("session", e.SessionID).Error("failed to record cancelled duel")
	}
}
