package push

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arashv/shogun-dojo/internal/duel"
)

// Canceller lets the notifier abort a duel whose private prompts could not
// be delivered.
type Canceller interface {
	Cancel(key, reason string) bool
}

// Notifier trails the engine's event stream and handles the private side of
// a duel: pick prompts on start, the timeout notice, rank-change messages.
type Notifier struct {
	log     *logrus.Entry
	service *Service
	engine  Canceller
}

// NewNotifier creates a push notifier driving prompts through service.
func NewNotifier(service *Service, engine Canceller) *Notifier {
	return &Notifier{
		log:     logrus.WithField("component", "push"),
		service: service,
		engine:  engine,
	}
}

// Run consumes engine events until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context, events <-chan duel.Event) {
	n.log.Info("push notifier started")
	for {
		select {
		case <-ctx.Done():
			n.log.Info("push notifier stopped")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			n.handleEvent(ctx, event)
		}
	}
}

func (n *Notifier) handleEvent(ctx context.Context, event duel.Event) {
	switch e := event.(type) {
	case duel.DuelStarted:
		n.deliverPrompts(ctx, e)
	case duel.MoveTimedOut:
		n.deliverTimeoutNotice(ctx, e)
	case duel.DuelResolved:
		n.deliverRankChanges(ctx, e.Announcement)
	}
}

// deliverPrompts sends both participants their private pick prompt. If
// either cannot be reached the session is cancelled: a duel where one side
// cannot seal a pick privately must not run.
func (n *Notifier) deliverPrompts(ctx context.Context, e duel.DuelStarted) {
	pairs := [2][2]duel.Participant{
		{e.Challenger, e.Target},
		{e.Target, e.Challenger},
	}
	for _, pair := range pairs {
		player, opponent := pair[0], pair[1]
		payload := NotificationPayload{
			Title: "⚔️ دوئل ثبت شد",
			Body:  fmt.Sprintf("دوئل با %s — یکی از: سنگ / کاغذ / قیچی را انتخاب کن.", opponent.Name),
			Tag:   "duel-prompt",
			Data: map[string]any{
				"sessionId": e.SessionID,
				"deadline":  e.Deadline,
			},
		}
		if err := n.service.SendToUser(ctx, player.ID, payload); err != nil {
			n.log.WithError(err).WithFields(logrus.Fields{
				"session": e.SessionID,
				"player":  player.ID,
			}).Warn("prompt delivery failed, cancelling duel")
			n.engine.Cancel(e.Key, fmt.Sprintf("could not reach %s privately", player.Name))
			return
		}
	}
}

func (n *Notifier) deliverTimeoutNotice(ctx context.Context, e duel.MoveTimedOut) {
	payload := NotificationPayload{
		Title: "⌛ زمان انتخاب تمام شد",
		Body:  "حرکتی تصادفی برای شما انتخاب شد.",
		Tag:   "duel-timeout",
		Data:  map[string]any{"sessionId": e.SessionID},
	}
	if err := n.service.SendToUser(ctx, e.Player.ID, payload); err != nil {
		n.log.WithError(err).WithField("player", e.Player.ID).Warn("timeout notice delivery failed")
	}
}

func (n *Notifier) deliverRankChanges(ctx context.Context, ann duel.Announcement) {
	for _, change := range ann.RankChanges {
		title := "🌅 ارتقای مقام"
		if !change.Promoted {
			title = "🌑 تنزل مقام"
		}
		payload := NotificationPayload{
			Title: title,
			Body:  fmt.Sprintf("%s → %s （%s）", change.From.Name, change.To.Name, change.To.Kanji),
			Tag:   "rank-change",
		}
		if err := n.service.SendToUser(ctx, change.PlayerID, payload); err != nil {
			n.log.WithError(err).WithField("player", change.PlayerID).Debug("rank change delivery failed")
		}
	}
}
