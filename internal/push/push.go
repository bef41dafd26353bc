package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"

	"github.com/arashv/shogun-dojo/internal/store"
)

// ErrNoSubscription reports that a player has no registered push endpoint,
// i.e. no private channel to deliver a prompt through.
var ErrNoSubscription = errors.New("no push subscription for player")

// Service sends Web Push notifications to players' registered endpoints.
type Service struct {
	log          *logrus.Entry
	store        store.Store
	vapidPublic  string
	vapidPrivate string
	vapidSubject string
}

// Config holds the VAPID credentials.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string // mailto:your-email@example.com
}

// NewService creates a push service over the given store.
func NewService(st store.Store, cfg Config) *Service {
	return &Service{
		log:          logrus.WithField("component", "push"),
		store:        st,
		vapidPublic:  cfg.VAPIDPublicKey,
		vapidPrivate: cfg.VAPIDPrivateKey,
		vapidSubject: cfg.VAPIDSubject,
	}
}

// NotificationPayload is the JSON body handed to the service worker.
type NotificationPayload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon,omitempty"`
	Tag   string         `json:"tag,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// SendToUser delivers a notification to every endpoint the player
// registered. It returns ErrNoSubscription when the player cannot be
// reached privately at all, and an error when every endpoint failed.
func (s *Service) SendToUser(ctx context.Context, playerID string, payload NotificationPayload) error {
	subs, err := s.store.GetPushSubscriptions(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to get subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return ErrNoSubscription
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error
	successCount := 0

	for _, sub := range subs {
		subscription := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}

		resp, err := webpush.SendNotification(payloadBytes, subscription, &webpush.Options{
			Subscriber:      s.vapidSubject,
			VAPIDPublicKey:  s.vapidPublic,
			VAPIDPrivateKey: s.vapidPrivate,
			TTL:             60,
		})
		if err != nil {
			s.log.WithError(err).WithField("endpoint", sub.Endpoint).Warn("push send failed")
			lastErr = err
			continue
		}
		resp.Body.Close()

		// Endpoints reported gone (410) or invalid (404) are dropped.
		if resp.StatusCode == 410 || resp.StatusCode == 404 {
			s.log.WithField("endpoint", sub.Endpoint).Info("subscription expired, removing")
			if err := s.store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
				s.log.WithError(err).Warn("failed to delete subscription")
			}
		} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("push failed with status %d", resp.StatusCode)
		} else {
			successCount++
		}
	}

	if successCount > 0 {
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return ErrNoSubscription
}

// PublicKey returns the VAPID public key for frontend registration.
func (s *Service) PublicKey() string {
	return s.vapidPublic
}
