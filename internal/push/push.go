package push

import (
	"context"
	"encoding/json"
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"

	"github.com/edvart/gamers-league/internal/league"
	"github.com/edvart/gamers-league/internal/store"
)

// Service sends web-push notifications and manages subscriptions, which
// live in the document store like every other entity.
type Service struct {
	store        store.Store
	log          *logrus.Logger
	vapidPublic  string
	vapidPrivate string
	vapidSubject string
}

type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string // mailto:your-email@example.com
}

func NewService(st store.Store, log *logrus.Logger, cfg Config) *Service {
	return &Service{
		store:        st,
		log:          log,
		vapidPublic:  cfg.VAPIDPublicKey,
		vapidPrivate: cfg.VAPIDPrivateKey,
		vapidSubject: cfg.VAPIDSubject,
	}
}

// Enabled reports whether VAPID keys are configured.
func (s *Service) Enabled() bool {
	return s.vapidPublic != "" && s.vapidPrivate != ""
}

// GetPublicKey returns the VAPID public key for frontend use.
func (s *Service) GetPublicKey() string {
	return s.vapidPublic
}

// storedSubscription is the document shape; the active flag substitutes for
// deletion since the store contract has no delete operation.
type storedSubscription struct {
	ID       string `json:"id,omitempty"`
	UserID   string `json:"user_id"`
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
	Active   bool   `json:"active"`
}

// Subscribe registers a push endpoint for a user.
func (s *Service) Subscribe(ctx context.Context, sub league.PushSubscription) error {
	doc := storedSubscription{
		UserID:   sub.UserID,
		Endpoint: sub.Endpoint,
		P256dh:   sub.P256dh,
		Auth:     sub.Auth,
		Active:   true,
	}
	if _, err := s.store.Insert(ctx, league.CollectionSubscriptions, doc); err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// Unsubscribe deactivates every subscription with the given endpoint.
func (s *Service) Unsubscribe(ctx context.Context, endpoint string) error {
	var subs []storedSubscription
	filter := store.Filter{"endpoint": endpoint, "active": true}
	if err := s.store.FindMany(ctx, league.CollectionSubscriptions, filter, &subs); err != nil {
		return fmt.Errorf("find subscriptions: %w", err)
	}
	for _, sub := range subs {
		if err := s.store.UpdateFields(ctx, league.CollectionSubscriptions, sub.ID,
			store.Fields{"active": false}); err != nil {
			return fmt.Errorf("deactivate subscription: %w", err)
		}
	}
	return nil
}

type NotificationPayload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Tag   string         `json:"tag,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// SendToUser sends a notification to every active subscription of a user.
func (s *Service) SendToUser(ctx context.Context, userID string, payload NotificationPayload) error {
	var subs []storedSubscription
	filter := store.Filter{"user_id": userID, "active": true}
	if err := s.store.FindMany(ctx, league.CollectionSubscriptions, filter, &subs); err != nil {
		return fmt.Errorf("find subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
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

		// Gone or invalid endpoints are deactivated on sight
		if resp.StatusCode == 410 || resp.StatusCode == 404 {
			if err := s.store.UpdateFields(ctx, league.CollectionSubscriptions, sub.ID,
				store.Fields{"active": false}); err != nil {
				s.log.WithError(err).Warn("failed to deactivate expired subscription")
			}
		} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("push failed with status %d", resp.StatusCode)
		} else {
			successCount++
		}
	}

	if successCount > 0 || lastErr == nil {
		return nil
	}
	return lastErr
}

// SendToUsers fans a notification out to several users without blocking.
func (s *Service) SendToUsers(ctx context.Context, userIDs []string, payload NotificationPayload) {
	for _, userID := range userIDs {
		go func(id string) {
			if err := s.SendToUser(ctx, id, payload); err != nil {
				s.log.WithError(err).WithField("user", id).Warn("failed to send push")
			}
		}(userID)
	}
}
