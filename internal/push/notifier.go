package push

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/edvart/gamers-league/internal/league"
	"github.com/edvart/gamers-league/internal/store"
)

// Notifier listens to league lifecycle events and notifies team captains.
type Notifier struct {
	service *Service
	store   store.Store
	log     *logrus.Logger
}

func NewNotifier(service *Service, st store.Store, log *logrus.Logger) *Notifier {
	return &Notifier{service: service, store: st, log: log}
}

// Run consumes events until the context is cancelled.
func (n *Notifier) Run(ctx context.Context, events <-chan league.Event) {
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

func (n *Notifier) handleEvent(ctx context.Context, event league.Event) {
	switch e := event.(type) {
	case league.ChallengeProposedEvent:
		n.notifyCaptains(ctx, []string{e.OpponentTeamID}, NotificationPayload{
			Title: "New challenge!",
			Body:  fmt.Sprintf("Your team has been challenged to a %s match.", e.Game),
			Tag:   "challenge-proposed",
			Data:  map[string]any{"challenge_id": e.ChallengeID},
		})
	case league.ChallengeApprovedEvent:
		n.notifyCaptains(ctx, []string{e.ChallengerTeamID, e.OpponentTeamID}, NotificationPayload{
			Title: "Challenge approved",
			Body:  "Both teams agreed on the terms. Time to book a venue.",
			Tag:   "challenge-approved",
			Data:  map[string]any{"challenge_id": e.ChallengeID},
		})
	case league.ChallengeBookedEvent:
		n.notifyCaptains(ctx, []string{e.ChallengerTeamID, e.OpponentTeamID}, NotificationPayload{
			Title: "Venue booked",
			Body:  "A venue has been reserved for your challenge.",
			Tag:   "challenge-booked",
			Data:  map[string]any{"challenge_id": e.ChallengeID, "booking_id": e.BookingID},
		})
	case league.BookingDecidedEvent:
		body := "Your venue booking is confirmed."
		if !e.Confirmed {
			body = "Your venue booking was cancelled."
		}
		n.notifyCaptains(ctx, []string{e.ChallengerTeamID, e.OpponentTeamID}, NotificationPayload{
			Title: "Booking update",
			Body:  body,
			Tag:   "booking-decided",
			Data:  map[string]any{"challenge_id": e.ChallengeID, "booking_id": e.BookingID},
		})
	case league.ResultRecordedEvent:
		body := "The match ended in a draw."
		if !e.Draw {
			body = "A winner has been recorded for your match."
		}
		n.notifyCaptains(ctx, []string{e.TeamAID, e.TeamBID}, NotificationPayload{
			Title: "Match result recorded",
			Body:  body,
			Tag:   "result-recorded",
			Data:  map[string]any{"challenge_id": e.ChallengeID, "match_id": e.MatchID},
		})
	}
}

// notifyCaptains resolves each team's captain and pushes to them.
func (n *Notifier) notifyCaptains(ctx context.Context, teamIDs []string, payload NotificationPayload) {
	if !n.service.Enabled() {
		return
	}
	var captains []string
	for _, teamID := range teamIDs {
		var team league.Team
		found, err := n.store.FindOne(ctx, league.CollectionTeams, teamID, &team)
		if err != nil {
			n.log.WithError(err).WithField("team", teamID).Warn("failed to load team for notification")
			continue
		}
		if !found || team.CaptainUserID == "" {
			continue
		}
		captains = append(captains, team.CaptainUserID)
	}
	if len(captains) > 0 {
		n.service.SendToUsers(ctx, captains, payload)
	}
}
