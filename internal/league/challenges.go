package league

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edvart/gamers-league/internal/store"
)

// ProposeChallengeInput carries the terms of a new challenge.
type ProposeChallengeInput struct {
	ChallengerTeamID string
	OpponentTeamID   string
	Game             string
	Country          string
	ProposedDatetime *time.Time
	Format           MatchFormat
	VenueID          string
	Notes            string
}

// ProposeChallenge creates a challenge in the proposed state. Challenges are
// scoped to same-country, same-game competition, checked here and never
// re-checked later.
func (s *Service) ProposeChallenge(ctx context.Context, in ProposeChallengeInput) (*Challenge, error) {
	challengerID, err := parseID("team", in.ChallengerTeamID)
	if err != nil {
		return nil, err
	}
	opponentID, err := parseID("team", in.OpponentTeamID)
	if err != nil {
		return nil, err
	}
	if in.VenueID != "" {
		if _, err := parseID("venue", in.VenueID); err != nil {
			return nil, err
		}
	}
	if challengerID == opponentID {
		return nil, constraint("a team cannot challenge itself")
	}

	challenger, err := s.loadTeam(ctx, challengerID)
	if err != nil {
		return nil, err
	}
	opponent, err := s.loadTeam(ctx, opponentID)
	if err != nil {
		return nil, err
	}
	if challenger == nil || opponent == nil {
		return nil, invalidReference("both teams must exist")
	}

	if challenger.Country != opponent.Country || challenger.Country != in.Country {
		return nil, constraint("teams must be from the same country")
	}
	if challenger.Game != opponent.Game || challenger.Game != in.Game {
		return nil, constraint("both teams must play the same game")
	}

	format := in.Format
	if format == "" {
		format = DefaultFormat
	}

	ch := Challenge{
		ChallengerTeamID: challengerID,
		OpponentTeamID:   opponentID,
		Game:             in.Game,
		Country:          in.Country,
		ProposedDatetime: in.ProposedDatetime,
		Format:           format,
		VenueID:          in.VenueID,
		Status:           ChallengeProposed,
		Approvals:        Approvals{},
		Notes:            in.Notes,
	}
	id, err := s.store.Insert(ctx, CollectionChallenges, ch)
	if err != nil {
		return nil, fmt.Errorf("insert challenge: %w", err)
	}
	ch.ID = id

	s.log.WithFields(logrus.Fields{
		"challenge":  id,
		"challenger": challenger.Name,
		"opponent":   opponent.Name,
	}).Info("challenge proposed")

	s.emit(ChallengeProposedEvent{
		ChallengeID:      id,
		ChallengerTeamID: challengerID,
		OpponentTeamID:   opponentID,
		Game:             in.Game,
	})
	return &ch, nil
}

// NegotiateInput carries counter-terms. Nil fields are left unchanged.
type NegotiateInput struct {
	ProposedDatetime *time.Time
	Format           *MatchFormat
	VenueID          *string
	Notes            *string
}

// Negotiate overwrites the supplied terms. Any edit invalidates prior
// consent: both approvals reset and the status is forced to negotiating
// regardless of where the challenge was, including approved or later.
func (s *Service) Negotiate(ctx context.Context, challengeID string, in NegotiateInput) (*Challenge, error) {
	id, err := parseID("challenge", challengeID)
	if err != nil {
		return nil, err
	}
	ch, err := s.loadChallenge(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := store.Fields{
		"status":    ChallengeNegotiating,
		"approvals": Approvals{},
	}
	if in.ProposedDatetime != nil {
		fields["proposed_datetime"] = *in.ProposedDatetime
		ch.ProposedDatetime = in.ProposedDatetime
	}
	if in.Format != nil {
		fields["format"] = *in.Format
		ch.Format = *in.Format
	}
	if in.VenueID != nil {
		if _, err := parseID("venue", *in.VenueID); err != nil {
			return nil, err
		}
		fields["venue_id"] = *in.VenueID
		ch.VenueID = *in.VenueID
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
		ch.Notes = *in.Notes
	}

	if err := s.store.UpdateFields(ctx, CollectionChallenges, id, fields); err != nil {
		return nil, fmt.Errorf("update challenge: %w", err)
	}
	ch.Status = ChallengeNegotiating
	ch.Approvals = Approvals{}
	return ch, nil
}

// Approve records one side's consent. The status flips to approved only
// once both sides have approved; a lone approval leaves the status alone.
func (s *Service) Approve(ctx context.Context, challengeID string, role ApprovalRole) (*Challenge, error) {
	id, err := parseID("challenge", challengeID)
	if err != nil {
		return nil, err
	}
	ch, err := s.loadChallenge(ctx, id)
	if err != nil {
		return nil, err
	}

	switch role {
	case RoleChallenger:
		ch.Approvals.Challenger = true
	case RoleOpponent:
		ch.Approvals.Opponent = true
	default:
		return nil, constraint("unknown approval role %q", role)
	}

	wasApproved := ch.Status == ChallengeApproved
	if ch.Approvals.Both() {
		ch.Status = ChallengeApproved
	}

	fields := store.Fields{
		"approvals": ch.Approvals,
		"status":    ch.Status,
	}
	if err := s.store.UpdateFields(ctx, CollectionChallenges, id, fields); err != nil {
		return nil, fmt.Errorf("update challenge: %w", err)
	}

	if ch.Status == ChallengeApproved && !wasApproved {
		s.log.WithField("challenge", id).Info("challenge approved by both sides")
		s.emit(ChallengeApprovedEvent{
			ChallengeID:      id,
			ChallengerTeamID: ch.ChallengerTeamID,
			OpponentTeamID:   ch.OpponentTeamID,
		})
	}
	return ch, nil
}

// BookInput carries a venue reservation request.
type BookInput struct {
	VenueID       string
	StartDatetime time.Time
	EndDatetime   *time.Time
}

// Book reserves a venue for the challenge. Allowed from proposed,
// negotiating or approved; approvals are not re-validated. The new booking
// starts pending and the challenge's venue is overwritten.
func (s *Service) Book(ctx context.Context, challengeID string, in BookInput) (*Booking, error) {
	id, err := parseID("challenge", challengeID)
	if err != nil {
		return nil, err
	}
	venueID, err := parseID("venue", in.VenueID)
	if err != nil {
		return nil, err
	}
	ch, err := s.loadChallenge(ctx, id)
	if err != nil {
		return nil, err
	}

	switch ch.Status {
	case ChallengeProposed, ChallengeNegotiating, ChallengeApproved:
	default:
		return nil, constraint("challenge in status %q is not eligible for booking", ch.Status)
	}

	booking := Booking{
		ChallengeID:   id,
		VenueID:       venueID,
		StartDatetime: in.StartDatetime,
		EndDatetime:   in.EndDatetime,
		Status:        BookingPending,
	}
	bookingID, err := s.store.Insert(ctx, CollectionBookings, booking)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	booking.ID = bookingID

	fields := store.Fields{
		"status":   ChallengeBooked,
		"venue_id": venueID,
	}
	if err := s.store.UpdateFields(ctx, CollectionChallenges, id, fields); err != nil {
		return nil, fmt.Errorf("update challenge: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"challenge": id,
		"booking":   bookingID,
		"venue":     venueID,
	}).Info("challenge booked")

	s.emit(ChallengeBookedEvent{
		ChallengeID:      id,
		BookingID:        bookingID,
		VenueID:          venueID,
		ChallengerTeamID: ch.ChallengerTeamID,
		OpponentTeamID:   ch.OpponentTeamID,
	})
	return &booking, nil
}

// ConfirmBooking confirms or cancels a pending booking. Cancelling reverts
// the owning challenge to approved; approvals are deliberately left intact.
func (s *Service) ConfirmBooking(ctx context.Context, bookingID string, confirm bool) (*Booking, error) {
	id, err := parseID("booking", bookingID)
	if err != nil {
		return nil, err
	}
	var booking Booking
	found, err := s.store.FindOne(ctx, CollectionBookings, id, &booking)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if !found {
		return nil, notFound("booking")
	}

	status := BookingConfirmed
	if !confirm {
		status = BookingCancelled
	}
	if err := s.store.UpdateFields(ctx, CollectionBookings, id, store.Fields{"status": status}); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	booking.Status = status

	ch, err := s.loadChallenge(ctx, booking.ChallengeID)
	if err != nil {
		return nil, err
	}
	if status == BookingCancelled {
		fields := store.Fields{"status": ChallengeApproved}
		if err := s.store.UpdateFields(ctx, CollectionChallenges, booking.ChallengeID, fields); err != nil {
			return nil, fmt.Errorf("update challenge: %w", err)
		}
	}

	s.emit(BookingDecidedEvent{
		BookingID:        id,
		ChallengeID:      booking.ChallengeID,
		Confirmed:        confirm,
		ChallengerTeamID: ch.ChallengerTeamID,
		OpponentTeamID:   ch.OpponentTeamID,
	})
	return &booking, nil
}

// RecordResultInput carries a final score for a challenge.
type RecordResultInput struct {
	ChallengeID  string
	WinnerTeamID string
	ScoreA       int
	ScoreB       int
}

// RecordResult creates the immutable match record, completes the challenge
// and settles both teams' stats. Re-recording a completed challenge is
// rejected; the four writes are otherwise independent, with the match
// insert ordered first so a partial failure never loses the result itself.
func (s *Service) RecordResult(ctx context.Context, in RecordResultInput) (*Match, error) {
	challengeID, err := parseID("challenge", in.ChallengeID)
	if err != nil {
		return nil, err
	}
	winnerID, err := parseID("team", in.WinnerTeamID)
	if err != nil {
		return nil, err
	}
	ch, err := s.loadChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if ch.Status == ChallengeCompleted {
		return nil, constraint("challenge already has a recorded result")
	}
	if winnerID != ch.ChallengerTeamID && winnerID != ch.OpponentTeamID {
		return nil, constraint("winner must be one of the teams in the challenge")
	}

	match := Match{
		ChallengeID: challengeID,
		VenueID:     ch.VenueID,
		Game:        ch.Game,
		Format:      ch.Format,
		TeamAID:     ch.ChallengerTeamID,
		TeamBID:     ch.OpponentTeamID,
		Result: &MatchResult{
			WinnerTeamID: winnerID,
			Scores:       Scores{A: in.ScoreA, B: in.ScoreB},
		},
		Status: MatchCompleted,
	}
	matchID, err := s.store.Insert(ctx, CollectionMatches, match)
	if err != nil {
		return nil, fmt.Errorf("insert match: %w", err)
	}
	match.ID = matchID

	fields := store.Fields{"status": ChallengeCompleted}
	if err := s.store.UpdateFields(ctx, CollectionChallenges, challengeID, fields); err != nil {
		return nil, fmt.Errorf("update challenge: %w", err)
	}

	draw := in.ScoreA == in.ScoreB
	if draw {
		s.settle(ctx, ch.ChallengerTeamID, outcomeDraw)
		s.settle(ctx, ch.OpponentTeamID, outcomeDraw)
	} else {
		loserID := ch.OpponentTeamID
		if winnerID == ch.OpponentTeamID {
			loserID = ch.ChallengerTeamID
		}
		s.settle(ctx, winnerID, outcomeWin)
		s.settle(ctx, loserID, outcomeLoss)
	}

	s.log.WithFields(logrus.Fields{
		"challenge": challengeID,
		"match":     matchID,
		"winner":    winnerID,
	}).Info("match result recorded")

	s.emit(ResultRecordedEvent{
		ChallengeID:  challengeID,
		MatchID:      matchID,
		WinnerTeamID: winnerID,
		TeamAID:      ch.ChallengerTeamID,
		TeamBID:      ch.OpponentTeamID,
		Draw:         draw,
	})
	return &match, nil
}
