// Package league implements the competitive-gaming league core: entity
// management, the challenge negotiation state machine, match-result
// settlement, and the points leaderboard.
package league

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/edvart/gamers-league/internal/store"
)

// Service owns all domain operations against the document store.
type Service struct {
	store  store.Store
	log    *logrus.Logger
	events chan Event
}

// NewService creates a Service around an injected store handle.
func NewService(st store.Store, log *logrus.Logger) *Service {
	return &Service{
		store:  st,
		log:    log,
		events: make(chan Event, 100),
	}
}

// Events returns the lifecycle event channel for consumers.
func (s *Service) Events() <-chan Event {
	return s.events
}

// emit publishes an event without blocking the request path. A full buffer
// drops the event; notifications are best-effort side channels.
func (s *Service) emit(e Event) {
	select {
	case s.events <- e:
	default:
		s.log.WithField("event", fmt.Sprintf("%T", e)).Warn("event buffer full, dropping")
	}
}

// parseID validates an identifier string at the boundary.
func parseID(what, id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", invalidID(what)
	}
	return id, nil
}

// CreateUser registers a gamer profile.
func (s *Service) CreateUser(ctx context.Context, u GamerUser) (*GamerUser, error) {
	u.ID = ""
	id, err := s.store.Insert(ctx, CollectionUsers, u)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	return &u, nil
}

// ListUsers returns every registered user.
func (s *Service) ListUsers(ctx context.Context) ([]GamerUser, error) {
	var users []GamerUser
	if err := s.store.FindMany(ctx, CollectionUsers, nil, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CreateVenue registers a venue.
func (s *Service) CreateVenue(ctx context.Context, v Venue) (*Venue, error) {
	v.ID = ""
	id, err := s.store.Insert(ctx, CollectionVenues, v)
	if err != nil {
		return nil, fmt.Errorf("insert venue: %w", err)
	}
	v.ID = id
	return &v, nil
}

// ListVenues returns venues, optionally filtered by country.
func (s *Service) ListVenues(ctx context.Context, country string) ([]Venue, error) {
	filter := store.Filter{}
	if country != "" {
		filter["country"] = country
	}
	var venues []Venue
	if err := s.store.FindMany(ctx, CollectionVenues, filter, &venues); err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return venues, nil
}

// CreateTeam registers a team. The captain always ends up on the roster.
func (s *Service) CreateTeam(ctx context.Context, t Team) (*Team, error) {
	t.ID = ""
	if t.CaptainUserID != "" && !t.HasMember(t.CaptainUserID) {
		t.MemberUserIDs = append(t.MemberUserIDs, t.CaptainUserID)
	}
	if t.MemberUserIDs == nil {
		t.MemberUserIDs = []string{}
	}
	if t.Achievements == nil {
		t.Achievements = []string{}
	}
	t.Stats = TeamStats{}

	id, err := s.store.Insert(ctx, CollectionTeams, t)
	if err != nil {
		return nil, fmt.Errorf("insert team: %w", err)
	}
	t.ID = id

	s.log.WithFields(logrus.Fields{
		"team": t.Name,
		"game": t.Game,
	}).Info("team registered")
	return &t, nil
}

// ListTeams returns teams, optionally filtered by country and game.
func (s *Service) ListTeams(ctx context.Context, country, game string) ([]Team, error) {
	filter := store.Filter{}
	if country != "" {
		filter["country"] = country
	}
	if game != "" {
		filter["game"] = game
	}
	var teams []Team
	if err := s.store.FindMany(ctx, CollectionTeams, filter, &teams); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

// TeamStats returns a team's cumulative record.
func (s *Service) TeamStats(ctx context.Context, teamID string) (*TeamStats, error) {
	id, err := parseID("team", teamID)
	if err != nil {
		return nil, err
	}
	var team Team
	found, err := s.store.FindOne(ctx, CollectionTeams, id, &team)
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	if !found {
		return nil, notFound("team")
	}
	return &team.Stats, nil
}

// GetChallenge returns a challenge by id.
func (s *Service) GetChallenge(ctx context.Context, challengeID string) (*Challenge, error) {
	id, err := parseID("challenge", challengeID)
	if err != nil {
		return nil, err
	}
	return s.loadChallenge(ctx, id)
}

func (s *Service) loadChallenge(ctx context.Context, id string) (*Challenge, error) {
	var ch Challenge
	found, err := s.store.FindOne(ctx, CollectionChallenges, id, &ch)
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	if !found {
		return nil, notFound("challenge")
	}
	return &ch, nil
}

func (s *Service) loadTeam(ctx context.Context, id string) (*Team, error) {
	var team Team
	found, err := s.store.FindOne(ctx, CollectionTeams, id, &team)
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &team, nil
}
