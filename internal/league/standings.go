package league

import (
	"context"
	"sort"

	"github.com/edvart/gamers-league/internal/store"
)

type outcome int

const (
	outcomeWin outcome = iota
	outcomeLoss
	outcomeDraw
)

// Points awarded per outcome: win 3, draw 1, loss 0.
const (
	pointsWin  = 3
	pointsDraw = 1
)

// apply folds one match outcome into the cumulative record.
func (st TeamStats) apply(oc outcome) TeamStats {
	st.Matches++
	switch oc {
	case outcomeWin:
		st.Wins++
		st.Points += pointsWin
	case outcomeLoss:
		st.Losses++
	case outcomeDraw:
		st.Draws++
		st.Points += pointsDraw
	}
	return st
}

// settle read-modify-writes one team's stats. A missing team is skipped
// silently so a stats side effect never fails the whole result recording.
func (s *Service) settle(ctx context.Context, teamID string, oc outcome) {
	team, err := s.loadTeam(ctx, teamID)
	if err != nil {
		s.log.WithError(err).WithField("team", teamID).Error("failed to load team for stats update")
		return
	}
	if team == nil {
		s.log.WithField("team", teamID).Warn("skipping stats update for unknown team")
		return
	}

	fields := store.Fields{"stats": team.Stats.apply(oc)}
	if err := s.store.UpdateFields(ctx, CollectionTeams, teamID, fields); err != nil {
		s.log.WithError(err).WithField("team", teamID).Error("failed to update team stats")
	}
}

// DefaultLeaderboardLimit applies when a query omits the limit.
const DefaultLeaderboardLimit = 20

// LeaderboardInput selects and truncates the ranking.
type LeaderboardInput struct {
	Scope   LeaderboardScope
	Game    string
	Country string
	Limit   int
}

// LeaderboardEntry is the ranked projection of a team.
type LeaderboardEntry struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Game    string    `json:"game"`
	Country string    `json:"country"`
	Stats   TeamStats `json:"stats"`
}

// Leaderboard ranks teams descending by (points, wins). Ties beyond wins
// keep collection order. A local scope requires a country.
func (s *Service) Leaderboard(ctx context.Context, in LeaderboardInput) ([]LeaderboardEntry, error) {
	filter := store.Filter{}
	if in.Game != "" {
		filter["game"] = in.Game
	}
	if in.Scope == ScopeLocal {
		if in.Country == "" {
			return nil, constraint("country is required for a local leaderboard")
		}
		filter["country"] = in.Country
	}

	var teams []Team
	if err := s.store.FindMany(ctx, CollectionTeams, filter, &teams); err != nil {
		return nil, err
	}

	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].Stats.Points != teams[j].Stats.Points {
			return teams[i].Stats.Points > teams[j].Stats.Points
		}
		return teams[i].Stats.Wins > teams[j].Stats.Wins
	})

	limit := in.Limit
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if len(teams) > limit {
		teams = teams[:limit]
	}

	entries := make([]LeaderboardEntry, 0, len(teams))
	for _, t := range teams {
		entries = append(entries, LeaderboardEntry{
			ID:      t.ID,
			Name:    t.Name,
			Game:    t.Game,
			Country: t.Country,
			Stats:   t.Stats,
		})
	}
	return entries, nil
}
