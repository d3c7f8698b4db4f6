package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edvart/gamers-league/internal/league"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.WithError(err).Error("store ping failed")
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "store unavailable"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload league.GamerUser
	if err := decode(r, &payload); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if payload.Username == "" || payload.Email == "" || payload.Country == "" {
		s.writeBadRequest(w, "username, email and country are required")
		return
	}
	user, err := s.svc.CreateUser(r.Context(), payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if users == nil {
		users = []league.GamerUser{}
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateVenue(w http.ResponseWriter, r *http.Request) {
	var payload league.Venue
	if err := decode(r, &payload); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if payload.Name == "" || payload.Address == "" || payload.Country == "" {
		s.writeBadRequest(w, "name, address and country are required")
		return
	}
	venue, err := s.svc.CreateVenue(r.Context(), payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, venue)
}

func (s *Server) handleListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := s.svc.ListVenues(r.Context(), r.URL.Query().Get("country"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if venues == nil {
		venues = []league.Venue{}
	}
	s.writeJSON(w, http.StatusOK, venues)
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var payload league.Team
	if err := decode(r, &payload); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if payload.Name == "" || payload.Game == "" || payload.Country == "" || payload.CaptainUserID == "" {
		s.writeBadRequest(w, "name, game, country and captain_user_id are required")
		return
	}
	team, err := s.svc.CreateTeam(r.Context(), payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, team)
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	teams, err := s.svc.ListTeams(r.Context(), q.Get("country"), q.Get("game"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if teams == nil {
		teams = []league.Team{}
	}
	s.writeJSON(w, http.StatusOK, teams)
}

func (s *Server) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.TeamStats(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

type proposeChallengeRequest struct {
	ChallengerTeamID string     `json:"challenger_team_id"`
	OpponentTeamID   string     `json:"opponent_team_id"`
	Game             string     `json:"game"`
	Country          string     `json:"country"`
	ProposedDatetime *time.Time `json:"proposed_datetime,omitempty"`
	Format           string     `json:"format,omitempty"`
	VenueID          string     `json:"venue_id,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

func (s *Server) handleProposeChallenge(w http.ResponseWriter, r *http.Request) {
	var payload proposeChallengeRequest
	if err := decode(r, &payload); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if payload.ChallengerTeamID == "" || payload.OpponentTeamID == "" ||
		payload.Game == "" || payload.Country == "" {
		s.writeBadRequest(w, "challenger_team_id, opponent_team_id, game and country are required")
		return
	}

	format := league.DefaultFormat
	if payload.Format != "" {
		var err error
		format, err = league.ParseMatchFormat(payload.Format)
		if err != nil {
			s.writeBadRequest(w, err.Error())
			return
		}
	}

	ch, err := s.svc.ProposeChallenge(r.Context(), league.ProposeChallengeInput{
		ChallengerTeamID: payload.ChallengerTeamID,
		OpponentTeamID:   payload.OpponentTeamID,
		Game:             payload.Game,
		Country:          payload.Country,
		ProposedDatetime: payload.ProposedDatetime,
		Format:           format,
		VenueID:          payload.VenueID,
		Notes:            payload.Notes,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, ch)
}

func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	ch, err := s.svc.GetChallenge(r.Context(), chi.URLParam(r, "challengeID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ch)
}

type negotiateChallengeRequest struct {
	ProposedDatetime *time.Time `json:"proposed_datetime,omitempty"`
	Format           *string    `json:"format,omitempty"`
	VenueID          *string    `json:"venue_id,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

func (s *Server) handleNegotiate(w http.ResponseWriter, r *http.Request) {
	var payload negotiateChallengeRequest
	if err := decode(r, &payload); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	in := league.NegotiateInput{
		ProposedDatetime: payload.ProposedDatetime,
		VenueID:          payload.VenueID,
		Notes:            payload.Notes,
	}
	if payload.Format != nil {
		format, err := league.ParseMatchFormat(*payload.Format)
		if err != nil {
			s.writeBadRequest(w, err.Error())
			return
		}
		in.Format = &format
	}

	ch, err := s.svc.Negotiate(r.Context(), chi.URLParam(r, "challengeID"), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ch)
}

type approveChallengeRequest struct {
	TeamRole string `json:"team_role"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var payload approveChallengeRequest
	if err := decode(r, &payload); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	role, err := league.ParseApprovalRole(payload.TeamRole)
	if err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	ch, err := s.svc.Approve(r.Context(), chi.URLParam(r, "challengeID"), role)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ch)
}

type bookChallengeRequest struct {
	VenueID       string     `json:"venue_id"`
	StartDatetime time.Time  `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime,omitempty"`
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var payload bookChallengeRequest
	if err := decode(r, &payload); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if payload.VenueID == "" || payload.StartDatetime.IsZero() {
		s.writeBadRequest(w, "venue_id and start_datetime are required")
		return
	}
	booking, err := s.svc.Book(r.Context(), chi.URLParam(r, "challengeID"), league.BookInput{
		VenueID:       payload.VenueID,
		StartDatetime: payload.StartDatetime,
		EndDatetime:   payload.EndDatetime,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, booking)
}

type confirmBookingRequest struct {
	Confirm *bool `json:"confirm"`
}

func (s *Server) handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	var payload confirmBookingRequest
	if err := decode(r, &payload); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	confirm := true
	if payload.Confirm != nil {
		confirm = *payload.Confirm
	}
	booking, err := s.svc.ConfirmBooking(r.Context(), chi.URLParam(r, "bookingID"), confirm)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, booking)
}

type recordResultRequest struct {
	ChallengeID  string `json:"challenge_id"`
	WinnerTeamID string `json:"winner_team_id"`
	ScoreA       int    `json:"score_a"`
	ScoreB       int    `json:"score_b"`
}

func (s *Server) handleRecordResult(w http.ResponseWriter, r *http.Request) {
	var payload recordResultRequest
	if err := decode(r, &payload); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if payload.ChallengeID == "" || payload.WinnerTeamID == "" {
		s.writeBadRequest(w, "challenge_id and winner_team_id are required")
		return
	}
	if payload.ScoreA < 0 || payload.ScoreB < 0 {
		s.writeBadRequest(w, "scores must be non-negative")
		return
	}
	match, err := s.svc.RecordResult(r.Context(), league.RecordResultInput{
		ChallengeID:  payload.ChallengeID,
		WinnerTeamID: payload.WinnerTeamID,
		ScoreA:       payload.ScoreA,
		ScoreB:       payload.ScoreB,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, match)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	scope, err := league.ParseLeaderboardScope(q.Get("scope"))
	if err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			s.writeBadRequest(w, "limit must be a positive integer")
			return
		}
	}

	entries, err := s.svc.Leaderboard(r.Context(), league.LeaderboardInput{
		Scope:   scope,
		Game:    q.Get("game"),
		Country: q.Get("country"),
		Limit:   limit,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []league.LeaderboardEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handlePushKey(w http.ResponseWriter, r *http.Request) {
	if !s.push.Enabled() {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "push notifications not configured"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"public_key": s.push.GetPublicKey()})
}

type pushSubscribeRequest struct {
	UserID   string `json:"user_id"`
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (s *Server) handlePushSubscribe(w http.ResponseWriter, r *http.Request) {
	var payload pushSubscribeRequest
	if err := decode(r, &payload); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if payload.UserID == "" || payload.Endpoint == "" {
		s.writeBadRequest(w, "user_id and endpoint are required")
		return
	}
	err := s.push.Subscribe(r.Context(), league.PushSubscription{
		UserID:   payload.UserID,
		Endpoint: payload.Endpoint,
		P256dh:   payload.Keys.P256dh,
		Auth:     payload.Keys.Auth,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func (s *Server) handlePushUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var payload pushUnsubscribeRequest
	if err := decode(r, &payload); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if payload.Endpoint == "" {
		s.writeBadRequest(w, "endpoint is required")
		return
	}
	if err := s.push.Unsubscribe(r.Context(), payload.Endpoint); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
