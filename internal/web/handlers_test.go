package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/edvart/gamers-league/internal/league"
	"github.com/edvart/gamers-league/internal/push"
	"github.com/edvart/gamers-league/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := league.NewService(st, log)
	pushSvc := push.NewService(st, log, push.Config{})
	return NewServer(svc, pushSvc, st, log)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func createTeam(t *testing.T, s *Server, name, game, country string) league.Team {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/teams", map[string]any{
		"name":            name,
		"game":            game,
		"country":         country,
		"captain_user_id": uuid.NewString(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create team: status %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[league.Team](t, rec)
}

func createVenue(t *testing.T, s *Server) league.Venue {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/venues", map[string]any{
		"name":    "Mega Arena",
		"address": "1 Arena Way",
		"country": "US",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create venue: status %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[league.Venue](t, rec)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCreateUserValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/users", map[string]any{"username": "solo"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing fields: status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/users", map[string]any{
		"username": "solo",
		"email":    "solo@example.com",
		"country":  "US",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	user := decodeBody[league.GamerUser](t, rec)
	if user.ID == "" {
		t.Error("created user has no id")
	}
}

func TestCreateTeamAddsCaptain(t *testing.T) {
	s := newTestServer(t)
	team := createTeam(t, s, "Night Owls", "valkyrie", "US")
	if !team.HasMember(team.CaptainUserID) {
		t.Errorf("captain not on roster: %+v", team)
	}
}

func TestListTeamsFilters(t *testing.T) {
	s := newTestServer(t)
	createTeam(t, s, "Alpha", "valkyrie", "US")
	createTeam(t, s, "Beta", "chesswar", "US")
	createTeam(t, s, "Gamma", "valkyrie", "SE")

	rec := doJSON(t, s, http.MethodGet, "/teams?game=valkyrie&country=US", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	teams := decodeBody[[]league.Team](t, rec)
	if len(teams) != 1 || teams[0].Name != "Alpha" {
		t.Errorf("filtered teams = %+v", teams)
	}
}

func TestTeamStatsErrors(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/teams/not-a-uuid/stats", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id: status = %d", rec.Code)
	}
	errResp := decodeBody[errorResponse](t, rec)
	if errResp.Code != league.KindInvalidID {
		t.Errorf("code = %q, want invalid_id", errResp.Code)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/teams/%s/stats", uuid.NewString()), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d", rec.Code)
	}
	errResp = decodeBody[errorResponse](t, rec)
	if errResp.Code != league.KindNotFound {
		t.Errorf("code = %q, want not_found", errResp.Code)
	}
}

func TestProposeChallengeRejectsBadFormat(t *testing.T) {
	s := newTestServer(t)
	t1 := createTeam(t, s, "Alpha", "valkyrie", "US")
	t2 := createTeam(t, s, "Beta", "valkyrie", "US")

	rec := doJSON(t, s, http.MethodPost, "/challenges", map[string]any{
		"challenger_team_id": t1.ID,
		"opponent_team_id":   t2.ID,
		"game":               "valkyrie",
		"country":            "US",
		"format":             "BO9",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestChallengeWorkflow(t *testing.T) {
	s := newTestServer(t)
	t1 := createTeam(t, s, "Alpha", "valkyrie", "US")
	t2 := createTeam(t, s, "Beta", "valkyrie", "US")
	venue := createVenue(t, s)

	// Propose
	rec := doJSON(t, s, http.MethodPost, "/challenges", map[string]any{
		"challenger_team_id": t1.ID,
		"opponent_team_id":   t2.ID,
		"game":               "valkyrie",
		"country":            "US",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("propose: status %d: %s", rec.Code, rec.Body.String())
	}
	ch := decodeBody[league.Challenge](t, rec)
	if ch.Status != league.ChallengeProposed {
		t.Fatalf("status = %q", ch.Status)
	}

	// Both sides approve
	for _, role := range []string{"challenger", "opponent"} {
		rec = doJSON(t, s, http.MethodPost, "/challenges/"+ch.ID+"/approve",
			map[string]any{"team_role": role})
		if rec.Code != http.StatusOK {
			t.Fatalf("approve %s: status %d: %s", role, rec.Code, rec.Body.String())
		}
	}
	approved := decodeBody[league.Challenge](t, rec)
	if approved.Status != league.ChallengeApproved {
		t.Fatalf("status after approvals = %q", approved.Status)
	}

	// Counter-offer resets approvals
	rec = doJSON(t, s, http.MethodPatch, "/challenges/"+ch.ID, map[string]any{
		"proposed_datetime": "2026-09-12T18:00:00Z",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("negotiate: status %d: %s", rec.Code, rec.Body.String())
	}
	negotiated := decodeBody[league.Challenge](t, rec)
	if negotiated.Status != league.ChallengeNegotiating {
		t.Errorf("status after negotiate = %q", negotiated.Status)
	}
	if negotiated.Approvals.Challenger || negotiated.Approvals.Opponent {
		t.Errorf("approvals not reset: %+v", negotiated.Approvals)
	}

	// Book a venue
	rec = doJSON(t, s, http.MethodPost, "/challenges/"+ch.ID+"/book", map[string]any{
		"venue_id":       venue.ID,
		"start_datetime": "2026-09-12T18:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: status %d: %s", rec.Code, rec.Body.String())
	}
	booking := decodeBody[league.Booking](t, rec)
	if booking.Status != league.BookingPending {
		t.Errorf("booking status = %q", booking.Status)
	}

	// Cancel the booking; challenge reverts to approved
	rec = doJSON(t, s, http.MethodPost, "/bookings/"+booking.ID+"/confirm",
		map[string]any{"confirm": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: status %d: %s", rec.Code, rec.Body.String())
	}
	cancelled := decodeBody[league.Booking](t, rec)
	if cancelled.Status != league.BookingCancelled {
		t.Errorf("booking status = %q", cancelled.Status)
	}

	rec = doJSON(t, s, http.MethodGet, "/challenges/"+ch.ID, nil)
	current := decodeBody[league.Challenge](t, rec)
	if current.Status != league.ChallengeApproved {
		t.Errorf("challenge status after cancel = %q", current.Status)
	}

	// Record the result
	rec = doJSON(t, s, http.MethodPost, "/matches/record", map[string]any{
		"challenge_id":   ch.ID,
		"winner_team_id": t1.ID,
		"score_a":        3,
		"score_b":        1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("record: status %d: %s", rec.Code, rec.Body.String())
	}
	match := decodeBody[league.Match](t, rec)
	if match.Status != league.MatchCompleted {
		t.Errorf("match status = %q", match.Status)
	}

	// Winner's stats show up via the stats endpoint
	rec = doJSON(t, s, http.MethodGet, "/teams/"+t1.ID+"/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: status %d", rec.Code)
	}
	stats := decodeBody[league.TeamStats](t, rec)
	if stats.Wins != 1 || stats.Points != 3 {
		t.Errorf("winner stats = %+v", stats)
	}

	// And on the leaderboard
	rec = doJSON(t, s, http.MethodGet, "/leaderboard?game=valkyrie", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard: status %d", rec.Code)
	}
	entries := decodeBody[[]league.LeaderboardEntry](t, rec)
	if len(entries) == 0 || entries[0].ID != t1.ID {
		t.Errorf("leaderboard = %+v", entries)
	}
}

func TestLeaderboardQueryValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/leaderboard?scope=galactic", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad scope: status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/leaderboard?scope=local", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("local without country: status = %d", rec.Code)
	}
	errResp := decodeBody[errorResponse](t, rec)
	if errResp.Code != league.KindConstraintViolation {
		t.Errorf("code = %q, want constraint_violation", errResp.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/leaderboard?limit=zero", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d", rec.Code)
	}
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/teams", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestPushKeyDisabled(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/push/key", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestPushSubscribe(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/push/subscribe", map[string]any{
		"user_id":  uuid.NewString(),
		"endpoint": "https://push.example.com/sub/abc",
		"keys":     map[string]string{"p256dh": "key", "auth": "secret"},
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("subscribe: status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodDelete, "/push/subscribe", map[string]any{
		"endpoint": "https://push.example.com/sub/abc",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unsubscribe: status %d: %s", rec.Code, rec.Body.String())
	}
}
