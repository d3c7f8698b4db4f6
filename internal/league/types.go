package league

import "time"

// Collection names in the document store, one per entity type.
const (
	CollectionUsers         = "gameruser"
	CollectionTeams         = "team"
	CollectionVenues        = "venue"
	CollectionChallenges    = "challenge"
	CollectionBookings      = "booking"
	CollectionMatches       = "match"
	CollectionSubscriptions = "pushsubscription"
)

// GamerUser is a player profile. Pure CRUD, no derived state.
type GamerUser struct {
	ID          string            `json:"id,omitempty"`
	Username    string            `json:"username"`
	DisplayName string            `json:"display_name,omitempty"`
	Email       string            `json:"email"`
	Country     string            `json:"country"`
	Bio         string            `json:"bio,omitempty"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	Streams     map[string]string `json:"streams,omitempty"`
}

// TeamStats is a team's cumulative record. Only the stats aggregator
// writes it after match completion.
type TeamStats struct {
	Matches int `json:"matches"`
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Draws   int `json:"draws"`
	Points  int `json:"points"`
}

type Team struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name"`
	Game          string    `json:"game"`
	Country       string    `json:"country"`
	CaptainUserID string    `json:"captain_user_id"`
	MemberUserIDs []string  `json:"member_user_ids"`
	Achievements  []string  `json:"achievements"`
	Stats         TeamStats `json:"stats"`
}

// HasMember reports whether userID is on the roster.
func (t *Team) HasMember(userID string) bool {
	for _, id := range t.MemberUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type Venue struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	AdminUserID  string `json:"admin_user_id,omitempty"`
}

// Approvals holds the per-side consent flags on a challenge. Owned
// exclusively by the negotiation state machine.
type Approvals struct {
	Challenger bool `json:"challenger"`
	Opponent   bool `json:"opponent"`
}

// Both reports whether both sides have consented to the current terms.
func (a Approvals) Both() bool {
	return a.Challenger && a.Opponent
}

type Challenge struct {
	ID               string          `json:"id,omitempty"`
	ChallengerTeamID string          `json:"challenger_team_id"`
	OpponentTeamID   string          `json:"opponent_team_id"`
	Game             string          `json:"game"`
	Country          string          `json:"country"`
	ProposedDatetime *time.Time      `json:"proposed_datetime,omitempty"`
	Format           MatchFormat     `json:"format"`
	VenueID          string          `json:"venue_id,omitempty"`
	Status           ChallengeStatus `json:"status"`
	Approvals        Approvals       `json:"approvals"`
	Notes            string          `json:"notes,omitempty"`
}

type Booking struct {
	ID            string        `json:"id,omitempty"`
	ChallengeID   string        `json:"challenge_id"`
	VenueID       string        `json:"venue_id"`
	StartDatetime time.Time     `json:"start_datetime"`
	EndDatetime   *time.Time    `json:"end_datetime,omitempty"`
	Status        BookingStatus `json:"status"`
}

// MatchResult is the final score of a completed match.
type MatchResult struct {
	WinnerTeamID string `json:"winner_team_id"`
	Scores       Scores `json:"scores"`
}

type Scores struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Match is the immutable record of a completed challenge, snapshotting the
// challenge's game, format and venue at recording time.
type Match struct {
	ID          string       `json:"id,omitempty"`
	ChallengeID string       `json:"challenge_id"`
	VenueID     string       `json:"venue_id,omitempty"`
	Game        string       `json:"game"`
	Format      MatchFormat  `json:"format"`
	TeamAID     string       `json:"team_a_id"`
	TeamBID     string       `json:"team_b_id"`
	Result      *MatchResult `json:"result,omitempty"`
	Status      MatchStatus  `json:"status"`
}

// PushSubscription is a web-push endpoint registered by a user.
type PushSubscription struct {
	ID       string `json:"id,omitempty"`
	UserID   string `json:"user_id"`
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}
