package league

import "fmt"

// MatchFormat is the best-of series length for a challenge.
type MatchFormat string

const (
	FormatBO1 MatchFormat = "BO1"
	FormatBO2 MatchFormat = "BO2"
	FormatBO3 MatchFormat = "BO3"
	FormatBO5 MatchFormat = "BO5"
)

// DefaultFormat applies when a proposal omits the format.
const DefaultFormat = FormatBO3

// ParseMatchFormat rejects anything outside the closed set.
func ParseMatchFormat(s string) (MatchFormat, error) {
	switch MatchFormat(s) {
	case FormatBO1, FormatBO2, FormatBO3, FormatBO5:
		return MatchFormat(s), nil
	}
	return "", fmt.Errorf("unknown match format %q", s)
}

// ChallengeStatus tracks a challenge through the negotiation lifecycle.
type ChallengeStatus string

const (
	ChallengeProposed    ChallengeStatus = "proposed"
	ChallengeNegotiating ChallengeStatus = "negotiating"
	ChallengeApproved    ChallengeStatus = "approved"
	ChallengeBooked      ChallengeStatus = "booked"
	ChallengeCompleted   ChallengeStatus = "completed"
	ChallengeRejected    ChallengeStatus = "rejected"
	ChallengeCancelled   ChallengeStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s ChallengeStatus) Terminal() bool {
	return s == ChallengeCompleted || s == ChallengeRejected || s == ChallengeCancelled
}

// BookingStatus tracks a venue reservation.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// MatchStatus tracks a recorded match.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchCompleted MatchStatus = "completed"
)

// ApprovalRole identifies which side of a challenge is consenting.
type ApprovalRole string

const (
	RoleChallenger ApprovalRole = "challenger"
	RoleOpponent   ApprovalRole = "opponent"
)

// ParseApprovalRole rejects anything but the two sides.
func ParseApprovalRole(s string) (ApprovalRole, error) {
	switch ApprovalRole(s) {
	case RoleChallenger, RoleOpponent:
		return ApprovalRole(s), nil
	}
	return "", fmt.Errorf("unknown approval role %q", s)
}

// LeaderboardScope selects the population a leaderboard ranks over.
type LeaderboardScope string

const (
	ScopeGlobal LeaderboardScope = "global"
	ScopeLocal  LeaderboardScope = "local"
)

// ParseLeaderboardScope rejects anything outside the closed set. The empty
// string defaults to global, matching the query-parameter default.
func ParseLeaderboardScope(s string) (LeaderboardScope, error) {
	switch LeaderboardScope(s) {
	case "":
		return ScopeGlobal, nil
	case ScopeGlobal, ScopeLocal:
		return LeaderboardScope(s), nil
	}
	return "", fmt.Errorf("unknown leaderboard scope %q", s)
}
