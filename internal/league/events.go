package league

// Event is the interface for challenge lifecycle notifications.
type Event interface {
	event() // marker method
}

// ChallengeProposedEvent fires when a new challenge is created.
type ChallengeProposedEvent struct {
	ChallengeID      string
	ChallengerTeamID string
	OpponentTeamID   string
	Game             string
}

func (ChallengeProposedEvent) event() {}

// ChallengeApprovedEvent fires when both sides have approved the current terms.
type ChallengeApprovedEvent struct {
	ChallengeID      string
	ChallengerTeamID string
	OpponentTeamID   string
}

func (ChallengeApprovedEvent) event() {}

// ChallengeBookedEvent fires when a venue booking is created for a challenge.
type ChallengeBookedEvent struct {
	ChallengeID      string
	BookingID        string
	VenueID          string
	ChallengerTeamID string
	OpponentTeamID   string
}

func (ChallengeBookedEvent) event() {}

// BookingDecidedEvent fires when a pending booking is confirmed or cancelled.
type BookingDecidedEvent struct {
	BookingID        string
	ChallengeID      string
	Confirmed        bool
	ChallengerTeamID string
	OpponentTeamID   string
}

func (BookingDecidedEvent) event() {}

// ResultRecordedEvent fires when a match result is recorded for a challenge.
type ResultRecordedEvent struct {
	ChallengeID  string
	MatchID      string
	WinnerTeamID string
	TeamAID      string
	TeamBID      string
	Draw         bool
}

func (ResultRecordedEvent) event() {}
