package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
)

// BracketSection identifies which ladder of the bracket a match belongs to.
// Single elimination only ever uses SectionWinners.
type BracketSection string

const (
	SectionWinners BracketSection = "winners"
	SectionLosers  BracketSection = "losers"
	SectionFinals  BracketSection = "finals"
)

// Match is one node of a persisted bracket. NextMatchID points at the match
// the winner advances into; NextSlot is only set when the advancement map
// recorded an explicit slot (round 1 -> round 2 links), otherwise the winner
// takes the first empty slot. LoserNextMatchID is used by double elimination.
type Match struct {
	ID           int            `json:"id" db:"id"`
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	Section      BracketSection `json:"section" db:"section"`
	Round        int            `json:"round" db:"round"`
	MatchNumber  int            `json:"match_number" db:"match_number"`

	Player1ID *int `json:"player1_id,omitempty" db:"player1_participant_id"`
	Player2ID *int `json:"player2_id,omitempty" db:"player2_participant_id"`

	Player1Score *int `json:"player1_score,omitempty" db:"player1_score"`
	Player2Score *int `json:"player2_score,omitempty" db:"player2_score"`
	WinnerID     *int `json:"winner_id,omitempty" db:"winner_participant_id"`

	IsBye bool `json:"is_bye" db:"is_bye"`

	NextMatchID      *int `json:"next_match_id,omitempty" db:"next_match_id"`
	NextSlot         *int `json:"next_slot,omitempty" db:"next_slot"`
	LoserNextMatchID *int `json:"loser_next_match_id,omitempty" db:"loser_next_match_id"`
	LoserNextSlot    *int `json:"loser_next_slot,omitempty" db:"loser_next_slot"`

	Status    MatchStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// HasParticipant reports whether id occupies one of the two slots.
func (m *Match) HasParticipant(id int) bool {
	if m.Player1ID != nil && *m.Player1ID == id {
		return true
	}
	return m.Player2ID != nil && *m.Player2ID == id
}

// Opponent returns the other participant of the match, if both are known.
func (m *Match) Opponent(id int) *int {
	if m.Player1ID != nil && *m.Player1ID == id {
		return m.Player2ID
	}
	if m.Player2ID != nil && *m.Player2ID == id {
		return m.Player1ID
	}
	return nil
}
