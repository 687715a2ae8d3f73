package models

import "time"

type ParticipantStatus string

const (
	ParticipantStatusApplication ParticipantStatus = "application"
	ParticipantStatusConfirmed   ParticipantStatus = "confirmed"
	ParticipantStatusWithdrawn   ParticipantStatus = "withdrawn"
)

// Participant is a roster entry for one tournament. The bracket engine only
// references participants by id and never mutates them.
type Participant struct {
	ID           int               `json:"id" db:"id"`
	UserID       int               `json:"user_id" db:"user_id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	Seed         *int              `json:"seed,omitempty" db:"seed"`
	Status       ParticipantStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}

// DisplayName prefers the linked user's nickname, then the full name.
func (p *Participant) DisplayName() string {
	if p.User != nil {
		if p.User.Nickname != nil && *p.User.Nickname != "" {
			return *p.User.Nickname
		}
		if p.User.FirstName != "" {
			name := p.User.FirstName
			if p.User.LastName != "" {
				name += " " + p.User.LastName
			}
			return name
		}
	}
	return ""
}
