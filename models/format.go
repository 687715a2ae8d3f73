package models

// BracketType selects the generation algorithm a format uses.
type BracketType string

const (
	BracketTypeSingleElimination BracketType = "SingleElimination"
	BracketTypeDoubleElimination BracketType = "DoubleElimination"
)

type Format struct {
	ID          int         `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	BracketType BracketType `json:"bracket_type" db:"bracket_type"`
}
