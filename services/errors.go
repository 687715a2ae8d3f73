package services

import "errors"

var (
	ErrForbidden            = errors.New("operation not allowed for this user")
	ErrValidationFailed     = errors.New("validation failed")
	ErrTournamentNotReady   = errors.New("tournament is not in a state that allows this operation")
	ErrBracketAlreadyExists = errors.New("bracket already exists for this tournament")
	ErrBracketNotGenerated  = errors.New("bracket has not been generated for this tournament")
	ErrUnsupportedBracket   = errors.New("unsupported bracket type")

	ErrMatchAlreadyDecided     = errors.New("match result has already been recorded")
	ErrMatchNotReady           = errors.New("match does not have both participants yet")
	ErrWinnerNotInMatch        = errors.New("winner is not a participant of the match")
	ErrNextMatchSlotOccupied   = errors.New("advancement target slot is already occupied")
	ErrMatchTournamentMismatch = errors.New("match does not belong to the given tournament")
)
