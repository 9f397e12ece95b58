package brackets

import "errors"

// Failures returned by the core bracket operations. Callers must treat any
// error as "nothing changed": operations never partially mutate their inputs.
var (
	ErrNoParticipants       = errors.New("cannot build a bracket with zero participants")
	ErrMatchNotFound        = errors.New("match not found in bracket")
	ErrDuplicateName        = errors.New("participant name already in use")
	ErrParticipantNotFound  = errors.New("participant not found in bracket")
	ErrTournamentInProgress = errors.New("tournament already started, participants can no longer be changed")
	ErrLastParticipant      = errors.New("cannot remove the last participant")
	ErrRoundIndexOutOfRange = errors.New("round index out of range")
	ErrInvalidWinMethod     = errors.New("unknown win method")
	ErrWinnerNotInMatch     = errors.New("winner is not a participant of this match")
)
