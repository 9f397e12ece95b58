package services

import "errors"

// Errors shared across services and the HTTP error mapping. Bracket-level
// failures (duplicate name, match not found, tournament in progress and so
// on) are surfaced as the brackets package sentinels wrapped with context;
// the values below cover the service layer's own rules.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed        = errors.New("validation failed")
	ErrPasswordTooShort        = errors.New("password is too short")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrTournamentInvalidDates  = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidRounds = errors.New("rounds per match must be a positive odd number")
	ErrInvalidSeedType         = errors.New("invalid seed type")
	ErrMatchNotScored          = errors.New("match has no scored rounds to submit")
	ErrMatchUndecided          = errors.New("scored rounds do not decide the match yet")
	ErrMatchHasBye             = errors.New("bye matches are not scored")
	ErrMatchAlreadyCompleted   = errors.New("match result already submitted; amend it with a winner override")

	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrUserNotFound       = errors.New("user not found")
)
