package brackets

import "fmt"

// WinMethod is the categorical reason a scored round was decided, using the
// standard contest abbreviations.
type WinMethod string

const (
	WinByFinalScore       WinMethod = "PTF" // higher final score
	WinByPointGap         WinMethod = "PTG" // score gap reached the gap threshold
	WinByRefereeStop      WinMethod = "RSC" // referee stopped the contest
	WinByWithdrawal       WinMethod = "WDR"
	WinByDisqualification WinMethod = "DSQ"
	WinByPunitive         WinMethod = "PUN" // punitive declaration
	WinByBothDisqualified WinMethod = "DQB" // both athletes disqualified
)

// PointGapThreshold is the score gap at which a round is decided by point gap
// rather than final score.
const PointGapThreshold = 12

// RequiresScores reports whether the method is derived from entered scores.
func (m WinMethod) RequiresScores() bool {
	return m == WinByFinalScore || m == WinByPointGap
}

// EndsMatch reports whether a round decided by this method ends the whole
// match regardless of remaining rounds.
func (m WinMethod) EndsMatch() bool {
	return m == WinByDisqualification || m == WinByWithdrawal || m == WinByBothDisqualified
}

func (m WinMethod) Valid() bool {
	switch m {
	case WinByFinalScore, WinByPointGap, WinByRefereeStop, WinByWithdrawal,
		WinByDisqualification, WinByPunitive, WinByBothDisqualified:
		return true
	}
	return false
}

// RoundResult is one scored sub-round within a match.
type RoundResult struct {
	Player1Score *int      `json:"player1Score"`
	Player2Score *int      `json:"player2Score"`
	Method       WinMethod `json:"winMethod,omitempty"`
	Winner       Outcome   `json:"winner"`
}

// RoundUpdate is a partial update to one round; nil fields are left as-is.
type RoundUpdate struct {
	Player1Score *int
	Player2Score *int
	Method       *WinMethod
	Winner       *Outcome
}

// ScoreRound applies an update to rounds[idx] and returns a fresh slice; the
// input is never mutated. idx equal to len(rounds) appends a new round.
//
// When both scores are present and the method is score-derived, the round
// winner is recomputed: higher score wins, with method PTG if the gap reached
// the threshold and PTF otherwise; equal scores leave the round undecided.
// Selecting a method that does not use scores clears any entered scores and
// keeps the explicitly chosen winner, except DQB which always records that
// nobody won the round.
func ScoreRound(rounds []RoundResult, idx int, upd RoundUpdate, player1, player2 string) ([]RoundResult, error) {
	if idx < 0 || idx > len(rounds) {
		return nil, fmt.Errorf("%w: %d of %d rounds", ErrRoundIndexOutOfRange, idx, len(rounds))
	}
	if upd.Method != nil && *upd.Method != "" && !upd.Method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWinMethod, *upd.Method)
	}

	out := make([]RoundResult, len(rounds), len(rounds)+1)
	copy(out, rounds)
	if idx == len(out) {
		out = append(out, RoundResult{})
	}
	rr := out[idx]

	if upd.Player1Score != nil {
		rr.Player1Score = upd.Player1Score
	}
	if upd.Player2Score != nil {
		rr.Player2Score = upd.Player2Score
	}
	if upd.Method != nil {
		rr.Method = *upd.Method
	}
	if upd.Winner != nil {
		rr.Winner = *upd.Winner
	}

	switch {
	case rr.Method != "" && !rr.Method.RequiresScores():
		rr.Player1Score = nil
		rr.Player2Score = nil
		if rr.Method == WinByBothDisqualified {
			rr.Winner = NoWinner()
		}
	case rr.Player1Score != nil && rr.Player2Score != nil:
		s1, s2 := *rr.Player1Score, *rr.Player2Score
		gap := s1 - s2
		if gap < 0 {
			gap = -gap
		}
		switch {
		case s1 == s2:
			rr.Winner = Undecided()
			rr.Method = ""
		case s1 > s2:
			rr.Winner = Decided(player1)
		default:
			rr.Winner = Decided(player2)
		}
		if s1 != s2 {
			if gap >= PointGapThreshold {
				rr.Method = WinByPointGap
			} else {
				rr.Method = WinByFinalScore
			}
		}
	}

	out[idx] = rr
	return out, nil
}

// DetermineMatchWinner reduces the scored rounds to a match outcome. A round
// decided by a match-ending method settles the match immediately; otherwise
// a player must win strictly more than half of roundsPerMatch, and more
// rounds than the opponent. NoWinner means
// the match is settled with nobody advancing; Undecided means more rounds are
// needed.
func DetermineMatchWinner(rounds []RoundResult, player1, player2 string, roundsPerMatch int) Outcome {
	for _, rr := range rounds {
		if !rr.Method.EndsMatch() {
			continue
		}
		if rr.Winner.IsNoWinner() {
			return NoWinner()
		}
		if name, ok := rr.Winner.Winner(); ok {
			return Decided(name)
		}
	}

	var wins1, wins2 int
	for _, rr := range rounds {
		name, ok := rr.Winner.Winner()
		if !ok {
			continue
		}
		switch name {
		case player1:
			wins1++
		case player2:
			wins2++
		}
	}
	switch {
	case wins1*2 > roundsPerMatch && wins1 > wins2:
		return Decided(player1)
	case wins2*2 > roundsPerMatch && wins2 > wins1:
		return Decided(player2)
	}
	return Undecided()
}
