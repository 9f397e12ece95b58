package brackets

import "time"

// HistoryEntry records a post-hoc winner correction so every override stays
// auditable.
type HistoryEntry struct {
	PreviousWinner Outcome   `json:"previous_winner"`
	NewWinner      Outcome   `json:"new_winner"`
	Reason         string    `json:"reason"`
	ChangedAt      time.Time `json:"changed_at"`
}

// MatchResult is the scoring record of one match. The bracket's winner field
// is authoritative for advancement; the result carries the round-by-round
// detail and the audit trail. Bye advancements never create a MatchResult.
type MatchResult struct {
	MatchID   string         `json:"match_id"`
	Player1   string         `json:"player1"`
	Player2   string         `json:"player2"`
	Winner    Outcome        `json:"winner"`
	Completed bool           `json:"completed"`
	Rounds    []RoundResult  `json:"rounds"`
	Comment   string         `json:"comment,omitempty"`
	History   []HistoryEntry `json:"history,omitempty"`
}

// ResultSet maps match id to its scoring record.
type ResultSet map[string]*MatchResult

// Clone returns a deep copy; mutating the copy leaves the original intact.
func (rs ResultSet) Clone() ResultSet {
	out := make(ResultSet, len(rs))
	for id, mr := range rs {
		c := *mr
		c.Rounds = make([]RoundResult, len(mr.Rounds))
		copy(c.Rounds, mr.Rounds)
		c.History = make([]HistoryEntry, len(mr.History))
		copy(c.History, mr.History)
		out[id] = &c
	}
	return out
}
