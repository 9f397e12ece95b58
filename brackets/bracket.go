package brackets

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire sentinels. In memory a slot/winner is a tagged value; on the wire a
// participant slot is null, "(bye)" or a name, and a winner is null,
// "NO_WINNER" or a name.
const (
	byeSentinel      = "(bye)"
	noWinnerSentinel = "NO_WINNER"
)

type slotKind uint8

const (
	slotEmpty slotKind = iota
	slotBye
	slotPlayer
)

// Slot is one of the two participant positions of a match: empty (waiting for
// a prior round's winner), a bye, or an actual player.
type Slot struct {
	kind slotKind
	name string
}

func EmptySlot() Slot { return Slot{} }
func ByeSlot() Slot { return Slot{kind: slotBye} }
func PlayerSlot(name string) Slot { return Slot{kind: slotPlayer, name: name} }

func (s Slot) IsEmpty() bool { return s.kind == slotEmpty }
func (s Slot) IsBye() bool { return s.kind == slotBye }
func (s Slot) IsPlayer() bool { return s.kind == slotPlayer }

// Name returns the player name and whether the slot holds a player.
func (s Slot) Name() (string, bool) {
	return s.name, s.kind == slotPlayer
}

func (s Slot) String() string {
	switch s.kind {
	case slotBye:
		return byeSentinel
	case slotPlayer:
		return s.name
	default:
		return ""
	}
}

func (s Slot) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case slotEmpty:
		return []byte("null"), nil
	case slotBye:
		return json.Marshal(byeSentinel)
	default:
		return json.Marshal(s.name)
	}
}

func (s *Slot) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = EmptySlot()
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("participant slot must be null or a string: %w", err)
	}
	if str == byeSentinel {
		*s = ByeSlot()
	} else {
		*s = PlayerSlot(str)
	}
	return nil
}

type outcomeKind uint8

const (
	outcomeUndecided outcomeKind = iota
	outcomeNoWinner
	outcomeDecided
)

// Outcome is a match (or scored round) result: undecided, decided with a
// winner, or decided with nobody advancing (both finalists disqualified).
type Outcome struct {
	kind outcomeKind
	name string
}

func Undecided() Outcome { return Outcome{} }
func NoWinner() Outcome { return Outcome{kind: outcomeNoWinner} }
func Decided(name string) Outcome { return Outcome{kind: outcomeDecided, name: name} }

func (o Outcome) IsUndecided() bool { return o.kind == outcomeUndecided }
func (o Outcome) IsNoWinner() bool { return o.kind == outcomeNoWinner }
func (o Outcome) IsDecided() bool { return o.kind == outcomeDecided }

// Winner returns the winner name and whether the outcome names one.
func (o Outcome) Winner() (string, bool) {
	return o.name, o.kind == outcomeDecided
}

func (o Outcome) String() string {
	switch o.kind {
	case outcomeNoWinner:
		return noWinnerSentinel
	case outcomeDecided:
		return o.name
	default:
		return ""
	}
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	switch o.kind {
	case outcomeUndecided:
		return []byte("null"), nil
	case outcomeNoWinner:
		return json.Marshal(noWinnerSentinel)
	default:
		return json.Marshal(o.name)
	}
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*o = Undecided()
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("winner must be null or a string: %w", err)
	}
	if str == noWinnerSentinel {
		*o = NoWinner()
	} else {
		*o = Decided(str)
	}
	return nil
}

// Match is one cell of the drawsheet.
type Match struct {
	ID          string  `json:"id"`
	Round       int     `json:"round"`
	Position    int     `json:"position"`
	Slots       [2]Slot `json:"participants"`
	Winner      Outcome `json:"winner"`
	NextMatchID string  `json:"next_match_id,omitempty"`
}

// Bracket is the full single-elimination tree, round-major: Bracket[0] is the
// first round, the last round holds exactly one match.
type Bracket [][]Match

// Find returns the round and position of the match with the given id.
func (b Bracket) Find(matchID string) (round, pos int, ok bool) {
	for r := range b {
		for p := range b[r] {
			if b[r][p].ID == matchID {
				return r, p, true
			}
		}
	}
	return 0, 0, false
}

// Participants lists the distinct real players currently placed in the
// bracket, in round-0 scan order.
func (b Bracket) Participants() []string {
	if len(b) == 0 {
		return nil
	}
	names := make([]string, 0, len(b[0])*2)
	for _, m := range b[0] {
		for _, s := range m.Slots {
			if name, ok := s.Name(); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

// withRoundCopy returns a bracket sharing every round slice except round r,
// which is replaced by a fresh copy. Untouched rounds keep their identity so
// consumers can detect change by reference inequality.
func (b Bracket) withRoundCopy(r int) Bracket {
	next := make(Bracket, len(b))
	copy(next, b)
	round := make([]Match, len(b[r]))
	copy(round, b[r])
	next[r] = round
	return next
}
