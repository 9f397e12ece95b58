package brackets

import (
	"fmt"
	"math"
	"strings"
)

// Started reports whether real play has begun: a completed or partially
// scored result for a match without a bye, or a decided winner on any match
// whose two slots both hold real players. Participant mutations are blocked
// once this is true; disqualification is the supported path from then on.
// The predicate is recomputed from current state on every call.
func Started(b Bracket, results ResultSet) bool {
	for id, mr := range results {
		r, p, ok := b.Find(id)
		if ok && (b[r][p].Slots[0].IsBye() || b[r][p].Slots[1].IsBye()) {
			continue
		}
		if mr.Completed {
			return true
		}
		for _, rr := range mr.Rounds {
			if rr.Player1Score != nil || rr.Player2Score != nil || rr.Method != "" {
				return true
			}
		}
	}
	for _, round := range b {
		for _, m := range round {
			if m.Slots[0].IsPlayer() && m.Slots[1].IsPlayer() && !m.Winner.IsUndecided() {
				return true
			}
		}
	}
	return false
}

// Rename replaces every occurrence of oldName across the bracket and the
// result set: participant slots, winner fields, round winners and history
// entries. The new name must not collide (case-insensitively) with another
// current participant.
func Rename(b Bracket, results ResultSet, oldName, newName string) (Bracket, ResultSet, error) {
	if !strings.EqualFold(oldName, newName) {
		for _, name := range b.Participants() {
			if strings.EqualFold(name, newName) {
				return nil, nil, fmt.Errorf("%w: %q", ErrDuplicateName, newName)
			}
		}
	}

	found := false
	for _, round := range b {
		for _, m := range round {
			if slotHolds(m.Slots, oldName) {
				found = true
			}
		}
	}
	if !found {
		return nil, nil, fmt.Errorf("%w: %q", ErrParticipantNotFound, oldName)
	}

	swap := func(o Outcome) Outcome {
		if name, ok := o.Winner(); ok && name == oldName {
			return Decided(newName)
		}
		return o
	}

	nb := cloneBracket(b)
	for r := range nb {
		for p := range nb[r] {
			m := &nb[r][p]
			for i, s := range m.Slots {
				if name, ok := s.Name(); ok && name == oldName {
					m.Slots[i] = PlayerSlot(newName)
				}
			}
			m.Winner = swap(m.Winner)
		}
	}

	nr := results.Clone()
	for _, mr := range nr {
		if mr.Player1 == oldName {
			mr.Player1 = newName
		}
		if mr.Player2 == oldName {
			mr.Player2 = newName
		}
		mr.Winner = swap(mr.Winner)
		for i := range mr.Rounds {
			mr.Rounds[i].Winner = swap(mr.Rounds[i].Winner)
		}
		for i := range mr.History {
			mr.History[i].PreviousWinner = swap(mr.History[i].PreviousWinner)
			mr.History[i].NewWinner = swap(mr.History[i].NewWinner)
		}
	}

	return nb, nr, nil
}

// Remove takes a participant out of the drawsheet. If the remaining field
// fits a strictly smaller bracket, the sheet is rebuilt from scratch and all
// results are dropped; otherwise the participant's first-round slot turns
// into a bye, winners credited to them are cleared, an opponent left alone
// against the new bye is advanced, and only the results of the removed
// participant's matches are deleted.
func Remove(b Bracket, results ResultSet, name string) (Bracket, ResultSet, error) {
	if Started(b, results) {
		return nil, nil, ErrTournamentInProgress
	}

	current := b.Participants()
	remaining := make([]string, 0, len(current))
	found := false
	for _, p := range current {
		if p == name {
			found = true
			continue
		}
		remaining = append(remaining, p)
	}
	if !found {
		return nil, nil, fmt.Errorf("%w: %q", ErrParticipantNotFound, name)
	}
	if len(remaining) == 0 {
		return nil, nil, ErrLastParticipant
	}

	currentSize := 0
	if len(b) > 0 {
		currentSize = len(b[0]) * 2
	}
	if requiredBracketSize(len(remaining)) < currentSize {
		nb, err := Build(remaining, SeedAsEntered)
		if err != nil {
			return nil, nil, err
		}
		return nb, ResultSet{}, nil
	}

	nb := cloneBracket(b)
	for p := range nb[0] {
		m := &nb[0][p]
		for i, s := range m.Slots {
			if sn, ok := s.Name(); ok && sn == name {
				m.Slots[i] = ByeSlot()
			}
		}
	}
	for r := range nb {
		for p := range nb[r] {
			m := &nb[r][p]
			if r > 0 {
				for i, s := range m.Slots {
					if sn, ok := s.Name(); ok && sn == name {
						m.Slots[i] = EmptySlot()
					}
				}
			}
			if w, ok := m.Winner.Winner(); ok && w == name {
				m.Winner = Undecided()
			}
		}
	}

	// Vacating a slot can leave the opponent alone against a bye; a bye
	// always advances its opponent, the same as on build.
	for p := range nb[0] {
		m := nb[0][p]
		if !m.Winner.IsUndecided() {
			continue
		}
		var opponent string
		hasPlayer, hasBye := false, false
		for _, s := range m.Slots {
			if s.IsBye() {
				hasBye = true
			} else if n, ok := s.Name(); ok {
				opponent, hasPlayer = n, true
			}
		}
		if hasBye && hasPlayer {
			var err error
			if nb, err = SetWinner(nb, m.ID, Decided(opponent)); err != nil {
				return nil, nil, err
			}
		}
	}

	nr := results.Clone()
	for id, mr := range nr {
		if mr.Player1 == name || mr.Player2 == name {
			delete(nr, id)
		}
	}
	return nb, nr, nil
}

// Add registers a new participant. A free first-round slot (a bye, or one
// emptied by a removal) is occupied directly, keeping structure and results;
// with no free slot the sheet is rebuilt around the grown field, dropping all
// results.
func Add(b Bracket, results ResultSet, name string) (Bracket, ResultSet, error) {
	if Started(b, results) {
		return nil, nil, ErrTournamentInProgress
	}
	for _, p := range b.Participants() {
		if strings.EqualFold(p, name) {
			return nil, nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}

	if len(b) > 0 {
		for p := range b[0] {
			for i, s := range b[0][p].Slots {
				if !s.IsBye() && !s.IsEmpty() {
					continue
				}
				nb := cloneBracket(b)
				m := &nb[0][p]
				m.Slots[i] = PlayerSlot(name)

				// The opponent may have been advanced off the bye this slot
				// used to be; the match is a real contest now.
				if w, ok := m.Winner.Winner(); ok {
					m.Winner = Undecided()
					if m.NextMatchID != "" {
						if nr, np, ok := nb.Find(m.NextMatchID); ok {
							slot := p % 2
							if sn, isPlayer := nb[nr][np].Slots[slot].Name(); isPlayer && sn == w {
								nb[nr][np].Slots[slot] = EmptySlot()
							}
						}
					}
				}
				return nb, results.Clone(), nil
			}
		}
	}

	nb, err := Build(append(b.Participants(), name), SeedAsEntered)
	if err != nil {
		return nil, nil, err
	}
	return nb, ResultSet{}, nil
}

func requiredBracketSize(n int) int {
	if n <= 1 {
		return 2
	}
	return 1 << uint(math.Ceil(math.Log2(float64(n))))
}

func cloneBracket(b Bracket) Bracket {
	out := make(Bracket, len(b))
	for r := range b {
		round := make([]Match, len(b[r]))
		copy(round, b[r])
		out[r] = round
	}
	return out
}
