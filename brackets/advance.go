package brackets

import "fmt"

// SetWinner records the winner of a match and moves them into the correct
// slot of the successor match. Passing NoWinner (both finalists disqualified)
// terminates the branch: nothing is propagated and the downstream slot keeps
// its current content.
//
// Only the touched rounds are copied; every other round slice keeps its
// identity, so consumers can diff brackets by reference.
//
// If the successor had already been decided off the old occupant of the
// target slot (a corrected result upstream), the successor's winner follows
// the new name, recursively. A successor winner that no longer matches the
// slot was confirmed independently and is left alone.
func SetWinner(b Bracket, matchID string, w Outcome) (Bracket, error) {
	r, p, ok := b.Find(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	m := b[r][p]

	name, decided := w.Winner()
	if decided {
		if !slotHolds(m.Slots, name) {
			return nil, fmt.Errorf("%w: %q in match %s", ErrWinnerNotInMatch, name, matchID)
		}
	} else if !w.IsNoWinner() {
		return nil, fmt.Errorf("%w: match %s winner must be a participant or NO_WINNER", ErrWinnerNotInMatch, matchID)
	}

	out := b.withRoundCopy(r)
	out[r][p].Winner = w

	if !decided || m.NextMatchID == "" {
		return out, nil
	}

	nr, np, ok := out.Find(m.NextMatchID)
	if !ok {
		return nil, fmt.Errorf("%w: successor %s of match %s", ErrMatchNotFound, m.NextMatchID, matchID)
	}

	slot := p % 2
	out = out.withRoundCopy(nr)
	prev := out[nr][np].Slots[slot]
	out[nr][np].Slots[slot] = PlayerSlot(name)

	if prevName, wasPlayer := prev.Name(); wasPlayer && prevName != name {
		if cur, confirmed := out[nr][np].Winner.Winner(); confirmed && cur == prevName {
			return SetWinner(out, out[nr][np].ID, Decided(name))
		}
	}
	return out, nil
}

func slotHolds(slots [2]Slot, name string) bool {
	for _, s := range slots {
		if n, ok := s.Name(); ok && n == name {
			return true
		}
	}
	return false
}
