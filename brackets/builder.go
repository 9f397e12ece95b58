// tkd-drawsheet/brackets/builder.go
package brackets

import (
	"fmt"
	"math"
	"math/rand"
)

// SeedType controls how participants are placed into first-round slots.
type SeedType string

const (
	// SeedAsEntered keeps the input order.
	SeedAsEntered SeedType = "as-entered"
	// SeedOrdered keeps the input order; the order is understood as ranking,
	// so earlier entries are the higher seeds.
	SeedOrdered SeedType = "ordered"
	// SeedRandom shuffles the input before placement.
	SeedRandom SeedType = "random"
)

// Build constructs a complete single-elimination bracket for the given
// participants. The bracket is sized to the smallest power of two that fits
// everyone; the remaining first-round slots become byes, at most one per
// match, so a bye never faces another bye. First-round byes are decided and
// propagated into the second round before the bracket is returned.
func Build(participants []string, seed SeedType) (Bracket, error) {
	n := len(participants)
	if n == 0 {
		return nil, ErrNoParticipants
	}

	order := make([]string, n)
	copy(order, participants)
	if seed == SeedRandom {
		rand.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	numRounds := 1
	if n > 2 {
		numRounds = int(math.Ceil(math.Log2(float64(n))))
	}
	bracketSize := 1 << uint(numRounds)
	matchesInFirstRound := bracketSize / 2
	byeCount := bracketSize - n

	byeMatches := distributeByes(matchesInFirstRound, byeCount)

	bracket := make(Bracket, numRounds)

	firstRound := make([]Match, matchesInFirstRound)
	next := 0
	for p := 0; p < matchesInFirstRound; p++ {
		var slots [2]Slot
		if byeMatches[p] {
			slots[0] = PlayerSlot(order[next])
			slots[1] = ByeSlot()
			next++
		} else {
			slots[0] = PlayerSlot(order[next])
			slots[1] = PlayerSlot(order[next+1])
			next += 2
		}
		firstRound[p] = Match{
			ID:       matchID(0, p),
			Round:    0,
			Position: p,
			Slots:    slots,
		}
	}
	bracket[0] = firstRound

	for r := 1; r < numRounds; r++ {
		count := matchesInFirstRound >> uint(r)
		round := make([]Match, count)
		for p := 0; p < count; p++ {
			round[p] = Match{
				ID:       matchID(r, p),
				Round:    r,
				Position: p,
			}
		}
		bracket[r] = round
	}

	// Pair adjacent matches: positions 2k and 2k+1 of round r feed match k of
	// round r+1, landing in slot 0 and slot 1 respectively.
	for r := 0; r < numRounds-1; r++ {
		for p := range bracket[r] {
			bracket[r][p].NextMatchID = bracket[r+1][p/2].ID
		}
	}

	// Decide first-round byes through the advancement engine so a participant
	// with a bye is already waiting in the next round.
	for p := range bracket[0] {
		m := bracket[0][p]
		if !m.Slots[1].IsBye() {
			continue
		}
		name, _ := m.Slots[0].Name()
		advanced, err := SetWinner(bracket, m.ID, Decided(name))
		if err != nil {
			return nil, fmt.Errorf("failed to advance bye in match %s: %w", m.ID, err)
		}
		bracket = advanced
	}

	return bracket, nil
}

func matchID(round, position int) string {
	return fmt.Sprintf("R%dM%d", round+1, position+1)
}

// distributeByes picks which first-round matches receive a bye, one bye per
// match. Even positions are used first so byes spread across the sheet and
// the top seed always benefits; any surplus fills the remaining matches from
// the bottom of the sheet upward.
func distributeByes(matchCount, byeCount int) map[int]bool {
	byes := make(map[int]bool, byeCount)
	remaining := byeCount
	for p := 0; p < matchCount && remaining > 0; p += 2 {
		byes[p] = true
		remaining--
	}
	for p := matchCount - 1; p >= 0 && remaining > 0; p-- {
		if !byes[p] {
			byes[p] = true
			remaining--
		}
	}
	return byes
}
