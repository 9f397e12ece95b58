package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourPlayerBracket(t *testing.T) Bracket {
	t.Helper()
	b, err := Build([]string{"A", "B", "C", "D"}, SeedAsEntered)
	require.NoError(t, err)
	return b
}

func TestSetWinner_UnknownMatch(t *testing.T) {
	b := fourPlayerBracket(t)
	_, err := SetWinner(b, "R9M9", Decided("A"))
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestSetWinner_NotAParticipant(t *testing.T) {
	b := fourPlayerBracket(t)
	_, err := SetWinner(b, "R1M1", Decided("C"))
	assert.ErrorIs(t, err, ErrWinnerNotInMatch)
}

func TestSetWinner_SlotParity(t *testing.T) {
	b := fourPlayerBracket(t)

	b, err := SetWinner(b, "R1M1", Decided("A"))
	require.NoError(t, err)
	b, err = SetWinner(b, "R1M2", Decided("D"))
	require.NoError(t, err)

	final := b[1][0]
	assert.Equal(t, PlayerSlot("A"), final.Slots[0], "position 0 winner lands in slot 0")
	assert.Equal(t, PlayerSlot("D"), final.Slots[1], "position 1 winner lands in slot 1")
}

func TestSetWinner_Idempotent(t *testing.T) {
	b := fourPlayerBracket(t)

	once, err := SetWinner(b, "R1M1", Decided("B"))
	require.NoError(t, err)
	twice, err := SetWinner(once, "R1M1", Decided("B"))
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestSetWinner_NoWinnerLeavesSlotUnfilled(t *testing.T) {
	b := fourPlayerBracket(t)

	b, err := SetWinner(b, "R1M1", NoWinner())
	require.NoError(t, err)

	assert.True(t, b[0][0].Winner.IsNoWinner())
	assert.True(t, b[1][0].Slots[0].IsEmpty(), "nobody advances into the final")
}

func TestSetWinner_CorrectionFollowsAutoDecidedSuccessor(t *testing.T) {
	b := fourPlayerBracket(t)

	b, err := SetWinner(b, "R1M1", Decided("A"))
	require.NoError(t, err)
	b, err = SetWinner(b, "R1M2", Decided("C"))
	require.NoError(t, err)
	b, err = SetWinner(b, "R2M1", Decided("A"))
	require.NoError(t, err)

	// Correcting the opening match rewrites the final slot, and the final's
	// winner follows because it matched the old occupant of that slot.
	b, err = SetWinner(b, "R1M1", Decided("B"))
	require.NoError(t, err)

	assert.Equal(t, PlayerSlot("B"), b[1][0].Slots[0])
	assert.Equal(t, Decided("B"), b[1][0].Winner)
}

func TestSetWinner_CorrectionKeepsIndependentSuccessorWinner(t *testing.T) {
	b := fourPlayerBracket(t)

	b, err := SetWinner(b, "R1M1", Decided("A"))
	require.NoError(t, err)
	b, err = SetWinner(b, "R1M2", Decided("C"))
	require.NoError(t, err)
	b, err = SetWinner(b, "R2M1", Decided("C"))
	require.NoError(t, err)

	b, err = SetWinner(b, "R1M1", Decided("B"))
	require.NoError(t, err)

	assert.Equal(t, PlayerSlot("B"), b[1][0].Slots[0])
	assert.Equal(t, Decided("C"), b[1][0].Winner, "the final was won by C on the mat")
}

func TestSetWinner_UntouchedRoundsKeepIdentity(t *testing.T) {
	b, err := Build(names(8), SeedAsEntered)
	require.NoError(t, err)

	after, err := SetWinner(b, "R1M1", Decided("P01"))
	require.NoError(t, err)

	assert.True(t, &b[2][0] == &after[2][0], "final round slice must be shared")
	assert.False(t, &b[0][0] == &after[0][0], "touched round must be copied")
}
