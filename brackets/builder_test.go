package brackets

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("P%02d", i+1)
	}
	return out
}

func TestBuild_EmptyInput(t *testing.T) {
	_, err := Build(nil, SeedAsEntered)
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestBuild_SingleParticipant(t *testing.T) {
	b, err := Build([]string{"Kim"}, SeedAsEntered)
	require.NoError(t, err)

	require.Len(t, b, 1)
	require.Len(t, b[0], 1)
	m := b[0][0]
	assert.Equal(t, PlayerSlot("Kim"), m.Slots[0])
	assert.True(t, m.Slots[1].IsBye())
	assert.Equal(t, Decided("Kim"), m.Winner)
	assert.Empty(t, m.NextMatchID)
}

func TestBuild_RoundAndMatchCounts(t *testing.T) {
	cases := []struct {
		n, rounds, firstRoundMatches int
	}{
		{1, 1, 1},
		{2, 1, 1},
		{3, 2, 2},
		{4, 2, 2},
		{5, 3, 4},
		{8, 3, 4},
		{9, 4, 8},
		{16, 4, 8},
		{17, 5, 16},
	}
	for _, tc := range cases {
		b, err := Build(names(tc.n), SeedAsEntered)
		require.NoError(t, err, "n=%d", tc.n)
		assert.Len(t, b, tc.rounds, "n=%d rounds", tc.n)
		assert.Len(t, b[0], tc.firstRoundMatches, "n=%d first round", tc.n)
		require.Len(t, b[len(b)-1], 1, "n=%d final", tc.n)
	}
}

func TestBuild_NoByeVersusBye(t *testing.T) {
	for n := 1; n <= 33; n++ {
		b, err := Build(names(n), SeedAsEntered)
		require.NoError(t, err)
		for _, m := range b[0] {
			assert.False(t, m.Slots[0].IsBye() && m.Slots[1].IsBye(),
				"n=%d match %s pairs two byes", n, m.ID)
		}
	}
}

func TestBuild_FiveParticipantSheet(t *testing.T) {
	b, err := Build([]string{"A", "B", "C", "D", "E"}, SeedAsEntered)
	require.NoError(t, err)

	require.Len(t, b, 3)
	require.Len(t, b[0], 4)

	// Three matches carry a bye with the winner pre-set, one is a real
	// contest between B and C.
	assert.Equal(t, PlayerSlot("A"), b[0][0].Slots[0])
	assert.True(t, b[0][0].Slots[1].IsBye())
	assert.Equal(t, Decided("A"), b[0][0].Winner)

	assert.Equal(t, PlayerSlot("B"), b[0][1].Slots[0])
	assert.Equal(t, PlayerSlot("C"), b[0][1].Slots[1])
	assert.True(t, b[0][1].Winner.IsUndecided())

	assert.Equal(t, Decided("D"), b[0][2].Winner)
	assert.Equal(t, Decided("E"), b[0][3].Winner)

	// Bye winners are already waiting in the semifinals.
	assert.Equal(t, PlayerSlot("A"), b[1][0].Slots[0])
	assert.True(t, b[1][0].Slots[1].IsEmpty())
	assert.Equal(t, PlayerSlot("D"), b[1][1].Slots[0])
	assert.Equal(t, PlayerSlot("E"), b[1][1].Slots[1])
}

func TestBuild_LinkageAndParity(t *testing.T) {
	b, err := Build(names(11), SeedAsEntered)
	require.NoError(t, err)

	for r := 0; r < len(b)-1; r++ {
		seen := make(map[string]int)
		for _, m := range b[r] {
			require.NotEmpty(t, m.NextMatchID, "match %s must feed a successor", m.ID)
			assert.Equal(t, b[r+1][m.Position/2].ID, m.NextMatchID)
			seen[m.NextMatchID]++
		}
		// Exactly two matches per round share a successor.
		for id, count := range seen {
			assert.Equal(t, 2, count, "successor %s", id)
		}
	}
	assert.Empty(t, b[len(b)-1][0].NextMatchID)
}

func TestBuild_RandomSeedKeepsField(t *testing.T) {
	in := names(7)
	b, err := Build(in, SeedRandom)
	require.NoError(t, err)

	got := b.Participants()
	sort.Strings(got)
	want := names(7)
	sort.Strings(want)
	assert.Equal(t, want, got)
}

func TestBuild_UniqueMatchIDs(t *testing.T) {
	b, err := Build(names(13), SeedAsEntered)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, round := range b {
		for _, m := range round {
			assert.False(t, ids[m.ID], "duplicate id %s", m.ID)
			ids[m.ID] = true
		}
	}
}
