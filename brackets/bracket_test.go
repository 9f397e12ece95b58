package brackets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchJSON_WireSentinels(t *testing.T) {
	m := Match{
		ID:       "R1M1",
		Slots:    [2]Slot{PlayerSlot("Kim"), ByeSlot()},
		Winner:   Decided("Kim"),
		Position: 0,
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"participants":["Kim","(bye)"]`)
	assert.Contains(t, string(data), `"winner":"Kim"`)

	m.Slots[1] = EmptySlot()
	m.Winner = NoWinner()
	data, err = json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"participants":["Kim",null]`)
	assert.Contains(t, string(data), `"winner":"NO_WINNER"`)
}

func TestBracketJSON_RoundTrip(t *testing.T) {
	b, err := Build([]string{"A", "B", "C"}, SeedAsEntered)
	require.NoError(t, err)

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var back Bracket
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, b, back)
}
