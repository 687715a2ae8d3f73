package brackets

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arman-dev/playoff-system/models"
)

func generateSingle(t *testing.T, participants []*models.Participant, rnd *rand.Rand) *Blueprint {
	t.Helper()
	bp, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Participants: participants,
		Rand:         rnd,
	})
	require.NoError(t, err)
	return bp
}

func winnersKey(round, number int) MatchKey {
	return MatchKey{Section: models.SectionWinners, Round: round, Number: number}
}

func TestSingleEliminationTwoParticipants(t *testing.T) {
	bp := generateSingle(t, seededField(2), nil)

	require.Len(t, bp.Matches, 1)
	final := bp.Match(winnersKey(1, 1))
	require.NotNil(t, final)
	assert.Equal(t, 1, *final.Player1ID)
	assert.Equal(t, 2, *final.Player2ID)
	assert.False(t, final.IsBye)
	assert.Empty(t, bp.WinnerLinks)
}

func TestSingleEliminationFullBracketOfEight(t *testing.T) {
	bp := generateSingle(t, seededField(8), nil)

	assert.Len(t, bp.Matches, 7)
	assert.Equal(t, 4, bp.MatchesInRound(models.SectionWinners, 1))
	assert.Equal(t, 2, bp.MatchesInRound(models.SectionWinners, 2))
	assert.Equal(t, 1, bp.MatchesInRound(models.SectionWinners, 3))

	// Sequential pairing of the seed order.
	for i := 0; i < 4; i++ {
		m := bp.Match(winnersKey(1, i+1))
		require.NotNil(t, m)
		assert.Equal(t, 2*i+1, *m.Player1ID)
		assert.Equal(t, 2*i+2, *m.Player2ID)
		assert.False(t, m.IsBye)
	}

	// Round 1 feeds round 2 through explicit slots, left to right.
	expected := map[MatchKey]Advancement{
		winnersKey(1, 1): {To: winnersKey(2, 1), Slot: 1, Explicit: true},
		winnersKey(1, 2): {To: winnersKey(2, 1), Slot: 2, Explicit: true},
		winnersKey(1, 3): {To: winnersKey(2, 2), Slot: 1, Explicit: true},
		winnersKey(1, 4): {To: winnersKey(2, 2), Slot: 2, Explicit: true},
	}
	for from, want := range expected {
		link, ok := bp.WinnerLinks[from]
		require.True(t, ok, "missing link from %s", from)
		assert.Equal(t, want.To, link.To)
		assert.Equal(t, want.Slot, link.Slot)
		assert.True(t, link.Explicit)
	}

	// Round 2 uses the doubling formula and leaves the slot to runtime.
	semifinal1 := bp.WinnerLinks[winnersKey(2, 1)]
	assert.Equal(t, winnersKey(3, 1), semifinal1.To)
	assert.Equal(t, 1, semifinal1.Slot)
	assert.False(t, semifinal1.Explicit)

	semifinal2 := bp.WinnerLinks[winnersKey(2, 2)]
	assert.Equal(t, winnersKey(3, 1), semifinal2.To)
	assert.Equal(t, 2, semifinal2.Slot)

	_, finalHasLink := bp.WinnerLinks[winnersKey(3, 1)]
	assert.False(t, finalHasLink)
}

func TestSingleEliminationSixParticipantsByeLayout(t *testing.T) {
	bp := generateSingle(t, seededField(6), nil)

	assert.Equal(t, 2, bp.NumberOfByes)
	assert.Equal(t, 2, bp.MatchesInRound(models.SectionWinners, 1))

	// Seeds 3-6 play round 1.
	r1m1 := bp.Match(winnersKey(1, 1))
	assert.Equal(t, 3, *r1m1.Player1ID)
	assert.Equal(t, 4, *r1m1.Player2ID)
	r1m2 := bp.Match(winnersKey(1, 2))
	assert.Equal(t, 5, *r1m2.Player1ID)
	assert.Equal(t, 6, *r1m2.Player2ID)

	// Top two seeds wait in slot 1 of each semifinal, so the byes never
	// meet each other in round 2.
	semifinal1 := bp.Match(winnersKey(2, 1))
	require.NotNil(t, semifinal1.Player1ID)
	assert.Equal(t, 1, *semifinal1.Player1ID)
	assert.Nil(t, semifinal1.Player2ID)

	semifinal2 := bp.Match(winnersKey(2, 2))
	require.NotNil(t, semifinal2.Player1ID)
	assert.Equal(t, 2, *semifinal2.Player1ID)
	assert.Nil(t, semifinal2.Player2ID)

	// Each round-1 winner is routed into the open slot 2.
	link1 := bp.WinnerLinks[winnersKey(1, 1)]
	assert.Equal(t, winnersKey(2, 1), link1.To)
	assert.Equal(t, 2, link1.Slot)
	assert.True(t, link1.Explicit)

	link2 := bp.WinnerLinks[winnersKey(1, 2)]
	assert.Equal(t, winnersKey(2, 2), link2.To)
	assert.Equal(t, 2, link2.Slot)
	assert.True(t, link2.Explicit)
}

func TestSingleEliminationFiveParticipants(t *testing.T) {
	bp := generateSingle(t, seededField(5), nil)

	assert.Equal(t, 3, bp.NumberOfByes)
	assert.Equal(t, 1, bp.MatchesInRound(models.SectionWinners, 1))

	r1m1 := bp.Match(winnersKey(1, 1))
	assert.Equal(t, 4, *r1m1.Player1ID)
	assert.Equal(t, 5, *r1m1.Player2ID)

	// Byes fill alternating slots then the next free one, so seeds 1 and 3
	// meet in one semifinal while seed 2 waits for the round-1 winner.
	semifinal1 := bp.Match(winnersKey(2, 1))
	assert.Equal(t, 1, *semifinal1.Player1ID)
	assert.Equal(t, 3, *semifinal1.Player2ID)

	semifinal2 := bp.Match(winnersKey(2, 2))
	assert.Equal(t, 2, *semifinal2.Player1ID)
	assert.Nil(t, semifinal2.Player2ID)

	link := bp.WinnerLinks[winnersKey(1, 1)]
	assert.Equal(t, winnersKey(2, 2), link.To)
	assert.Equal(t, 2, link.Slot)
	assert.True(t, link.Explicit)
}

func TestSingleEliminationThirteenParticipantsByeSpacing(t *testing.T) {
	bp := generateSingle(t, seededField(13), nil)

	assert.Equal(t, 3, bp.NumberOfByes)
	assert.Equal(t, 5, bp.MatchesInRound(models.SectionWinners, 1))
	assert.Equal(t, 4, bp.MatchesInRound(models.SectionWinners, 2))

	// Byes spread across slots 0, 2 and 5 of the eight round-2 slots.
	assert.Equal(t, 1, *bp.Match(winnersKey(2, 1)).Player1ID)
	assert.Equal(t, 2, *bp.Match(winnersKey(2, 2)).Player1ID)
	assert.Equal(t, 3, *bp.Match(winnersKey(2, 3)).Player2ID)

	// Round-1 placeholders consume the remaining slots left to right.
	expected := map[MatchKey]Advancement{
		winnersKey(1, 1): {To: winnersKey(2, 1), Slot: 2},
		winnersKey(1, 2): {To: winnersKey(2, 2), Slot: 2},
		winnersKey(1, 3): {To: winnersKey(2, 3), Slot: 1},
		winnersKey(1, 4): {To: winnersKey(2, 4), Slot: 1},
		winnersKey(1, 5): {To: winnersKey(2, 4), Slot: 2},
	}
	for from, want := range expected {
		link, ok := bp.WinnerLinks[from]
		require.True(t, ok, "missing link from %s", from)
		assert.Equal(t, want.To, link.To, "from %s", from)
		assert.Equal(t, want.Slot, link.Slot, "from %s", from)
		assert.True(t, link.Explicit, "from %s", from)
	}
}

func TestSingleEliminationDeterministicWithFixedSource(t *testing.T) {
	first := generateSingle(t, unseededField(10), rand.New(rand.NewSource(99)))
	second := generateSingle(t, unseededField(10), rand.New(rand.NewSource(99)))

	require.Equal(t, len(first.Matches), len(second.Matches))
	for i, m := range first.Matches {
		other := second.Matches[i]
		assert.Equal(t, m.Key, other.Key)
		assert.Equal(t, m.Player1ID, other.Player1ID)
		assert.Equal(t, m.Player2ID, other.Player2ID)
	}
}

func TestSingleEliminationRejectsSingleParticipant(t *testing.T) {
	_, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Participants: seededField(1),
	})
	assert.ErrorIs(t, err, ErrNotEnoughParticipants)
}
