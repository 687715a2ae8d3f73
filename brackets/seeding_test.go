package brackets

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arman-dev/playoff-system/models"
)

func unseededField(n int) []*models.Participant {
	participants := make([]*models.Participant, n)
	for i := 0; i < n; i++ {
		participants[i] = &models.Participant{ID: i + 1}
	}
	return participants
}

func seededField(n int) []*models.Participant {
	participants := unseededField(n)
	for i, p := range participants {
		seed := i + 1
		p.Seed = &seed
	}
	return participants
}

func participantIDs(participants []*models.Participant) []int {
	ids := make([]int, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	return ids
}

func TestDistributeSeedsRejectsTinyField(t *testing.T) {
	_, err := DistributeSeeds(unseededField(1), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrNotEnoughParticipants)

	_, err = DistributeSeeds(nil, nil)
	assert.ErrorIs(t, err, ErrNotEnoughParticipants)
}

func TestDistributeSeedsDimensions(t *testing.T) {
	tests := []struct {
		n           int
		bracketSize int
		totalRounds int
		byes        int
	}{
		{2, 2, 1, 0},
		{3, 4, 2, 1},
		{4, 4, 2, 0},
		{5, 8, 3, 3},
		{6, 8, 3, 2},
		{8, 8, 3, 0},
		{13, 16, 4, 3},
		{16, 16, 4, 0},
	}

	for _, tt := range tests {
		plan, err := DistributeSeeds(unseededField(tt.n), rand.New(rand.NewSource(42)))
		require.NoError(t, err, "n=%d", tt.n)
		assert.Equal(t, tt.bracketSize, plan.BracketSize, "n=%d", tt.n)
		assert.Equal(t, tt.totalRounds, plan.TotalRounds, "n=%d", tt.n)
		assert.Equal(t, tt.byes, plan.NumberOfByes, "n=%d", tt.n)
		assert.Len(t, plan.ByeRecipients, tt.byes, "n=%d", tt.n)
		assert.Len(t, plan.Round1Participants, tt.n-tt.byes, "n=%d", tt.n)
	}
}

func TestDistributeSeedsHonorsExplicitSeeds(t *testing.T) {
	// Submit the field out of seed order; top seeds must receive the byes.
	field := seededField(6)
	shuffled := []*models.Participant{field[4], field[1], field[5], field[0], field[3], field[2]}

	plan, err := DistributeSeeds(shuffled, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, participantIDs(plan.ByeRecipients))
	assert.Equal(t, []int{3, 4, 5, 6}, participantIDs(plan.Round1Participants))
}

func TestDistributeSeedsUnseededParticipantsSortLast(t *testing.T) {
	field := seededField(4)
	field[1].Seed = nil
	field[3].Seed = nil

	plan, err := DistributeSeeds([]*models.Participant{field[3], field[0], field[1], field[2]}, nil)
	require.NoError(t, err)

	ordered := append(append([]*models.Participant{}, plan.ByeRecipients...), plan.Round1Participants...)
	ids := participantIDs(ordered)
	// Seeded first (1, 3), unseeded after in submission order (4, 2).
	assert.Equal(t, []int{1, 3, 4, 2}, ids)
}

func TestDistributeSeedsShuffleIsDeterministicPerSource(t *testing.T) {
	first, err := DistributeSeeds(unseededField(9), rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	second, err := DistributeSeeds(unseededField(9), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.Equal(t, participantIDs(first.ByeRecipients), participantIDs(second.ByeRecipients))
	assert.Equal(t, participantIDs(first.Round1Participants), participantIDs(second.Round1Participants))
}

func TestDistributeSeedsDoesNotMutateInput(t *testing.T) {
	field := unseededField(8)
	original := participantIDs(field)

	_, err := DistributeSeeds(field, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	assert.Equal(t, original, participantIDs(field))
}
