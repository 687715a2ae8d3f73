package brackets

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/arman-dev/playoff-system/models"
)

var ErrNotEnoughParticipants = errors.New("not enough participants to generate a bracket (minimum 2)")

// SeedingPlan is the Seeding Distributor output: the bracket dimensions and
// the partition of the field into bye recipients (who skip round 1) and
// round-1 participants.
type SeedingPlan struct {
	BracketSize        int
	TotalRounds        int
	NumberOfByes       int
	ByeRecipients      []*models.Participant
	Round1Participants []*models.Participant
}

// DistributeSeeds computes bracketSize = 2^ceil(log2(n)) and hands the top of
// the order the byes. With explicit seed ranks the order is the seed order
// (best seeds skip round 1); without them the field is shuffled first so bye
// assignment is not predictable. rnd may be nil outside of tests.
func DistributeSeeds(participants []*models.Participant, rnd *rand.Rand) (*SeedingPlan, error) {
	n := len(participants)
	if n < 2 {
		return nil, ErrNotEnoughParticipants
	}

	ordered := make([]*models.Participant, n)
	copy(ordered, participants)

	if hasExplicitSeeds(ordered) {
		sort.SliceStable(ordered, func(i, j int) bool {
			si, sj := ordered[i].Seed, ordered[j].Seed
			if si == nil {
				return false
			}
			if sj == nil {
				return true
			}
			return *si < *sj
		})
	} else {
		if rnd == nil {
			rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		rnd.Shuffle(n, func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}

	totalRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(totalRounds)
	numberOfByes := bracketSize - n

	return &SeedingPlan{
		BracketSize:        bracketSize,
		TotalRounds:        totalRounds,
		NumberOfByes:       numberOfByes,
		ByeRecipients:      ordered[:numberOfByes],
		Round1Participants: ordered[numberOfByes:],
	}, nil
}

func hasExplicitSeeds(participants []*models.Participant) bool {
	for _, p := range participants {
		if p.Seed != nil {
			return true
		}
	}
	return false
}
