package brackets

import (
	"context"

	"github.com/arman-dev/playoff-system/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() models.BracketType {
	return models.BracketTypeSingleElimination
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Blueprint, error) {
	plan, err := DistributeSeeds(params.Participants, params.Rand)
	if err != nil {
		return nil, err
	}

	bp := buildWinnersSection(plan)

	if err := ValidateBlueprint(bp); err != nil {
		return nil, err
	}
	return bp, nil
}

// slotRef is one position in the round-2 slot array: either a pre-filled bye
// recipient or a placeholder for the winner of a round-1 match.
type slotRef struct {
	participantID *int
	winnerOf      *MatchKey
}

func (s slotRef) empty() bool {
	return s.participantID == nil && s.winnerOf == nil
}

// buildWinnersSection constructs the winners ladder shared by single and
// double elimination: round 1 from sequential pairing, round 2 from the
// bye-distributed slot array, later rounds by standard doubling.
func buildWinnersSection(plan *SeedingPlan) *Blueprint {
	bp := newBlueprint(plan)

	// Round 1: pair the non-bye participants sequentially. An unpaired
	// trailing participant wins their match outright.
	round1MatchCount := 0
	for i := 0; i < len(plan.Round1Participants); i += 2 {
		round1MatchCount++
		m := &BlueprintMatch{
			Key:       MatchKey{Section: models.SectionWinners, Round: 1, Number: round1MatchCount},
			Player1ID: &plan.Round1Participants[i].ID,
		}
		if i+1 < len(plan.Round1Participants) {
			m.Player2ID = &plan.Round1Participants[i+1].ID
		} else {
			m.IsBye = true
			m.WinnerID = m.Player1ID
		}
		bp.add(m)
	}

	if plan.TotalRounds == 1 {
		// Two participants: round 1 is the final.
		return bp
	}

	// Round 2 from the slot array. Pair adjacent slots (0,1), (2,3), ...;
	// placeholder slots become explicit advancement links so the round-1
	// winner lands in exactly the designated slot.
	slots := layoutRound2Slots(plan, round1MatchCount)
	for i := 0; i < len(slots); i += 2 {
		key := MatchKey{Section: models.SectionWinners, Round: 2, Number: i/2 + 1}
		m := &BlueprintMatch{Key: key}
		for offset, ref := range []slotRef{slots[i], slots[i+1]} {
			slot := offset + 1
			switch {
			case ref.participantID != nil:
				if slot == 1 {
					m.Player1ID = ref.participantID
				} else {
					m.Player2ID = ref.participantID
				}
			case ref.winnerOf != nil:
				bp.WinnerLinks[*ref.winnerOf] = Advancement{
					From:     *ref.winnerOf,
					To:       key,
					Slot:     slot,
					Explicit: true,
				}
			}
		}
		bp.add(m)
	}

	// Rounds 3..totalRounds start with both players unknown and are filled
	// exclusively by advancement.
	for r := 3; r <= plan.TotalRounds; r++ {
		count := plan.BracketSize / (1 << uint(r))
		for n := 1; n <= count; n++ {
			bp.add(&BlueprintMatch{Key: MatchKey{Section: models.SectionWinners, Round: r, Number: n}})
		}
	}

	addFormulaLinks(bp, models.SectionWinners, 2, plan.TotalRounds)
	return bp
}

// layoutRound2Slots builds the bracketSize/2 slot array for round 2. Byes are
// spread with even spacing (position i*slots/numberOfByes) so they do not
// cluster; when there are at least as many byes as round-1 matches, byes fill
// alternating slots first and then any remaining slot sequentially. Round-1
// winner placeholders consume the leftover slots left to right, each exactly
// once.
func layoutRound2Slots(plan *SeedingPlan, round1MatchCount int) []slotRef {
	slotCount := plan.BracketSize / 2
	slots := make([]slotRef, slotCount)

	byes := plan.ByeRecipients
	switch {
	case len(byes) == 0:
		// nothing to distribute
	case len(byes) >= round1MatchCount:
		placed := 0
		for i := 0; i < slotCount && placed < len(byes); i += 2 {
			slots[i] = slotRef{participantID: &byes[placed].ID}
			placed++
		}
		for i := 0; i < slotCount && placed < len(byes); i++ {
			if slots[i].empty() {
				slots[i] = slotRef{participantID: &byes[placed].ID}
				placed++
			}
		}
	default:
		for i := range byes {
			pos := i * slotCount / len(byes)
			for !slots[pos].empty() {
				pos = (pos + 1) % slotCount
			}
			slots[pos] = slotRef{participantID: &byes[i].ID}
		}
	}

	next := 1
	for i := range slots {
		if !slots[i].empty() || next > round1MatchCount {
			continue
		}
		key := MatchKey{Section: models.SectionWinners, Round: 1, Number: next}
		slots[i] = slotRef{winnerOf: &key}
		next++
	}
	return slots
}
