package brackets

import (
	"context"
	"errors"

	"github.com/arman-dev/playoff-system/models"
)

var ErrFieldTooSmallForDoubleElimination = errors.New("double elimination requires at least 3 participants (bracket of 4)")

// DoubleEliminationGenerator builds a winners ladder, a losers ladder that
// every winners-bracket loser drops into, and a grand final between the two
// section champions. A participant is out after the second loss.
type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() models.BracketType {
	return models.BracketTypeDoubleElimination
}

func (g *DoubleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Blueprint, error) {
	plan, err := DistributeSeeds(params.Participants, params.Rand)
	if err != nil {
		return nil, err
	}
	if plan.BracketSize < 4 {
		return nil, ErrFieldTooSmallForDoubleElimination
	}

	bp := buildWinnersSection(plan)
	buildLosersSection(bp, plan)
	buildGrandFinal(bp, plan)
	markStructuralByes(bp)

	if err := ValidateBlueprint(bp); err != nil {
		return nil, err
	}
	return bp, nil
}

// buildLosersSection lays out 2*(W-1) losers rounds for W winners rounds.
// Odd ("minor") rounds pair survivors of the losers bracket against each
// other; even ("major") rounds pit a minor-round winner against the loser
// freshly dropped from the winners bracket, so nobody faces a second
// winners-bracket loser in the same round they drop.
func buildLosersSection(bp *Blueprint, plan *SeedingPlan) {
	winnersRounds := plan.TotalRounds
	losersRounds := 2 * (winnersRounds - 1)

	for r := 1; r <= losersRounds; r++ {
		count := losersRoundSize(plan.BracketSize, r)
		for n := 1; n <= count; n++ {
			bp.add(&BlueprintMatch{Key: MatchKey{Section: models.SectionLosers, Round: r, Number: n}})
		}
	}

	// Round-1 winners losers pair up in losers round 1.
	for _, m := range bp.Matches {
		if m.Key.Section != models.SectionWinners || m.Key.Round != 1 || m.IsBye {
			continue
		}
		slot := 2
		if m.Key.Number%2 == 1 {
			slot = 1
		}
		bp.LoserLinks[m.Key] = Advancement{
			From:     m.Key,
			To:       MatchKey{Section: models.SectionLosers, Round: 1, Number: (m.Key.Number + 1) / 2},
			Slot:     slot,
			Explicit: true,
		}
	}

	// Losers of winners round k (k >= 2) drop into major losers round 2k-2,
	// same match number, always as the second player.
	for k := 2; k <= winnersRounds; k++ {
		for n := 1; n <= bp.MatchesInRound(models.SectionWinners, k); n++ {
			from := MatchKey{Section: models.SectionWinners, Round: k, Number: n}
			bp.LoserLinks[from] = Advancement{
				From:     from,
				To:       MatchKey{Section: models.SectionLosers, Round: 2*k - 2, Number: n},
				Slot:     2,
				Explicit: true,
			}
		}
	}

	// Advancement inside the losers ladder: minor round winners take slot 1
	// of the same-numbered major match; major round winners fold into the
	// next minor round by the usual doubling.
	for r := 1; r < losersRounds; r++ {
		count := bp.MatchesInRound(models.SectionLosers, r)
		for n := 1; n <= count; n++ {
			from := MatchKey{Section: models.SectionLosers, Round: r, Number: n}
			if r%2 == 1 {
				bp.WinnerLinks[from] = Advancement{
					From:     from,
					To:       MatchKey{Section: models.SectionLosers, Round: r + 1, Number: n},
					Slot:     1,
					Explicit: true,
				}
				continue
			}
			slot := 2
			if n%2 == 1 {
				slot = 1
			}
			bp.WinnerLinks[from] = Advancement{
				From: from,
				To:   MatchKey{Section: models.SectionLosers, Round: r + 1, Number: (n + 1) / 2},
				Slot: slot,
			}
		}
	}
}

// losersRoundSize returns the match count of losers round r for the given
// bracket size. Rounds 2j-1 and 2j both hold bracketSize / 2^(j+1) matches.
func losersRoundSize(bracketSize, r int) int {
	j := (r + 1) / 2
	return bracketSize / (1 << uint(j+1))
}

// buildGrandFinal adds the finals match fed by the two section champions.
func buildGrandFinal(bp *Blueprint, plan *SeedingPlan) {
	final := MatchKey{Section: models.SectionFinals, Round: 1, Number: 1}
	bp.add(&BlueprintMatch{Key: final})

	winnersFinal := MatchKey{Section: models.SectionWinners, Round: plan.TotalRounds, Number: 1}
	bp.WinnerLinks[winnersFinal] = Advancement{From: winnersFinal, To: final, Slot: 1, Explicit: true}

	losersFinal := MatchKey{Section: models.SectionLosers, Round: 2 * (plan.TotalRounds - 1), Number: 1}
	bp.WinnerLinks[losersFinal] = Advancement{From: losersFinal, To: final, Slot: 2, Explicit: true}
}

// markStructuralByes flags losers round-1 matches that can never fill. With
// byes in the field, winners round 1 has fewer matches than the full bracket
// would, so some losers matches wait on one feeder or on none. One live
// feeder makes the match a bye for whichever loser arrives; no live feeders
// makes both the round-1 match and its round-2 successor byes, and the
// dropping winners-bracket loser crosses both on arrival.
func markStructuralByes(bp *Blueprint) {
	count := bp.MatchesInRound(models.SectionLosers, 1)
	for n := 1; n <= count; n++ {
		live := 0
		for _, src := range []int{2*n - 1, 2 * n} {
			m := bp.Match(MatchKey{Section: models.SectionWinners, Round: 1, Number: src})
			if m != nil && !m.IsBye {
				live++
			}
		}
		switch live {
		case 1:
			bp.Match(MatchKey{Section: models.SectionLosers, Round: 1, Number: n}).IsBye = true
		case 0:
			bp.Match(MatchKey{Section: models.SectionLosers, Round: 1, Number: n}).IsBye = true
			bp.Match(MatchKey{Section: models.SectionLosers, Round: 2, Number: n}).IsBye = true
		}
	}
}
