package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arman-dev/playoff-system/models"
)

func minimalPlan() *SeedingPlan {
	return &SeedingPlan{BracketSize: 4, TotalRounds: 2}
}

func validTwoRoundBlueprint() *Blueprint {
	bp := newBlueprint(minimalPlan())
	p := func(id int) *int { return &id }

	bp.add(&BlueprintMatch{Key: winnersKey(1, 1), Player1ID: p(1), Player2ID: p(2)})
	bp.add(&BlueprintMatch{Key: winnersKey(1, 2), Player1ID: p(3), Player2ID: p(4)})
	bp.add(&BlueprintMatch{Key: winnersKey(2, 1)})
	bp.WinnerLinks[winnersKey(1, 1)] = Advancement{From: winnersKey(1, 1), To: winnersKey(2, 1), Slot: 1, Explicit: true}
	bp.WinnerLinks[winnersKey(1, 2)] = Advancement{From: winnersKey(1, 2), To: winnersKey(2, 1), Slot: 2, Explicit: true}
	return bp
}

func TestValidateBlueprintAcceptsWellFormedBracket(t *testing.T) {
	assert.NoError(t, ValidateBlueprint(validTwoRoundBlueprint()))
}

func TestValidateBlueprintRejectsSlotCollision(t *testing.T) {
	bp := validTwoRoundBlueprint()
	link := bp.WinnerLinks[winnersKey(1, 2)]
	link.Slot = 1
	bp.WinnerLinks[winnersKey(1, 2)] = link

	err := ValidateBlueprint(bp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot collision")
}

func TestValidateBlueprintRejectsLinkIntoByeHeldSlot(t *testing.T) {
	bp := validTwoRoundBlueprint()
	held := 9
	bp.Match(winnersKey(2, 1)).Player1ID = &held

	err := ValidateBlueprint(bp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already held by a bye recipient")
}

func TestValidateBlueprintRejectsMissingTarget(t *testing.T) {
	bp := validTwoRoundBlueprint()
	bp.WinnerLinks[winnersKey(1, 2)] = Advancement{From: winnersKey(1, 2), To: winnersKey(3, 1), Slot: 2}

	err := ValidateBlueprint(bp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidateBlueprintRejectsInvalidSlotNumber(t *testing.T) {
	bp := validTwoRoundBlueprint()
	link := bp.WinnerLinks[winnersKey(1, 1)]
	link.Slot = 3
	bp.WinnerLinks[winnersKey(1, 1)] = link

	err := ValidateBlueprint(bp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid slot")
}

func TestValidateBlueprintRejectsMultipleFinals(t *testing.T) {
	bp := validTwoRoundBlueprint()
	delete(bp.WinnerLinks, winnersKey(1, 2))

	err := ValidateBlueprint(bp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one final")
}

func TestValidateBlueprintRejectsGappedMatchNumbers(t *testing.T) {
	bp := newBlueprint(minimalPlan())
	p := func(id int) *int { return &id }

	bp.add(&BlueprintMatch{Key: winnersKey(1, 1), Player1ID: p(1), Player2ID: p(2)})
	bp.add(&BlueprintMatch{Key: winnersKey(1, 3), Player1ID: p(3), Player2ID: p(4)})
	bp.add(&BlueprintMatch{Key: winnersKey(2, 1)})
	bp.WinnerLinks[winnersKey(1, 1)] = Advancement{From: winnersKey(1, 1), To: winnersKey(2, 1), Slot: 1}
	bp.WinnerLinks[winnersKey(1, 3)] = Advancement{From: winnersKey(1, 3), To: winnersKey(2, 1), Slot: 2}

	err := ValidateBlueprint(bp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestValidateBlueprintRejectsForeignWinner(t *testing.T) {
	bp := validTwoRoundBlueprint()
	stranger := 42
	bp.Match(winnersKey(1, 1)).WinnerID = &stranger

	err := ValidateBlueprint(bp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a participant")
}

func TestValidateBlueprintWinnersByeNeedsWinner(t *testing.T) {
	bp := validTwoRoundBlueprint()
	m := bp.Match(winnersKey(1, 1))
	m.Player2ID = nil
	m.IsBye = true

	err := ValidateBlueprint(bp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no winner recorded")
}

func TestValidateBlueprintAllowsEmptyLosersBye(t *testing.T) {
	// A losers-section bye waits for its participant until a loser drops in
	// at runtime, so it is legal with no players at build time.
	bp := newBlueprint(minimalPlan())
	p := func(id int) *int { return &id }

	losersBye := MatchKey{Section: models.SectionLosers, Round: 1, Number: 1}
	final := MatchKey{Section: models.SectionFinals, Round: 1, Number: 1}

	bp.add(&BlueprintMatch{Key: winnersKey(1, 1), Player1ID: p(1), Player2ID: p(2)})
	bp.add(&BlueprintMatch{Key: losersBye, IsBye: true})
	bp.add(&BlueprintMatch{Key: final})

	bp.WinnerLinks[winnersKey(1, 1)] = Advancement{From: winnersKey(1, 1), To: final, Slot: 1, Explicit: true}
	bp.WinnerLinks[losersBye] = Advancement{From: losersBye, To: final, Slot: 2, Explicit: true}
	bp.LoserLinks[winnersKey(1, 1)] = Advancement{From: winnersKey(1, 1), To: losersBye, Slot: 1, Explicit: true}

	assert.NoError(t, ValidateBlueprint(bp))
}

func TestMatchKeyString(t *testing.T) {
	assert.Equal(t, "WR1M2", MatchKey{Section: models.SectionWinners, Round: 1, Number: 2}.String())
	assert.Equal(t, "LR3M1", MatchKey{Section: models.SectionLosers, Round: 3, Number: 1}.String())
	assert.Equal(t, "FR1M1", MatchKey{Section: models.SectionFinals, Round: 1, Number: 1}.String())
}
