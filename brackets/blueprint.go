package brackets

import (
	"fmt"

	"github.com/arman-dev/playoff-system/models"
)

// MatchKey addresses a match inside a blueprint before database ids exist.
// The persistence layer translates keys to real ids during its first pass.
type MatchKey struct {
	Section models.BracketSection
	Round   int
	Number  int
}

func (k MatchKey) String() string {
	prefix := "W"
	switch k.Section {
	case models.SectionLosers:
		prefix = "L"
	case models.SectionFinals:
		prefix = "F"
	}
	return fmt.Sprintf("%sR%dM%d", prefix, k.Round, k.Number)
}

// BlueprintMatch is a match under construction. A bye match either carries its
// sole participant and winner (winners section), or is an empty structural bye
// in the losers section whose participant arrives at runtime.
type BlueprintMatch struct {
	Key       MatchKey
	Player1ID *int
	Player2ID *int
	IsBye     bool
	WinnerID  *int
}

// Advancement routes the winner (or, via LoserLinks, the loser) of From into
// slot Slot of To. Explicit marks links recorded from the round-2 slot layout;
// the result processor honors the designated slot for those instead of taking
// the first empty one.
type Advancement struct {
	From     MatchKey
	To       MatchKey
	Slot     int
	Explicit bool
}

// Blueprint is the in-memory arena for a whole bracket: every match keyed by
// (section, round, number) plus the advancement maps, all resolved
// symbolically. Nothing here knows about storage identifiers.
type Blueprint struct {
	BracketSize  int
	TotalRounds  int
	NumberOfByes int

	Matches     []*BlueprintMatch
	WinnerLinks map[MatchKey]Advancement
	LoserLinks  map[MatchKey]Advancement

	index map[MatchKey]*BlueprintMatch
}

func newBlueprint(plan *SeedingPlan) *Blueprint {
	return &Blueprint{
		BracketSize:  plan.BracketSize,
		TotalRounds:  plan.TotalRounds,
		NumberOfByes: plan.NumberOfByes,
		WinnerLinks:  make(map[MatchKey]Advancement),
		LoserLinks:   make(map[MatchKey]Advancement),
		index:        make(map[MatchKey]*BlueprintMatch),
	}
}

func (bp *Blueprint) add(m *BlueprintMatch) {
	bp.Matches = append(bp.Matches, m)
	bp.index[m.Key] = m
}

// Match returns the blueprint match for key, or nil.
func (bp *Blueprint) Match(key MatchKey) *BlueprintMatch {
	return bp.index[key]
}

// MatchesInRound counts matches of the given section and round.
func (bp *Blueprint) MatchesInRound(section models.BracketSection, round int) int {
	n := 0
	for _, m := range bp.Matches {
		if m.Key.Section == section && m.Key.Round == round {
			n++
		}
	}
	return n
}
