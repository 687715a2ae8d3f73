package brackets

import (
	"fmt"

	"github.com/arman-dev/playoff-system/models"
)

// addFormulaLinks records the standard doubling advancement for a section:
// match n of round r feeds match ceil(n/2) of round r+1, odd numbers into
// slot 1, even into slot 2. Links are non-explicit; at runtime the winner
// takes the first empty slot of the target.
func addFormulaLinks(bp *Blueprint, section models.BracketSection, fromRound, lastRound int) {
	for _, m := range bp.Matches {
		if m.Key.Section != section || m.Key.Round < fromRound || m.Key.Round >= lastRound {
			continue
		}
		slot := 2
		if m.Key.Number%2 == 1 {
			slot = 1
		}
		bp.WinnerLinks[m.Key] = Advancement{
			From: m.Key,
			To:   MatchKey{Section: section, Round: m.Key.Round + 1, Number: (m.Key.Number + 1) / 2},
			Slot: slot,
		}
	}
}

// ValidateBlueprint checks the structural invariants before anything is
// persisted. The central property is slot uniqueness: no two links (winner or
// loser) may route into the same (match, slot) pair, and no link may route
// into a slot already holding a bye recipient.
func ValidateBlueprint(bp *Blueprint) error {
	if len(bp.index) != len(bp.Matches) {
		return fmt.Errorf("blueprint contains duplicate match keys (%d matches, %d distinct)", len(bp.Matches), len(bp.index))
	}

	// Match numbers per (section, round) must be exactly 1..count.
	numbers := make(map[[2]interface{}]map[int]bool)
	for _, m := range bp.Matches {
		groupKey := [2]interface{}{m.Key.Section, m.Key.Round}
		if numbers[groupKey] == nil {
			numbers[groupKey] = make(map[int]bool)
		}
		if numbers[groupKey][m.Key.Number] {
			return fmt.Errorf("duplicate match number %s", m.Key)
		}
		numbers[groupKey][m.Key.Number] = true
	}
	for _, m := range bp.Matches {
		count := bp.MatchesInRound(m.Key.Section, m.Key.Round)
		if m.Key.Number < 1 || m.Key.Number > count {
			return fmt.Errorf("match number out of range: %s (round has %d matches)", m.Key, count)
		}
	}

	// Exactly one match (the tournament final) has no winner link.
	finals := 0
	for _, m := range bp.Matches {
		if _, ok := bp.WinnerLinks[m.Key]; !ok {
			finals++
		}
	}
	if finals != 1 {
		return fmt.Errorf("expected exactly one final match without a successor, found %d", finals)
	}

	occupied := make(map[MatchKey]map[int]string)
	claim := func(adv Advancement, kind string) error {
		if adv.Slot != 1 && adv.Slot != 2 {
			return fmt.Errorf("%s link %s -> %s uses invalid slot %d", kind, adv.From, adv.To, adv.Slot)
		}
		target := bp.Match(adv.To)
		if target == nil {
			return fmt.Errorf("%s link %s -> %s targets a match that does not exist", kind, adv.From, adv.To)
		}
		if adv.Slot == 1 && target.Player1ID != nil || adv.Slot == 2 && target.Player2ID != nil {
			return fmt.Errorf("%s link %s -> %s slot %d is already held by a bye recipient", kind, adv.From, adv.To, adv.Slot)
		}
		if occupied[adv.To] == nil {
			occupied[adv.To] = make(map[int]string)
		}
		if prev, taken := occupied[adv.To][adv.Slot]; taken {
			return fmt.Errorf("slot collision: %s and %s both feed %s slot %d", prev, adv.From, adv.To, adv.Slot)
		}
		occupied[adv.To][adv.Slot] = adv.From.String()
		return nil
	}
	for _, adv := range bp.WinnerLinks {
		if err := claim(adv, "winner"); err != nil {
			return err
		}
	}
	for _, adv := range bp.LoserLinks {
		if err := claim(adv, "loser"); err != nil {
			return err
		}
	}

	for _, m := range bp.Matches {
		if err := validateByeMatch(m); err != nil {
			return err
		}
	}
	return nil
}

func validateByeMatch(m *BlueprintMatch) error {
	if m.WinnerID != nil && !(m.Player1ID != nil && *m.Player1ID == *m.WinnerID || m.Player2ID != nil && *m.Player2ID == *m.WinnerID) {
		return fmt.Errorf("match %s has a winner that is not a participant of the match", m.Key)
	}
	if !m.IsBye {
		return nil
	}
	if m.Player1ID != nil && m.Player2ID != nil {
		return fmt.Errorf("bye match %s has two participants", m.Key)
	}
	// Structural byes in the losers bracket have no participant until a
	// loser is routed in at runtime; every other bye resolves at build time.
	if m.Key.Section == models.SectionLosers {
		return nil
	}
	if m.Player1ID == nil && m.Player2ID == nil {
		return fmt.Errorf("bye match %s has no participant", m.Key)
	}
	if m.WinnerID == nil {
		return fmt.Errorf("bye match %s has no winner recorded", m.Key)
	}
	return nil
}
