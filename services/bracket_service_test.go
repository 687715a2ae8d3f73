package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arman-dev/playoff-system/brackets"
	"github.com/arman-dev/playoff-system/models"
)

type bracketFixture struct {
	service         BracketService
	tournamentRepo  *fakeTournamentRepo
	participantRepo *fakeParticipantRepo
	matchRepo       *fakeMatchRepo
	standingRepo    *fakeStandingRepo
}

func newBracketFixture(bracketType models.BracketType, participantCount int) *bracketFixture {
	tournament := &models.Tournament{
		ID:       1,
		Name:     "Spring Cup",
		FormatID: 1,
		Status:   models.StatusRegistration,
	}
	format := &models.Format{ID: 1, Name: "Playoff", BracketType: bracketType}

	participants := make([]*models.Participant, participantCount)
	for i := 0; i < participantCount; i++ {
		seed := i + 1
		participants[i] = &models.Participant{
			ID:           i + 1,
			UserID:       100 + i,
			TournamentID: 1,
			Seed:         &seed,
			Status:       models.ParticipantStatusConfirmed,
		}
	}

	f := &bracketFixture{
		tournamentRepo:  newFakeTournamentRepo(tournament),
		participantRepo: newFakeParticipantRepo(participants...),
		matchRepo:       newFakeMatchRepo(),
		standingRepo:    newFakeStandingRepo(),
	}
	f.service = NewBracketService(
		fakeTxRunner{},
		f.tournamentRepo,
		newFakeFormatRepo(format),
		f.participantRepo,
		f.matchRepo,
		f.standingRepo,
		nil,
		testLogger(),
		nil,
	)
	return f
}

func (f *bracketFixture) matchAt(t *testing.T, section models.BracketSection, round, number int) *models.Match {
	t.Helper()
	for _, m := range f.matchRepo.matches {
		if m.Section == section && m.Round == round && m.MatchNumber == number {
			return m
		}
	}
	t.Fatalf("no match at %s round %d number %d", section, round, number)
	return nil
}

func TestGenerateBracketPersistsSingleElimination(t *testing.T) {
	f := newBracketFixture(models.BracketTypeSingleElimination, 6)

	view, err := f.service.GenerateBracket(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, view.TournamentID)
	assert.Equal(t, models.BracketTypeSingleElimination, view.BracketType)
	require.Len(t, view.Sections, 1)
	assert.Equal(t, models.SectionWinners, view.Sections[0].Section)
	require.Len(t, view.Sections[0].Rounds, 3)
	assert.Len(t, view.Sections[0].Rounds[0].Matches, 2)
	assert.Len(t, view.Sections[0].Rounds[1].Matches, 2)
	assert.Len(t, view.Sections[0].Rounds[2].Matches, 1)
	assert.Len(t, view.Participants, 6)

	// Round-1 winners get designated slots in round 2.
	r1m1 := f.matchAt(t, models.SectionWinners, 1, 1)
	semifinal1 := f.matchAt(t, models.SectionWinners, 2, 1)
	require.NotNil(t, r1m1.NextMatchID)
	assert.Equal(t, semifinal1.ID, *r1m1.NextMatchID)
	require.NotNil(t, r1m1.NextSlot)
	assert.Equal(t, 2, *r1m1.NextSlot)

	// Top seed holds slot 1 of the semifinal by the bye layout.
	require.NotNil(t, semifinal1.Player1ID)
	assert.Equal(t, 1, *semifinal1.Player1ID)

	// Later rounds advance by formula, without a designated slot.
	require.NotNil(t, semifinal1.NextMatchID)
	assert.Nil(t, semifinal1.NextSlot)

	final := f.matchAt(t, models.SectionWinners, 3, 1)
	assert.Nil(t, final.NextMatchID)
}

func TestGenerateBracketPersistsDoubleElimination(t *testing.T) {
	f := newBracketFixture(models.BracketTypeDoubleElimination, 4)

	view, err := f.service.GenerateBracket(context.Background(), 1)
	require.NoError(t, err)

	sections := make([]models.BracketSection, len(view.Sections))
	for i, s := range view.Sections {
		sections[i] = s.Section
	}
	assert.Equal(t, []models.BracketSection{models.SectionWinners, models.SectionLosers, models.SectionFinals}, sections)

	count, err := f.matchRepo.CountByTournament(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	// Round-1 losers drop into losers round 1 with designated slots.
	r1m1 := f.matchAt(t, models.SectionWinners, 1, 1)
	lr1m1 := f.matchAt(t, models.SectionLosers, 1, 1)
	require.NotNil(t, r1m1.LoserNextMatchID)
	assert.Equal(t, lr1m1.ID, *r1m1.LoserNextMatchID)
	require.NotNil(t, r1m1.LoserNextSlot)
	assert.Equal(t, 1, *r1m1.LoserNextSlot)

	// The winners final loser waits in slot 2 of the losers final.
	winnersFinal := f.matchAt(t, models.SectionWinners, 2, 1)
	losersFinal := f.matchAt(t, models.SectionLosers, 2, 1)
	require.NotNil(t, winnersFinal.LoserNextMatchID)
	assert.Equal(t, losersFinal.ID, *winnersFinal.LoserNextMatchID)
	require.NotNil(t, winnersFinal.LoserNextSlot)
	assert.Equal(t, 2, *winnersFinal.LoserNextSlot)

	grandFinal := f.matchAt(t, models.SectionFinals, 1, 1)
	assert.Nil(t, grandFinal.NextMatchID)
	require.NotNil(t, losersFinal.NextMatchID)
	assert.Equal(t, grandFinal.ID, *losersFinal.NextMatchID)
}

func TestGenerateBracketRejectsExistingBracket(t *testing.T) {
	f := newBracketFixture(models.BracketTypeSingleElimination, 4)

	_, err := f.service.GenerateBracket(context.Background(), 1)
	require.NoError(t, err)

	_, err = f.service.GenerateBracket(context.Background(), 1)
	assert.ErrorIs(t, err, ErrBracketAlreadyExists)
}

func TestRegenerateBracketReplacesExisting(t *testing.T) {
	f := newBracketFixture(models.BracketTypeSingleElimination, 4)

	_, err := f.service.GenerateBracket(context.Background(), 1)
	require.NoError(t, err)

	// Simulate results already on the books.
	winner := 1
	f.tournamentRepo.tournaments[1].OverallWinnerParticipantID = &winner
	_, err = f.standingRepo.GetOrCreate(context.Background(), nil, 1, 1)
	require.NoError(t, err)

	view, err := f.service.RegenerateBracket(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, view.Sections, 1)

	count, err := f.matchRepo.CountByTournament(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	standings, err := f.standingRepo.ListByTournament(context.Background(), nil, 1, false)
	require.NoError(t, err)
	assert.Empty(t, standings)
	assert.Nil(t, f.tournamentRepo.tournaments[1].OverallWinnerParticipantID)
}

func TestGenerateBracketRequiresOpenTournament(t *testing.T) {
	f := newBracketFixture(models.BracketTypeSingleElimination, 4)
	f.tournamentRepo.tournaments[1].Status = models.StatusSoon

	_, err := f.service.GenerateBracket(context.Background(), 1)
	assert.ErrorIs(t, err, ErrTournamentNotReady)
}

func TestGenerateBracketRequiresTwoConfirmedParticipants(t *testing.T) {
	f := newBracketFixture(models.BracketTypeSingleElimination, 1)

	_, err := f.service.GenerateBracket(context.Background(), 1)
	assert.ErrorIs(t, err, brackets.ErrNotEnoughParticipants)
}

func TestGetBracketStructureBeforeGeneration(t *testing.T) {
	f := newBracketFixture(models.BracketTypeSingleElimination, 4)

	_, err := f.service.GetBracketStructure(context.Background(), 1)
	assert.ErrorIs(t, err, ErrBracketNotGenerated)
}

func TestPersistBlueprintCompletesKnownByes(t *testing.T) {
	f := newBracketFixture(models.BracketTypeSingleElimination, 4)
	svc := f.service.(*bracketService)

	p1 := 1
	byeKey := brackets.MatchKey{Section: models.SectionWinners, Round: 1, Number: 1}
	targetKey := brackets.MatchKey{Section: models.SectionWinners, Round: 2, Number: 1}
	bp := &brackets.Blueprint{
		Matches: []*brackets.BlueprintMatch{
			{Key: byeKey, Player1ID: &p1, IsBye: true, WinnerID: &p1},
			{Key: targetKey},
		},
		WinnerLinks: map[brackets.MatchKey]brackets.Advancement{
			byeKey: {From: byeKey, To: targetKey, Slot: 1, Explicit: true},
		},
		LoserLinks: map[brackets.MatchKey]brackets.Advancement{},
	}

	require.NoError(t, svc.persistBlueprint(context.Background(), nil, 1, bp))

	bye := f.matchAt(t, models.SectionWinners, 1, 1)
	assert.Equal(t, models.MatchStatusCompleted, bye.Status)
	require.NotNil(t, bye.WinnerID)
	assert.Equal(t, p1, *bye.WinnerID)

	target := f.matchAt(t, models.SectionWinners, 2, 1)
	require.NotNil(t, target.Player1ID)
	assert.Equal(t, p1, *target.Player1ID)
}
