package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strconv"

	"github.com/arman-dev/playoff-system/brackets"
	"github.com/arman-dev/playoff-system/models"
	"github.com/arman-dev/playoff-system/repositories"
	"golang.org/x/sync/errgroup"
)

// RoundView groups the matches of one round, ordered by match number.
type RoundView struct {
	Round   int             `json:"round"`
	Matches []*models.Match `json:"matches"`
}

// SectionView is one bracket section (winners, losers, finals) as rounds.
type SectionView struct {
	Section models.BracketSection `json:"section"`
	Rounds  []RoundView           `json:"rounds"`
}

// BracketView is the API shape of a generated bracket.
type BracketView struct {
	TournamentID int                   `json:"tournament_id"`
	BracketType  models.BracketType    `json:"bracket_type"`
	Sections     []SectionView         `json:"sections"`
	Participants []*models.Participant `json:"participants,omitempty"`
}

type BracketService interface {
	// GenerateBracket builds and persists a bracket. It fails with
	// ErrBracketAlreadyExists if matches are already stored.
	GenerateBracket(ctx context.Context, tournamentID int) (*BracketView, error)
	// RegenerateBracket drops any existing bracket and standings, then
	// builds a fresh one.
	RegenerateBracket(ctx context.Context, tournamentID int) (*BracketView, error)
	GetBracketStructure(ctx context.Context, tournamentID int) (*BracketView, error)
}

type bracketService struct {
	txRunner        repositories.TxRunner
	tournamentRepo  repositories.TournamentRepository
	formatRepo      repositories.FormatRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	standingRepo    repositories.TournamentStandingRepository
	hub             *brackets.Hub
	logger          *slog.Logger
	rng             *rand.Rand
}

// NewBracketService wires the bracket builder. rng seeds the shuffle for
// unseeded fields; pass nil outside of tests.
func NewBracketService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	formatRepo repositories.FormatRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.TournamentStandingRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
	rng *rand.Rand,
) BracketService {
	return &bracketService{
		txRunner:        txRunner,
		tournamentRepo:  tournamentRepo,
		formatRepo:      formatRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		standingRepo:    standingRepo,
		hub:             hub,
		logger:          logger,
		rng:             rng,
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	return s.generate(ctx, tournamentID, false)
}

func (s *bracketService) RegenerateBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	return s.generate(ctx, tournamentID, true)
}

func (s *bracketService) generate(ctx context.Context, tournamentID int, overwrite bool) (*BracketView, error) {
	var bracketType models.BracketType

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		// The tournament row lock serializes concurrent generation attempts.
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if tournament.Status != models.StatusRegistration && tournament.Status != models.StatusActive {
			return ErrTournamentNotReady
		}

		count, err := s.matchRepo.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if count > 0 {
			if !overwrite {
				return ErrBracketAlreadyExists
			}
			if err := s.matchRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
				return err
			}
			if err := s.standingRepo.DeleteByTournamentID(ctx, exec, tournamentID); err != nil {
				return err
			}
			if err := s.tournamentRepo.UpdateOverallWinner(ctx, exec, tournamentID, nil); err != nil {
				return err
			}
		}

		format, err := s.formatRepo.GetByID(ctx, tournament.FormatID)
		if err != nil {
			return fmt.Errorf("failed to load format %d for bracket generation: %w", tournament.FormatID, err)
		}
		bracketType = format.BracketType

		participants, err := s.participantRepo.ListConfirmedByTournament(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list confirmed participants for tournament %d: %w", tournamentID, err)
		}

		generator, err := generatorForBracketType(format.BracketType)
		if err != nil {
			return err
		}

		blueprint, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
			Tournament:   tournament,
			Participants: participants,
			Rand:         s.rng,
		})
		if err != nil {
			return err
		}

		return s.persistBlueprint(ctx, exec, tournamentID, blueprint)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Bracket generated",
		slog.Int("tournament_id", tournamentID), slog.String("bracket_type", string(bracketType)))

	view, err := s.GetBracketStructure(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), brackets.WebSocketMessage{
			Type:    brackets.EventBracketGenerated,
			Payload: view,
			RoomID:  strconv.Itoa(tournamentID),
		})
	}
	return view, nil
}

func generatorForBracketType(bracketType models.BracketType) (brackets.BracketGenerator, error) {
	switch bracketType {
	case models.BracketTypeSingleElimination:
		return brackets.NewSingleEliminationGenerator(), nil
	case models.BracketTypeDoubleElimination:
		return brackets.NewDoubleEliminationGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBracket, bracketType)
	}
}

// persistBlueprint writes the blueprint in three passes. First every match is
// inserted and its database id recorded against the blueprint key. Second the
// advancement columns are filled in from the recorded ids. Third, byes whose
// winner is already known are completed and the winner is moved forward.
func (s *bracketService) persistBlueprint(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, bp *brackets.Blueprint) error {
	keyToID := make(map[brackets.MatchKey]int, len(bp.Matches))

	for _, bm := range bp.Matches {
		match := &models.Match{
			TournamentID: tournamentID,
			Section:      bm.Key.Section,
			Round:        bm.Key.Round,
			MatchNumber:  bm.Key.Number,
			Player1ID:    bm.Player1ID,
			Player2ID:    bm.Player2ID,
			IsBye:        bm.IsBye,
			Status:       models.MatchStatusPending,
		}
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return fmt.Errorf("failed to insert match %s: %w", bm.Key, err)
		}
		keyToID[bm.Key] = match.ID
	}

	for _, bm := range bp.Matches {
		var nextMatchID, nextSlot, loserNextMatchID, loserNextSlot *int

		if adv, ok := bp.WinnerLinks[bm.Key]; ok {
			id, found := keyToID[adv.To]
			if !found {
				return fmt.Errorf("winner link of %s targets unsaved match %s", bm.Key, adv.To)
			}
			nextMatchID = &id
			if adv.Explicit {
				slot := adv.Slot
				nextSlot = &slot
			}
		}
		if adv, ok := bp.LoserLinks[bm.Key]; ok {
			id, found := keyToID[adv.To]
			if !found {
				return fmt.Errorf("loser link of %s targets unsaved match %s", bm.Key, adv.To)
			}
			loserNextMatchID = &id
			if adv.Explicit {
				slot := adv.Slot
				loserNextSlot = &slot
			}
		}

		if nextMatchID == nil && loserNextMatchID == nil {
			continue
		}
		if err := s.matchRepo.UpdateAdvancementLinks(ctx, exec, keyToID[bm.Key], nextMatchID, nextSlot, loserNextMatchID, loserNextSlot); err != nil {
			return fmt.Errorf("failed to link match %s: %w", bm.Key, err)
		}
	}

	for _, bm := range bp.Matches {
		if !bm.IsBye || bm.WinnerID == nil {
			continue
		}
		matchID := keyToID[bm.Key]
		if err := s.matchRepo.UpdateResult(ctx, exec, matchID, nil, nil, bm.WinnerID, models.MatchStatusCompleted); err != nil {
			return fmt.Errorf("failed to complete bye match %s: %w", bm.Key, err)
		}

		adv, ok := bp.WinnerLinks[bm.Key]
		if !ok {
			continue
		}
		targetID := keyToID[adv.To]
		slot := adv.Slot
		if !adv.Explicit {
			target, err := s.matchRepo.GetByIDForUpdate(ctx, exec, targetID)
			if err != nil {
				return err
			}
			slot = firstEmptySlot(target)
			if slot == 0 {
				return ErrNextMatchSlotOccupied
			}
		}
		if err := s.matchRepo.SetPlayerSlot(ctx, exec, targetID, slot, *bm.WinnerID); err != nil {
			return fmt.Errorf("failed to auto-advance bye winner of %s: %w", bm.Key, err)
		}
	}

	return nil
}

func firstEmptySlot(m *models.Match) int {
	switch {
	case m.Player1ID == nil:
		return 1
	case m.Player2ID == nil:
		return 2
	default:
		return 0
	}
}

func (s *bracketService) GetBracketStructure(ctx context.Context, tournamentID int) (*BracketView, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	view := &BracketView{TournamentID: tournamentID}

	g, gCtx := errgroup.WithContext(ctx)

	var matches []*models.Match
	g.Go(func() error {
		var listErr error
		matches, listErr = s.matchRepo.ListByTournament(gCtx, tournamentID, repositories.MatchFilter{})
		return listErr
	})
	g.Go(func() error {
		participants, listErr := s.participantRepo.ListConfirmedByTournament(gCtx, tournamentID)
		if listErr != nil {
			return listErr
		}
		view.Participants = participants
		return nil
	})
	g.Go(func() error {
		format, getErr := s.formatRepo.GetByID(gCtx, tournament.FormatID)
		if getErr != nil {
			return getErr
		}
		view.BracketType = format.BracketType
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrBracketNotGenerated
	}

	view.Sections = groupBySection(matches)
	return view, nil
}

func groupBySection(matches []*models.Match) []SectionView {
	bySection := make(map[models.BracketSection]map[int][]*models.Match)
	for _, m := range matches {
		if bySection[m.Section] == nil {
			bySection[m.Section] = make(map[int][]*models.Match)
		}
		bySection[m.Section][m.Round] = append(bySection[m.Section][m.Round], m)
	}

	sections := make([]SectionView, 0, len(bySection))
	for _, section := range []models.BracketSection{models.SectionWinners, models.SectionLosers, models.SectionFinals} {
		rounds, ok := bySection[section]
		if !ok {
			continue
		}
		sectionView := SectionView{Section: section}
		roundNumbers := make([]int, 0, len(rounds))
		for r := range rounds {
			roundNumbers = append(roundNumbers, r)
		}
		sort.Ints(roundNumbers)
		for _, r := range roundNumbers {
			roundMatches := rounds[r]
			sort.Slice(roundMatches, func(i, j int) bool {
				return roundMatches[i].MatchNumber < roundMatches[j].MatchNumber
			})
			sectionView.Rounds = append(sectionView.Rounds, RoundView{Round: r, Matches: roundMatches})
		}
		sections = append(sections, sectionView)
	}
	return sections
}
