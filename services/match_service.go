package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/arman-dev/playoff-system/brackets"
	"github.com/arman-dev/playoff-system/models"
	"github.com/arman-dev/playoff-system/repositories"
)

const pointsPerWin = 3

// ReportResultInput carries one reported match outcome. TournamentID guards
// against reporting a match id from a different tournament's bracket. A nil
// WinnerID records the scores without deciding the match.
type ReportResultInput struct {
	TournamentID int
	MatchID      int
	WinnerID     *int
	Player1Score *int
	Player2Score *int
}

// ReportResultOutput is the updated match plus whether the winner was moved
// into a following match. Scores-only reports never advance anyone.
type ReportResultOutput struct {
	Match    *models.Match `json:"match"`
	Advanced bool          `json:"advanced"`
}

type MatchService interface {
	// ReportResult records the outcome of a pending match and advances the
	// winner (and, in double elimination, routes the loser). Transitions
	// are one way: a completed match rejects further reports. A report
	// without a winner persists the scores and leaves the match pending.
	ReportResult(ctx context.Context, currentUserID int, input ReportResultInput) (*ReportResultOutput, error)
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error)
}

type matchService struct {
	txRunner       repositories.TxRunner
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	userRepo       repositories.UserRepository
	standingRepo   repositories.TournamentStandingRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewMatchService(
	txRunner repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	standingRepo repositories.TournamentStandingRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txRunner:       txRunner,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		userRepo:       userRepo,
		standingRepo:   standingRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	return s.matchRepo.GetByID(ctx, matchID)
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	return s.matchRepo.ListByTournament(ctx, tournamentID, filter)
}

func (s *matchService) ReportResult(ctx context.Context, currentUserID int, input ReportResultInput) (*ReportResultOutput, error) {
	var (
		updated             *models.Match
		advanced            bool
		tournamentCompleted bool
	)

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, input.MatchID)
		if err != nil {
			return err
		}
		if input.TournamentID != 0 && match.TournamentID != input.TournamentID {
			return ErrMatchTournamentMismatch
		}

		tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
		if err != nil {
			return err
		}
		if err := s.authorizeResultReport(ctx, currentUserID, tournament); err != nil {
			return err
		}
		if tournament.Status != models.StatusActive {
			return ErrTournamentNotReady
		}

		if match.Status == models.MatchStatusCompleted {
			return ErrMatchAlreadyDecided
		}
		if match.Player1ID == nil || match.Player2ID == nil {
			return ErrMatchNotReady
		}

		// No winner named: store the scores, keep the match pending, and
		// do not touch standings or advancement.
		if input.WinnerID == nil {
			if err := s.matchRepo.UpdateResult(ctx, exec, match.ID, input.Player1Score, input.Player2Score, nil, models.MatchStatusPending); err != nil {
				return err
			}
			updated, err = s.matchRepo.GetByIDForUpdate(ctx, exec, match.ID)
			return err
		}

		winnerID := *input.WinnerID
		if !match.HasParticipant(winnerID) {
			return ErrWinnerNotInMatch
		}

		if err := s.matchRepo.UpdateResult(ctx, exec, match.ID, input.Player1Score, input.Player2Score, &winnerID, models.MatchStatusCompleted); err != nil {
			return err
		}

		if err := s.applyStandings(ctx, exec, match, winnerID, input.Player1Score, input.Player2Score); err != nil {
			return err
		}

		if match.NextMatchID != nil {
			if err := s.placeAndResolve(ctx, exec, *match.NextMatchID, match.NextSlot, winnerID); err != nil {
				return err
			}
			advanced = true
		}
		if loser := match.Opponent(winnerID); loser != nil && match.LoserNextMatchID != nil {
			if err := s.placeAndResolve(ctx, exec, *match.LoserNextMatchID, match.LoserNextSlot, *loser); err != nil {
				return err
			}
		}

		// A winners-section or finals match with nowhere to advance decides
		// the tournament.
		if match.NextMatchID == nil && match.Section != models.SectionLosers {
			if err := s.tournamentRepo.UpdateOverallWinner(ctx, exec, match.TournamentID, &winnerID); err != nil {
				return err
			}
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, match.TournamentID, models.StatusCompleted); err != nil {
				return err
			}
			tournamentCompleted = true
		}

		updated, err = s.matchRepo.GetByIDForUpdate(ctx, exec, match.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	room := strconv.Itoa(updated.TournamentID)
	if s.hub != nil {
		s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
			Type:    brackets.EventMatchUpdated,
			Payload: updated,
			RoomID:  room,
		})
		if tournamentCompleted {
			s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
				Type:    brackets.EventTournamentUpdated,
				Payload: map[string]interface{}{"tournament_id": updated.TournamentID, "status": models.StatusCompleted, "winner_participant_id": updated.WinnerID},
				RoomID:  room,
			})
		}
	}
	if tournamentCompleted {
		s.logger.InfoContext(ctx, "Tournament completed",
			slog.Int("tournament_id", updated.TournamentID), slog.Int("winner_participant_id", *updated.WinnerID))
	}
	return &ReportResultOutput{Match: updated, Advanced: advanced}, nil
}

func (s *matchService) authorizeResultReport(ctx context.Context, currentUserID int, tournament *models.Tournament) error {
	if tournament.OrganizerID == currentUserID {
		return nil
	}
	user, err := s.userRepo.GetByID(ctx, currentUserID)
	if err != nil {
		return err
	}
	if user.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// placeAndResolve puts participantID into the target match, honoring a
// designated slot when one was recorded and taking the first empty slot
// otherwise. When the target is a bye, the arrival decides it immediately and
// the participant keeps moving; chains of byes resolve in one call.
func (s *matchService) placeAndResolve(ctx context.Context, exec repositories.SQLExecutor, targetID int, designatedSlot *int, participantID int) error {
	target, err := s.matchRepo.GetByIDForUpdate(ctx, exec, targetID)
	if err != nil {
		return err
	}

	slot := 0
	if designatedSlot != nil {
		slot = *designatedSlot
		if (slot == 1 && target.Player1ID != nil) || (slot == 2 && target.Player2ID != nil) {
			return ErrNextMatchSlotOccupied
		}
	} else {
		slot = firstEmptySlot(target)
		if slot == 0 {
			return ErrNextMatchSlotOccupied
		}
	}

	if err := s.matchRepo.SetPlayerSlot(ctx, exec, targetID, slot, participantID); err != nil {
		if errors.Is(err, repositories.ErrMatchSlotOccupied) {
			return ErrNextMatchSlotOccupied
		}
		return fmt.Errorf("failed to place participant %d into match %d: %w", participantID, targetID, err)
	}

	if !target.IsBye || target.Status != models.MatchStatusPending {
		return nil
	}

	// Sole arrival decides the bye.
	if err := s.matchRepo.UpdateResult(ctx, exec, targetID, nil, nil, &participantID, models.MatchStatusCompleted); err != nil {
		return err
	}
	if target.NextMatchID != nil {
		return s.placeAndResolve(ctx, exec, *target.NextMatchID, target.NextSlot, participantID)
	}
	return nil
}

func (s *matchService) applyStandings(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, winnerID int, player1Score, player2Score *int) error {
	loser := match.Opponent(winnerID)
	if loser == nil {
		return nil
	}

	winnerScore, loserScore := 0, 0
	if player1Score != nil && player2Score != nil {
		if *match.Player1ID == winnerID {
			winnerScore, loserScore = *player1Score, *player2Score
		} else {
			winnerScore, loserScore = *player2Score, *player1Score
		}
	}

	winnerStanding, err := s.standingRepo.GetOrCreate(ctx, exec, match.TournamentID, winnerID)
	if err != nil {
		return err
	}
	winnerStanding.Points += pointsPerWin
	winnerStanding.GamesPlayed++
	winnerStanding.Wins++
	winnerStanding.ScoreFor += winnerScore
	winnerStanding.ScoreAgainst += loserScore
	winnerStanding.ScoreDifference = winnerStanding.ScoreFor - winnerStanding.ScoreAgainst
	if err := s.standingRepo.Update(ctx, exec, winnerStanding); err != nil {
		return err
	}

	loserStanding, err := s.standingRepo.GetOrCreate(ctx, exec, match.TournamentID, *loser)
	if err != nil {
		return err
	}
	loserStanding.GamesPlayed++
	loserStanding.Losses++
	loserStanding.ScoreFor += loserScore
	loserStanding.ScoreAgainst += winnerScore
	loserStanding.ScoreDifference = loserStanding.ScoreFor - loserStanding.ScoreAgainst
	return s.standingRepo.Update(ctx, exec, loserStanding)
}
