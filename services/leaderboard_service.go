package services

import (
	"context"

	"github.com/arman-dev/playoff-system/models"
	"github.com/arman-dev/playoff-system/repositories"
)

type LeaderboardService interface {
	// GetTournamentLeaderboard returns standings ordered by points, then
	// score difference, then score for. Ranks are assigned on the fly.
	GetTournamentLeaderboard(ctx context.Context, tournamentID int) ([]*models.TournamentStanding, error)
}

type leaderboardService struct {
	standingRepo    repositories.TournamentStandingRepository
	participantRepo repositories.ParticipantRepository
	userRepo        repositories.UserRepository
}

func NewLeaderboardService(
	standingRepo repositories.TournamentStandingRepository,
	participantRepo repositories.ParticipantRepository,
	userRepo repositories.UserRepository,
) LeaderboardService {
	return &leaderboardService{
		standingRepo:    standingRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
	}
}

func (s *leaderboardService) GetTournamentLeaderboard(ctx context.Context, tournamentID int) ([]*models.TournamentStanding, error) {
	standings, err := s.standingRepo.ListByTournament(ctx, nil, tournamentID, true)
	if err != nil {
		return nil, err
	}

	for i, standing := range standings {
		rank := i + 1
		standing.Rank = &rank

		participant, pErr := s.participantRepo.FindByID(ctx, standing.ParticipantID)
		if pErr != nil {
			continue
		}
		if user, uErr := s.userRepo.GetByID(ctx, participant.UserID); uErr == nil {
			user.PasswordHash = ""
			participant.User = user
		}
		standing.Participant = participant
	}
	return standings, nil
}
