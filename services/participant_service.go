package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/arman-dev/playoff-system/models"
	"github.com/arman-dev/playoff-system/repositories"
)

var (
	ErrRegistrationNotOpen  = errors.New("tournament registration is not open")
	ErrTournamentFull       = errors.New("tournament has reached its participant limit")
	ErrRegistrationConflict = errors.New("user is already registered for this tournament")
	ErrSeedTaken            = errors.New("seed is already assigned to another participant")
)

type ParticipantService interface {
	// Register applies the user for the tournament roster. The application
	// stays pending until the organizer confirms it.
	Register(ctx context.Context, userID, tournamentID int) (*models.Participant, error)
	ConfirmParticipant(ctx context.Context, currentUserID, participantID int) (*models.Participant, error)
	Withdraw(ctx context.Context, currentUserID, participantID int) error
	// AssignSeed gives the participant an explicit seed rank. Seeded
	// participants are ordered by rank when the bracket is built.
	AssignSeed(ctx context.Context, currentUserID, participantID int, seed *int) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
}

type participantService struct {
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	userRepo        repositories.UserRepository
}

func NewParticipantService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		userRepo:        userRepo,
	}
}

func (s *participantService) Register(ctx context.Context, userID, tournamentID int) (*models.Participant, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrRegistrationNotOpen
	}

	existing, err := s.participantRepo.FindByUserAndTournament(ctx, userID, tournamentID)
	if err != nil && !errors.Is(err, repositories.ErrParticipantNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != models.ParticipantStatusWithdrawn {
		return nil, ErrRegistrationConflict
	}

	roster, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	active := 0
	for _, p := range roster {
		if p.Status != models.ParticipantStatusWithdrawn {
			active++
		}
	}
	if active >= tournament.MaxParticipants {
		return nil, ErrTournamentFull
	}

	if existing != nil {
		if err := s.participantRepo.UpdateStatus(ctx, existing.ID, models.ParticipantStatusApplication); err != nil {
			return nil, err
		}
		existing.Status = models.ParticipantStatusApplication
		return existing, nil
	}

	participant := &models.Participant{
		UserID:       userID,
		TournamentID: tournamentID,
		Status:       models.ParticipantStatusApplication,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantAlreadyRegistered) {
			return nil, ErrRegistrationConflict
		}
		return nil, err
	}
	return participant, nil
}

func (s *participantService) ConfirmParticipant(ctx context.Context, currentUserID, participantID int) (*models.Participant, error) {
	participant, tournament, err := s.loadParticipantAndTournament(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrganizer(ctx, currentUserID, tournament); err != nil {
		return nil, err
	}
	if participant.Status != models.ParticipantStatusApplication {
		return nil, fmt.Errorf("%w: participant is %s", ErrValidationFailed, participant.Status)
	}

	if err := s.participantRepo.UpdateStatus(ctx, participantID, models.ParticipantStatusConfirmed); err != nil {
		return nil, err
	}
	participant.Status = models.ParticipantStatusConfirmed
	return participant, nil
}

func (s *participantService) Withdraw(ctx context.Context, currentUserID, participantID int) error {
	participant, tournament, err := s.loadParticipantAndTournament(ctx, participantID)
	if err != nil {
		return err
	}
	// A player may withdraw themselves; the organizer may remove anyone.
	if participant.UserID != currentUserID {
		if err := s.authorizeOrganizer(ctx, currentUserID, tournament); err != nil {
			return err
		}
	}
	if tournament.Status == models.StatusActive || tournament.Status == models.StatusCompleted {
		return ErrTournamentNotReady
	}
	return s.participantRepo.UpdateStatus(ctx, participantID, models.ParticipantStatusWithdrawn)
}

func (s *participantService) AssignSeed(ctx context.Context, currentUserID, participantID int, seed *int) (*models.Participant, error) {
	participant, tournament, err := s.loadParticipantAndTournament(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrganizer(ctx, currentUserID, tournament); err != nil {
		return nil, err
	}
	if tournament.Status == models.StatusActive || tournament.Status == models.StatusCompleted {
		return nil, ErrTournamentNotReady
	}
	if seed != nil {
		if *seed < 1 {
			return nil, fmt.Errorf("%w: seed must be positive", ErrValidationFailed)
		}
		roster, err := s.participantRepo.ListByTournament(ctx, participant.TournamentID)
		if err != nil {
			return nil, err
		}
		for _, p := range roster {
			if p.ID != participantID && p.Seed != nil && *p.Seed == *seed && p.Status != models.ParticipantStatusWithdrawn {
				return nil, ErrSeedTaken
			}
		}
	}

	if err := s.participantRepo.UpdateSeed(ctx, participantID, seed); err != nil {
		return nil, err
	}
	participant.Seed = seed
	return participant, nil
}

func (s *participantService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, p := range participants {
		user, userErr := s.userRepo.GetByID(ctx, p.UserID)
		if userErr == nil {
			user.PasswordHash = ""
			p.User = user
		}
	}
	return participants, nil
}

func (s *participantService) loadParticipantAndTournament(ctx context.Context, participantID int) (*models.Participant, *models.Tournament, error) {
	participant, err := s.participantRepo.FindByID(ctx, participantID)
	if err != nil {
		return nil, nil, err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, participant.TournamentID)
	if err != nil {
		return nil, nil, err
	}
	return participant, tournament, nil
}

func (s *participantService) authorizeOrganizer(ctx context.Context, currentUserID int, tournament *models.Tournament) error {
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
