package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/arman-dev/playoff-system/brackets"
	"github.com/arman-dev/playoff-system/models"
	"github.com/arman-dev/playoff-system/repositories"
	"github.com/arman-dev/playoff-system/storage"
	"github.com/google/uuid"
)

var (
	ErrTournamentDatesRequired    = errors.New("registration, start and end dates are required")
	ErrTournamentInvalidRegDate   = errors.New("invalid registration date")
	ErrTournamentInvalidDateRange = errors.New("invalid date range")
	ErrTournamentStatusTransition = errors.New("invalid tournament status transition")
)

type CreateTournamentInput struct {
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	FormatID        int       `json:"format_id"`
	RegDate         time.Time `json:"reg_date"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Location        *string   `json:"location,omitempty"`
	MaxParticipants int       `json:"max_participants"`
}

type UpdateTournamentInput struct {
	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	FormatID        *int       `json:"format_id,omitempty"`
	RegDate         *time.Time `json:"reg_date,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Location        *string    `json:"location,omitempty"`
	MaxParticipants *int       `json:"max_participants,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, currentUserID, id int, input UpdateTournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, currentUserID, id int) error
	// UpdateStatus applies a manual status change, validating the transition.
	// Moving registration -> active generates the bracket first.
	UpdateStatus(ctx context.Context, currentUserID, id int, next models.TournamentStatus) (*models.Tournament, error)
	UploadLogo(ctx context.Context, currentUserID, id int, contentType string, body io.Reader) (*models.Tournament, error)
	// AutoUpdateStatusesByDates advances tournaments whose reg/start/end
	// dates have passed. Run periodically by the scheduler.
	AutoUpdateStatusesByDates(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	formatRepo     repositories.FormatRepository
	userRepo       repositories.UserRepository
	bracketService BracketService
	uploader       storage.FileUploader
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	formatRepo repositories.FormatRepository,
	userRepo repositories.UserRepository,
	bracketService BracketService,
	uploader storage.FileUploader,
	hub *brackets.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		formatRepo:     formatRepo,
		userRepo:       userRepo,
		bracketService: bracketService,
		uploader:       uploader,
		hub:            hub,
		logger:         logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	organizer, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	if organizer.Role != models.RoleOrganizer && organizer.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if input.MaxParticipants < 2 {
		return nil, fmt.Errorf("%w: max_participants must be at least 2", ErrValidationFailed)
	}
	if err := validateTournamentDates(input.RegDate, input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if _, err := s.formatRepo.GetByID(ctx, input.FormatID); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:            input.Name,
		Description:     input.Description,
		FormatID:        input.FormatID,
		OrganizerID:     organizerID,
		RegDate:         input.RegDate,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Location:        input.Location,
		Status:          models.StatusSoon,
		MaxParticipants: input.MaxParticipants,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	populateTournamentDetails(ctx, tournament, s.formatRepo, s.userRepo, s.uploader, s.logger)
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		populateTournamentLogoURL(&tournaments[i], s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, currentUserID, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrganizer(ctx, currentUserID, tournament); err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusSoon && tournament.Status != models.StatusRegistration {
		return nil, ErrTournamentNotReady
	}

	if input.Name != nil {
		tournament.Name = *input.Name
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.FormatID != nil {
		if _, err := s.formatRepo.GetByID(ctx, *input.FormatID); err != nil {
			return nil, err
		}
		tournament.FormatID = *input.FormatID
	}
	if input.RegDate != nil {
		tournament.RegDate = *input.RegDate
	}
	if input.StartDate != nil {
		tournament.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		tournament.EndDate = *input.EndDate
	}
	if input.Location != nil {
		tournament.Location = input.Location
	}
	if input.MaxParticipants != nil {
		if *input.MaxParticipants < 2 {
			return nil, fmt.Errorf("%w: max_participants must be at least 2", ErrValidationFailed)
		}
		tournament.MaxParticipants = *input.MaxParticipants
	}
	if err := validateTournamentDates(tournament.RegDate, tournament.StartDate, tournament.EndDate); err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, currentUserID, id int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeOrganizer(ctx, currentUserID, tournament); err != nil {
		return err
	}
	return s.tournamentRepo.Delete(ctx, id)
}

func (s *tournamentService) UpdateStatus(ctx context.Context, currentUserID, id int, next models.TournamentStatus) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrganizer(ctx, currentUserID, tournament); err != nil {
		return nil, err
	}
	if !isValidStatusTransition(tournament.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentStatusTransition, tournament.Status, next)
	}

	if tournament.Status == models.StatusRegistration && next == models.StatusActive {
		if _, err := s.bracketService.GenerateBracket(ctx, id); err != nil && !errors.Is(err, ErrBracketAlreadyExists) {
			return nil, err
		}
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, next); err != nil {
		return nil, err
	}
	tournament.Status = next

	if s.hub != nil {
		room := strconv.Itoa(id)
		s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
			Type:    brackets.EventTournamentUpdated,
			Payload: map[string]interface{}{"tournament_id": id, "status": next},
			RoomID:  room,
		})
	}
	return tournament, nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, currentUserID, id int, contentType string, body io.Reader) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrganizer(ctx, currentUserID, tournament); err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("tournaments/%d/logo-%s%s", id, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}

	oldKey := tournament.LogoKey
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != "" {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.WarnContext(ctx, "Failed to delete previous tournament logo", slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	tournament.LogoKey = &key
	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) AutoUpdateStatusesByDates(ctx context.Context) error {
	now := time.Now()
	due, err := s.tournamentRepo.GetTournamentsForAutoStatusUpdate(ctx, nil, now)
	if err != nil {
		return err
	}

	for _, t := range due {
		var next models.TournamentStatus
		switch {
		case t.Status == models.StatusSoon && !t.RegDate.After(now):
			next = models.StatusRegistration
		case t.Status == models.StatusRegistration && !t.StartDate.After(now):
			next = models.StatusActive
		case t.Status == models.StatusActive && !t.EndDate.After(now):
			next = models.StatusCompleted
		default:
			continue
		}

		if next == models.StatusActive {
			if _, genErr := s.bracketService.GenerateBracket(ctx, t.ID); genErr != nil && !errors.Is(genErr, ErrBracketAlreadyExists) {
				s.logger.ErrorContext(ctx, "Auto status update: bracket generation failed",
					slog.Int("tournament_id", t.ID), slog.Any("error", genErr))
				continue
			}
		}

		if updErr := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); updErr != nil {
			s.logger.ErrorContext(ctx, "Auto status update failed",
				slog.Int("tournament_id", t.ID), slog.String("next_status", string(next)), slog.Any("error", updErr))
			continue
		}
		s.logger.InfoContext(ctx, "Tournament status advanced by schedule",
			slog.Int("tournament_id", t.ID), slog.String("from", string(t.Status)), slog.String("to", string(next)))

		if s.hub != nil {
			room := strconv.Itoa(t.ID)
			s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
				Type:    brackets.EventTournamentUpdated,
				Payload: map[string]interface{}{"tournament_id": t.ID, "status": next},
				RoomID:  room,
			})
		}
	}
	return nil
}

func (s *tournamentService) authorizeOrganizer(ctx context.Context, currentUserID int, tournament *models.Tournament) error {
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
