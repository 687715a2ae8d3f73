package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arman-dev/playoff-system/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound          = errors.New("participant not found")
	ErrParticipantAlreadyRegistered = errors.New("participant already registered for this tournament")
	ErrParticipantInvalidUser       = errors.New("invalid user reference")
	ErrParticipantInvalidTournament = errors.New("invalid tournament reference")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	FindByID(ctx context.Context, id int) (*models.Participant, error)
	FindByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	ListConfirmedByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	UpdateStatus(ctx context.Context, id int, status models.ParticipantStatus) error
	UpdateSeed(ctx context.Context, id int, seed *int) error
	Delete(ctx context.Context, id int) error
}

type participantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (user_id, tournament_id, seed, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		p.UserID, p.TournamentID, p.Seed, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
	return r.handleParticipantError(err)
}

func (r *participantRepository) FindByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `SELECT id, user_id, tournament_id, seed, status, created_at
			  FROM participants WHERE id = $1`
	p := &models.Participant{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.UserID, &p.TournamentID, &p.Seed, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrParticipantNotFound
	}
	return p, err
}

func (r *participantRepository) FindByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.Participant, error) {
	query := `SELECT id, user_id, tournament_id, seed, status, created_at
			  FROM participants WHERE user_id = $1 AND tournament_id = $2`
	p := &models.Participant{}
	err := r.db.QueryRowContext(ctx, query, userID, tournamentID).
		Scan(&p.ID, &p.UserID, &p.TournamentID, &p.Seed, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrParticipantNotFound
	}
	return p, err
}

func (r *participantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	query := `SELECT id, user_id, tournament_id, seed, status, created_at
			  FROM participants
			  WHERE tournament_id = $1
			  ORDER BY seed ASC NULLS LAST, id ASC`
	return r.queryParticipants(ctx, query, tournamentID)
}

// ListConfirmedByTournament returns the roster the bracket is built from.
func (r *participantRepository) ListConfirmedByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	query := `SELECT id, user_id, tournament_id, seed, status, created_at
			  FROM participants
			  WHERE tournament_id = $1 AND status = $2
			  ORDER BY seed ASC NULLS LAST, id ASC`
	return r.queryParticipants(ctx, query, tournamentID, models.ParticipantStatusConfirmed)
}

func (r *participantRepository) queryParticipants(ctx context.Context, query string, args ...interface{}) ([]*models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if scanErr := rows.Scan(&p.ID, &p.UserID, &p.TournamentID, &p.Seed, &p.Status, &p.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *participantRepository) UpdateStatus(ctx context.Context, id int, status models.ParticipantStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE participants SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *participantRepository) UpdateSeed(ctx context.Context, id int, seed *int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE participants SET seed = $1 WHERE id = $2`, seed, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *participantRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *participantRepository) handleParticipantError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "participants_user_id_tournament_id_key" {
				return ErrParticipantAlreadyRegistered
			}
		case "23503":
			switch pqErr.Constraint {
			case "participants_user_id_fkey":
				return ErrParticipantInvalidUser
			case "participants_tournament_id_fkey":
				return ErrParticipantInvalidTournament
			}
		}
	}
	return err
}
