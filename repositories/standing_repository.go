package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arman-dev/playoff-system/models"
)

var (
	ErrTournamentStandingNotFound = errors.New("tournament standing not found")
)

type TournamentStandingRepository interface {
	Create(ctx context.Context, exec SQLExecutor, standing *models.TournamentStanding) error
	GetByTournamentAndParticipant(ctx context.Context, exec SQLExecutor, tournamentID, participantID int) (*models.TournamentStanding, error)
	Update(ctx context.Context, exec SQLExecutor, standing *models.TournamentStanding) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, sortByRank bool) ([]*models.TournamentStanding, error)
	GetOrCreate(ctx context.Context, exec SQLExecutor, tournamentID, participantID int) (*models.TournamentStanding, error)
	DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresTournamentStandingRepository struct {
	db *sql.DB
}

func NewPostgresTournamentStandingRepository(db *sql.DB) TournamentStandingRepository {
	return &postgresTournamentStandingRepository{db: db}
}

func (r *postgresTournamentStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentStandingRepository) Create(ctx context.Context, exec SQLExecutor, standing *models.TournamentStanding) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_standings
		    (tournament_id, participant_id, points, games_played, wins, losses, score_for, score_against, score_difference, rank, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	if standing.UpdatedAt.IsZero() {
		standing.UpdatedAt = time.Now()
	}
	return executor.QueryRowContext(ctx, query,
		standing.TournamentID, standing.ParticipantID, standing.Points, standing.GamesPlayed,
		standing.Wins, standing.Losses, standing.ScoreFor, standing.ScoreAgainst,
		standing.ScoreDifference, standing.Rank, standing.UpdatedAt,
	).Scan(&standing.ID)
}

func (r *postgresTournamentStandingRepository) scanStanding(rowScanner interface{ Scan(...interface{}) error }) (*models.TournamentStanding, error) {
	var s models.TournamentStanding
	err := rowScanner.Scan(
		&s.ID, &s.TournamentID, &s.ParticipantID, &s.Points, &s.GamesPlayed,
		&s.Wins, &s.Losses, &s.ScoreFor, &s.ScoreAgainst,
		&s.ScoreDifference, &s.Rank, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentStandingNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresTournamentStandingRepository) GetByTournamentAndParticipant(ctx context.Context, exec SQLExecutor, tournamentID, participantID int) (*models.TournamentStanding, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, participant_id, points, games_played, wins, losses,
		       score_for, score_against, score_difference, rank, updated_at
		FROM tournament_standings
		WHERE tournament_id = $1 AND participant_id = $2`
	row := executor.QueryRowContext(ctx, query, tournamentID, participantID)
	return r.scanStanding(row)
}

func (r *postgresTournamentStandingRepository) Update(ctx context.Context, exec SQLExecutor, standing *models.TournamentStanding) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournament_standings SET
			points = $1, games_played = $2, wins = $3, losses = $4,
			score_for = $5, score_against = $6, score_difference = $7, rank = $8,
			updated_at = NOW()
		WHERE id = $9`
	result, err := executor.ExecContext(ctx, query,
		standing.Points, standing.GamesPlayed, standing.Wins, standing.Losses,
		standing.ScoreFor, standing.ScoreAgainst, standing.ScoreDifference, standing.Rank,
		standing.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentStandingNotFound)
}

func (r *postgresTournamentStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, sortByRank bool) ([]*models.TournamentStanding, error) {
	executor := r.getExecutor(exec)
	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`
		SELECT id, tournament_id, participant_id, points, games_played, wins, losses,
		       score_for, score_against, score_difference, rank, updated_at
		FROM tournament_standings
		WHERE tournament_id = $1`)

	if sortByRank {
		queryBuilder.WriteString(" ORDER BY points DESC, score_difference DESC, score_for DESC, participant_id ASC")
	} else {
		queryBuilder.WriteString(" ORDER BY participant_id ASC")
	}

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.TournamentStanding, 0)
	for rows.Next() {
		s, errScan := r.scanStanding(rows)
		if errScan != nil {
			return nil, errScan
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

func (r *postgresTournamentStandingRepository) GetOrCreate(ctx context.Context, exec SQLExecutor, tournamentID, participantID int) (*models.TournamentStanding, error) {
	executor := r.getExecutor(exec)
	standing, err := r.GetByTournamentAndParticipant(ctx, executor, tournamentID, participantID)
	if err != nil {
		if errors.Is(err, ErrTournamentStandingNotFound) {
			newStanding := &models.TournamentStanding{
				TournamentID:  tournamentID,
				ParticipantID: participantID,
				UpdatedAt:     time.Now(),
			}
			if createErr := r.Create(ctx, executor, newStanding); createErr != nil {
				return nil, fmt.Errorf("failed to create standing for t:%d p:%d: %w", tournamentID, participantID, createErr)
			}
			return newStanding, nil
		}
		return nil, fmt.Errorf("failed to get standing for t:%d p:%d: %w", tournamentID, participantID, err)
	}
	return standing, nil
}

func (r *postgresTournamentStandingRepository) DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM tournament_standings WHERE tournament_id = $1`, tournamentID)
	return err
}
