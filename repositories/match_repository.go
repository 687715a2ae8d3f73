package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arman-dev/playoff-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchPlayerInvalid     = errors.New("match player conflict or invalid")
	ErrMatchWinnerInvalid     = errors.New("match winner conflict or invalid")
	ErrMatchSlotOccupied      = errors.New("match slot already occupied")
)

// MatchFilter narrows ListByTournament. Nil fields are ignored.
type MatchFilter struct {
	Section *models.BracketSection
	Round   *int
	Status  *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter MatchFilter) ([]*models.Match, error)
	UpdateAdvancementLinks(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID, nextSlot, loserNextMatchID, loserNextSlot *int) error
	UpdateResult(ctx context.Context, exec SQLExecutor, matchID int, p1Score, p2Score *int, winnerID *int, status models.MatchStatus) error
	SetPlayerSlot(ctx context.Context, exec SQLExecutor, matchID int, slot int, participantID int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, section, round, match_number, player1_id, player2_id,
	player1_score, player2_score, winner_id, is_bye, next_match_id, next_slot,
	loser_next_match_id, loser_next_slot, status, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }, m *models.Match) error {
	return row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.Section,
		&m.Round,
		&m.MatchNumber,
		&m.Player1ID,
		&m.Player2ID,
		&m.Player1Score,
		&m.Player2Score,
		&m.WinnerID,
		&m.IsBye,
		&m.NextMatchID,
		&m.NextSlot,
		&m.LoserNextMatchID,
		&m.LoserNextSlot,
		&m.Status,
		&m.CreatedAt,
	)
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, section, round, match_number, player1_id, player2_id,
			 player1_score, player2_score, winner_id, is_bye, next_match_id, next_slot,
			 loser_next_match_id, loser_next_slot, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.Section,
		match.Round,
		match.MatchNumber,
		match.Player1ID,
		match.Player2ID,
		match.Player1Score,
		match.Player2Score,
		match.WinnerID,
		match.IsBye,
		match.NextMatchID,
		match.NextSlot,
		match.LoserNextMatchID,
		match.LoserNextSlot,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match := &models.Match{}
	if err := scanMatch(r.db.QueryRowContext(ctx, query, id), match); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

// GetByIDForUpdate locks the match row for the duration of the surrounding
// transaction. Concurrent result reports for the same match serialize here.
func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`

	match := &models.Match{}
	if err := scanMatch(exec.QueryRowContext(ctx, query, id), match); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d for update: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, filter MatchFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholderIndex := 2

	if filter.Section != nil {
		queryBuilder.WriteString(" AND section = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Section)
		placeholderIndex++
	}
	if filter.Round != nil {
		queryBuilder.WriteString(" AND round = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Round)
		placeholderIndex++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
		placeholderIndex++
	}

	queryBuilder.WriteString(" ORDER BY section ASC, round ASC, match_number ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := scanMatch(rows, &match); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateAdvancementLinks(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID, nextSlot, loserNextMatchID, loserNextSlot *int) error {
	query := `UPDATE matches SET next_match_id = $1, next_slot = $2, loser_next_match_id = $3, loser_next_slot = $4 WHERE id = $5`
	result, err := exec.ExecContext(ctx, query, nextMatchID, nextSlot, loserNextMatchID, loserNextSlot, matchID)
	if err != nil {
		return fmt.Errorf("UpdateAdvancementLinks: failed to execute query for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, matchID int, p1Score, p2Score *int, winnerID *int, status models.MatchStatus) error {
	query := `
		UPDATE matches
		SET player1_score = $1, player2_score = $2, winner_id = $3, status = $4
		WHERE id = $5`
	result, err := exec.ExecContext(ctx, query, p1Score, p2Score, winnerID, status, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// SetPlayerSlot fills one player slot and refuses to overwrite an occupied
// one. The WHERE guard makes the fill atomic under concurrent advancement.
func (r *postgresMatchRepository) SetPlayerSlot(ctx context.Context, exec SQLExecutor, matchID int, slot int, participantID int) error {
	var query string
	switch slot {
	case 1:
		query = `UPDATE matches SET player1_id = $1 WHERE id = $2 AND player1_id IS NULL`
	case 2:
		query = `UPDATE matches SET player2_id = $1 WHERE id = $2 AND player2_id IS NULL`
	default:
		return fmt.Errorf("SetPlayerSlot: invalid slot %d for match %d", slot, matchID)
	}

	result, err := exec.ExecContext(ctx, query, participantID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, matchID); getErr != nil {
			return getErr
		}
		return ErrMatchSlotOccupied
	}
	return nil
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM matches WHERE tournament_id = $1`
	if _, err := exec.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("DeleteByTournament: failed to delete matches for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1`
	var count int
	if err := exec.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByTournament: failed for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_player1_id_fkey", "matches_player2_id_fkey":
			return ErrMatchPlayerInvalid
		case "matches_winner_id_fkey":
			return ErrMatchWinnerInvalid
		case "matches_next_match_id_fkey", "matches_loser_next_match_id_fkey":
			return ErrMatchNotFound
		}
	}
	return err
}
