package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arman-dev/playoff-system/models"
	"github.com/lib/pq"
)

var (
	ErrFormatNotFound     = errors.New("format not found")
	ErrFormatNameConflict = errors.New("format name conflict")
	ErrFormatInUse        = errors.New("format is in use by a tournament")
)

type FormatRepository interface {
	Create(ctx context.Context, format *models.Format) error
	GetByID(ctx context.Context, id int) (*models.Format, error)
	GetAll(ctx context.Context) ([]models.Format, error)
	Delete(ctx context.Context, id int) error
}

type postgresFormatRepository struct {
	db *sql.DB
}

func NewPostgresFormatRepository(db *sql.DB) FormatRepository {
	return &postgresFormatRepository{db: db}
}

func (r *postgresFormatRepository) Create(ctx context.Context, format *models.Format) error {
	query := `
		INSERT INTO formats (name, bracket_type)
		VALUES ($1, $2)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query, format.Name, format.BracketType).Scan(&format.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "formats_name_key" {
				return ErrFormatNameConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresFormatRepository) GetByID(ctx context.Context, id int) (*models.Format, error) {
	query := `SELECT id, name, bracket_type FROM formats WHERE id = $1`
	format := &models.Format{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&format.ID, &format.Name, &format.BracketType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormatNotFound
		}
		return nil, err
	}
	return format, nil
}

func (r *postgresFormatRepository) GetAll(ctx context.Context) ([]models.Format, error) {
	query := `SELECT id, name, bracket_type FROM formats ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	formats := make([]models.Format, 0)
	for rows.Next() {
		var f models.Format
		if scanErr := rows.Scan(&f.ID, &f.Name, &f.BracketType); scanErr != nil {
			return nil, scanErr
		}
		formats = append(formats, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return formats, nil
}

func (r *postgresFormatRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM formats WHERE id = $1`, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrFormatInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrFormatNotFound)
}
