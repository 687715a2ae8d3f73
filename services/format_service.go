package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/arman-dev/playoff-system/models"
	"github.com/arman-dev/playoff-system/repositories"
)

type CreateFormatInput struct {
	Name        string             `json:"name"`
	BracketType models.BracketType `json:"bracket_type"`
}

type FormatService interface {
	CreateFormat(ctx context.Context, input CreateFormatInput) (*models.Format, error)
	GetFormatByID(ctx context.Context, id int) (*models.Format, error)
	ListFormats(ctx context.Context) ([]models.Format, error)
	DeleteFormat(ctx context.Context, id int) error
}

type formatService struct {
	formatRepo repositories.FormatRepository
}

func NewFormatService(formatRepo repositories.FormatRepository) FormatService {
	return &formatService{formatRepo: formatRepo}
}

func (s *formatService) CreateFormat(ctx context.Context, input CreateFormatInput) (*models.Format, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: format name is required", ErrValidationFailed)
	}
	switch input.BracketType {
	case models.BracketTypeSingleElimination, models.BracketTypeDoubleElimination:
	default:
		return nil, fmt.Errorf("%w: unknown bracket type %q", ErrValidationFailed, input.BracketType)
	}

	format := &models.Format{Name: name, BracketType: input.BracketType}
	if err := s.formatRepo.Create(ctx, format); err != nil {
		return nil, err
	}
	return format, nil
}

func (s *formatService) GetFormatByID(ctx context.Context, id int) (*models.Format, error) {
	return s.formatRepo.GetByID(ctx, id)
}

func (s *formatService) ListFormats(ctx context.Context) ([]models.Format, error) {
	return s.formatRepo.GetAll(ctx)
}

func (s *formatService) DeleteFormat(ctx context.Context, id int) error {
	return s.formatRepo.Delete(ctx, id)
}
