package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mrossig/vidriera/internal/models"
)

// BusinessRepository is the storage surface for business profiles.
type BusinessRepository interface {
	Create(ctx context.Context, business *models.Business) (*models.Business, error)
	GetByID(ctx context.Context, id, userID string) (*models.Business, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Business, error)
	Update(ctx context.Context, business *models.Business) (*models.Business, error)
	Delete(ctx context.Context, id, userID string) error
}

type BusinessService struct {
	repo   BusinessRepository
	logger *slog.Logger
}

func NewBusinessService(repo BusinessRepository, logger *slog.Logger) *BusinessService {
	return &BusinessService{repo: repo, logger: logger}
}

func (s *BusinessService) Create(ctx context.Context, business *models.Business) (*models.Business, error) {
	business.Name = strings.TrimSpace(business.Name)
	if business.Name == "" {
		return nil, models.NewValidationError("business name is required")
	}

	created, err := s.repo.Create(ctx, business)
	if err != nil {
		s.logger.Error("failed to create business", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return created, nil
}

func (s *BusinessService) Get(ctx context.Context, id, userID string) (*models.Business, error) {
	business, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("business not found")
		}
		s.logger.Error("failed to get business", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return business, nil
}

func (s *BusinessService) List(ctx context.Context, userID string, limit, offset int) ([]*models.Business, error) {
	businesses, err := s.repo.ListByUser(ctx, userID, normalizeLimit(limit), offset)
	if err != nil {
		s.logger.Error("failed to list businesses", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return businesses, nil
}

func (s *BusinessService) Update(ctx context.Context, business *models.Business) (*models.Business, error) {
	business.Name = strings.TrimSpace(business.Name)
	if business.Name == "" {
		return nil, models.NewValidationError("business name is required")
	}

	updated, err := s.repo.Update(ctx, business)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("business not found")
		}
		s.logger.Error("failed to update business", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return updated, nil
}

func (s *BusinessService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFound("business not found")
		}
		s.logger.Error("failed to delete business", slog.Any("error", err))
		return models.NewServerError("internal server error")
	}
	return nil
}

// normalizeLimit clamps list page sizes to a sane window.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
