// Package foods is the server-side food service behind the HTTP API.
package foods

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/frdg/internal/domain/models"
	"github.com/mamadbah2/frdg/internal/repository"
)

const (
	// DefaultLimit is used when a list request names no limit.
	DefaultLimit = 500
	// MaxLimit caps every list request.
	MaxLimit = 500
)

// FoodService is what the HTTP handlers need.
type FoodService interface {
	List(ctx context.Context, limit int) ([]models.Food, error)
	Create(ctx context.Context, food models.NewFood) (models.Food, error)
	Delete(ctx context.Context, id int64) error
}

var _ FoodService = (*Service)(nil)

// Service validates requests and delegates storage to a FoodRepository.
type Service struct {
	repo   repository.FoodRepository
	logger *zap.Logger
}

// NewService builds the food service.
func NewService(repo repository.FoodRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// List returns at most limit foods in id order. Zero means DefaultLimit;
// larger values are capped at MaxLimit.
func (s *Service) List(ctx context.Context, limit int) ([]models.Food, error) {
	switch {
	case limit < 0:
		return nil, repository.ErrInvalidLimit
	case limit == 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return s.repo.ListFoods(ctx, limit)
}

// Create validates food and stores it.
func (s *Service) Create(ctx context.Context, food models.NewFood) (models.Food, error) {
	if err := food.Validate(); err != nil {
		return models.Food{}, err
	}

	created, err := s.repo.CreateFood(ctx, food)
	if err != nil {
		return models.Food{}, fmt.Errorf("create food: %w", err)
	}

	s.logger.Info("food created",
		zap.Int64("id", created.ID),
		zap.String("name", created.Name),
		zap.String("best_before_date", created.BestBeforeDate.String()))
	return created, nil
}

// Delete removes a food. Unknown ids succeed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteFood(ctx, id); err != nil {
		return fmt.Errorf("delete food %d: %w", id, err)
	}
	s.logger.Info("food deleted", zap.Int64("id", id))
	return nil
}
