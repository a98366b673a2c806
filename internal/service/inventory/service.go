package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/frdg/internal/domain/models"
	"github.com/mamadbah2/frdg/internal/query"
	"github.com/mamadbah2/frdg/pkg/clients/foods"
)

// Service is the client-side entry point the views use: cached reads and
// mutations that invalidate those reads.
type Service struct {
	client foods.Client
	cache  *query.Cache
	logger *zap.Logger
}

// NewService wires the gateway and the shared query cache.
func NewService(client foods.Client, cache *query.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, cache: cache, logger: logger}
}

// Cache exposes the shared query cache so views can subscribe to it.
func (s *Service) Cache() *query.Cache {
	return s.cache
}

// Foods returns the food list through the cache.
func (s *Service) Foods(ctx context.Context) ([]models.Food, error) {
	return query.Get(ctx, s.cache, query.KeyFoodsList, s.client.ListFoods)
}

// Create adds a food and invalidates the cached list on success.
func (s *Service) Create(ctx context.Context, food models.NewFood) error {
	if err := food.Validate(); err != nil {
		return err
	}

	if err := s.client.CreateFood(ctx, food); err != nil {
		return fmt.Errorf("create food: %w", err)
	}

	s.logger.Debug("food created", zap.String("name", food.Name), zap.Stringer("best_before", food.BestBeforeDate))
	s.cache.Invalidate(query.KeyFoodsList)
	return nil
}

// Delete removes a food and invalidates the cached list on success.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.client.DeleteFood(ctx, id); err != nil {
		return fmt.Errorf("delete food %d: %w", id, err)
	}

	s.logger.Debug("food deleted", zap.Int64("id", id))
	s.cache.Invalidate(query.KeyFoodsList)
	return nil
}
