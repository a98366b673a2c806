// Package repository defines the storage contract behind the foods API.
package repository

import (
	"context"
	"errors"

	"github.com/mamadbah2/frdg/internal/domain/models"
)

// ErrInvalidLimit is returned when a list is requested with a non-positive limit.
var ErrInvalidLimit = errors.New("limit must be positive")

// FoodRepository stores foods. Backends assign ids on create and list foods
// in ascending id order.
type FoodRepository interface {
	ListFoods(ctx context.Context, limit int) ([]models.Food, error)
	CreateFood(ctx context.Context, food models.NewFood) (models.Food, error)
	// DeleteFood is idempotent: deleting an absent id is not an error.
	DeleteFood(ctx context.Context, id int64) error
	Close(ctx context.Context) error
}
