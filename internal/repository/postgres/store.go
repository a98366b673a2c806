// Package postgres stores foods in a PostgreSQL table.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mamadbah2/frdg/internal/domain/models"
	"github.com/mamadbah2/frdg/internal/repository"
)

const (
	listFoodsQuery  = `SELECT id, name, best_before_date FROM foods ORDER BY id LIMIT $1`
	createFoodQuery = `INSERT INTO foods (name, best_before_date) VALUES ($1, $2) RETURNING id, name, best_before_date`
	deleteFoodQuery = `DELETE FROM foods WHERE id = $1`
)

// Store implements repository.FoodRepository on top of sqlx.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

var _ repository.FoodRepository = (*Store)(nil)

// New wraps an open database handle.
func New(db *sqlx.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Open connects to dsn, verifies the connection and applies migrations.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db, logger), nil
}

// ListFoods returns at most limit foods ordered by id.
func (s *Store) ListFoods(ctx context.Context, limit int) ([]models.Food, error) {
	if limit <= 0 {
		return nil, repository.ErrInvalidLimit
	}

	foods := make([]models.Food, 0)
	if err := s.db.SelectContext(ctx, &foods, listFoodsQuery, limit); err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}
	return foods, nil
}

// CreateFood inserts food and returns the stored row.
func (s *Store) CreateFood(ctx context.Context, food models.NewFood) (models.Food, error) {
	var created models.Food
	if err := s.db.GetContext(ctx, &created, createFoodQuery, food.Name, food.BestBeforeDate); err != nil {
		return models.Food{}, fmt.Errorf("failed to insert food: %w", err)
	}

	s.logger.Debug("food inserted", zap.Int64("id", created.ID))
	return created, nil
}

// DeleteFood removes the food with id. No rows affected is not an error.
func (s *Store) DeleteFood(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, deleteFoodQuery, id); err != nil {
		return fmt.Errorf("failed to delete food %d: %w", id, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}
