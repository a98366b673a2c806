package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/frdg/internal/domain/models"
	"github.com/mamadbah2/frdg/internal/repository"
)

func TestFoodDocument_ToFood(t *testing.T) {
	food, err := foodDocument{ID: 3, Name: "Kefir", BestBeforeDate: "2024-02-29"}.toFood()
	require.NoError(t, err)
	assert.Equal(t, models.Food{ID: 3, Name: "Kefir", BestBeforeDate: models.Date{Year: 2024, Month: time.February, Day: 29}}, food)

	_, err = foodDocument{ID: 4, Name: "Broken", BestBeforeDate: "29/02/2024"}.toFood()
	assert.ErrorContains(t, err, "food 4 has a malformed best_before_date")
}

func TestMongoDBRepositoryIntegration(t *testing.T) {
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set; skipping mongodb integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbName := "frdg_test_" + time.Now().Format("20060102150405")
	repo, err := NewMongoDBRepository(ctx, uri, dbName, nil)
	require.NoError(t, err)
	defer func() {
		_ = repo.client.Database(dbName).Drop(ctx)
		_ = repo.Close(ctx)
	}()

	_, err = repo.ListFoods(ctx, 0)
	assert.ErrorIs(t, err, repository.ErrInvalidLimit)

	date := models.Date{Year: 2031, Month: time.March, Day: 4}
	first, err := repo.CreateFood(ctx, models.NewFood{Name: "Milk", BestBeforeDate: date})
	require.NoError(t, err)
	second, err := repo.CreateFood(ctx, models.NewFood{Name: "Eggs", BestBeforeDate: date.AddDays(2)})
	require.NoError(t, err)
	assert.Equal(t, first.ID+1, second.ID)

	foods, err := repo.ListFoods(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, []models.Food{first, second}, foods)

	foods, err = repo.ListFoods(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []models.Food{first}, foods)

	require.NoError(t, repo.DeleteFood(ctx, first.ID))
	require.NoError(t, repo.DeleteFood(ctx, first.ID))

	foods, err = repo.ListFoods(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, []models.Food{second}, foods)
}
