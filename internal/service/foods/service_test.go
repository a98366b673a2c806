package foods

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/frdg/internal/domain/models"
	"github.com/mamadbah2/frdg/internal/repository"
	"github.com/mamadbah2/frdg/pkg/testutil"
)

var jan12 = models.Date{Year: 2024, Month: time.January, Day: 12}

func TestService_ListLimits(t *testing.T) {
	repo := testutil.NewMockFoodRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, repo.LastLimit)

	_, err = svc.List(ctx, 10_000)
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, repo.LastLimit)

	_, err = svc.List(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.LastLimit)

	_, err = svc.List(ctx, -1)
	assert.ErrorIs(t, err, repository.ErrInvalidLimit)
}

func TestService_CreateTrimsAndValidates(t *testing.T) {
	repo := testutil.NewMockFoodRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.NewFood{Name: "  Butter ", BestBeforeDate: jan12})
	require.NoError(t, err)
	assert.Equal(t, models.Food{ID: 1, Name: "Butter", BestBeforeDate: jan12}, created)

	_, err = svc.Create(ctx, models.NewFood{Name: " ", BestBeforeDate: jan12})
	assert.ErrorIs(t, err, models.ErrEmptyName)

	_, err = svc.Create(ctx, models.NewFood{Name: "Jam"})
	assert.ErrorIs(t, err, models.ErrMissingDate)

	foods, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, foods, 1)
}

func TestService_WrapsStorageErrors(t *testing.T) {
	repo := testutil.NewMockFoodRepository()
	repo.Err = testutil.ErrMockFailure
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), models.NewFood{Name: "Jam", BestBeforeDate: jan12})
	assert.ErrorIs(t, err, testutil.ErrMockFailure)
	assert.ErrorContains(t, err, "create food")

	err = svc.Delete(context.Background(), 9)
	assert.ErrorIs(t, err, testutil.ErrMockFailure)
	assert.ErrorContains(t, err, "delete food 9")
}

func TestService_DeleteUnknownIDSucceeds(t *testing.T) {
	repo := testutil.NewMockFoodRepository(models.Food{ID: 1, Name: "Milk", BestBeforeDate: jan12})
	svc := NewService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), 99))
	assert.Equal(t, []int64{99}, repo.DeletedIDs)
}
