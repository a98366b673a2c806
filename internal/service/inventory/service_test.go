package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/frdg/internal/domain/models"
	"github.com/mamadbah2/frdg/internal/query"
	"github.com/mamadbah2/frdg/pkg/testutil"
)

var jan10 = models.Date{Year: 2024, Month: time.January, Day: 10}

func newService(t *testing.T, foods ...models.Food) (*Service, *testutil.MockFoodsClient) {
	t.Helper()
	client := testutil.NewMockFoodsClient(foods...)
	cache := query.New(nil)
	t.Cleanup(cache.Close)
	return NewService(client, cache, nil), client
}

func TestFoods_IsCached(t *testing.T) {
	svc, client := newService(t, models.Food{ID: 1, Name: "Milk", BestBeforeDate: jan10})

	for i := 0; i < 3; i++ {
		foods, err := svc.Foods(context.Background())
		require.NoError(t, err)
		require.Len(t, foods, 1)
	}

	list, _, _ := client.Counts()
	assert.Equal(t, 1, list)
}

func TestCreate_InvalidatesAndRefetchesOnceForSubscribers(t *testing.T) {
	svc, client := newService(t, models.Food{ID: 1, Name: "Milk", BestBeforeDate: jan10})

	_, err := svc.Foods(context.Background())
	require.NoError(t, err)
	unsubscribe := svc.Cache().Subscribe(query.KeyFoodsList, func(query.Snapshot) {})
	defer unsubscribe()

	require.NoError(t, svc.Create(context.Background(), models.NewFood{Name: "Eggs", BestBeforeDate: jan10}))
	svc.Cache().Wait()

	list, create, _ := client.Counts()
	assert.Equal(t, 1, create)
	assert.Equal(t, 2, list, "exactly one refetch after create")

	foods, err := svc.Foods(context.Background())
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, "Eggs", foods[1].Name)
}

func TestCreate_RejectsIncompleteFoodWithoutCallingAPI(t *testing.T) {
	svc, client := newService(t)

	assert.ErrorIs(t, svc.Create(context.Background(), models.NewFood{Name: "", BestBeforeDate: jan10}), models.ErrEmptyName)
	assert.ErrorIs(t, svc.Create(context.Background(), models.NewFood{Name: "Eggs"}), models.ErrMissingDate)

	_, create, _ := client.Counts()
	assert.Zero(t, create)
}

func TestCreate_FailureDoesNotInvalidate(t *testing.T) {
	svc, client := newService(t)
	client.CreateErr = testutil.ErrMockFailure

	_, err := svc.Foods(context.Background())
	require.NoError(t, err)
	svc.Cache().Subscribe(query.KeyFoodsList, func(query.Snapshot) {})

	err = svc.Create(context.Background(), models.NewFood{Name: "Eggs", BestBeforeDate: jan10})
	assert.ErrorIs(t, err, testutil.ErrMockFailure)
	svc.Cache().Wait()

	list, _, _ := client.Counts()
	assert.Equal(t, 1, list)
	assert.False(t, svc.Cache().Snapshot(query.KeyFoodsList).Stale)
}

func TestDelete_RemovesIDAfterOneRefetch(t *testing.T) {
	svc, client := newService(t,
		models.Food{ID: 1, Name: "Milk", BestBeforeDate: jan10},
		models.Food{ID: 2, Name: "Eggs", BestBeforeDate: jan10},
	)

	_, err := svc.Foods(context.Background())
	require.NoError(t, err)
	svc.Cache().Subscribe(query.KeyFoodsList, func(query.Snapshot) {})

	require.NoError(t, svc.Delete(context.Background(), 1))
	svc.Cache().Wait()

	list, _, remove := client.Counts()
	assert.Equal(t, 1, remove)
	assert.Equal(t, 2, list)

	foods, err := svc.Foods(context.Background())
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, int64(2), foods[0].ID)
}

func TestDelete_FailureIsWrapped(t *testing.T) {
	svc, client := newService(t)
	client.DeleteErr = testutil.ErrMockFailure

	err := svc.Delete(context.Background(), 5)
	assert.ErrorIs(t, err, testutil.ErrMockFailure)
	assert.ErrorContains(t, err, "delete food 5")
}
