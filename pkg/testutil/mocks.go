// Package testutil provides in-memory stand-ins for the foods API client and
// the food repository.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/mamadbah2/frdg/internal/domain/models"
)

// ErrMockFailure is returned by mocks configured to fail.
var ErrMockFailure = errors.New("mock failure")

// MockFoodsClient implements foods.Client over an in-memory list and counts
// every call.
type MockFoodsClient struct {
	mu     sync.Mutex
	foods  []models.Food
	nextID int64

	ListCalls   int
	CreateCalls int
	DeleteCalls int

	ListErr   error
	CreateErr error
	DeleteErr error

	// ListGate, when set, blocks ListFoods until it is closed or receives.
	ListGate chan struct{}
}

// NewMockFoodsClient seeds the mock with foods; ids continue after the highest.
func NewMockFoodsClient(foods ...models.Food) *MockFoodsClient {
	m := &MockFoodsClient{nextID: 1}
	for _, f := range foods {
		m.foods = append(m.foods, f)
		if f.ID >= m.nextID {
			m.nextID = f.ID + 1
		}
	}
	return m
}

// ListFoods returns a copy of the stored foods.
func (m *MockFoodsClient) ListFoods(ctx context.Context) ([]models.Food, error) {
	m.mu.Lock()
	m.ListCalls++
	gate := m.ListGate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.Food, len(m.foods))
	copy(out, m.foods)
	return out, nil
}

// CreateFood appends a food with the next id.
func (m *MockFoodsClient) CreateFood(_ context.Context, food models.NewFood) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.foods = append(m.foods, models.Food{ID: m.nextID, Name: food.Name, BestBeforeDate: food.BestBeforeDate})
	m.nextID++
	return nil
}

// DeleteFood removes the food with id if present.
func (m *MockFoodsClient) DeleteFood(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i, f := range m.foods {
		if f.ID == id {
			m.foods = append(m.foods[:i], m.foods[i+1:]...)
			break
		}
	}
	return nil
}

// Counts returns the list, create and delete call counters.
func (m *MockFoodsClient) Counts() (list, create, remove int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ListCalls, m.CreateCalls, m.DeleteCalls
}

// SetListErr changes the ListFoods failure under the lock.
func (m *MockFoodsClient) SetListErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListErr = err
}

// MockFoodRepository implements repository.FoodRepository in memory.
type MockFoodRepository struct {
	mu     sync.Mutex
	foods  []models.Food
	nextID int64

	Err        error
	LastLimit  int
	DeletedIDs []int64
}

// NewMockFoodRepository seeds the repository with foods.
func NewMockFoodRepository(foods ...models.Food) *MockFoodRepository {
	r := &MockFoodRepository{nextID: 1}
	for _, f := range foods {
		r.foods = append(r.foods, f)
		if f.ID >= r.nextID {
			r.nextID = f.ID + 1
		}
	}
	return r
}

// ListFoods returns at most limit foods in insertion order.
func (r *MockFoodRepository) ListFoods(_ context.Context, limit int) ([]models.Food, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LastLimit = limit
	if r.Err != nil {
		return nil, r.Err
	}
	n := len(r.foods)
	if limit < n {
		n = limit
	}
	out := make([]models.Food, n)
	copy(out, r.foods[:n])
	return out, nil
}

// CreateFood stores food with the next id.
func (r *MockFoodRepository) CreateFood(_ context.Context, food models.NewFood) (models.Food, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return models.Food{}, r.Err
	}
	created := models.Food{ID: r.nextID, Name: food.Name, BestBeforeDate: food.BestBeforeDate}
	r.nextID++
	r.foods = append(r.foods, created)
	return created, nil
}

// DeleteFood removes id; absent ids are ignored.
func (r *MockFoodRepository) DeleteFood(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.DeletedIDs = append(r.DeletedIDs, id)
	for i, f := range r.foods {
		if f.ID == id {
			r.foods = append(r.foods[:i], r.foods[i+1:]...)
			break
		}
	}
	return nil
}

// Close is a no-op.
func (r *MockFoodRepository) Close(context.Context) error {
	return nil
}
