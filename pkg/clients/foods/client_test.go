package foods

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/frdg/internal/config"
	"github.com/mamadbah2/frdg/internal/domain/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*APIClient, *observer.ObservedLogs) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	core, logs := observer.New(zapcore.DebugLevel)
	client := NewClient(config.ClientConfig{BaseURL: server.URL + "/", Timeout: 2 * time.Second}, zap.New(core))
	return client, logs
}

func TestListFoods_ParsesDatesAndKeepsOrder(t *testing.T) {
	client, logs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v0/foods", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"foods":[
			{"id":9,"name":"Yogurt","bestBeforeDate":"2024-01-11"},
			{"id":2,"name":"Milk","bestBeforeDate":"2024-01-08"}
		]}`)
	})

	foods, err := client.ListFoods(context.Background())
	require.NoError(t, err)
	require.Len(t, foods, 2)

	assert.Equal(t, models.Food{ID: 9, Name: "Yogurt", BestBeforeDate: models.Date{Year: 2024, Month: time.January, Day: 11}}, foods[0])
	assert.Equal(t, int64(2), foods[1].ID)
	assert.Equal(t, "2024-01-08", foods[1].BestBeforeDate.String())
	assert.Zero(t, logs.Len())
}

func TestListFoods_EmptyCollection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"foods":[]}`)
	})

	foods, err := client.ListFoods(context.Background())
	require.NoError(t, err)
	assert.Empty(t, foods)
}

func TestListFoods_NonSuccessIsLoggedFetchError(t *testing.T) {
	client, logs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"database unavailable"}`)
	})

	foods, err := client.ListFoods(context.Background())
	assert.Nil(t, foods)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "list foods", fetchErr.Op)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.Status)
	assert.Equal(t, "database unavailable", fetchErr.Message)

	require.Equal(t, 1, logs.FilterMessage("foods api call failed").Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}

func TestListFoods_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"foods":[{"id":1,"name":"Milk","bestBeforeDate":"tomorrow"}]}`)
	})

	_, err := client.ListFoods(context.Background())
	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestListFoods_MissingFoodsField(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":[]}`)
	})

	_, err := client.ListFoods(context.Background())
	assert.ErrorContains(t, err, "no foods field")
}

func TestListFoods_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	client := NewClient(config.ClientConfig{BaseURL: url, Timeout: time.Second}, zap.New(core))

	_, err := client.ListFoods(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.Status)
	assert.NotNil(t, errors.Unwrap(fetchErr))
	assert.Equal(t, 1, logs.Len())
}

func TestCreateFood_SendsWireShape(t *testing.T) {
	var body map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v0/foods", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `not json, ignored`)
	})

	err := client.CreateFood(context.Background(), models.NewFood{
		Name:           "Cheese",
		BestBeforeDate: models.Date{Year: 2024, Month: time.February, Day: 29},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Cheese", "bestBeforeDate": "2024-02-29"}, body)
}

func TestCreateFood_Failure(t *testing.T) {
	client, logs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	err := client.CreateFood(context.Background(), models.NewFood{Name: "x", BestBeforeDate: models.Date{Year: 2024, Month: 1, Day: 1}})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "create food", fetchErr.Op)
	assert.Equal(t, http.StatusBadRequest, fetchErr.Status)
	assert.Equal(t, 1, logs.Len())
}

func TestDeleteFood_AddressesByID(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v0/foods/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteFood(context.Background(), 42))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDeleteFood_NoRetryOnFailure(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.Error(t, client.DeleteFood(context.Background(), 1))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchError_Message(t *testing.T) {
	err := &FetchError{Op: "delete food", Status: 404, Message: "gone"}
	assert.Equal(t, "delete food failed: status 404: gone", err.Error())
}
