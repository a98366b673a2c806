package foods

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/frdg/internal/config"
	"github.com/mamadbah2/frdg/internal/domain/models"
)

const (
	collectionPath = "/api/v0/foods"
	itemPath       = "/api/v0/foods/{id}"
)

// Client exposes the foods API operations used by the terminal client.
type Client interface {
	ListFoods(ctx context.Context) ([]models.Food, error)
	CreateFood(ctx context.Context, food models.NewFood) error
	DeleteFood(ctx context.Context, id int64) error
}

// FetchError is returned for every failed exchange. Status is zero when the
// request never produced an HTTP response.
type FetchError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(" failed")
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// APIClient is a resty-backed implementation of Client. It keeps no state
// between calls and never retries.
type APIClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient builds a foods API client using the provided configuration values.
func NewClient(cfg config.ClientConfig, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{
		httpClient: restyClient,
		logger:     logger,
	}
}

type listFoodsResponse struct {
	Foods *[]models.Food `json:"foods"`
}

// createFoodRequest pins the request body to exactly name and bestBeforeDate.
type createFoodRequest struct {
	Name           string      `json:"name"`
	BestBeforeDate models.Date `json:"bestBeforeDate"`
}

// ListFoods fetches the whole collection in server order.
func (c *APIClient) ListFoods(ctx context.Context) ([]models.Food, error) {
	result := new(listFoodsResponse)
	apiErr := new(models.ErrorResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(result).
		SetError(apiErr).
		Get(collectionPath)
	if err := c.check("list foods", resp, err, apiErr); err != nil {
		return nil, err
	}

	if result.Foods == nil {
		return nil, c.fail(&FetchError{Op: "list foods", Status: resp.StatusCode(), Message: "response has no foods field"})
	}

	return *result.Foods, nil
}

// CreateFood posts a new food. The response body is ignored.
func (c *APIClient) CreateFood(ctx context.Context, food models.NewFood) error {
	apiErr := new(models.ErrorResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(createFoodRequest{Name: food.Name, BestBeforeDate: food.BestBeforeDate}).
		SetError(apiErr).
		Post(collectionPath)
	return c.check("create food", resp, err, apiErr)
}

// DeleteFood removes the food with the given id.
func (c *APIClient) DeleteFood(ctx context.Context, id int64) error {
	apiErr := new(models.ErrorResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetError(apiErr).
		Delete(itemPath)
	return c.check("delete food", resp, err, apiErr)
}

// check collapses transport and API failures into a logged *FetchError.
func (c *APIClient) check(op string, resp *resty.Response, err error, apiErr *models.ErrorResponse) error {
	if err != nil {
		fetchErr := &FetchError{Op: op, Err: err}
		if resp != nil && resp.RawResponse != nil {
			fetchErr.Status = resp.StatusCode()
		}
		return c.fail(fetchErr)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		fetchErr := &FetchError{Op: op, Status: resp.StatusCode()}
		if apiErr != nil {
			fetchErr.Message = apiErr.Error
		}
		return c.fail(fetchErr)
	}

	return nil
}

func (c *APIClient) fail(err *FetchError) error {
	c.logger.Error("foods api call failed",
		zap.String("op", err.Op),
		zap.Int("status", err.Status),
		zap.Error(err))
	return err
}
