package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/frdg/internal/domain/models"
	"github.com/mamadbah2/frdg/internal/repository"
	service "github.com/mamadbah2/frdg/internal/service/foods"
)

// FoodsHandler serves the /api/v0/foods resource.
type FoodsHandler struct {
	svc    service.FoodService
	logger *zap.Logger
}

// NewFoodsHandler constructs the HTTP handler adapter.
func NewFoodsHandler(svc service.FoodService, logger *zap.Logger) *FoodsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FoodsHandler{svc: svc, logger: logger}
}

// List returns the stored foods, honouring an optional limit query parameter.
func (h *FoodsHandler) List(c *gin.Context) {
	limit := 0
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	foods, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "failed listing foods", err)
		return
	}

	c.JSON(http.StatusOK, models.FoodsResponse{Foods: foods})
}

// Create stores a new food and echoes it back with its id.
func (h *FoodsHandler) Create(c *gin.Context) {
	var req models.NewFood
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid food payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "failed creating food", err)
		return
	}

	c.JSON(http.StatusOK, created)
}

// Delete removes a food by id. Unknown ids still answer 204.
func (h *FoodsHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "failed deleting food", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *FoodsHandler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, models.ErrEmptyName),
		errors.Is(err, models.ErrMissingDate),
		errors.Is(err, repository.ErrInvalidLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
