package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/frdg/internal/domain/models"
)

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.DELETE("/api/v0/foods/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodDelete, "/api/v0/foods/:id", "204"))
	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v0/foods/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodDelete, "/api/v0/foods/:id", "204"))
	assert.Equal(t, float64(3), after-before)
}

func TestRecordSeverityCounts(t *testing.T) {
	RecordSeverityCounts(map[models.Severity]int{models.SeverityAlert: 2, models.SeverityWarning: 1})

	assert.Equal(t, float64(0), testutil.ToFloat64(foodsBySeverity.WithLabelValues("neutral")))
	assert.Equal(t, float64(1), testutil.ToFloat64(foodsBySeverity.WithLabelValues("warning")))
	assert.Equal(t, float64(2), testutil.ToFloat64(foodsBySeverity.WithLabelValues("alert")))
}

func TestHandler_ExposesFoodsGauge(t *testing.T) {
	RecordSeverityCounts(map[models.Severity]int{models.SeverityNeutral: 4})
	RecordSweep(true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `frdg_foods_by_severity{severity="neutral"} 4`)
	assert.Contains(t, rec.Body.String(), `frdg_expiry_sweep_runs_total{success="true"}`)
}
