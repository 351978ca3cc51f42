package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCatalogRequest(t *testing.T) {
	tests := []struct {
		name      string
		endpoint  string
		status    int
		wantLabel string
	}{
		{"success", "popular", 200, "200"},
		{"upstream failure", "details", 404, "404"},
		{"transport error", "search", 0, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(CatalogRequestsTotal.WithLabelValues(tt.endpoint, tt.wantLabel))
			RecordCatalogRequest(tt.endpoint, tt.status, 5*time.Millisecond)
			after := testutil.ToFloat64(CatalogRequestsTotal.WithLabelValues(tt.endpoint, tt.wantLabel))
			if after-before != 1 {
				t.Errorf("counter delta = %v, want 1", after-before)
			}
		})
	}
}

func TestRecordRecentlyViewedTrimIgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(RecentlyViewedTrimmedTotal)
	RecordRecentlyViewedTrim(0)
	RecordRecentlyViewedTrim(-3)
	RecordRecentlyViewedTrim(2)
	if delta := testutil.ToFloat64(RecentlyViewedTrimmedTotal) - before; delta != 2 {
		t.Errorf("trim delta = %v, want 2", delta)
	}
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/movie/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/movie/:id", "200")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/movie/42", nil))

	if delta := testutil.ToFloat64(counter) - before; delta != 1 {
		t.Errorf("request counter delta = %v, want 1", delta)
	}
}
