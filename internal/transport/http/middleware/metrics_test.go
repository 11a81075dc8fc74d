package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsRouteLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: prometheus.NewRegistry()})
	if err != nil {
		t.Fatalf("NewHTTPMetrics: %v", err)
	}

	router := gin.New()
	router.Use(m.Handler())
	router.GET("/api/v1/groups/:groupID", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/groups/g-1", "/api/v1/groups/g-2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wp-admin/setup.php", nil))

	matched := testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodGet, "/api/v1/groups/:groupID", "200"))
	if matched != 2 {
		t.Fatalf("expected 2 requests on the parameterized route, got %v", matched)
	}

	// Unmatched paths collapse into a single label value.
	unrouted := testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodGet, unroutedLabel, "404"))
	if unrouted != 1 {
		t.Fatalf("expected 1 unrouted request, got %v", unrouted)
	}
}
