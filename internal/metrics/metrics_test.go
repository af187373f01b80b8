package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitPopulatesBusinessMetrics(t *testing.T) {
	Init()
	if Business == nil {
		t.Fatalf("Init did not populate Business")
	}

	Business.InvitationsSent.Inc()
	Business.CompletionsTotal.Inc()
	Business.FailuresTotal.WithLabelValues("NoInputs").Inc()

	if got := testutil.ToFloat64(Business.InvitationsSent); got != 1 {
		t.Errorf("got InvitationsSent %v, want 1", got)
	}
	if got := testutil.ToFloat64(Business.CompletionsTotal); got != 1 {
		t.Errorf("got CompletionsTotal %v, want 1", got)
	}
}

func TestGinMiddlewareRecordsMatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/v1/tx/:tx_id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tx/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	count := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/tx/:tx_id", "200"))
	if count < 1 {
		t.Errorf("expected the matched route to be recorded, got count %v", count)
	}
}

func TestGinMiddlewareSkipsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "", "404")); got != 0 {
		t.Errorf("expected the unmatched route not to be recorded, got count %v", got)
	}
}
