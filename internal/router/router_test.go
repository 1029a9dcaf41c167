package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prasobpai/internal/handler"
)

func TestSetupRouterPing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := SetupRouter(handler.NewAPI(nil, nil, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != `{"message":"pong"}` {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}
