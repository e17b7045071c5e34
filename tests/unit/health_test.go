package unit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	httpapi "github.com/zeer-gl/thiqa-gateway/internal/api/http"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstreamSrv.Close()

	router := gin.New()
	handler := httpapi.NewHealthHandler("thiqa-gateway", "1.0.0", nil, upstreamSrv.URL)
	handler.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp httpapi.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("expected healthy status, got %s", resp.Status)
	}
	if resp.Service != "thiqa-gateway" {
		t.Errorf("expected service name, got %s", resp.Service)
	}
	if resp.Redis != "disabled" {
		t.Errorf("expected redis disabled without a client, got %s", resp.Redis)
	}
	if resp.Upstream != "up" {
		t.Errorf("expected upstream up, got %s", resp.Upstream)
	}
}

func TestHealthCheck_UpstreamDown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handler := httpapi.NewHealthHandler("thiqa-gateway", "1.0.0", nil, "http://127.0.0.1:1")
	handler.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp httpapi.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Upstream != "down" {
		t.Errorf("expected upstream down, got %s", resp.Upstream)
	}
}
