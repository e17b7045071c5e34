package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Redis     string    `json:"redis,omitempty"`
	Upstream  string    `json:"upstream,omitempty"`
	Metrics   gin.H     `json:"metrics,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	redis       *redis.Client
	upstreamURL string
}

func NewHealthHandler(serviceName, version string, rdb *redis.Client, upstreamURL string) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		redis:       rdb,
		upstreamURL: upstreamURL,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	redisStatus := "disabled"
	if h.redis != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.redis.Ping(pingCtx).Err(); err != nil {
			redisStatus = "down"
		} else {
			redisStatus = "up"
		}
	}

	upstreamStatus := "unknown"
	if h.upstreamURL != "" {
		reqCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, h.upstreamURL, nil)
		if err == nil {
			if resp, err := http.DefaultClient.Do(req); err != nil {
				upstreamStatus = "down"
			} else {
				resp.Body.Close()
				upstreamStatus = "up"
			}
		}
	}

	m := upstream.GetMetrics()

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Redis:     redisStatus,
		Upstream:  upstreamStatus,
		Metrics: gin.H{
			"upstream_calls":      m.Calls(),
			"upstream_errors":     m.Errors(),
			"upstream_error_rate": m.ErrorRate(),
			"avg_latency_ms":      m.AverageLatency(),
		},
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
