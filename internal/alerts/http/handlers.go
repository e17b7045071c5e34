package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeer-gl/thiqa-gateway/internal/alerts/domain"
	"github.com/zeer-gl/thiqa-gateway/internal/alerts/repository"
	sessionmw "github.com/zeer-gl/thiqa-gateway/internal/session/middleware"
)

// Handler handles HTTP requests for alerts and notifications
type Handler struct {
	repo *repository.AlertRepository
}

// New creates a new Handler
func New(repo *repository.AlertRepository) *Handler {
	return &Handler{repo: repo}
}

// Register mounts the alert routes on a session-scoped group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/alerts/active", h.ActiveAlert)
	rg.GET("/notifications", h.ListNotifications)
	rg.PUT("/notifications/read-all", h.MarkAllRead)
}

// ActiveAlert returns the session's active alert, if it has not dismissed.
func (h *Handler) ActiveAlert(c *gin.Context) {
	s := sessionmw.FromContext(c)

	a, err := h.repo.ActiveAlert(c.Request.Context(), s.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get alert"})
		return
	}
	if a == nil {
		c.JSON(http.StatusOK, gin.H{"alert": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alert": a})
}

// ListNotifications returns the session's notifications, newest first.
func (h *Handler) ListNotifications(c *gin.Context) {
	s := sessionmw.FromContext(c)

	notifs, err := h.repo.Notifications(c.Request.Context(), s.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}
	if notifs == nil {
		notifs = []domain.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifs})
}

// MarkAllRead flags every notification read. Idempotent: with zero unread the
// call still runs and reports zero updated.
func (h *Handler) MarkAllRead(c *gin.Context) {
	s := sessionmw.FromContext(c)

	updated, err := h.repo.MarkAllRead(c.Request.Context(), s.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notifications read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
