package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	alertdomain "github.com/zeer-gl/thiqa-gateway/internal/alerts/domain"
	alertrepo "github.com/zeer-gl/thiqa-gateway/internal/alerts/repository"
	apihttp "github.com/zeer-gl/thiqa-gateway/internal/api/http"
	"github.com/zeer-gl/thiqa-gateway/internal/logging"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionmw "github.com/zeer-gl/thiqa-gateway/internal/session/middleware"
	"github.com/zeer-gl/thiqa-gateway/internal/subscription/domain"
	"github.com/zeer-gl/thiqa-gateway/internal/subscription/service"
)

// Handler handles HTTP requests for subscription plans
type Handler struct {
	subs   *service.SubscriptionService
	alerts *alertrepo.AlertRepository
}

// New creates a new Handler
func New(subs *service.SubscriptionService, alerts *alertrepo.AlertRepository) *Handler {
	return &Handler{subs: subs, alerts: alerts}
}

// Register mounts the subscription routes on the professional group.
func (h *Handler) Register(professional *gin.RouterGroup) {
	professional.GET("/subscription/plans", h.ListPlans)
	professional.POST("/subscription/purchase-cod", h.PurchaseCOD)
}

// ListPlans returns the professional's subscription packages.
func (h *Handler) ListPlans(c *gin.Context) {
	sess := sessionmw.FromContext(c)

	plans, err := h.subs.Plans(c.Request.Context(), sess)
	if err != nil {
		apihttp.RespondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// PurchaseCOD runs the cash-on-delivery purchase for one plan.
func (h *Handler) PurchaseCOD(c *gin.Context) {
	sess := sessionmw.FromContext(c)

	var req struct {
		PlanID string `json:"planId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	outcome, err := h.subs.PurchaseCOD(c.Request.Context(), sess, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoMobile):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "add a mobile number to your profile before purchasing"})
		case errors.Is(err, domain.ErrInvalidMobile):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "your mobile number must be 7 to 11 digits"})
		case errors.Is(err, service.ErrInvalidPlanID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "plan id is malformed"})
		case errors.Is(err, sessiondomain.ErrWrongRole):
			c.JSON(http.StatusForbidden, gin.H{"error": "professional sign-in is required to purchase a plan"})
		default:
			h.alert(c, sess, alertdomain.SeverityError, apihttp.UserMessage(err))
			apihttp.RespondUpstreamError(c, err)
		}
		return
	}

	if outcome.Status == "pending" {
		h.alert(c, sess, alertdomain.SeveritySuccess, "Subscription requested. You will be billed on delivery.")
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *Handler) alert(c *gin.Context, sess *sessiondomain.Session, severity, message string) {
	err := h.alerts.PushAlert(c.Request.Context(), sess.ID, &alertdomain.Alert{
		Message:  message,
		Severity: severity,
	})
	if err != nil {
		logging.NewLogger(c.Request.Context()).LogWarnf("push_alert", "alert not stored: %v", err)
	}
}
