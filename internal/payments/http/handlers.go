package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	alertdomain "github.com/zeer-gl/thiqa-gateway/internal/alerts/domain"
	alertrepo "github.com/zeer-gl/thiqa-gateway/internal/alerts/repository"
	apihttp "github.com/zeer-gl/thiqa-gateway/internal/api/http"
	"github.com/zeer-gl/thiqa-gateway/internal/logging"
	"github.com/zeer-gl/thiqa-gateway/internal/payments/domain"
	"github.com/zeer-gl/thiqa-gateway/internal/payments/service"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionmw "github.com/zeer-gl/thiqa-gateway/internal/session/middleware"
	subdomain "github.com/zeer-gl/thiqa-gateway/internal/subscription/domain"
	subservice "github.com/zeer-gl/thiqa-gateway/internal/subscription/service"
)

// Handler handles HTTP requests for the hosted-payment path
type Handler struct {
	payments *service.PaymentService
	alerts   *alertrepo.AlertRepository
}

// New creates a new Handler
func New(payments *service.PaymentService, alerts *alertrepo.AlertRepository) *Handler {
	return &Handler{payments: payments, alerts: alerts}
}

// Register mounts the payment routes on the professional group.
func (h *Handler) Register(professional *gin.RouterGroup) {
	professional.GET("/payments/methods", h.ListMethods)
	professional.POST("/payments/checkout", h.Checkout)
	professional.POST("/payments/switch-method", h.SwitchMethod)
}

// ListMethods returns the available hosted-payment methods.
func (h *Handler) ListMethods(c *gin.Context) {
	sess := sessionmw.FromContext(c)

	methods, err := h.payments.Methods(c.Request.Context(), sess)
	if err != nil {
		if errors.Is(err, domain.ErrNoEndpoint) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment methods are unavailable right now"})
			return
		}
		apihttp.RespondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"paymentMethods": methods})
}

// Checkout purchases a plan with a real payment-method id and returns the
// redirect URL for the hosted gateway page.
func (h *Handler) Checkout(c *gin.Context) {
	sess := sessionmw.FromContext(c)

	var req struct {
		PlanID          string `json:"planId" binding:"required"`
		PaymentMethodID string `json:"paymentMethodId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	state, err := h.payments.Checkout(c.Request.Context(), sess, req.PlanID, req.PaymentMethodID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRetriesExhausted):
			h.alert(c, sess, alertdomain.SeverityError, "Payment failed too many times. Try a different method or contact support.")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "payment retries exhausted", "state": state})
		case errors.Is(err, subdomain.ErrInvalidMobile), errors.Is(err, subdomain.ErrNoMobile):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "a valid mobile number (7-11 digits) is required"})
		case errors.Is(err, subservice.ErrInvalidPlanID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "plan or payment method id is malformed"})
		case errors.Is(err, sessiondomain.ErrWrongRole):
			c.JSON(http.StatusForbidden, gin.H{"error": "professional sign-in is required to purchase a plan"})
		case errors.Is(err, domain.ErrNoRedirectURL):
			h.alert(c, sess, alertdomain.SeverityError, "The payment page could not be opened. Please retry.")
			c.JSON(http.StatusBadGateway, gin.H{"error": "no payment page was returned", "state": state})
		default:
			h.alert(c, sess, alertdomain.SeverityError, apihttp.UserMessage(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": apihttp.UserMessage(err), "state": state})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirect_url": state.RedirectURL, "state": state})
}

// SwitchMethod resets the retry budget for a fresh attempt with another
// payment method.
func (h *Handler) SwitchMethod(c *gin.Context) {
	sess := sessionmw.FromContext(c)

	if err := h.payments.SwitchMethod(c.Request.Context(), sess); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset payment attempts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": true})
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
