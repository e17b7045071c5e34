package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	alertdomain "github.com/zeer-gl/thiqa-gateway/internal/alerts/domain"
	alertrepo "github.com/zeer-gl/thiqa-gateway/internal/alerts/repository"
	apihttp "github.com/zeer-gl/thiqa-gateway/internal/api/http"
	"github.com/zeer-gl/thiqa-gateway/internal/logging"
	"github.com/zeer-gl/thiqa-gateway/internal/quotes/domain"
	"github.com/zeer-gl/thiqa-gateway/internal/quotes/service"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionmw "github.com/zeer-gl/thiqa-gateway/internal/session/middleware"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

// Handler handles HTTP requests for demand quotes
type Handler struct {
	quotes   *service.QuoteService
	alerts   *alertrepo.AlertRepository
	upstream *upstream.Client
}

// New creates a new Handler
func New(quotes *service.QuoteService, alerts *alertrepo.AlertRepository, client *upstream.Client) *Handler {
	return &Handler{quotes: quotes, alerts: alerts, upstream: client}
}

// Register mounts the quote routes. Listing and professional actions sit on
// the professional group; accept/reject sits on the customer group.
func (h *Handler) Register(professional, customer *gin.RouterGroup) {
	professional.GET("/quotes", h.ListQuotes)
	professional.POST("/quotes/expand", h.ToggleExpanded)
	professional.POST("/quotes/start-project", h.StartProject)
	professional.GET("/quotes/:id/deliverable", h.DownloadDeliverable)

	customer.PUT("/quotes/proposal-decision", h.AcceptReject)
}

// ListQuotes returns the professional's quotes under an optional filter
// (all | open | inProgress), applied client-side over the fetched set.
func (h *Handler) ListQuotes(c *gin.Context) {
	sess := sessionmw.FromContext(c)
	filter := c.DefaultQuery("filter", domain.StatusAll)

	views, err := h.quotes.List(c.Request.Context(), sess, filter)
	if err != nil {
		h.alertErr(c, sess, err)
		apihttp.RespondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotes": views, "filter": filter})
}

// ToggleExpanded flips a quote card's expanded state for this session.
func (h *Handler) ToggleExpanded(c *gin.Context) {
	sess := sessionmw.FromContext(c)

	var req ToggleExpandedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	expanded, err := h.quotes.ToggleExpanded(c.Request.Context(), sess, req.QuoteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle card state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quoteId": req.QuoteID, "expanded": expanded})
}

// StartProject claims a quote and returns the refetched list.
func (h *Handler) StartProject(c *gin.Context) {
	sess := sessionmw.FromContext(c)

	var req StartProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	views, err := h.quotes.StartProject(c.Request.Context(), sess, req.DemandID)
	if err != nil {
		switch {
		case err == service.ErrInvalidID:
			c.JSON(http.StatusBadRequest, gin.H{"error": "project or professional id is malformed"})
		case err == sessiondomain.ErrWrongRole, err == sessiondomain.ErrNoActor, err == sessiondomain.ErrNotLoggedIn:
			c.JSON(http.StatusForbidden, gin.H{"error": "professional sign-in is required to start a project"})
		default:
			h.alertErr(c, sess, err)
			apihttp.RespondUpstreamError(c, err)
		}
		return
	}

	h.alert(c, sess, alertdomain.SeveritySuccess, "Project started.")
	c.JSON(http.StatusOK, gin.H{"quotes": views})
}

// AcceptReject submits the customer decision on a quote's first proposal.
func (h *Handler) AcceptReject(c *gin.Context) {
	sess := sessionmw.FromContext(c)

	var req AcceptRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.quotes.AcceptReject(c.Request.Context(), sess, req.DemandID, req.Action, req.Proposals)
	if err != nil {
		switch {
		case err == domain.ErrAmbiguousProposal, err == domain.ErrUnownedProposal:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "proposal does not resolve to a single professional or vendor"})
		case err == domain.ErrNoProposals:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "quote has no proposals to decide on"})
		case err == domain.ErrInvalidAction, err == service.ErrInvalidID:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid decision request"})
		case err == sessiondomain.ErrWrongRole:
			c.JSON(http.StatusForbidden, gin.H{"error": "customer sign-in is required to decide on a proposal"})
		default:
			h.alertErr(c, sess, err)
			apihttp.RespondUpstreamError(c, err)
		}
		return
	}

	h.alert(c, sess, alertdomain.SeveritySuccess, "Decision submitted.")
	c.JSON(http.StatusOK, gin.H{"demandId": req.DemandID, "action": req.Action})
}

// DownloadDeliverable streams the quote's design file through the gateway so
// frontends get a same-origin download with an attachment disposition.
func (h *Handler) DownloadDeliverable(c *gin.Context) {
	sess := sessionmw.FromContext(c)
	demandID := c.Param("id")

	fileURL, err := h.quotes.DeliverableURL(c.Request.Context(), sess, demandID)
	if err != nil {
		switch {
		case err == service.ErrNoDeliverable:
			c.JSON(http.StatusNotFound, gin.H{"error": "quote has no deliverable file"})
		case err == domain.ErrQuoteNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
		default:
			apihttp.RespondUpstreamError(c, err)
		}
		return
	}

	resp, err := h.upstream.FetchFile(c.Request.Context(), fileURL)
	if err != nil {
		apihttp.RespondUpstreamError(c, err)
		return
	}
	defer resp.Body.Close()

	c.Header("Content-Disposition", `attachment; filename="deliverable"`)
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, nil)
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

func (h *Handler) alertErr(c *gin.Context, sess *sessiondomain.Session, err error) {
	h.alert(c, sess, alertdomain.SeverityError, apihttp.UserMessage(err))
}
