package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	alertdomain "github.com/zeer-gl/thiqa-gateway/internal/alerts/domain"
	alertrepo "github.com/zeer-gl/thiqa-gateway/internal/alerts/repository"
	apihttp "github.com/zeer-gl/thiqa-gateway/internal/api/http"
	"github.com/zeer-gl/thiqa-gateway/internal/calendar"
	"github.com/zeer-gl/thiqa-gateway/internal/logging"
	"github.com/zeer-gl/thiqa-gateway/internal/proposals/service"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionmw "github.com/zeer-gl/thiqa-gateway/internal/session/middleware"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

const maxUploadBytes = 16 << 20

// Handler handles HTTP requests for proposal submission
type Handler struct {
	proposals *service.ProposalService
	alerts    *alertrepo.AlertRepository
}

// New creates a new Handler
func New(proposals *service.ProposalService, alerts *alertrepo.AlertRepository) *Handler {
	return &Handler{proposals: proposals, alerts: alerts}
}

// Register mounts the proposal routes on the professional group.
func (h *Handler) Register(professional *gin.RouterGroup) {
	professional.POST("/proposals", h.Submit)
}

// Submit accepts the proposal form as multipart, mirroring the upstream's own
// encoding: demandId, price, duration, proposal, optional completionFile.
func (h *Handler) Submit(c *gin.Context) {
	sess := sessionmw.FromContext(c)

	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	sub := service.Submission{
		DemandID: c.PostForm("demandId"),
		Price:    c.PostForm("price"),
		Duration: c.PostForm("duration"),
		Notes:    c.PostForm("proposal"),
	}

	if file, header, err := c.Request.FormFile("completionFile"); err == nil {
		defer file.Close()
		content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read attached file"})
			return
		}
		sub.File = &upstream.FileUpload{Filename: header.Filename, Content: content}
	}

	duration, err := h.proposals.Submit(c.Request.Context(), sess, sub)
	if err != nil {
		h.respondSubmitError(c, sess, err)
		return
	}

	h.alert(c, sess, alertdomain.SeveritySuccess, "Proposal submitted.")
	c.JSON(http.StatusCreated, gin.H{
		"submitted": true,
		"duration":  duration,
		// The frontend clears its draft on this flag.
		"clear_form": true,
	})
}

func (h *Handler) respondSubmitError(c *gin.Context, sess *sessiondomain.Session, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "price, duration and notes are all required"})
	case errors.Is(err, calendar.ErrUnparsableDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be a date like 2025-09-16"})
	case errors.Is(err, service.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "project or professional id is malformed"})
	case errors.Is(err, sessiondomain.ErrWrongRole), errors.Is(err, sessiondomain.ErrNoActor):
		c.JSON(http.StatusForbidden, gin.H{"error": "professional sign-in is required to submit a proposal"})
	case errors.Is(err, service.ErrPreflight):
		h.alert(c, sess, alertdomain.SeverityError, "Your professional account could not be verified.")
		c.JSON(http.StatusBadGateway, gin.H{"error": "professional account could not be verified"})
	default:
		h.alert(c, sess, alertdomain.SeverityError, apihttp.UserMessage(err))
		apihttp.RespondUpstreamError(c, err)
	}
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
