package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeer-gl/thiqa-gateway/internal/logging"
	"github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionmw "github.com/zeer-gl/thiqa-gateway/internal/session/middleware"
	"github.com/zeer-gl/thiqa-gateway/internal/session/repository"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

// Handler handles session lifecycle requests
type Handler struct {
	repo     *repository.SessionRepository
	upstream *upstream.Client
}

// New creates a new Handler
func New(repo *repository.SessionRepository, client *upstream.Client) *Handler {
	return &Handler{repo: repo, upstream: client}
}

// Register mounts the session routes. Create sits outside the session
// middleware; logout sits inside it.
func (h *Handler) Register(public, private *gin.RouterGroup) {
	public.POST("/session", h.CreateSession)
	private.DELETE("/session", h.Logout)
	private.GET("/session", h.GetSession)
}

// CreateSession resolves the actor identity once, at login, and caches the
// actor record for every later call site.
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	logger := logging.NewLogger(c.Request.Context())

	s := &domain.Session{
		Role:     req.Role,
		LoggedIn: true,
	}

	switch req.Role {
	case domain.RoleProfessional:
		if req.ProfessionalID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "professionalId is required for professional sessions"})
			return
		}
		pro, err := h.upstream.GetProfessional(c.Request.Context(), req.Token, req.ProfessionalID)
		if err != nil {
			logger.LogError("create_session", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "professional is not recognized by the backend"})
			return
		}
		s.ProfessionalToken = req.Token
		s.Professional = pro
	case domain.RoleCustomer:
		if req.Customer == nil || req.Customer.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer record is required for customer sessions"})
			return
		}
		s.CustomerToken = req.Token
		s.Customer = req.Customer
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be customer or professional"})
		return
	}

	if err := h.repo.Create(c.Request.Context(), s); err != nil {
		logger.LogError("create_session", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, sessionView(s))
}

// GetSession returns the current session's actor view.
func (h *Handler) GetSession(c *gin.Context) {
	s := sessionmw.FromContext(c)
	c.JSON(http.StatusOK, sessionView(s))
}

// Logout deletes the session and every satellite key.
func (h *Handler) Logout(c *gin.Context) {
	s := sessionmw.FromContext(c)

	if err := h.repo.Delete(c.Request.Context(), s.ID); err != nil {
		logging.NewLogger(c.Request.Context()).LogError("logout", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

func sessionView(s *domain.Session) SessionResponse {
	return SessionResponse{
		SessionID:    s.ID,
		Role:         s.Role,
		Professional: s.Professional,
		Customer:     s.Customer,
	}
}
