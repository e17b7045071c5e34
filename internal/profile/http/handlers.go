package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apihttp "github.com/zeer-gl/thiqa-gateway/internal/api/http"
	"github.com/zeer-gl/thiqa-gateway/internal/profile/service"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionmw "github.com/zeer-gl/thiqa-gateway/internal/session/middleware"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

const maxImageBytes = 8 << 20

// Handler handles HTTP requests for the professional profile
type Handler struct {
	profiles *service.ProfileService
}

// New creates a new Handler
func New(profiles *service.ProfileService) *Handler {
	return &Handler{profiles: profiles}
}

// Register mounts the profile routes on the professional group.
func (h *Handler) Register(professional *gin.RouterGroup) {
	professional.GET("/profile", h.GetProfile)
	professional.PUT("/profile", h.UpdateProfile)
}

// GetProfile returns the authoritative professional record.
func (h *Handler) GetProfile(c *gin.Context) {
	sess := sessionmw.FromContext(c)

	pro, err := h.profiles.Get(c.Request.Context(), sess)
	if err != nil {
		if errors.Is(err, sessiondomain.ErrNoActor) {
			c.JSON(http.StatusForbidden, gin.H{"error": "no professional is attached to this session"})
			return
		}
		apihttp.RespondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"professional": pro})
}

// UpdateProfile forwards a multipart profile update. Only recognized fields
// are passed through; the updated record replaces the session cache.
func (h *Handler) UpdateProfile(c *gin.Context) {
	sess := sessionmw.FromContext(c)

	if err := c.Request.ParseMultipartForm(maxImageBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	fields := map[string]string{}
	for _, name := range []string{"name", "email", "mobile", "profession", "address"} {
		if v := c.PostForm(name); v != "" {
			fields[name] = v
		}
	}

	var image *upstream.FileUpload
	if file, header, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()
		content, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read profile image"})
			return
		}
		image = &upstream.FileUpload{Filename: header.Filename, Content: content}
	}

	pro, err := h.profiles.Update(c.Request.Context(), sess, fields, image)
	if err != nil {
		apihttp.RespondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"professional": pro})
}
