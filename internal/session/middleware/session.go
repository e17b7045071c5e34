package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	"github.com/zeer-gl/thiqa-gateway/internal/session/repository"
)

const sessionContextKey = "thiqa_session"

// SessionMiddleware resolves the X-Session-Id header into a typed session and
// stores it in the request context. Requests without a valid session are
// rejected before any handler runs.
func SessionMiddleware(repo *repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("X-Session-Id")
		if sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
			return
		}

		s, err := repo.Get(c.Request.Context(), sessionID)
		if err != nil {
			if err == domain.ErrSessionNotFound {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
			return
		}

		if !s.LoggedIn {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}

		c.Set(sessionContextKey, s)
		c.Next()
	}
}

// RequireRole guards a route group for one actor role.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := FromContext(c)
		if s == nil || s.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "action not permitted for this role"})
			return
		}
		c.Next()
	}
}

// RequireProfessional guards supply-side routes.
func RequireProfessional() gin.HandlerFunc {
	return RequireRole(domain.RoleProfessional)
}

// RequireCustomer guards demand-side routes.
func RequireCustomer() gin.HandlerFunc {
	return RequireRole(domain.RoleCustomer)
}

// FromContext returns the session placed by SessionMiddleware, or nil.
func FromContext(c *gin.Context) *domain.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*domain.Session)
	return s
}
