package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyMiddleware guards the gateway surface for known frontend clients.
// With no key configured the guard is disabled (local development).
func APIKeyMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}

		key := c.GetHeader("X-API-Key")
		if key == "" || key != expected {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok":    false,
				"error": "invalid API key",
			})
			return
		}

		c.Next()
	}
}
