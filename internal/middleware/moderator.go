package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/askstage/backend/internal/auth"
	"github.com/askstage/backend/pkg/response"
)

// Moderator returns a middleware that validates a moderator JWT. When no
// moderator key is configured, jwtService is nil and the endpoints stay
// open, preserving the unauthenticated API contract.
func Moderator(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtService == nil {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "moderator token required")
			c.Abort()
			return
		}
		if _, err := jwtService.Validate(parts[1]); err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Next()
	}
}
