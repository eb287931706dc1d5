package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/architect/commerce-analytics/internal/common/errors"
	"github.com/gin-gonic/gin"
)

// AuthRequired guards the API behind a shared dashboard password. When the
// configured password is empty the guard is a no-op, matching the dashboard's
// optional-auth deployment mode.
func AuthRequired(password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if password == "" {
			c.Next()
			return
		}

		token := c.GetHeader("Authorization")
		token = strings.TrimPrefix(token, "Bearer ")
		if token == "" {
			// Fall back to a session cookie set by the dashboard login
			token, _ = c.Cookie("dashboard_session")
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(password)) != 1 {
			appErr := errors.Unauthorized("missing or invalid authentication")
			c.AbortWithStatusJSON(appErr.Status, appErr)
			return
		}

		c.Next()
	}
}
