package middleware

import (
	"net/http"
	"strings"

	"resort-backend/utils"

	"github.com/gin-gonic/gin"
)

// RequireAuth accepts an HS256 bearer token and exposes its claims as
// "userID" and "role" on the context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			utils.JSONError(c, http.StatusUnauthorized, "missingToken", "Authorization bearer token required", nil)
			c.Abort()
			return
		}

		claims, err := utils.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "invalidToken", "Invalid or expired token", nil)
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
