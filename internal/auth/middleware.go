package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/librishare/librishare/pkg/utils"
)

// AuthMiddleware validates the Bearer token and stores the caller's identity
// on the context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ParseJWT(parts[1], jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// RequireSelf rejects requests where the authenticated user is not the user
// named in the path. All library and loan data is scoped to its owner.
func RequireSelf() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_id") != c.Param("id") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot access another user's data"})
			c.Abort()
			return
		}
		c.Next()
	}
}
