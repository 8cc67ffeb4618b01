package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kost-service/internal/models"
	"kost-service/internal/session"
)

// TokenParser turns a bearer token into a session.
type TokenParser interface {
	Parse(token string) (session.Session, error)
}

// AuthMiddleware validates the Authorization bearer token and stores the session.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		s, err := parser.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		session.Set(c, s)
		c.Next()
	}
}

// RequireRole rejects sessions whose role differs from role.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := session.FromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if s.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "requires " + string(role) + " role"})
			return
		}
		c.Next()
	}
}
