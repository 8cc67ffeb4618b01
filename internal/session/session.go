package session

import (
	"github.com/gin-gonic/gin"

	"kost-service/internal/models"
)

const contextKey = "session"

// Session identifies the authenticated profile of a request.
type Session struct {
	UserID string
	Role   models.Role
}

func (s Session) IsOwner() bool {
	return s.Role == models.RoleOwner
}

func (s Session) IsTenant() bool {
	return s.Role == models.RoleTenant
}

// Set stores the session on the gin context.
func Set(c *gin.Context, s Session) {
	c.Set(contextKey, s)
}

// FromContext returns the session set by the auth middleware.
func FromContext(c *gin.Context) (Session, bool) {
	val, ok := c.Get(contextKey)
	if !ok {
		return Session{}, false
	}
	s, ok := val.(Session)
	if !ok || s.UserID == "" {
		return Session{}, false
	}
	return s, true
}
