package observability

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-Id"
	DeviceIDHeader  = "X-Device-Id"

	// RequestIDKey is the gin context key holding the request id.
	RequestIDKey = "request_id"
)

func DeviceIDFromRequest(r *http.Request) string {
	return r.Header.Get(DeviceIDHeader)
}

func RequestIDFromRequest(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// RequestIDMiddleware makes sure every request carries an id, echoing it on the response so
// audit records and client logs can be joined.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := RequestIDFromRequest(c.Request)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(RequestIDHeader, id)
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
