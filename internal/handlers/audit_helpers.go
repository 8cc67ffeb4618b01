package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kost-service/internal/observability"
	"kost-service/internal/session"
	"kost-service/internal/telemetry"
)

// requestIDFromContext returns the id set by observability.RequestIDMiddleware, minting one
// for routes mounted without it.
func requestIDFromContext(c *gin.Context) string {
	if id := c.GetString(observability.RequestIDKey); id != "" {
		return id
	}

	requestID := observability.RequestIDFromRequest(c.Request)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(observability.RequestIDKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) *string {
	if s, ok := session.FromContext(c); ok {
		id := s.UserID
		return &id
	}
	return nil
}

// audit records an owner or system action; a nil emitter drops it.
func audit(c *gin.Context, emitter *telemetry.AuditEmitter, action, text string, fields map[string]string) {
	emitter.Emit(c.Request.Context(), telemetry.AuditRecord{
		Level:     "INFO",
		Action:    action,
		Text:      text,
		RequestID: requestIDFromContext(c),
		UserID:    userIDFromContext(c),
		Fields:    fields,
	})
}
