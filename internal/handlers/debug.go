package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kost-service/internal/telemetry"
)

const debugEventName = "debug.ping"

// RegisterDebugRoutes mounts endpoints that push a sample audit record and a sample domain
// event through the broker, for checking the AMQP wiring of a deployment.
func RegisterDebugRoutes(router gin.IRouter, auditEmitter *telemetry.AuditEmitter, events *telemetry.EventEmitter, enabled bool) {
	if !enabled {
		return
	}

	debug := router.Group("/debug")
	debug.GET("/audit-test", func(c *gin.Context) {
		if auditEmitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		audit(c, auditEmitter, "debug.audit_test", "audit test", nil)
		c.JSON(http.StatusOK, gin.H{"status": "ok", "request_id": requestIDFromContext(c)})
	})
	debug.GET("/event-test", func(c *gin.Context) {
		if events == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event emitter not configured"})
			return
		}
		requestID := requestIDFromContext(c)
		events.Emit(c.Request.Context(), debugEventName, map[string]string{"request_id": requestID})
		c.JSON(http.StatusOK, gin.H{"status": "ok", "event": debugEventName, "request_id": requestID})
	})
}
