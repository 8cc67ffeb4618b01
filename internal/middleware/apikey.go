package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the public key every client ships with.
const APIKeyHeader = "apikey"

// WebhookKeyHeader authenticates payment confirmation callbacks.
const WebhookKeyHeader = "X-Webhook-Key"

// APIKeyMiddleware requires the public API key when one is configured. Websocket clients
// that cannot set headers may pass it as the apikey query parameter.
func APIKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := c.GetHeader(APIKeyHeader)
		if got == "" {
			got = c.Query(APIKeyHeader)
		}
		if !keysMatch(got, key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}

// WebhookKeyMiddleware guards the confirmation webhook. With no key configured the
// webhook is disabled.
func WebhookKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "payment webhook disabled"})
			return
		}
		if !keysMatch(c.GetHeader(WebhookKeyHeader), key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook key"})
			return
		}
		c.Next()
	}
}

func keysMatch(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
