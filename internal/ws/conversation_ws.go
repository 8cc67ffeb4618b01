package ws

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"kost-service/internal/observability"
	"kost-service/internal/repositories"
	"kost-service/internal/session"
)

const maxInboundMessage = 4096

// TokenParser turns a bearer token into a session.
type TokenParser interface {
	Parse(token string) (session.Session, error)
}

// ConversationWebSocketHandler streams new messages of one conversation.
type ConversationWebSocketHandler struct {
	hub      *Hub
	profiles repositories.ProfileRepository
	tokens   TokenParser
	logger   *zap.Logger
}

// NewConversationWebSocketHandler constructs a ConversationWebSocketHandler.
func NewConversationWebSocketHandler(hub *Hub, profiles repositories.ProfileRepository, tokens TokenParser, logger *zap.Logger) *ConversationWebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationWebSocketHandler{hub: hub, profiles: profiles, tokens: tokens, logger: logger}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates the subscriber, upgrades the connection and registers it with the hub.
// Clients send nothing; the read loop only detects closure.
func (h *ConversationWebSocketHandler) Handle(c *gin.Context) {
	contactID := c.Param("contact_id")

	ctx, span := otel.Tracer("kost-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	sess, err := h.tokens.Parse(tokenFromRequest(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if _, err := uuid.Parse(contactID); err != nil || contactID == sess.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	contact, err := h.profiles.GetProfile(ctx, contactID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}
		h.logger.Error("load contact", zap.String("contact_id", contactID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contact"})
		return
	}
	if contact.Role != sess.Role.Counterpart() {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for conversation"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      sess.UserID,
		ContactID:   contact.ID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          c.ClientIP(),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	key := PairKey(info.UserID, info.ContactID)
	h.hub.Add(conn, info)

	observability.IncWSActive(wsKind)
	h.hub.publishWSEvent(ctx, "ws_connect", info, "")

	go func() {
		var closeReason string
		defer func() {
			if h.hub.Remove(key, conn) {
				observability.DecWSActive(wsKind)
			}
			h.hub.publishWSEvent(ctx, "ws_disconnect", info, closeReason)
			conn.Close()
		}()
		conn.SetReadLimit(maxInboundMessage)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.hub.publishWSEvent(ctx, "ws_error", info, closeReason)
				}
				return
			}
		}
	}()
}

// tokenFromRequest prefers the Authorization header and falls back to ?token= for browsers.
func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}
