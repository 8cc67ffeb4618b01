package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kost-service/internal/services"
)

// ChatHandler manages direct messaging endpoints.
type ChatHandler struct {
	svc    *services.ChatService
	logger *zap.Logger
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(svc *services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: orNop(logger)}
}

// ListContacts returns the profiles the user can talk to.
func (h *ChatHandler) ListContacts(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	contacts, err := h.svc.Contacts(c.Request.Context(), sess)
	if err != nil {
		respondError(c, h.logger, err, "failed to load contacts")
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// GetMessages returns the conversation with a contact, oldest first.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	contactID, ok := idParam(c, "contact_id", "contact")
	if !ok {
		return
	}
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	msgs, err := h.svc.Conversation(c.Request.Context(), sess, contactID)
	if err != nil {
		respondError(c, h.logger, err, "failed to load messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage stores a message to a contact and pushes it to subscribers.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	contactID, ok := idParam(c, "contact_id", "contact")
	if !ok {
		return
	}
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), sess, contactID, req)
	if err != nil {
		respondError(c, h.logger, err, "could not send message")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
