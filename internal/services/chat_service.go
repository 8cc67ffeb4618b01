package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kost-service/internal/models"
	"kost-service/internal/observability"
	"kost-service/internal/repositories"
	"kost-service/internal/session"
	"kost-service/internal/telemetry"
)

// Broadcaster delivers stored messages to live conversation subscribers.
type Broadcaster interface {
	Publish(msg models.ChatMessage)
}

// Contacts lists the profiles a session can chat with.
type Contacts struct {
	Contacts          []models.Profile `json:"contacts"`
	SelectedContactID *string          `json:"selected_contact_id,omitempty"`
}

// SendMessageRequest is the body of a chat message.
type SendMessageRequest struct {
	Message   string  `json:"message"`
	BookingID *string `json:"booking_id"`
}

// ChatService implements direct messaging between tenants and owners.
type ChatService struct {
	profiles    repositories.ProfileRepository
	messages    repositories.MessageRepository
	broadcaster Broadcaster
	events      *telemetry.EventEmitter
	logger      *zap.Logger
}

// NewChatService builds a ChatService. A nil broadcaster leaves delivery to another feed.
func NewChatService(profiles repositories.ProfileRepository, messages repositories.MessageRepository, broadcaster Broadcaster, events *telemetry.EventEmitter, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{profiles: profiles, messages: messages, broadcaster: broadcaster, events: events, logger: logger}
}

// Contacts returns every profile of the opposite role ordered by name. Tenants get the
// first owner preselected.
func (s *ChatService) Contacts(ctx context.Context, sess session.Session) (Contacts, error) {
	profiles, err := s.profiles.ListProfilesByRole(ctx, sess.Role.Counterpart())
	if err != nil {
		return Contacts{}, err
	}
	out := Contacts{Contacts: profiles}
	if sess.IsTenant() && len(profiles) > 0 {
		id := profiles[0].ID
		out.SelectedContactID = &id
	}
	return out, nil
}

// Conversation returns the messages between the session and contact, oldest first.
func (s *ChatService) Conversation(ctx context.Context, sess session.Session, contactID string) ([]models.ChatMessage, error) {
	if contactID == sess.UserID {
		return nil, fmt.Errorf("%w: cannot chat with yourself", ErrInvalidInput)
	}
	return s.messages.ListConversation(ctx, sess.UserID, contactID)
}

// Send stores a message from the session to contact and publishes it.
func (s *ChatService) Send(ctx context.Context, sess session.Session, contactID string, req SendMessageRequest) (models.ChatMessage, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return models.ChatMessage{}, fmt.Errorf("%w: message cannot be empty", ErrInvalidInput)
	}
	if contactID == sess.UserID {
		return models.ChatMessage{}, fmt.Errorf("%w: cannot chat with yourself", ErrInvalidInput)
	}

	var bookingID *string
	if req.BookingID != nil && strings.TrimSpace(*req.BookingID) != "" {
		id := strings.TrimSpace(*req.BookingID)
		if err := requireID(id, "booking_id"); err != nil {
			return models.ChatMessage{}, err
		}
		bookingID = &id
	}

	contact, err := s.profiles.GetProfile(ctx, contactID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if contact.Role != sess.Role.Counterpart() {
		return models.ChatMessage{}, fmt.Errorf("%w: %s profiles can only message %s profiles", ErrForbidden, sess.Role, sess.Role.Counterpart())
	}

	msg, err := s.messages.CreateMessage(ctx, models.ChatMessage{
		SenderID:   sess.UserID,
		ReceiverID: contact.ID,
		Message:    text,
		BookingID:  bookingID,
	})
	if err != nil {
		return models.ChatMessage{}, err
	}

	observability.IncMessageSent()
	if s.broadcaster != nil {
		s.broadcaster.Publish(msg)
	}
	s.events.Emit(ctx, telemetry.EventChatMessageSent, map[string]string{
		"message_id":  msg.ID,
		"sender_id":   msg.SenderID,
		"receiver_id": msg.ReceiverID,
	})
	return msg, nil
}
