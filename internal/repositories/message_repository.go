package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"kost-service/internal/models"
)

const messageColumns = `id, sender_id, receiver_id, message, booking_id, created_at`

const messageBookingFK = "chat_messages_booking_id_fkey"

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error)
	ListConversation(ctx context.Context, userID, contactID string) ([]models.ChatMessage, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a direct message. A dangling booking reference yields ErrBookingNotFound,
// a dangling sender or receiver ErrProfileNotFound.
func (r *MessageRepo) CreateMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	var stored models.ChatMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO chat_messages (id, sender_id, receiver_id, message, booking_id)
        VALUES ($1, $2, $3, $4, $5) RETURNING `+messageColumns,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Message, msg.BookingID).
		StructScan(&stored)
	if constraint, ok := foreignKeyConstraint(err); ok {
		if constraint == messageBookingFK {
			return models.ChatMessage{}, ErrBookingNotFound
		}
		return models.ChatMessage{}, ErrProfileNotFound
	}
	return stored, err
}

// ListConversation returns messages exchanged between the two profiles in either direction, oldest first.
func (r *MessageRepo) ListConversation(ctx context.Context, userID, contactID string) ([]models.ChatMessage, error) {
	query := `SELECT ` + messageColumns + `
        FROM chat_messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at ASC, id ASC`
	msgs := []models.ChatMessage{}
	err := r.db.SelectContext(ctx, &msgs, query, userID, contactID)
	return msgs, err
}
