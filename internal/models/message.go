package models

import "time"

// ChatMessage is a direct message between two profiles. Messages are immutable.
type ChatMessage struct {
	ID         string    `db:"id" json:"id"`
	SenderID   string    `db:"sender_id" json:"sender_id"`
	ReceiverID string    `db:"receiver_id" json:"receiver_id"`
	Message    string    `db:"message" json:"message"`
	BookingID  *string   `db:"booking_id" json:"booking_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// VisibleTo reports whether the profile is one of the message endpoints.
func (m ChatMessage) VisibleTo(profileID string) bool {
	return m.SenderID == profileID || m.ReceiverID == profileID
}

// ConversationEvent is pushed to conversation subscribers over websockets.
type ConversationEvent struct {
	Type    string       `json:"type"`
	Message *ChatMessage `json:"message,omitempty"`
}
