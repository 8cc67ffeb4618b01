package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Domain event routing keys.
const (
	EventBookingCreated          = "booking.created"
	EventBookingStatusChanged    = "booking.status_changed"
	EventPaymentSettled          = "payment.settled"
	EventRoomAvailabilityChanged = "room.availability_changed"
	EventChatMessageSent         = "chat.message_sent"
)

// DomainEvent is published after a state change has been committed.
type DomainEvent struct {
	SchemaVersion int    `json:"schema_version"`
	EventName     string `json:"event_name"`
	OccurredAt    string `json:"occurred_at"`
	Service       string `json:"service"`
	TraceID       string `json:"trace_id,omitempty"`
	Data          any    `json:"data"`
}

// EventEmitter publishes domain events. Publishing is best effort; failures are logged.
type EventEmitter struct {
	publisher Publisher
	logger    *zap.Logger
	service   string
}

func NewEventEmitter(publisher Publisher, logger *zap.Logger, service string) *EventEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventEmitter{publisher: publisher, logger: logger, service: service}
}

func (e *EventEmitter) Emit(ctx context.Context, name string, data any) {
	if e == nil || e.publisher == nil {
		return
	}
	event := DomainEvent{
		SchemaVersion: 1,
		EventName:     name,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		TraceID:       TraceIDFromContext(ctx),
		Data:          data,
	}
	if err := e.publisher.Publish(ctx, name, event); err != nil {
		e.logger.Warn("domain event publish failed", zap.String("event", name), zap.Error(err))
	}
}
