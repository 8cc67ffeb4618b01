package observability

import (
	"context"

	"go.uber.org/zap"
)

// EventEnvelope wraps operational events such as websocket lifecycle changes.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// Publisher is the transport for operational events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// EventSink publishes operational events and counts failures. A nil sink drops events.
type EventSink struct {
	publisher Publisher
	logger    *zap.Logger
}

// NewEventSink builds an EventSink.
func NewEventSink(publisher Publisher, logger *zap.Logger) *EventSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventSink{publisher: publisher, logger: logger}
}

// PublishEvent sends the envelope to routingKey.
func (s *EventSink) PublishEvent(ctx context.Context, routingKey string, envelope EventEnvelope) {
	if s == nil || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, envelope); err != nil {
		IncAMQPPublishError()
		s.logger.Warn("event publish failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
