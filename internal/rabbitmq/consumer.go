package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"kost-service/internal/models"
)

// PaymentConfirmedKey is the routing key external settlement systems publish to.
const PaymentConfirmedKey = "payment.confirmed"

// ConfirmationHandler applies one payment confirmation. A nil error acks the delivery.
type ConfirmationHandler func(ctx context.Context, confirmation models.PaymentConfirmation) error

// Consumer reads payment confirmations from a durable queue bound to the events exchange.
type Consumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger *zap.Logger
}

// NewConsumer connects, declares the exchange and queue, and binds the confirmation key.
func NewConsumer(amqpURL, exchange, queue string, logger *zap.Logger) (*Consumer, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareExchange(ch, exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(queue, PaymentConfirmedKey, exchange, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	if err := ch.Qos(8, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{conn: conn, ch: ch, queue: queue, logger: logger}, nil
}

// Run consumes until ctx is cancelled or the channel closes.
func (c *Consumer) Run(ctx context.Context, handle ConfirmationHandler) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.process(ctx, d, handle)
		}
	}
}

func (c *Consumer) process(ctx context.Context, d amqp.Delivery, handle ConfirmationHandler) {
	ack, requeue := decide(ctx, d.Body, d.Redelivered, handle, c.logger)
	if ack {
		_ = d.Ack(false)
		return
	}
	_ = d.Nack(false, requeue)
}

// decide runs the handler and returns whether to ack, and if not, whether to requeue.
// A failed delivery is requeued once; malformed bodies are dropped immediately.
func decide(ctx context.Context, body []byte, redelivered bool, handle ConfirmationHandler, logger *zap.Logger) (bool, bool) {
	var confirmation models.PaymentConfirmation
	if err := json.Unmarshal(body, &confirmation); err != nil || confirmation.BookingID == "" {
		logger.Warn("dropping malformed payment confirmation", zap.ByteString("body", body), zap.Error(err))
		return false, false
	}

	if err := handle(ctx, confirmation); err != nil {
		logger.Error("payment confirmation failed",
			zap.String("booking_id", confirmation.BookingID),
			zap.Bool("redelivered", redelivered),
			zap.Error(err),
		)
		return false, !redelivered
	}
	return true, false
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
