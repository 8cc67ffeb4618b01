package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"kost-service/internal/models"
	"kost-service/internal/observability"
	"kost-service/internal/repositories"
	"kost-service/internal/session"
	"kost-service/internal/telemetry"
)

// Confirmation sources, used as metric labels.
const (
	SourceWebhook = "webhook"
	SourceQueue   = "amqp"
)

// PaymentService applies payment confirmation events and exposes payments to their parties.
type PaymentService struct {
	payments repositories.PaymentRepository
	bookings repositories.BookingRepository
	events   *telemetry.EventEmitter
	logger   *zap.Logger
}

func NewPaymentService(payments repositories.PaymentRepository, bookings repositories.BookingRepository, events *telemetry.EventEmitter, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{payments: payments, bookings: bookings, events: events, logger: logger}
}

// Confirm settles the pending payment of a booking. A paid confirmation also marks the
// booking paid; a failed one leaves the booking pending.
func (s *PaymentService) Confirm(ctx context.Context, conf models.PaymentConfirmation, source string) (models.Payment, error) {
	if err := requireID(conf.BookingID, "booking_id"); err != nil {
		return models.Payment{}, err
	}
	if conf.Status != models.PaymentPaid && conf.Status != models.PaymentFailed {
		return models.Payment{}, fmt.Errorf("%w: status must be paid or failed", ErrInvalidInput)
	}

	payment, err := s.payments.SettlePayment(ctx, conf.BookingID, conf.Status, conf.TransactionID)
	if err != nil {
		return models.Payment{}, err
	}

	observability.IncPaymentSettled(string(payment.Status), source)
	s.logger.Info("payment settled",
		zap.String("booking_id", conf.BookingID),
		zap.String("status", string(payment.Status)),
		zap.String("source", source),
	)
	s.events.Emit(ctx, telemetry.EventPaymentSettled, payment)
	return payment, nil
}

// HandleConfirmation is the queue entry point. Events that can never succeed are dropped by
// returning nil; other errors are returned so the consumer can retry.
func (s *PaymentService) HandleConfirmation(ctx context.Context, conf models.PaymentConfirmation) error {
	_, err := s.Confirm(ctx, conf, SourceQueue)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrPaymentSettled),
		errors.Is(err, repositories.ErrPaymentNotFound),
		errors.Is(err, ErrInvalidInput):
		s.logger.Warn("payment confirmation ignored", zap.String("booking_id", conf.BookingID), zap.Error(err))
		return nil
	default:
		return err
	}
}

// PaymentForBooking returns the payment of a booking to its tenant or to any owner.
func (s *PaymentService) PaymentForBooking(ctx context.Context, sess session.Session, bookingID string) (models.Payment, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return models.Payment{}, err
	}
	if !sess.IsOwner() && booking.UserID != sess.UserID {
		return models.Payment{}, fmt.Errorf("%w: booking belongs to another tenant", ErrForbidden)
	}
	return s.payments.GetPaymentByBooking(ctx, bookingID)
}
