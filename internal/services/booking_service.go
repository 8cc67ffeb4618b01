package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kost-service/internal/models"
	"kost-service/internal/observability"
	"kost-service/internal/pricing"
	"kost-service/internal/repositories"
	"kost-service/internal/session"
	"kost-service/internal/telemetry"
)

// QuoteRequest is a date range to price.
type QuoteRequest struct {
	CheckIn  models.Date `json:"check_in"`
	CheckOut models.Date `json:"check_out"`
}

// Quote is the price preview of a stay.
type Quote struct {
	RoomID         string `json:"room_id"`
	Days           int    `json:"days"`
	Periods        int64  `json:"periods"`
	PricePerPeriod int64  `json:"price_per_period"`
	Total          int64  `json:"total"`
}

// CreateBookingRequest is submitted by a tenant to book a room.
type CreateBookingRequest struct {
	RoomID   string      `json:"room_id" binding:"required"`
	CheckIn  models.Date `json:"check_in"`
	CheckOut models.Date `json:"check_out"`
}

// BookingService runs the booking flow and owner status changes.
type BookingService struct {
	rooms         repositories.RoomRepository
	bookings      repositories.BookingRepository
	events        *telemetry.EventEmitter
	logger        *zap.Logger
	rejectOverlap bool
	now           func() time.Time
}

func NewBookingService(rooms repositories.RoomRepository, bookings repositories.BookingRepository, events *telemetry.EventEmitter, logger *zap.Logger, rejectOverlap bool) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		rooms:         rooms,
		bookings:      bookings,
		events:        events,
		logger:        logger,
		rejectOverlap: rejectOverlap,
		now:           time.Now,
	}
}

// Quote prices a stay without persisting anything. Incomplete or inverted ranges cost 0.
func (s *BookingService) Quote(ctx context.Context, roomID string, req QuoteRequest) (Quote, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{RoomID: room.ID, PricePerPeriod: room.Price}
	if !req.CheckIn.IsZero() && !req.CheckOut.IsZero() {
		if days := req.CheckIn.DaysUntil(req.CheckOut); days > 0 {
			q.Days = days
			q.Periods = pricing.Periods(days)
		}
	}
	q.Total = pricing.Total(req.CheckIn, req.CheckOut, room.Price)
	return q, nil
}

// CreateBooking validates the range, prices it against the current room price and stores
// the booking with its pending payment in one transaction.
func (s *BookingService) CreateBooking(ctx context.Context, sess session.Session, req CreateBookingRequest) (models.BookingWithPayment, error) {
	if !sess.IsTenant() {
		return models.BookingWithPayment{}, fmt.Errorf("%w: only tenants can book rooms", ErrForbidden)
	}
	if err := requireID(req.RoomID, "room_id"); err != nil {
		return models.BookingWithPayment{}, err
	}
	if req.CheckIn.IsZero() || req.CheckOut.IsZero() {
		return models.BookingWithPayment{}, fmt.Errorf("%w: check_in and check_out are required", ErrInvalidInput)
	}
	today := models.NewDate(s.now())
	if req.CheckIn.Before(today.Time) {
		return models.BookingWithPayment{}, fmt.Errorf("%w: check_in cannot be in the past", ErrInvalidInput)
	}
	if !req.CheckOut.After(req.CheckIn.Time) {
		return models.BookingWithPayment{}, fmt.Errorf("%w: check_out must be after check_in", ErrInvalidInput)
	}

	room, err := s.rooms.GetRoom(ctx, req.RoomID)
	if err != nil {
		return models.BookingWithPayment{}, err
	}
	if !room.IsAvailable {
		return models.BookingWithPayment{}, ErrRoomUnavailable
	}

	total := pricing.Total(req.CheckIn, req.CheckOut, room.Price)
	booking := models.Booking{
		RoomID:     room.ID,
		UserID:     sess.UserID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		TotalPrice: total,
		Status:     models.BookingPending,
	}
	payment := models.Payment{
		Amount:        total,
		Status:        models.PaymentPending,
		PaymentMethod: models.PaymentMethodQRIS,
	}

	result, err := s.bookings.CreateWithPayment(ctx, booking, payment, s.rejectOverlap)
	if err != nil {
		return models.BookingWithPayment{}, err
	}

	observability.IncBookingCreated()
	s.logger.Info("booking created",
		zap.String("booking_id", result.Booking.ID),
		zap.String("room_id", room.ID),
		zap.String("user_id", sess.UserID),
		zap.Int64("total_price", total),
	)
	s.events.Emit(ctx, telemetry.EventBookingCreated, result)
	return result, nil
}

// ListBookings returns every booking to owners and a tenant's own bookings otherwise.
func (s *BookingService) ListBookings(ctx context.Context, sess session.Session) ([]models.BookingDetail, error) {
	userID := sess.UserID
	if sess.IsOwner() {
		userID = ""
	}
	return s.bookings.ListBookings(ctx, userID, 0)
}

// SetStatus lets an owner confirm or cancel a paid booking.
func (s *BookingService) SetStatus(ctx context.Context, sess session.Session, bookingID string, to models.BookingStatus) (models.Booking, error) {
	if !sess.IsOwner() {
		return models.Booking{}, fmt.Errorf("%w: only owners can change booking status", ErrForbidden)
	}
	if !to.Valid() {
		return models.Booking{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	if !models.CanOwnerTransition(models.BookingPaid, to) {
		return models.Booking{}, fmt.Errorf("%w: status must be confirmed or cancelled", ErrInvalidInput)
	}

	booking, err := s.bookings.TransitionStatus(ctx, bookingID, models.BookingPaid, to)
	switch {
	case err == nil:
		observability.ObserveTransition(string(to), "applied")
	case errors.Is(err, repositories.ErrInvalidTransition):
		observability.ObserveTransition(string(to), "rejected")
		return models.Booking{}, err
	default:
		return models.Booking{}, err
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", booking.ID),
		zap.String("status", string(booking.Status)),
		zap.String("owner_id", sess.UserID),
	)
	s.events.Emit(ctx, telemetry.EventBookingStatusChanged, map[string]string{
		"booking_id": booking.ID,
		"from":       string(models.BookingPaid),
		"to":         string(booking.Status),
		"changed_by": sess.UserID,
	})
	return booking, nil
}
