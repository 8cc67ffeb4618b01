package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"kost-service/internal/models"
)

const bookingColumns = `id, room_id, user_id, check_in, check_out, total_price, status, created_at`

const bookingDetailSelect = `SELECT b.id, b.room_id, b.user_id, b.check_in, b.check_out, b.total_price, b.status, b.created_at,
        r.id AS "room.id", r.name AS "room.name", r.description AS "room.description", r.price AS "room.price",
        r.facilities AS "room.facilities", r.image_url AS "room.image_url", r.is_available AS "room.is_available",
        r.size AS "room.size", r.created_at AS "room.created_at",
        p.id AS "user.id", p.email AS "user.email", p.full_name AS "user.full_name", p.phone AS "user.phone",
        p.role AS "user.role", p.avatar_url AS "user.avatar_url", p.created_at AS "user.created_at"
    FROM bookings b
    JOIN rooms r ON r.id = b.room_id
    JOIN profiles p ON p.id = b.user_id`

// BookingRepository abstracts booking persistence.
type BookingRepository interface {
	CreateWithPayment(ctx context.Context, booking models.Booking, payment models.Payment, rejectOverlap bool) (models.BookingWithPayment, error)
	GetBooking(ctx context.Context, id string) (models.Booking, error)
	ListBookings(ctx context.Context, userID string, limit int) ([]models.BookingDetail, error)
	TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus) (models.Booking, error)
}

// BookingRepo is a sqlx implementation of BookingRepository.
type BookingRepo struct {
	db *sqlx.DB
}

// NewBookingRepo constructs a BookingRepo.
func NewBookingRepo(db *sqlx.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// CreateWithPayment inserts a booking and its payment atomically. With rejectOverlap the room row
// is locked and any non-cancelled booking intersecting [check_in, check_out) aborts the insert.
func (r *BookingRepo) CreateWithPayment(ctx context.Context, booking models.Booking, payment models.Payment, rejectOverlap bool) (result models.BookingWithPayment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.BookingWithPayment{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if rejectOverlap {
		var roomID string
		if err = tx.GetContext(ctx, &roomID, `SELECT id FROM rooms WHERE id=$1 FOR UPDATE`, booking.RoomID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				err = ErrRoomNotFound
			}
			return models.BookingWithPayment{}, err
		}
		var overlap bool
		if err = tx.GetContext(ctx, &overlap, `SELECT EXISTS(SELECT 1 FROM bookings
            WHERE room_id=$1 AND status <> 'cancelled' AND check_in < $3 AND check_out > $2)`,
			booking.RoomID, booking.CheckIn, booking.CheckOut); err != nil {
			return models.BookingWithPayment{}, err
		}
		if overlap {
			err = ErrBookingOverlap
			return models.BookingWithPayment{}, err
		}
	}

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if err = tx.QueryRowxContext(ctx, `INSERT INTO bookings (id, room_id, user_id, check_in, check_out, total_price, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+bookingColumns,
		booking.ID, booking.RoomID, booking.UserID, booking.CheckIn, booking.CheckOut, booking.TotalPrice, booking.Status).
		StructScan(&result.Booking); err != nil {
		return models.BookingWithPayment{}, fmt.Errorf("insert booking: %w", err)
	}

	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if err = tx.QueryRowxContext(ctx, `INSERT INTO payments (id, booking_id, amount, status, payment_method, qr_code_url)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+paymentColumns,
		payment.ID, result.Booking.ID, payment.Amount, payment.Status, payment.PaymentMethod, payment.QRCodeURL).
		StructScan(&result.Payment); err != nil {
		return models.BookingWithPayment{}, fmt.Errorf("insert payment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return models.BookingWithPayment{}, err
	}
	return result, nil
}

// GetBooking fetches a booking by id.
func (r *BookingRepo) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, ErrBookingNotFound
	}
	return booking, err
}

// ListBookings returns bookings joined with room and profile, newest first.
// An empty userID lists every booking; a positive limit caps the result.
func (r *BookingRepo) ListBookings(ctx context.Context, userID string, limit int) ([]models.BookingDetail, error) {
	query := bookingDetailSelect
	args := []any{}
	if userID != "" {
		args = append(args, userID)
		query += fmt.Sprintf(" WHERE b.user_id=$%d", len(args))
	}
	query += " ORDER BY b.created_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	bookings := []models.BookingDetail{}
	err := r.db.SelectContext(ctx, &bookings, query, args...)
	return bookings, err
}

// TransitionStatus moves a booking from one status to another only if it is still in from.
func (r *BookingRepo) TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus) (models.Booking, error) {
	var booking models.Booking
	err := r.db.QueryRowxContext(ctx, `UPDATE bookings SET status=$3 WHERE id=$1 AND status=$2 RETURNING `+bookingColumns, id, from, to).
		StructScan(&booking)
	if errors.Is(err, sql.ErrNoRows) {
		current, getErr := r.GetBooking(ctx, id)
		if getErr != nil {
			return models.Booking{}, getErr
		}
		return models.Booking{}, fmt.Errorf("%w: booking is %s, expected %s", ErrInvalidTransition, current.Status, from)
	}
	return booking, err
}
