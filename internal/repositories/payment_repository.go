package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"kost-service/internal/models"
)

const paymentColumns = `id, booking_id, amount, status, payment_method, qr_code_url, transaction_id, created_at`

// PaymentRepository abstracts payment persistence.
type PaymentRepository interface {
	GetPaymentByBooking(ctx context.Context, bookingID string) (models.Payment, error)
	SettlePayment(ctx context.Context, bookingID string, status models.PaymentStatus, transactionID string) (models.Payment, error)
}

// PaymentRepo is a sqlx implementation of PaymentRepository.
type PaymentRepo struct {
	db *sqlx.DB
}

// NewPaymentRepo constructs a PaymentRepo.
func NewPaymentRepo(db *sqlx.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// GetPaymentByBooking fetches the payment attached to a booking.
func (r *PaymentRepo) GetPaymentByBooking(ctx context.Context, bookingID string) (models.Payment, error) {
	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, `SELECT `+paymentColumns+` FROM payments WHERE booking_id=$1`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Payment{}, ErrPaymentNotFound
	}
	return payment, err
}

// SettlePayment moves a pending payment to paid or failed. A paid payment also moves its
// pending booking to paid within the same transaction.
func (r *PaymentRepo) SettlePayment(ctx context.Context, bookingID string, status models.PaymentStatus, transactionID string) (payment models.Payment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Payment{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = tx.QueryRowxContext(ctx, `UPDATE payments SET status=$2, transaction_id=COALESCE(NULLIF($3, ''), transaction_id)
        WHERE booking_id=$1 AND status='pending' RETURNING `+paymentColumns, bookingID, status, transactionID).
		StructScan(&payment)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err = tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM payments WHERE booking_id=$1)`, bookingID); err != nil {
			return models.Payment{}, err
		}
		if exists {
			err = ErrPaymentSettled
		} else {
			err = ErrPaymentNotFound
		}
		return models.Payment{}, err
	}
	if err != nil {
		return models.Payment{}, err
	}

	if status == models.PaymentPaid {
		if _, err = tx.ExecContext(ctx, `UPDATE bookings SET status='paid' WHERE id=$1 AND status='pending'`, bookingID); err != nil {
			return models.Payment{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}
