package models

import "time"

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// PaymentMethodQRIS is the only method offered; the QR itself is a placeholder.
const PaymentMethodQRIS = "qris"

// Payment tracks settlement of a booking's price.
type Payment struct {
	ID            string        `db:"id" json:"id"`
	BookingID     string        `db:"booking_id" json:"booking_id"`
	Amount        int64         `db:"amount" json:"amount"`
	Status        PaymentStatus `db:"status" json:"status"`
	PaymentMethod string        `db:"payment_method" json:"payment_method"`
	QRCodeURL     *string       `db:"qr_code_url" json:"qr_code_url,omitempty"`
	TransactionID *string       `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// PaymentConfirmation is emitted by whatever settles payments outside this service.
type PaymentConfirmation struct {
	BookingID     string        `json:"booking_id" binding:"required"`
	Status        PaymentStatus `json:"status" binding:"required"`
	TransactionID string        `json:"transaction_id"`
}
