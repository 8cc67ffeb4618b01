package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingPaid      BookingStatus = "paid"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingPaid, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// IsOwnerTarget reports whether an owner may move a booking into s.
func (s BookingStatus) IsOwnerTarget() bool {
	return s == BookingConfirmed || s == BookingCancelled
}

// CanOwnerTransition reports whether an owner may move a booking from one status to another.
// Only paid bookings can be confirmed or cancelled.
func CanOwnerTransition(from, to BookingStatus) bool {
	return from == BookingPaid && to.IsOwnerTarget()
}

// Booking reserves a room for a date range.
type Booking struct {
	ID         string        `db:"id" json:"id"`
	RoomID     string        `db:"room_id" json:"room_id"`
	UserID     string        `db:"user_id" json:"user_id"`
	CheckIn    Date          `db:"check_in" json:"check_in"`
	CheckOut   Date          `db:"check_out" json:"check_out"`
	TotalPrice int64         `db:"total_price" json:"total_price"`
	Status     BookingStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

// BookingDetail is a booking joined with its room and the requesting profile.
type BookingDetail struct {
	Booking
	Room Room    `db:"room" json:"room"`
	User Profile `db:"user" json:"user"`
}

// BookingWithPayment is the result of the booking flow.
type BookingWithPayment struct {
	Booking Booking `json:"booking"`
	Payment Payment `json:"payment"`
}
