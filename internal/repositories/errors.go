package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrRoomNotFound      = errors.New("room not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingOverlap    = errors.New("room already booked for these dates")
	ErrInvalidTransition = errors.New("booking status transition not allowed")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentSettled    = errors.New("payment already settled")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// foreignKeyConstraint returns the violated constraint name when err is a foreign-key violation.
func foreignKeyConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
