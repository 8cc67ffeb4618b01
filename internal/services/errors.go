package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbidden       = errors.New("forbidden")
	ErrRoomUnavailable = errors.New("room is not available")
)

// requireID rejects ids that are not UUIDs before they reach a UUID column.
func requireID(id, field string) error {
	if id == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s must be a uuid", ErrInvalidInput, field)
	}
	return nil
}
