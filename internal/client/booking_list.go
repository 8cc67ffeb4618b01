package client

import (
	"context"
	"errors"

	"kost-service/internal/models"
)

// BookingAPI is the part of Client a BookingList needs.
type BookingAPI interface {
	Bookings(ctx context.Context) ([]models.BookingDetail, error)
	SetBookingStatus(ctx context.Context, bookingID string, status models.BookingStatus) (models.Booking, error)
}

// BookingList is the bookings view. Owners see every booking, tenants their own.
type BookingList struct {
	api    BookingAPI
	loader Loader[[]models.BookingDetail]
}

func NewBookingList(api BookingAPI) *BookingList {
	return &BookingList{api: api}
}

// Refresh refetches the whole list. An empty list is a success; errors are never turned into
// an empty list.
func (l *BookingList) Refresh(ctx context.Context) ([]models.BookingDetail, error) {
	return l.loader.Load(ctx, func(ctx context.Context) ([]models.BookingDetail, error) {
		bookings, err := l.api.Bookings(ctx)
		if err == nil && bookings == nil {
			bookings = []models.BookingDetail{}
		}
		return bookings, err
	})
}

// Bookings returns what the view currently shows.
func (l *BookingList) Bookings() ([]models.BookingDetail, error) {
	return l.loader.Value()
}

// SetStatus asks the service to move a booking and refetches the list on success.
func (l *BookingList) SetStatus(ctx context.Context, bookingID string, status models.BookingStatus) error {
	if _, err := l.api.SetBookingStatus(ctx, bookingID, status); err != nil {
		return err
	}
	if _, err := l.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) {
		return err
	}
	return nil
}
