package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kost-service/internal/models"
	"kost-service/internal/services"
)

type fakeSubmitter struct {
	err  error
	reqs []services.CreateBookingRequest
}

func (f *fakeSubmitter) CreateBooking(_ context.Context, req services.CreateBookingRequest) (models.BookingWithPayment, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return models.BookingWithPayment{}, f.err
	}
	return models.BookingWithPayment{
		Booking: models.Booking{ID: "b1", RoomID: req.RoomID, Status: models.BookingPending},
		Payment: models.Payment{ID: "p1", BookingID: "b1", Status: models.PaymentPending, PaymentMethod: models.PaymentMethodQRIS},
	}, nil
}

func date(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newTestFlow(api BookingSubmitter) *BookingFlow {
	f := NewBookingFlow(api, models.Room{ID: "room-1", Price: 1_000_000})
	f.now = func() time.Time { return time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC) }
	return f
}

func TestBookingFlowDateBounds(t *testing.T) {
	f := newTestFlow(&fakeSubmitter{})

	assert.Equal(t, "2024-01-01", f.MinCheckIn().String())
	assert.Equal(t, "2024-01-01", f.MinCheckOut().String())
	assert.ErrorIs(t, f.SetCheckIn(date(t, "2023-12-31")), ErrDateTooEarly)

	require.NoError(t, f.SetCheckIn(date(t, "2024-01-10")))
	assert.Equal(t, "2024-01-10", f.MinCheckOut().String())
	assert.ErrorIs(t, f.SetCheckOut(date(t, "2024-01-09")), ErrDateTooEarly)
	require.NoError(t, f.SetCheckOut(date(t, "2024-02-15")))

	require.NoError(t, f.SetCheckIn(date(t, "2024-03-01")))
	assert.Zero(t, f.Total(), "check-out before the new check-in is cleared")
}

func TestBookingFlowPricePreview(t *testing.T) {
	f := newTestFlow(&fakeSubmitter{})
	require.NoError(t, f.SetCheckIn(date(t, "2024-01-01")))
	require.NoError(t, f.SetCheckOut(date(t, "2024-02-15")))
	assert.Equal(t, int64(2_000_000), f.Total())
}

func TestBookingFlowSubmitReachesAwaitingPayment(t *testing.T) {
	api := &fakeSubmitter{}
	f := newTestFlow(api)
	require.NoError(t, f.SetCheckIn(date(t, "2024-01-02")))
	require.NoError(t, f.SetCheckOut(date(t, "2024-01-20")))

	res, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPayment, f.State())
	assert.Equal(t, res.Booking.ID, res.Payment.BookingID)
	require.Len(t, api.reqs, 1)
	assert.Equal(t, "room-1", api.reqs[0].RoomID)

	_, ok := f.Result()
	assert.True(t, ok)
	assert.ErrorIs(t, f.SetCheckIn(date(t, "2024-01-05")), ErrFlowLocked)
	_, err = f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrFlowLocked)
}

func TestBookingFlowFailedSubmitReturnsToEditing(t *testing.T) {
	boom := errors.New("room is not available")
	api := &fakeSubmitter{err: boom}
	f := newTestFlow(api)

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrDatesIncomplete)
	assert.Empty(t, api.reqs)

	require.NoError(t, f.SetCheckIn(date(t, "2024-01-02")))
	require.NoError(t, f.SetCheckOut(date(t, "2024-01-20")))
	_, err = f.Submit(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateEditingDates, f.State())
	assert.ErrorIs(t, f.Err(), boom)

	api.err = nil
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	assert.NoError(t, f.Err())
	assert.Equal(t, StateAwaitingPayment, f.State())
}
