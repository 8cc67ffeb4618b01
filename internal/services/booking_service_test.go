package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kost-service/internal/mocks"
	"kost-service/internal/models"
	"kost-service/internal/repositories"
	"kost-service/internal/session"
	"kost-service/internal/telemetry"
)

var (
	tenantSession = session.Session{UserID: "t-1", Role: models.RoleTenant}
	ownerSession  = session.Session{UserID: "o-1", Role: models.RoleOwner}
)

const (
	roomA    = "3f1d2c4b-5a69-4877-8a9b-0c1d2e3f4a5b"
	bookingA = "7a6b5c4d-3e2f-4a1b-9c8d-7e6f5a4b3c2d"
)

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newBookingService(rooms *mocks.RoomRepositoryMock, bookings *mocks.BookingRepositoryMock, events *telemetry.EventEmitter) *BookingService {
	svc := NewBookingService(rooms, bookings, events, nil, false)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestQuote(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	svc := newBookingService(rooms, nil, nil)
	rooms.On("GetRoom", mock.Anything, roomA).Return(models.Room{ID: roomA, Price: 1000000}, nil)

	q, err := svc.Quote(context.Background(), roomA, QuoteRequest{CheckIn: mustDate(t, "2024-01-01"), CheckOut: mustDate(t, "2024-02-15")})
	require.NoError(t, err)
	assert.Equal(t, 45, q.Days)
	assert.Equal(t, int64(2), q.Periods)
	assert.Equal(t, int64(2000000), q.Total)

	q, err = svc.Quote(context.Background(), roomA, QuoteRequest{CheckIn: mustDate(t, "2024-02-15"), CheckOut: mustDate(t, "2024-01-01")})
	require.NoError(t, err)
	assert.Zero(t, q.Total)
	assert.Zero(t, q.Days)

	q, err = svc.Quote(context.Background(), roomA, QuoteRequest{CheckIn: mustDate(t, "2024-01-01")})
	require.NoError(t, err)
	assert.Zero(t, q.Total)
}

func TestQuoteRoomNotFound(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	svc := newBookingService(rooms, nil, nil)
	rooms.On("GetRoom", mock.Anything, "missing").Return(nil, repositories.ErrRoomNotFound)

	_, err := svc.Quote(context.Background(), "missing", QuoteRequest{})
	assert.ErrorIs(t, err, repositories.ErrRoomNotFound)
}

func TestCreateBookingStoresBookingAndPendingPayment(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	bookings := new(mocks.BookingRepositoryMock)
	publisher := new(mocks.PublisherMock)
	svc := newBookingService(rooms, bookings, telemetry.NewEventEmitter(publisher, nil, "kost-service"))

	rooms.On("GetRoom", mock.Anything, roomA).Return(models.Room{ID: roomA, Price: 1000000, IsAvailable: true}, nil).Once()
	stored := models.BookingWithPayment{
		Booking: models.Booking{ID: "b-1", RoomID: roomA, UserID: "t-1", TotalPrice: 2000000, Status: models.BookingPending},
		Payment: models.Payment{ID: "p-1", BookingID: "b-1", Amount: 2000000, Status: models.PaymentPending, PaymentMethod: models.PaymentMethodQRIS},
	}
	bookings.On("CreateWithPayment", mock.Anything,
		mock.MatchedBy(func(b models.Booking) bool {
			return b.RoomID == roomA && b.UserID == "t-1" && b.TotalPrice == 2000000 && b.Status == models.BookingPending
		}),
		mock.MatchedBy(func(p models.Payment) bool {
			return p.Amount == 2000000 && p.Status == models.PaymentPending && p.PaymentMethod == models.PaymentMethodQRIS
		}),
		false,
	).Return(stored, nil).Once()
	publisher.On("Publish", mock.Anything, telemetry.EventBookingCreated, mock.AnythingOfType("telemetry.DomainEvent")).Return(nil).Once()

	got, err := svc.CreateBooking(context.Background(), tenantSession, CreateBookingRequest{
		RoomID:   roomA,
		CheckIn:  mustDate(t, "2024-01-01"),
		CheckOut: mustDate(t, "2024-02-15"),
	})
	require.NoError(t, err)
	assert.Equal(t, "b-1", got.Payment.BookingID)
	rooms.AssertExpectations(t)
	bookings.AssertExpectations(t)
	publisher.AssertExpectations(t)
	assert.Equal(t, []string{telemetry.EventBookingCreated}, publisher.RoutingKeys())
}

func TestCreateBookingValidation(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	bookings := new(mocks.BookingRepositoryMock)
	svc := newBookingService(rooms, bookings, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		sess session.Session
		req  CreateBookingRequest
		want error
	}{
		{"owner", ownerSession, CreateBookingRequest{RoomID: roomA, CheckIn: mustDate(t, "2024-01-02"), CheckOut: mustDate(t, "2024-01-05")}, ErrForbidden},
		{"missing dates", tenantSession, CreateBookingRequest{RoomID: roomA}, ErrInvalidInput},
		{"past check-in", tenantSession, CreateBookingRequest{RoomID: roomA, CheckIn: mustDate(t, "2023-12-31"), CheckOut: mustDate(t, "2024-01-05")}, ErrInvalidInput},
		{"same day", tenantSession, CreateBookingRequest{RoomID: roomA, CheckIn: mustDate(t, "2024-01-05"), CheckOut: mustDate(t, "2024-01-05")}, ErrInvalidInput},
		{"inverted", tenantSession, CreateBookingRequest{RoomID: roomA, CheckIn: mustDate(t, "2024-01-05"), CheckOut: mustDate(t, "2024-01-02")}, ErrInvalidInput},
		{"missing room", tenantSession, CreateBookingRequest{CheckIn: mustDate(t, "2024-01-02"), CheckOut: mustDate(t, "2024-01-05")}, ErrInvalidInput},
		{"malformed room id", tenantSession, CreateBookingRequest{RoomID: "not-a-uuid", CheckIn: mustDate(t, "2024-01-02"), CheckOut: mustDate(t, "2024-01-05")}, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBooking(ctx, tc.sess, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	rooms.AssertNotCalled(t, "GetRoom", mock.Anything, mock.Anything)
	bookings.AssertNotCalled(t, "CreateWithPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBookingRejectsUnavailableRoom(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	bookings := new(mocks.BookingRepositoryMock)
	svc := newBookingService(rooms, bookings, nil)
	rooms.On("GetRoom", mock.Anything, roomA).Return(models.Room{ID: roomA, Price: 10, IsAvailable: false}, nil).Once()

	_, err := svc.CreateBooking(context.Background(), tenantSession, CreateBookingRequest{
		RoomID: roomA, CheckIn: mustDate(t, "2024-01-01"), CheckOut: mustDate(t, "2024-01-10"),
	})
	assert.ErrorIs(t, err, ErrRoomUnavailable)
	bookings.AssertNotCalled(t, "CreateWithPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBookingPassesOverlapFlag(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	bookings := new(mocks.BookingRepositoryMock)
	svc := NewBookingService(rooms, bookings, nil, nil, true)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	rooms.On("GetRoom", mock.Anything, roomA).Return(models.Room{ID: roomA, Price: 10, IsAvailable: true}, nil).Once()
	bookings.On("CreateWithPayment", mock.Anything, mock.Anything, mock.Anything, true).
		Return(nil, repositories.ErrBookingOverlap).Once()

	_, err := svc.CreateBooking(context.Background(), tenantSession, CreateBookingRequest{
		RoomID: roomA, CheckIn: mustDate(t, "2024-01-01"), CheckOut: mustDate(t, "2024-01-10"),
	})
	assert.ErrorIs(t, err, repositories.ErrBookingOverlap)
	bookings.AssertExpectations(t)
}

func TestListBookingsScopesByRole(t *testing.T) {
	bookings := new(mocks.BookingRepositoryMock)
	svc := newBookingService(nil, bookings, nil)

	bookings.On("ListBookings", mock.Anything, "", 0).Return([]models.BookingDetail{{}, {}}, nil).Once()
	bookings.On("ListBookings", mock.Anything, "t-1", 0).Return([]models.BookingDetail{}, nil).Once()

	all, err := svc.ListBookings(context.Background(), ownerSession)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.ListBookings(context.Background(), tenantSession)
	require.NoError(t, err)
	assert.Empty(t, own)
	bookings.AssertExpectations(t)
}

func TestSetStatus(t *testing.T) {
	bookings := new(mocks.BookingRepositoryMock)
	svc := newBookingService(nil, bookings, nil)
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, tenantSession, "b-1", models.BookingConfirmed)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SetStatus(ctx, ownerSession, "b-1", models.BookingPaid)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SetStatus(ctx, ownerSession, "b-1", models.BookingStatus("archived"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "unknown status")

	bookings.On("TransitionStatus", mock.Anything, "b-1", models.BookingPaid, models.BookingConfirmed).
		Return(models.Booking{ID: "b-1", Status: models.BookingConfirmed}, nil).Once()
	got, err := svc.SetStatus(ctx, ownerSession, "b-1", models.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)

	bookings.On("TransitionStatus", mock.Anything, "b-2", models.BookingPaid, models.BookingCancelled).
		Return(nil, repositories.ErrInvalidTransition).Once()
	_, err = svc.SetStatus(ctx, ownerSession, "b-2", models.BookingCancelled)
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)

	bookings.AssertExpectations(t)
}
