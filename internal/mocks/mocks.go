package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kost-service/internal/models"
	"kost-service/internal/repositories"
)

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) CreateProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	args := m.Called(ctx, profile)
	var out models.Profile
	if val := args.Get(0); val != nil {
		out = val.(models.Profile)
	}
	return out, args.Error(1)
}

func (m *ProfileRepositoryMock) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	args := m.Called(ctx, id)
	var out models.Profile
	if val := args.Get(0); val != nil {
		out = val.(models.Profile)
	}
	return out, args.Error(1)
}

func (m *ProfileRepositoryMock) GetProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	args := m.Called(ctx, email)
	var out models.Profile
	if val := args.Get(0); val != nil {
		out = val.(models.Profile)
	}
	return out, args.Error(1)
}

func (m *ProfileRepositoryMock) ListProfilesByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	args := m.Called(ctx, role)
	var out []models.Profile
	if val := args.Get(0); val != nil {
		out = val.([]models.Profile)
	}
	return out, args.Error(1)
}

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) ListRooms(ctx context.Context) ([]models.Room, error) {
	args := m.Called(ctx)
	var out []models.Room
	if val := args.Get(0); val != nil {
		out = val.([]models.Room)
	}
	return out, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, id string) (models.Room, error) {
	args := m.Called(ctx, id)
	var out models.Room
	if val := args.Get(0); val != nil {
		out = val.(models.Room)
	}
	return out, args.Error(1)
}

func (m *RoomRepositoryMock) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	args := m.Called(ctx, room)
	var out models.Room
	if val := args.Get(0); val != nil {
		out = val.(models.Room)
	}
	return out, args.Error(1)
}

func (m *RoomRepositoryMock) ToggleAvailability(ctx context.Context, id string) (models.Room, error) {
	args := m.Called(ctx, id)
	var out models.Room
	if val := args.Get(0); val != nil {
		out = val.(models.Room)
	}
	return out, args.Error(1)
}

func (m *RoomRepositoryMock) SetAvailability(ctx context.Context, id string, available bool) (models.Room, error) {
	args := m.Called(ctx, id, available)
	var out models.Room
	if val := args.Get(0); val != nil {
		out = val.(models.Room)
	}
	return out, args.Error(1)
}

type BookingRepositoryMock struct {
	mock.Mock
}

func (m *BookingRepositoryMock) CreateWithPayment(ctx context.Context, booking models.Booking, payment models.Payment, rejectOverlap bool) (models.BookingWithPayment, error) {
	args := m.Called(ctx, booking, payment, rejectOverlap)
	var out models.BookingWithPayment
	if val := args.Get(0); val != nil {
		out = val.(models.BookingWithPayment)
	}
	return out, args.Error(1)
}

func (m *BookingRepositoryMock) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	args := m.Called(ctx, id)
	var out models.Booking
	if val := args.Get(0); val != nil {
		out = val.(models.Booking)
	}
	return out, args.Error(1)
}

func (m *BookingRepositoryMock) ListBookings(ctx context.Context, userID string, limit int) ([]models.BookingDetail, error) {
	args := m.Called(ctx, userID, limit)
	var out []models.BookingDetail
	if val := args.Get(0); val != nil {
		out = val.([]models.BookingDetail)
	}
	return out, args.Error(1)
}

func (m *BookingRepositoryMock) TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus) (models.Booking, error) {
	args := m.Called(ctx, id, from, to)
	var out models.Booking
	if val := args.Get(0); val != nil {
		out = val.(models.Booking)
	}
	return out, args.Error(1)
}

type PaymentRepositoryMock struct {
	mock.Mock
}

func (m *PaymentRepositoryMock) GetPaymentByBooking(ctx context.Context, bookingID string) (models.Payment, error) {
	args := m.Called(ctx, bookingID)
	var out models.Payment
	if val := args.Get(0); val != nil {
		out = val.(models.Payment)
	}
	return out, args.Error(1)
}

func (m *PaymentRepositoryMock) SettlePayment(ctx context.Context, bookingID string, status models.PaymentStatus, transactionID string) (models.Payment, error) {
	args := m.Called(ctx, bookingID, status, transactionID)
	var out models.Payment
	if val := args.Get(0); val != nil {
		out = val.(models.Payment)
	}
	return out, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	args := m.Called(ctx, msg)
	var out models.ChatMessage
	if val := args.Get(0); val != nil {
		out = val.(models.ChatMessage)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) ListConversation(ctx context.Context, userID, contactID string) ([]models.ChatMessage, error) {
	args := m.Called(ctx, userID, contactID)
	var out []models.ChatMessage
	if val := args.Get(0); val != nil {
		out = val.([]models.ChatMessage)
	}
	return out, args.Error(1)
}

var _ repositories.ProfileRepository = (*ProfileRepositoryMock)(nil)
var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.BookingRepository = (*BookingRepositoryMock)(nil)
var _ repositories.PaymentRepository = (*PaymentRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
