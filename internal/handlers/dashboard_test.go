package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kost-service/internal/mocks"
	"kost-service/internal/models"
	"kost-service/internal/services"
	"kost-service/internal/telemetry"
)

func TestDashboardEndpoint(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	bookings := new(mocks.BookingRepositoryMock)
	handler := NewDashboardHandler(services.NewDashboardService(rooms, bookings, 5), nil)
	r := newTestRouter(&ownerSession)
	r.GET("/dashboard", handler.Dashboard)

	rooms.On("ListRooms", mock.Anything).Return([]models.Room{{ID: roomID, IsAvailable: true}}, nil).Once()
	bookings.On("ListBookings", mock.Anything, "", 5).Return([]models.BookingDetail{{Booking: models.Booking{TotalPrice: 900}}}, nil).Once()

	rec := perform(r, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["total_rooms"])
	assert.Equal(t, float64(900), stats["revenue"])
	assert.Equal(t, float64(5), stats["recent_limit"])
}

func TestDebugRoutesDisabled(t *testing.T) {
	r := newTestRouter(nil)
	RegisterDebugRoutes(r, nil, nil, false)
	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/debug/audit-test", "").Code)
	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/debug/event-test", "").Code)

	r = newTestRouter(nil)
	RegisterDebugRoutes(r, nil, nil, true)
	assert.Equal(t, http.StatusServiceUnavailable, perform(r, http.MethodGet, "/debug/audit-test", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, perform(r, http.MethodGet, "/debug/event-test", "").Code)
}

func TestDebugEventRoutePublishes(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	publisher.On("Publish", mock.Anything, debugEventName, mock.AnythingOfType("telemetry.DomainEvent")).Return(nil).Once()

	r := newTestRouter(nil)
	RegisterDebugRoutes(r, nil, telemetry.NewEventEmitter(publisher, nil, "kost-service"), true)

	rec := perform(r, http.MethodGet, "/debug/event-test", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, debugEventName, body["event"])
	assert.NotEmpty(t, body["request_id"])
	publisher.AssertExpectations(t)
}
