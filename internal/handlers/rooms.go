package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kost-service/internal/models"
	"kost-service/internal/repositories"
	"kost-service/internal/services"
	"kost-service/internal/telemetry"
)

// RoomHandler manages the room catalog.
type RoomHandler struct {
	rooms    repositories.RoomRepository
	bookings *services.BookingService
	events   *telemetry.EventEmitter
	audit    *telemetry.AuditEmitter
	logger   *zap.Logger
}

// NewRoomHandler builds a RoomHandler.
func NewRoomHandler(rooms repositories.RoomRepository, bookings *services.BookingService, events *telemetry.EventEmitter, audit *telemetry.AuditEmitter, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, bookings: bookings, events: events, audit: audit, logger: orNop(logger)}
}

// ListRooms returns every room ordered by name.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "failed to load rooms")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoom returns one room.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, ok := idParam(c, "room_id", "room")
	if !ok {
		return
	}
	room, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, h.logger, err, "failed to load room")
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

// CreateRoom lists a new room. Rooms are available unless stated otherwise.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req models.NewRoom
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	room, err := h.rooms.CreateRoom(c.Request.Context(), models.Room{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Facilities:  req.Facilities,
		ImageURL:    req.ImageURL,
		Size:        req.Size,
		IsAvailable: available,
	})
	if err != nil {
		respondError(c, h.logger, err, "could not create room")
		return
	}

	audit(c, h.audit, "room.create", "room created", map[string]string{"room_id": room.ID, "name": room.Name})
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// SetAvailability toggles a room's availability, or sets it when the body names a value.
func (h *RoomHandler) SetAvailability(c *gin.Context) {
	roomID, ok := idParam(c, "room_id", "room")
	if !ok {
		return
	}

	var req struct {
		IsAvailable *bool `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		room models.Room
		err  error
	)
	if req.IsAvailable != nil {
		room, err = h.rooms.SetAvailability(c.Request.Context(), roomID, *req.IsAvailable)
	} else {
		room, err = h.rooms.ToggleAvailability(c.Request.Context(), roomID)
	}
	if err != nil {
		respondError(c, h.logger, err, "could not update room")
		return
	}

	h.events.Emit(c.Request.Context(), telemetry.EventRoomAvailabilityChanged, map[string]any{
		"room_id":      room.ID,
		"is_available": room.IsAvailable,
	})
	audit(c, h.audit, "room.availability", "room availability changed", map[string]string{
		"room_id":      room.ID,
		"is_available": strconv.FormatBool(room.IsAvailable),
	})
	c.JSON(http.StatusOK, gin.H{"room": room})
}

// Quote prices a stay in a room without booking it.
func (h *RoomHandler) Quote(c *gin.Context) {
	roomID, ok := idParam(c, "room_id", "room")
	if !ok {
		return
	}
	var req services.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.bookings.Quote(c.Request.Context(), roomID, req)
	if err != nil {
		respondError(c, h.logger, err, "failed to price stay")
		return
	}
	c.JSON(http.StatusOK, quote)
}
