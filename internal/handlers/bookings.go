package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kost-service/internal/models"
	"kost-service/internal/services"
	"kost-service/internal/telemetry"
)

// BookingHandler exposes the booking flow and the booking list.
type BookingHandler struct {
	bookings *services.BookingService
	payments *services.PaymentService
	audit    *telemetry.AuditEmitter
	logger   *zap.Logger
}

// NewBookingHandler builds a BookingHandler.
func NewBookingHandler(bookings *services.BookingService, payments *services.PaymentService, audit *telemetry.AuditEmitter, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, payments: payments, audit: audit, logger: orNop(logger)}
}

// CreateBooking books a room for the authenticated tenant and opens its payment.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bookings.CreateBooking(c.Request.Context(), sess, req)
	if err != nil {
		respondError(c, h.logger, err, "could not create booking")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListBookings returns all bookings to owners and their own to tenants, newest first.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	bookings, err := h.bookings.ListBookings(c.Request.Context(), sess)
	if err != nil {
		respondError(c, h.logger, err, "failed to load bookings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// UpdateStatus confirms or cancels a paid booking.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	bookingID, ok := idParam(c, "booking_id", "booking")
	if !ok {
		return
	}
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req struct {
		Status models.BookingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookings.SetStatus(c.Request.Context(), sess, bookingID, req.Status)
	if err != nil {
		respondError(c, h.logger, err, "could not update booking")
		return
	}

	audit(c, h.audit, "booking.status", "booking status changed", map[string]string{
		"booking_id": booking.ID,
		"status":     string(booking.Status),
	})
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// GetPayment returns the payment of a booking to its tenant or an owner.
func (h *BookingHandler) GetPayment(c *gin.Context) {
	bookingID, ok := idParam(c, "booking_id", "booking")
	if !ok {
		return
	}
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	payment, err := h.payments.PaymentForBooking(c.Request.Context(), sess, bookingID)
	if err != nil {
		respondError(c, h.logger, err, "failed to load payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}
