package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kost-service/internal/models"
	"kost-service/internal/services"
	"kost-service/internal/telemetry"
)

// PaymentHandler accepts payment confirmations from the settlement side.
type PaymentHandler struct {
	payments *services.PaymentService
	audit    *telemetry.AuditEmitter
	logger   *zap.Logger
}

func NewPaymentHandler(payments *services.PaymentService, audit *telemetry.AuditEmitter, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, audit: audit, logger: orNop(logger)}
}

// Confirm applies a payment confirmation event delivered over HTTP.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req models.PaymentConfirmation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.payments.Confirm(c.Request.Context(), req, services.SourceWebhook)
	if err != nil {
		respondError(c, h.logger, err, "could not apply confirmation")
		return
	}

	audit(c, h.audit, "payment.confirm", "payment confirmation applied", map[string]string{
		"booking_id": payment.BookingID,
		"status":     string(payment.Status),
	})
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}
