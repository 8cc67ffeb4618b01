package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kost-service/internal/auth"
	"kost-service/internal/repositories"
	"kost-service/internal/services"
	"kost-service/internal/session"
)

// errorStatus maps domain errors to HTTP statuses. Unknown errors are internal.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repositories.ErrProfileNotFound),
		errors.Is(err, repositories.ErrRoomNotFound),
		errors.Is(err, repositories.ErrBookingNotFound),
		errors.Is(err, repositories.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, repositories.ErrEmailTaken),
		errors.Is(err, repositories.ErrInvalidTransition),
		errors.Is(err, repositories.ErrBookingOverlap),
		errors.Is(err, repositories.ErrPaymentSettled),
		errors.Is(err, services.ErrRoomUnavailable):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Internal errors are logged and replaced by fallback.
func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback,
			zap.String("route", c.FullPath()),
			zap.String("request_id", requestIDFromContext(c)),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// idParam reads a UUID path parameter, answering 400 when it is malformed.
func idParam(c *gin.Context, name, label string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + label + " id"})
		return "", false
	}
	return id, true
}

func currentSession(c *gin.Context) (session.Session, bool) {
	s, ok := session.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return s, ok
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
