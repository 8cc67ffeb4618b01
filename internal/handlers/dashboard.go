package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kost-service/internal/services"
)

type DashboardHandler struct {
	svc    *services.DashboardService
	logger *zap.Logger
}

func NewDashboardHandler(svc *services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: orNop(logger)}
}

// Dashboard returns the owner overview.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
