package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kost-service/internal/services"
)

// AuthHandler serves sign-up, sign-in and the current profile.
type AuthHandler struct {
	svc    *services.AuthService
	logger *zap.Logger
}

func NewAuthHandler(svc *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: orNop(logger)}
}

// SignUp creates a profile and returns it with a session token.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req services.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "could not create profile")
		return
	}
	c.JSON(http.StatusCreated, res)
}

// SignIn exchanges credentials for a session token.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req services.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.svc.SignIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "could not sign in")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Me returns the authenticated profile.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	profile, err := h.svc.Me(c.Request.Context(), sess.UserID)
	if err != nil {
		respondError(c, h.logger, err, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
