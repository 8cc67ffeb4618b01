package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kost-service/internal/auth"
	"kost-service/internal/mocks"
	"kost-service/internal/models"
	"kost-service/internal/repositories"
	"kost-service/internal/services"
)

func TestSignUpAndMe(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	handler := NewAuthHandler(services.NewAuthService(profiles, auth.NewTokenIssuer("secret", time.Hour), nil), nil)

	open := newTestRouter(nil)
	open.POST("/auth/signup", handler.SignUp)
	authed := newTestRouter(&tenantSession)
	authed.GET("/me", handler.Me)

	profiles.On("CreateProfile", mock.Anything, mock.Anything).
		Return(models.Profile{ID: tenantID, Email: "sari@example.com", Role: models.RoleTenant}, nil).Once()
	profiles.On("GetProfile", mock.Anything, tenantID).
		Return(models.Profile{ID: tenantID, Email: "sari@example.com", PasswordHash: "hidden", Role: models.RoleTenant}, nil).Once()

	rec := perform(open, http.MethodPost, "/auth/signup", `{"email":"sari@example.com","password":"rahasia1","full_name":"Sari","role":"tenant"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["token"])

	rec = perform(authed, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hidden")
	profiles.AssertExpectations(t)
}

func TestSignUpErrors(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	handler := NewAuthHandler(services.NewAuthService(profiles, auth.NewTokenIssuer("secret", time.Hour), nil), nil)
	r := newTestRouter(nil)
	r.POST("/auth/signup", handler.SignUp)

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodPost, "/auth/signup", `{"email":"not-an-email","password":"rahasia1","full_name":"A","role":"tenant"}`).Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodPost, "/auth/signup", `{"email":"a@b.co","password":"rahasia1","full_name":"A","role":"admin"}`).Code)

	profiles.On("CreateProfile", mock.Anything, mock.Anything).Return(nil, repositories.ErrEmailTaken).Once()
	assert.Equal(t, http.StatusConflict, perform(r, http.MethodPost, "/auth/signup", `{"email":"a@b.co","password":"rahasia1","full_name":"A","role":"owner"}`).Code)
}

func TestSignInWrongPassword(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	handler := NewAuthHandler(services.NewAuthService(profiles, auth.NewTokenIssuer("secret", time.Hour), nil), nil)
	r := newTestRouter(nil)
	r.POST("/auth/signin", handler.SignIn)

	hash, err := auth.HashPassword("rahasia1")
	require.NoError(t, err)
	profiles.On("GetProfileByEmail", mock.Anything, "o@example.com").Return(models.Profile{ID: ownerID, Role: models.RoleOwner, PasswordHash: hash}, nil)

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/auth/signin", `{"email":"o@example.com","password":"salah"}`).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/auth/signin", `{"email":"o@example.com","password":"rahasia1"}`).Code)
}
