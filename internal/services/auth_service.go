package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kost-service/internal/auth"
	"kost-service/internal/models"
	"kost-service/internal/repositories"
)

const minPasswordLength = 6

// SignUpRequest carries the fields of a new profile.
type SignUpRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	FullName string      `json:"full_name" binding:"required"`
	Phone    string      `json:"phone"`
	Role     models.Role `json:"role" binding:"required"`
}

// SignInRequest carries credentials.
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	Profile models.Profile `json:"profile"`
	Token   string         `json:"token"`
}

// AuthService provides sessions for profiles.
type AuthService struct {
	profiles repositories.ProfileRepository
	issuer   *auth.TokenIssuer
	logger   *zap.Logger
}

func NewAuthService(profiles repositories.ProfileRepository, issuer *auth.TokenIssuer, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{profiles: profiles, issuer: issuer, logger: logger}
}

// SignUp creates a profile with the requested role and returns a session token.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (AuthResult, error) {
	if !req.Role.Valid() {
		return AuthResult{}, fmt.Errorf("%w: role must be tenant or owner", ErrInvalidInput)
	}
	if len(req.Password) < minPasswordLength {
		return AuthResult{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return AuthResult{}, fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return AuthResult{}, err
	}
	profile, err := s.profiles.CreateProfile(ctx, models.Profile{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     fullName,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         req.Role,
	})
	if err != nil {
		return AuthResult{}, err
	}
	s.logger.Info("profile created", zap.String("profile_id", profile.ID), zap.String("role", string(profile.Role)))
	return s.issue(profile)
}

// SignIn verifies credentials and returns a session token.
func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (AuthResult, error) {
	profile, err := s.profiles.GetProfileByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrProfileNotFound) {
		return AuthResult{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, err
	}
	if err := auth.CheckPassword(profile.PasswordHash, req.Password); err != nil {
		return AuthResult{}, err
	}
	return s.issue(profile)
}

// Me returns the profile behind a session.
func (s *AuthService) Me(ctx context.Context, profileID string) (models.Profile, error) {
	return s.profiles.GetProfile(ctx, profileID)
}

func (s *AuthService) issue(profile models.Profile) (AuthResult, error) {
	token, err := s.issuer.Issue(profile)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Profile: profile, Token: token}, nil
}
