package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"kost-service/internal/models"
)

const profileColumns = `id, email, password_hash, full_name, phone, role, avatar_url, created_at`

// ProfileRepository abstracts profile persistence.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile models.Profile) (models.Profile, error)
	GetProfile(ctx context.Context, id string) (models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (models.Profile, error)
	ListProfilesByRole(ctx context.Context, role models.Role) ([]models.Profile, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// CreateProfile inserts a profile. Emails are stored lower-cased.
func (r *ProfileRepo) CreateProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))

	var created models.Profile
	err := r.db.QueryRowxContext(ctx, `INSERT INTO profiles (id, email, password_hash, full_name, phone, role, avatar_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+profileColumns,
		profile.ID, profile.Email, profile.PasswordHash, profile.FullName, profile.Phone, profile.Role, profile.AvatarURL).
		StructScan(&created)
	if isUniqueViolation(err) {
		return models.Profile{}, ErrEmailTaken
	}
	return created, err
}

// GetProfile fetches a profile by id.
func (r *ProfileRepo) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// GetProfileByEmail fetches a profile by its (case-insensitive) email.
func (r *ProfileRepo) GetProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM profiles WHERE email=$1`, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// ListProfilesByRole returns every profile with the given role ordered by name.
func (r *ProfileRepo) ListProfilesByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	profiles := []models.Profile{}
	err := r.db.SelectContext(ctx, &profiles, `SELECT `+profileColumns+` FROM profiles WHERE role=$1 ORDER BY full_name ASC, created_at ASC`, role)
	return profiles, err
}
