package models

import "time"

// Role is the party a profile acts as.
type Role string

const (
	RoleTenant Role = "tenant"
	RoleOwner  Role = "owner"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleTenant || r == RoleOwner
}

// Counterpart returns the role a profile of role r chats with.
func (r Role) Counterpart() Role {
	if r == RoleOwner {
		return RoleTenant
	}
	return RoleOwner
}

// Profile is an authenticated party of the system. Role never changes after sign-up.
type Profile struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Phone        string    `db:"phone" json:"phone"`
	Role         Role      `db:"role" json:"role"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
