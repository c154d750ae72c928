package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the platform-wide user role. It is an independent authorization
// axis from organization membership roles: system admins manage the
// platform across tenants, org admins manage a single organization.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents a platform user. Users are created on first social
// sign-in (upstream auth layer) or provisioned by an admin; they are
// soft-disabled via the ban fields, never hard-deleted here.
type User struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       Role       `json:"role"`
	Banned     bool       `json:"banned"`
	BanReason  string     `json:"ban_reason,omitempty"`
	BanExpires *time.Time `json:"ban_expires,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// UserPublic is User without ban bookkeeping for API responses.
type UserPublic struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// BanActive reports whether the user is currently banned. A ban with an
// expiry in the past lets the user through; the ban row itself is left
// stale until an explicit unban.
func (u *User) BanActive(now time.Time) bool {
	if !u.Banned {
		return false
	}
	if u.BanExpires == nil {
		return true // permanent
	}
	return u.BanExpires.After(now)
}
