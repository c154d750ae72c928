package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a cookie-backed login session issued by the upstream auth
// layer. ActiveOrganizationID disambiguates which organization a
// multi-org user is currently viewing; it must always reference an org
// the user is a member of (checked on every switch).
type Session struct {
	ID                   uuid.UUID  `json:"id"`
	Token                string     `json:"-"`
	UserID               uuid.UUID  `json:"user_id"`
	ActiveOrganizationID *uuid.UUID `json:"active_organization_id,omitempty"`
	ExpiresAt            time.Time  `json:"expires_at"`
	IPAddress            string     `json:"ip_address,omitempty"`
	UserAgent            string     `json:"user_agent,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
