package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant. Users join via member rows; a
// configured work email domain auto-joins matching users on sign-in.
type Organization struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Logo            string    `json:"logo,omitempty"`
	WorkEmailDomain string    `json:"work_email_domain,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Organization membership roles.
const (
	OrgRoleOwner  = "owner"
	OrgRoleAdmin  = "admin"
	OrgRoleMember = "member"
)

// Member links a user to an organization with a role. Unique per
// (user_id, organization_id); inserts use ON CONFLICT DO NOTHING so
// concurrent auto-joins stay idempotent.
type Member struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	UserID         uuid.UUID `json:"user_id"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// OrganizationWithRole is an organization joined with the caller's
// membership role, for GET /api/organizations.
type OrganizationWithRole struct {
	Organization
	MemberRole string `json:"member_role"`
}
