package models

import (
	"time"

	"github.com/google/uuid"
)

// OptIn records that a user is in for the daily lunch run of one
// organization on one date. Presence of a row means opted in; absence
// means opted out. Scoping per organization lets a user in two orgs
// answer independently for each. Unique per (user, org, date).
type OptIn struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	OptInDate      string    `json:"opt_in_date"` // YYYY-MM-DD
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OptInUser is an opted-in user row for the admin attendance report.
type OptInUser struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	OrganizationID uuid.UUID `json:"organization_id"`
	OptedInAt      time.Time `json:"opted_in_at"`
}
