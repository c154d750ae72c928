package models

import (
	"time"

	"github.com/google/uuid"
)

// Restaurant is a catalog entry scoped to one organization. Deleting the
// organization or the restaurant cascades to its orders.
type Restaurant struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	MenuLink       string    `json:"menu_link"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
