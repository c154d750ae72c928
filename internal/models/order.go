package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is a user's lunch order at a restaurant. One active order per
// (user, restaurant); writes are upserts keyed on that pair.
type Order struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	OrderDetails string    `json:"order_details"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OrderWithUser is an order joined with the ordering user, for the admin
// per-restaurant view.
type OrderWithUser struct {
	Order
	User UserPublic `json:"user"`
}

// OrderWithRestaurant is an order joined with its restaurant, for the
// admin per-user report.
type OrderWithRestaurant struct {
	Order
	Restaurant Restaurant `json:"restaurant"`
}
