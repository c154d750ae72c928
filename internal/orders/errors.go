package orders

import "errors"

var (
	ErrEmptyDetails       = errors.New("order details required")
	ErrNotFound           = errors.New("order not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	// ErrWrongOrganization blocks writes against restaurants outside the
	// caller's active organization.
	ErrWrongOrganization = errors.New("restaurant is not in your organization")
	// ErrDuplicate is the domain translation of a unique violation.
	ErrDuplicate = errors.New("user already has an order for this restaurant")
)
