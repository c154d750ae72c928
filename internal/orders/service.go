package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/office-lunch/backend/internal/models"
)

// Store is the persistence surface the service needs. Implemented by
// Repository; faked in tests.
type Store interface {
	ListForUser(ctx context.Context, userID uuid.UUID, restaurantID *uuid.UUID) ([]models.Order, error)
	Upsert(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, details string) (bool, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	GetRestaurantOrg(ctx context.Context, restaurantID uuid.UUID) (uuid.UUID, error)
	ListForRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.OrderWithUser, error)
	ListForUserWithRestaurants(ctx context.Context, userID uuid.UUID) ([]models.OrderWithRestaurant, error)
}

// Service implements lunch order placement. One order per
// (user, restaurant); repeated placement replaces the details via a
// single upsert, so concurrent submits cannot race into two rows.
type Service struct {
	store Store
}

// NewService creates an order service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListForUser returns the user's own orders, optionally filtered to one
// restaurant.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, restaurantID *uuid.UUID) ([]models.Order, error) {
	return s.store.ListForUser(ctx, userID, restaurantID)
}

// Upsert places or replaces the user's order for a restaurant in their
// active organization. Restaurants outside the organization are not
// visible to the caller and are rejected.
func (s *Service) Upsert(ctx context.Context, userID, activeOrgID, restaurantID uuid.UUID, details string) (*models.Order, error) {
	details = strings.TrimSpace(details)
	if details == "" {
		return nil, ErrEmptyDetails
	}
	if err := s.checkRestaurantOrg(ctx, restaurantID, activeOrgID); err != nil {
		return nil, err
	}
	o := &models.Order{UserID: userID, RestaurantID: restaurantID, OrderDetails: details}
	if err := s.store.Upsert(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Delete removes the user's order for a restaurant.
func (s *Service) Delete(ctx context.Context, userID, restaurantID uuid.UUID) error {
	deleted, err := s.store.Delete(ctx, userID, restaurantID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// UpsertForUser places an order on another user's behalf. The target
// restaurant must belong to the acting admin's active organization;
// anything else would let an admin inject orders into a foreign tenant.
func (s *Service) UpsertForUser(ctx context.Context, activeOrgID, targetUserID, restaurantID uuid.UUID, details string) (*models.Order, error) {
	details = strings.TrimSpace(details)
	if details == "" {
		return nil, ErrEmptyDetails
	}
	if err := s.checkRestaurantOrg(ctx, restaurantID, activeOrgID); err != nil {
		return nil, err
	}
	o := &models.Order{UserID: targetUserID, RestaurantID: restaurantID, OrderDetails: details}
	if err := s.store.Upsert(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ListForRestaurant returns a restaurant's orders with their users, for
// the admin per-restaurant view. Organization-checked like the writes.
func (s *Service) ListForRestaurant(ctx context.Context, activeOrgID, restaurantID uuid.UUID) ([]models.OrderWithUser, error) {
	if err := s.checkRestaurantOrg(ctx, restaurantID, activeOrgID); err != nil {
		return nil, err
	}
	return s.store.ListForRestaurant(ctx, restaurantID)
}

// ListForUserWithRestaurants returns one user's orders joined with
// restaurant info, for the admin user-orders report.
func (s *Service) ListForUserWithRestaurants(ctx context.Context, userID uuid.UUID) ([]models.OrderWithRestaurant, error) {
	return s.store.ListForUserWithRestaurants(ctx, userID)
}

// UpdateByID replaces an order's details by order ID. The order's
// restaurant must belong to the admin's active organization.
func (s *Service) UpdateByID(ctx context.Context, activeOrgID, orderID uuid.UUID, details string) error {
	details = strings.TrimSpace(details)
	if details == "" {
		return ErrEmptyDetails
	}
	if err := s.checkOrderOrg(ctx, orderID, activeOrgID); err != nil {
		return err
	}
	updated, err := s.store.UpdateDetails(ctx, orderID, details)
	if err != nil {
		return err
	}
	if !updated {
		return ErrNotFound
	}
	return nil
}

// DeleteByID removes an order by ID, organization-checked.
func (s *Service) DeleteByID(ctx context.Context, activeOrgID, orderID uuid.UUID) error {
	if err := s.checkOrderOrg(ctx, orderID, activeOrgID); err != nil {
		return err
	}
	deleted, err := s.store.DeleteByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *Service) checkOrderOrg(ctx context.Context, orderID, activeOrgID uuid.UUID) error {
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	return s.checkRestaurantOrg(ctx, o.RestaurantID, activeOrgID)
}

func (s *Service) checkRestaurantOrg(ctx context.Context, restaurantID, activeOrgID uuid.UUID) error {
	orgID, err := s.store.GetRestaurantOrg(ctx, restaurantID)
	if err != nil {
		return err
	}
	if orgID != activeOrgID {
		return ErrWrongOrganization
	}
	return nil
}
