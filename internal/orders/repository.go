package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/office-lunch/backend/internal/models"
)

// Repository handles order persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an orders repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListForUser returns the user's orders, optionally for one restaurant.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, restaurantID *uuid.UUID) ([]models.Order, error) {
	const q = `SELECT id, user_id, restaurant_id, order_details, created_at, updated_at
		FROM orders
		WHERE user_id = $1 AND ($2::uuid IS NULL OR restaurant_id = $2)
		ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, userID, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.RestaurantID, &o.OrderDetails, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// Upsert inserts the order or replaces the details of the existing
// (user, restaurant) row. The single statement makes concurrent submits
// converge on one row without an existence-check race.
func (r *Repository) Upsert(ctx context.Context, o *models.Order) error {
	const q = `INSERT INTO orders (id, user_id, restaurant_id, order_details)
		VALUES (gen_random_uuid(), $1, $2, $3)
		ON CONFLICT (user_id, restaurant_id)
		DO UPDATE SET order_details = EXCLUDED.order_details, updated_at = NOW()
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, o.UserID, o.RestaurantID, o.OrderDetails).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	return translateUnique(err)
}

// Delete removes the user's order for a restaurant.
func (r *Repository) Delete(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	const q = `DELETE FROM orders WHERE user_id = $1 AND restaurant_id = $2`
	tag, err := r.pool.Exec(ctx, q, userID, restaurantID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetByID returns an order by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	const q = `SELECT id, user_id, restaurant_id, order_details, created_at, updated_at
		FROM orders WHERE id = $1`
	var o models.Order
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.UserID, &o.RestaurantID, &o.OrderDetails, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateDetails replaces an order's details by ID.
func (r *Repository) UpdateDetails(ctx context.Context, id uuid.UUID, details string) (bool, error) {
	const q = `UPDATE orders SET order_details = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.pool.Exec(ctx, q, details, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByID removes an order by ID.
func (r *Repository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `DELETE FROM orders WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetRestaurantOrg returns the owning organization of a restaurant.
func (r *Repository) GetRestaurantOrg(ctx context.Context, restaurantID uuid.UUID) (uuid.UUID, error) {
	const q = `SELECT organization_id FROM restaurants WHERE id = $1`
	var orgID uuid.UUID
	err := r.pool.QueryRow(ctx, q, restaurantID).Scan(&orgID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrRestaurantNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return orgID, nil
}

// ListForRestaurant returns a restaurant's orders joined with users.
func (r *Repository) ListForRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.OrderWithUser, error) {
	const q = `SELECT o.id, o.user_id, o.restaurant_id, o.order_details, o.created_at, o.updated_at,
			u.id, u.email, u.name, u.role, u.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.restaurant_id = $1
		ORDER BY o.created_at`
	rows, err := r.pool.Query(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.OrderWithUser
	for rows.Next() {
		var o models.OrderWithUser
		if err := rows.Scan(&o.ID, &o.UserID, &o.RestaurantID, &o.OrderDetails, &o.CreatedAt, &o.UpdatedAt,
			&o.User.ID, &o.User.Email, &o.User.Name, &o.User.Role, &o.User.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// ListForUserWithRestaurants returns one user's orders joined with
// restaurant info.
func (r *Repository) ListForUserWithRestaurants(ctx context.Context, userID uuid.UUID) ([]models.OrderWithRestaurant, error) {
	const q = `SELECT o.id, o.user_id, o.restaurant_id, o.order_details, o.created_at, o.updated_at,
			rt.id, rt.organization_id, rt.name, rt.menu_link, rt.created_at, rt.updated_at
		FROM orders o
		JOIN restaurants rt ON rt.id = o.restaurant_id
		WHERE o.user_id = $1
		ORDER BY o.created_at`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.OrderWithRestaurant
	for rows.Next() {
		var o models.OrderWithRestaurant
		if err := rows.Scan(&o.ID, &o.UserID, &o.RestaurantID, &o.OrderDetails, &o.CreatedAt, &o.UpdatedAt,
			&o.Restaurant.ID, &o.Restaurant.OrganizationID, &o.Restaurant.Name, &o.Restaurant.MenuLink,
			&o.Restaurant.CreatedAt, &o.Restaurant.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// translateUnique maps a unique violation onto the domain error so raw
// constraint names never leak to callers.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
