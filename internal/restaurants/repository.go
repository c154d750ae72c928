package restaurants

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/office-lunch/backend/internal/models"
)

// ErrNotFound is returned when a restaurant does not exist.
var ErrNotFound = errors.New("restaurant not found")

// Repository handles restaurant persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a restaurants repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByOrg returns the organization's restaurant catalog.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Restaurant, error) {
	const q = `SELECT id, organization_id, name, menu_link, created_at, updated_at
		FROM restaurants WHERE organization_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Restaurant
	for rows.Next() {
		var rt models.Restaurant
		if err := rows.Scan(&rt.ID, &rt.OrganizationID, &rt.Name, &rt.MenuLink, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, rt)
	}
	return list, rows.Err()
}

// GetByID returns a restaurant by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	const q = `SELECT id, organization_id, name, menu_link, created_at, updated_at
		FROM restaurants WHERE id = $1`
	var rt models.Restaurant
	err := r.pool.QueryRow(ctx, q, id).Scan(&rt.ID, &rt.OrganizationID, &rt.Name, &rt.MenuLink, &rt.CreatedAt, &rt.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// Create inserts a restaurant into the organization's catalog.
func (r *Repository) Create(ctx context.Context, rt *models.Restaurant) error {
	const q = `INSERT INTO restaurants (id, organization_id, name, menu_link)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, rt.OrganizationID, rt.Name, rt.MenuLink).
		Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt)
}

// Update replaces name and menu link.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, menuLink string) (bool, error) {
	const q = `UPDATE restaurants SET name = $1, menu_link = $2, updated_at = NOW() WHERE id = $3`
	tag, err := r.pool.Exec(ctx, q, name, menuLink, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a restaurant; its orders cascade with it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `DELETE FROM restaurants WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
