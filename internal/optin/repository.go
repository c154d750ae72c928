package optin

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/office-lunch/backend/internal/models"
)

// Repository handles opt-in persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an opt-in repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListOrgIDsForUser returns the IDs of every organization the user
// belongs to.
func (r *Repository) ListOrgIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT organization_id FROM members WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Insert records an opt-in for one organization and date. Returns false
// when the row already existed; concurrent duplicates resolve to a
// single row via the unique constraint.
func (r *Repository) Insert(ctx context.Context, userID, orgID uuid.UUID, date string) (bool, error) {
	const q = `INSERT INTO opt_ins (id, user_id, organization_id, opt_in_date)
		VALUES (gen_random_uuid(), $1, $2, $3)
		ON CONFLICT (user_id, organization_id, opt_in_date) DO NOTHING`
	tag, err := r.pool.Exec(ctx, q, userID, orgID, date)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteForDate removes the user's opt-in rows for a date across all
// organizations, returning how many were removed.
func (r *Repository) DeleteForDate(ctx context.Context, userID uuid.UUID, date string) (int, error) {
	const q = `DELETE FROM opt_ins WHERE user_id = $1 AND opt_in_date = $2`
	tag, err := r.pool.Exec(ctx, q, userID, date)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// GetStatus returns the opt-in row for (user, org, date), or nil when
// the user is not opted in.
func (r *Repository) GetStatus(ctx context.Context, userID, orgID uuid.UUID, date string) (*models.OptIn, error) {
	const q = `SELECT id, user_id, organization_id, opt_in_date, created_at, updated_at
		FROM opt_ins WHERE user_id = $1 AND organization_id = $2 AND opt_in_date = $3`
	var o models.OptIn
	err := r.pool.QueryRow(ctx, q, userID, orgID, date).
		Scan(&o.ID, &o.UserID, &o.OrganizationID, &o.OptInDate, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// OptedInUsers lists opted-in users for the date across organizations
// the admin administers (admin or owner membership).
func (r *Repository) OptedInUsers(ctx context.Context, adminID uuid.UUID, date string) ([]models.OptInUser, error) {
	const q = `SELECT u.id, u.email, u.name, o.organization_id, o.created_at
		FROM opt_ins o
		JOIN users u ON u.id = o.user_id
		WHERE o.opt_in_date = $2
		  AND o.organization_id IN (
			SELECT organization_id FROM members
			WHERE user_id = $1 AND role IN ('admin', 'owner')
		  )
		ORDER BY o.created_at`
	return r.scanReport(ctx, q, adminID, date)
}

// NotOptedInUsers lists members of the admin's administered organizations
// with no opt-in row for the date.
func (r *Repository) NotOptedInUsers(ctx context.Context, adminID uuid.UUID, date string) ([]models.OptInUser, error) {
	const q = `SELECT u.id, u.email, u.name, m.organization_id, m.created_at
		FROM members m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id IN (
			SELECT organization_id FROM members
			WHERE user_id = $1 AND role IN ('admin', 'owner')
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM opt_ins o
			WHERE o.user_id = m.user_id
			  AND o.organization_id = m.organization_id
			  AND o.opt_in_date = $2
		  )
		ORDER BY u.name`
	return r.scanReport(ctx, q, adminID, date)
}

func (r *Repository) scanReport(ctx context.Context, q string, args ...any) ([]models.OptInUser, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.OptInUser
	for rows.Next() {
		var u models.OptInUser
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.OrganizationID, &u.OptedInAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
