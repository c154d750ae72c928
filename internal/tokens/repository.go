package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/office-lunch/backend/internal/models"
)

// Repository handles API token persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tokens repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a new token row (hash plus optional encrypted copy).
func (r *Repository) Insert(ctx context.Context, t *models.APIToken) error {
	const q = `INSERT INTO api_tokens (id, user_id, token_hash, encrypted_token, name, expires_at)
		VALUES (gen_random_uuid(), $1, $2, NULLIF($3, ''), $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.UserID, t.TokenHash, t.EncryptedToken, t.Name, t.ExpiresAt).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByHash returns a token row by its hash, regardless of expiry.
func (r *Repository) GetByHash(ctx context.Context, hash string) (*models.APIToken, error) {
	const q = `SELECT id, user_id, token_hash, COALESCE(encrypted_token,''), name, expires_at, last_used_at, created_at, updated_at
		FROM api_tokens WHERE token_hash = $1`
	return r.scanOne(r.pool.QueryRow(ctx, q, hash))
}

// GetByID returns a token owned by the given user.
func (r *Repository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.APIToken, error) {
	const q = `SELECT id, user_id, token_hash, COALESCE(encrypted_token,''), name, expires_at, last_used_at, created_at, updated_at
		FROM api_tokens WHERE id = $1 AND user_id = $2`
	return r.scanOne(r.pool.QueryRow(ctx, q, id, userID))
}

func (r *Repository) scanOne(row pgx.Row) (*models.APIToken, error) {
	var t models.APIToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.EncryptedToken, &t.Name, &t.ExpiresAt, &t.LastUsedAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TouchLastUsed records a successful authentication with the token.
func (r *Repository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE api_tokens SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// ListForUser returns the user's tokens, oldest first, without secrets.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.APITokenPublic, error) {
	const q = `SELECT id, name, expires_at, last_used_at, created_at
		FROM api_tokens WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.APITokenPublic
	for rows.Next() {
		var t models.APITokenPublic
		if err := rows.Scan(&t.ID, &t.Name, &t.ExpiresAt, &t.LastUsedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Delete removes one token scoped to its owner. Returns false when no
// row matched.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	const q = `DELETE FROM api_tokens WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteAllForUser removes every token of a user.
func (r *Repository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	const q = `DELETE FROM api_tokens WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, q, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// DeleteExpired purges tokens whose expiry has passed.
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	const q = `DELETE FROM api_tokens WHERE expires_at IS NOT NULL AND expires_at < $1`
	tag, err := r.pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
