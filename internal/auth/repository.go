package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/office-lunch/backend/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrUserNotFound    = errors.New("user not found")
)

// Repository resolves credentials into users and sessions. Session and
// cookie issuance belongs to the upstream social-login layer; this side
// only reads what that layer wrote, plus the active-organization column
// it owns.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetUserByID returns a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT id, email, name, role, banned, COALESCE(ban_reason,''), ban_expires, created_at, updated_at
		FROM users WHERE id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Banned, &u.BanReason, &u.BanExpires, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetSessionByToken returns an unexpired session by its opaque token.
func (r *Repository) GetSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	const q = `SELECT id, token, user_id, active_organization_id, expires_at,
		COALESCE(ip_address,''), COALESCE(user_agent,''), created_at, updated_at
		FROM sessions WHERE token = $1 AND expires_at > NOW()`
	var s models.Session
	err := r.pool.QueryRow(ctx, q, token).Scan(&s.ID, &s.Token, &s.UserID, &s.ActiveOrganizationID, &s.ExpiresAt,
		&s.IPAddress, &s.UserAgent, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetActiveOrganization records which organization the session is
// currently viewing. Membership is checked by the caller before this
// write.
func (r *Repository) SetActiveOrganization(ctx context.Context, sessionID, orgID uuid.UUID) error {
	const q = `UPDATE sessions SET active_organization_id = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.pool.Exec(ctx, q, orgID, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}
