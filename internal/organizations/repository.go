package organizations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/office-lunch/backend/internal/models"
)

// Repository handles organization and membership persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SharedUser is a user visible to an admin through shared membership.
type SharedUser struct {
	ID         uuid.UUID   `json:"id"`
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	Role       models.Role `json:"role"`
	MemberRole string      `json:"member_role"`
	CreatedAt  time.Time   `json:"created_at"`
}

// CreateWithOwner inserts the organization and its owner membership in a
// single transaction.
func (r *Repository) CreateWithOwner(ctx context.Context, org *models.Organization, ownerID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const orgQ = `INSERT INTO organizations (id, name, slug)
		VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, orgQ, org.Name, org.Slug).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return err
	}

	const memQ = `INSERT INTO members (id, organization_id, user_id, role)
		VALUES (gen_random_uuid(), $1, $2, $3)`
	if _, err := tx.Exec(ctx, memQ, org.ID, ownerID, models.OrgRoleOwner); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, slug, COALESCE(logo,''), COALESCE(work_email_domain,''), created_at, updated_at
		FROM organizations WHERE id = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id).Scan(&org.ID, &org.Name, &org.Slug, &org.Logo, &org.WorkEmailDomain, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// ListForUser returns organizations the user is a member of, with role.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.OrganizationWithRole, error) {
	const q = `SELECT o.id, o.name, o.slug, COALESCE(o.logo,''), COALESCE(o.work_email_domain,''), o.created_at, o.updated_at, m.role
		FROM organizations o
		INNER JOIN members m ON m.organization_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.OrganizationWithRole
	for rows.Next() {
		var o models.OrganizationWithRole
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.Logo, &o.WorkEmailDomain, &o.CreatedAt, &o.UpdatedAt, &o.MemberRole); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// AddMember adds a user to an organization. ON CONFLICT DO NOTHING keeps
// duplicate and concurrent joins idempotent.
func (r *Repository) AddMember(ctx context.Context, orgID, userID uuid.UUID, role string) error {
	const q = `INSERT INTO members (id, organization_id, user_id, role)
		VALUES (gen_random_uuid(), $1, $2, $3)
		ON CONFLICT (user_id, organization_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, orgID, userID, role)
	return err
}

// IsMember reports whether the user belongs to the organization.
func (r *Repository) IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM members WHERE user_id = $1 AND organization_id = $2)`
	var ok bool
	err := r.pool.QueryRow(ctx, q, userID, orgID).Scan(&ok)
	return ok, err
}

// IsAdminAnywhere reports whether the user is admin or owner in any org.
func (r *Repository) IsAdminAnywhere(ctx context.Context, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM members WHERE user_id = $1 AND role IN ('admin', 'owner'))`
	var ok bool
	err := r.pool.QueryRow(ctx, q, userID).Scan(&ok)
	return ok, err
}

// IsOrgAdmin reports whether the user is admin or owner of the given org.
func (r *Repository) IsOrgAdmin(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM members
		WHERE user_id = $1 AND organization_id = $2 AND role IN ('admin', 'owner'))`
	var ok bool
	err := r.pool.QueryRow(ctx, q, userID, orgID).Scan(&ok)
	return ok, err
}

// IsSystemAdmin reports whether the user holds the global admin role.
func (r *Repository) IsSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND role = 'admin')`
	var ok bool
	err := r.pool.QueryRow(ctx, q, userID).Scan(&ok)
	return ok, err
}

// ListAdministeredOrgIDs returns the IDs of organizations where the
// user is admin or owner.
func (r *Repository) ListAdministeredOrgIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT organization_id FROM members
		WHERE user_id = $1 AND role IN ('admin', 'owner')
		ORDER BY created_at`
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

// ListUsersSharingOrgs returns distinct users sharing at least one
// organization with the given user, with their membership role.
func (r *Repository) ListUsersSharingOrgs(ctx context.Context, userID uuid.UUID) ([]SharedUser, error) {
	const q = `SELECT DISTINCT u.id, u.email, u.name, u.role, m.role, u.created_at
		FROM users u
		INNER JOIN members m ON m.user_id = u.id
		WHERE m.organization_id IN (
			SELECT organization_id FROM members WHERE user_id = $1
		)
		ORDER BY u.name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []SharedUser
	for rows.Next() {
		var su SharedUser
		var role string
		if err := rows.Scan(&su.ID, &su.Email, &su.Name, &role, &su.MemberRole, &su.CreatedAt); err != nil {
			return nil, err
		}
		su.Role = models.Role(role)
		list = append(list, su)
	}
	return list, rows.Err()
}

// RemoveFromSharedOrgs deletes the target's memberships in every
// organization shared with the admin. Returns memberships removed.
func (r *Repository) RemoveFromSharedOrgs(ctx context.Context, adminID, targetID uuid.UUID) (int, error) {
	const q = `DELETE FROM members
		WHERE user_id = $1 AND organization_id IN (
			SELECT organization_id FROM members WHERE user_id = $2
		)`
	tag, err := r.pool.Exec(ctx, q, targetID, adminID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// UpdateRoleInSharedOrgs sets the target's role in organizations the
// admin administers, leaving owner memberships untouched. Returns
// memberships updated.
func (r *Repository) UpdateRoleInSharedOrgs(ctx context.Context, adminID, targetID uuid.UUID, role string) (int, error) {
	const q = `UPDATE members SET role = $1
		WHERE user_id = $2
		AND role <> 'owner'
		AND organization_id IN (
			SELECT organization_id FROM members
			WHERE user_id = $3 AND role IN ('admin', 'owner')
		)`
	tag, err := r.pool.Exec(ctx, q, role, targetID, adminID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// FindByWorkEmailDomain returns organizations configured to auto-join
// the given (already lower-cased) email domain.
func (r *Repository) FindByWorkEmailDomain(ctx context.Context, domain string) ([]models.Organization, error) {
	const q = `SELECT id, name, slug, COALESCE(logo,''), COALESCE(work_email_domain,''), created_at, updated_at
		FROM organizations WHERE work_email_domain = $1`
	rows, err := r.pool.Query(ctx, q, domain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.Logo, &o.WorkEmailDomain, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// UpdateWorkEmailDomain persists the (validated, lower-cased) auto-join
// domain; empty clears it.
func (r *Repository) UpdateWorkEmailDomain(ctx context.Context, orgID uuid.UUID, domain string) error {
	const q = `UPDATE organizations SET work_email_domain = NULLIF($1, ''), updated_at = NOW() WHERE id = $2`
	tag, err := r.pool.Exec(ctx, q, domain, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLogo stores the S3 object key of the organization logo.
func (r *Repository) UpdateLogo(ctx context.Context, orgID uuid.UUID, key string) error {
	const q = `UPDATE organizations SET logo = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.pool.Exec(ctx, q, key, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// OrgMember is a member row joined with user details for the platform
// admin view.
type OrgMember struct {
	MemberID   uuid.UUID `json:"member_id"`
	UserID     uuid.UUID `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	UserRole   string    `json:"user_role"`
	MemberRole string    `json:"member_role"`
	AddedAt    time.Time `json:"added_at"`
}

// OrganizationWithMembers groups an organization with its members.
type OrganizationWithMembers struct {
	models.Organization
	Members []OrgMember `json:"members"`
}

// ListAllWithMembers returns every organization with its members,
// ordered by organization then member name (system admin view).
func (r *Repository) ListAllWithMembers(ctx context.Context) ([]OrganizationWithMembers, error) {
	const q = `SELECT o.id, o.name, o.slug, COALESCE(o.logo,''), COALESCE(o.work_email_domain,''), o.created_at, o.updated_at,
		m.id, m.user_id, m.role, m.created_at, u.name, u.email, u.role
		FROM organizations o
		LEFT JOIN members m ON m.organization_id = o.id
		LEFT JOIN users u ON u.id = m.user_id
		ORDER BY o.name ASC, u.name ASC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []OrganizationWithMembers
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var org models.Organization
		var memberID, userID *uuid.UUID
		var memberRole, userName, userEmail, userRole *string
		var addedAt *time.Time
		if err := rows.Scan(&org.ID, &org.Name, &org.Slug, &org.Logo, &org.WorkEmailDomain, &org.CreatedAt, &org.UpdatedAt,
			&memberID, &userID, &memberRole, &addedAt, &userName, &userEmail, &userRole); err != nil {
			return nil, err
		}
		i, ok := index[org.ID]
		if !ok {
			list = append(list, OrganizationWithMembers{Organization: org, Members: []OrgMember{}})
			i = len(list) - 1
			index[org.ID] = i
		}
		// LEFT JOIN yields null member columns for empty organizations.
		if memberID != nil && userID != nil {
			m := OrgMember{MemberID: *memberID, UserID: *userID}
			if memberRole != nil {
				m.MemberRole = *memberRole
			}
			if addedAt != nil {
				m.AddedAt = *addedAt
			}
			if userName != nil {
				m.UserName = *userName
			}
			if userEmail != nil {
				m.UserEmail = *userEmail
			}
			if userRole != nil {
				m.UserRole = *userRole
			}
			list[i].Members = append(list[i].Members, m)
		}
	}
	return list, rows.Err()
}

// ListUsersWithoutOrganization returns users that belong to no
// organization at all.
func (r *Repository) ListUsersWithoutOrganization(ctx context.Context) ([]models.UserPublic, error) {
	const q = `SELECT u.id, u.email, u.name, u.role, u.created_at
		FROM users u
		WHERE NOT EXISTS (SELECT 1 FROM members m WHERE m.user_id = u.id)
		ORDER BY u.name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		list = append(list, u)
	}
	return list, rows.Err()
}
