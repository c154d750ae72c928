package users

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/office-lunch/backend/internal/models"
	"github.com/office-lunch/backend/internal/organizations"
)

// Store is the persistence surface the service needs. Implemented by
// Repository; faked in tests.
type Store interface {
	Create(ctx context.Context, u *models.User) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) (bool, error)
}

// Directory provides the membership operations provisioning works
// through. Implemented by the organizations service.
type Directory interface {
	AddMember(ctx context.Context, orgID, userID uuid.UUID, role string) error
	ListUsersSharingOrgs(ctx context.Context, userID uuid.UUID) ([]organizations.SharedUser, error)
	ListUsersWithoutOrganization(ctx context.Context) ([]models.UserPublic, error)
	RemoveFromSharedOrgs(ctx context.Context, adminID, targetID uuid.UUID) (int, error)
	UpdateRoleInSharedOrgs(ctx context.Context, adminID, targetID uuid.UUID, role string) (int, error)
}

// Service implements admin user provisioning. Visibility is scoped by
// shared membership: an org admin sees and edits only users who share an
// organization with them.
type Service struct {
	store Store
	dir   Directory
}

// NewService creates a users service.
func NewService(store Store, dir Directory) *Service {
	return &Service{store: store, dir: dir}
}

// CreateInput is the provisioning input. Role defaults to "user".
type CreateInput struct {
	Email string
	Name  string
	Role  string
}

// Create provisions a user and enrolls them into the admin's active
// organization as a member.
func (s *Service) Create(ctx context.Context, activeOrgID uuid.UUID, in CreateInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, ErrInvalidEmail
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	role := models.RoleUser
	switch in.Role {
	case "", string(models.RoleUser):
	case string(models.RoleAdmin):
		role = models.RoleAdmin
	default:
		return nil, ErrInvalidRole
	}

	u := &models.User{Email: email, Name: name, Role: role}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	if err := s.dir.AddMember(ctx, activeOrgID, u.ID, models.OrgRoleMember); err != nil {
		return nil, err
	}
	return u, nil
}

// List returns users visible to the admin through shared membership.
func (s *Service) List(ctx context.Context, adminID uuid.UUID) ([]organizations.SharedUser, error) {
	return s.dir.ListUsersSharingOrgs(ctx, adminID)
}

// ListUnassigned returns users with no organization at all.
func (s *Service) ListUnassigned(ctx context.Context) ([]models.UserPublic, error) {
	return s.dir.ListUsersWithoutOrganization(ctx)
}

// UpdateInput carries the editable fields; empty values are skipped.
type UpdateInput struct {
	Name    string
	OrgRole string
}

// Update renames the user and/or changes their membership role across
// the admin's administered organizations.
func (s *Service) Update(ctx context.Context, adminID, targetID uuid.UUID, in UpdateInput) error {
	touched := false
	if name := strings.TrimSpace(in.Name); name != "" {
		ok, err := s.store.UpdateName(ctx, targetID, name)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		touched = true
	}
	if in.OrgRole != "" {
		n, err := s.dir.UpdateRoleInSharedOrgs(ctx, adminID, targetID, in.OrgRole)
		if err != nil {
			return err
		}
		if n == 0 && !touched {
			return ErrNotFound
		}
		touched = true
	}
	if !touched {
		return ErrNotFound
	}
	return nil
}

// Remove deletes the target's memberships in every organization shared
// with the admin. The user row itself stays; only reach is revoked.
func (s *Service) Remove(ctx context.Context, adminID, targetID uuid.UUID) (int, error) {
	if adminID == targetID {
		return 0, ErrSelfRemoval
	}
	n, err := s.dir.RemoveFromSharedOrgs(ctx, adminID, targetID)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return n, nil
}
