package organizations

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/office-lunch/backend/internal/models"
)

// Valid hostname: labels of letters/digits/hyphens separated by dots,
// at least one dot (e.g. example.com, sub.example.com).
var domainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)+$`)

// Store is the persistence surface the service needs. Implemented by
// Repository; faked in tests.
type Store interface {
	CreateWithOwner(ctx context.Context, org *models.Organization, ownerID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.OrganizationWithRole, error)
	AddMember(ctx context.Context, orgID, userID uuid.UUID, role string) error
	IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error)
	IsAdminAnywhere(ctx context.Context, userID uuid.UUID) (bool, error)
	IsOrgAdmin(ctx context.Context, userID, orgID uuid.UUID) (bool, error)
	IsSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	ListUsersSharingOrgs(ctx context.Context, userID uuid.UUID) ([]SharedUser, error)
	RemoveFromSharedOrgs(ctx context.Context, adminID, targetID uuid.UUID) (int, error)
	UpdateRoleInSharedOrgs(ctx context.Context, adminID, targetID uuid.UUID, role string) (int, error)
	FindByWorkEmailDomain(ctx context.Context, domain string) ([]models.Organization, error)
	UpdateWorkEmailDomain(ctx context.Context, orgID uuid.UUID, domain string) error
	ListUsersWithoutOrganization(ctx context.Context) ([]models.UserPublic, error)
}

// Service holds the organization and membership rules: slug derivation
// for first-time users, idempotent joins, the two authorization axes,
// and work-domain matching for auto-join.
type Service struct {
	store Store
}

// NewService creates an organization service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateForUser creates the personal organization a first-time user
// lands in: named "<name>'s Organization", slug derived from the email
// domain plus a short user-id suffix, with the user as owner. The org
// row and owner membership are written in one transaction so a crash
// cannot leave an ownerless organization.
func (s *Service) CreateForUser(ctx context.Context, userID uuid.UUID, email, name string) (*models.Organization, error) {
	emailDomain := "org"
	if _, dom, ok := strings.Cut(email, "@"); ok && dom != "" {
		emailDomain = dom
	}
	idStr := userID.String()
	org := &models.Organization{
		Name: fmt.Sprintf("%s's Organization", name),
		Slug: strings.ToLower(fmt.Sprintf("%s-%s", emailDomain, idStr[:8])),
	}
	if err := s.store.CreateWithOwner(ctx, org, userID); err != nil {
		return nil, err
	}
	return org, nil
}

// ListForUser returns the user's organizations with their membership role.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.OrganizationWithRole, error) {
	return s.store.ListForUser(ctx, userID)
}

// AddMember adds a user to an organization. Duplicate joins are not an
// error: the insert is ON CONFLICT DO NOTHING, which also makes
// concurrent auto-join attempts for the same user idempotent.
func (s *Service) AddMember(ctx context.Context, orgID, userID uuid.UUID, role string) error {
	switch role {
	case models.OrgRoleOwner, models.OrgRoleAdmin, models.OrgRoleMember:
	default:
		return ErrInvalidRole
	}
	return s.store.AddMember(ctx, orgID, userID, role)
}

// AutoJoinByDomain joins the user to every organization whose configured
// work email domain matches the user's email domain (case-insensitive).
// Callers treat failures as log-and-continue; this must never abort the
// request that triggered it.
func (s *Service) AutoJoinByDomain(ctx context.Context, userID uuid.UUID, email string) (int, error) {
	_, dom, ok := strings.Cut(email, "@")
	if !ok || dom == "" {
		return 0, nil
	}
	orgs, err := s.store.FindByWorkEmailDomain(ctx, strings.ToLower(dom))
	if err != nil {
		return 0, err
	}
	joined := 0
	for _, org := range orgs {
		if err := s.store.AddMember(ctx, org.ID, userID, models.OrgRoleMember); err != nil {
			return joined, err
		}
		joined++
	}
	return joined, nil
}

// IsMember reports whether the user belongs to the organization.
func (s *Service) IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	return s.store.IsMember(ctx, userID, orgID)
}

// IsAdminAnywhere reports whether the user is admin or owner in at least
// one of their organizations.
func (s *Service) IsAdminAnywhere(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.store.IsAdminAnywhere(ctx, userID)
}

// IsOrgAdmin reports whether the user is admin or owner of the given
// organization.
func (s *Service) IsOrgAdmin(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	return s.store.IsOrgAdmin(ctx, userID, orgID)
}

// IsSystemAdmin reports whether the user holds the platform-wide admin
// role. This is a separate axis from organization membership roles.
func (s *Service) IsSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.store.IsSystemAdmin(ctx, userID)
}

// ListUsersSharingOrgs returns every user sharing at least one
// organization with the given user.
func (s *Service) ListUsersSharingOrgs(ctx context.Context, userID uuid.UUID) ([]SharedUser, error) {
	return s.store.ListUsersSharingOrgs(ctx, userID)
}

// RemoveFromSharedOrgs removes the target from every organization shared
// with the acting admin and returns how many memberships were removed.
func (s *Service) RemoveFromSharedOrgs(ctx context.Context, adminID, targetID uuid.UUID) (int, error) {
	return s.store.RemoveFromSharedOrgs(ctx, adminID, targetID)
}

// UpdateRoleInSharedOrgs sets the target's membership role across
// organizations the admin administers. Owner memberships are never
// downgraded. Returns the number of memberships updated.
func (s *Service) UpdateRoleInSharedOrgs(ctx context.Context, adminID, targetID uuid.UUID, role string) (int, error) {
	if role != models.OrgRoleAdmin && role != models.OrgRoleMember {
		return 0, ErrInvalidRole
	}
	return s.store.UpdateRoleInSharedOrgs(ctx, adminID, targetID, role)
}

// GetByID returns an organization by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return s.store.GetByID(ctx, id)
}

// ListUsersWithoutOrganization returns users belonging to no organization
// at all, for the admin "unassigned" view.
func (s *Service) ListUsersWithoutOrganization(ctx context.Context) ([]models.UserPublic, error) {
	return s.store.ListUsersWithoutOrganization(ctx)
}

// ValidateWorkDomain normalizes and validates a work email domain.
// Empty input clears the domain (returned as ""). Anything else must be
// a plausible hostname: at least 4 chars, no '@' or spaces, matching the
// hostname grammar.
func ValidateWorkDomain(input string) (string, error) {
	dom := strings.ToLower(strings.TrimSpace(input))
	if dom == "" {
		return "", nil
	}
	if len(dom) < 4 {
		return "", fmt.Errorf("%w: must be at least 4 characters (e.g. a.co)", ErrInvalidDomain)
	}
	if strings.ContainsAny(dom, "@ ") {
		return "", fmt.Errorf("%w: must not contain '@' or spaces", ErrInvalidDomain)
	}
	if !domainRegex.MatchString(dom) {
		return "", fmt.Errorf("%w: must be a valid domain name (e.g. example.com)", ErrInvalidDomain)
	}
	return dom, nil
}

// UpdateWorkEmailDomain validates and persists the organization's
// auto-join domain. An empty domain disables auto-join for the org.
func (s *Service) UpdateWorkEmailDomain(ctx context.Context, orgID uuid.UUID, input string) error {
	dom, err := ValidateWorkDomain(input)
	if err != nil {
		return err
	}
	return s.store.UpdateWorkEmailDomain(ctx, orgID, dom)
}
