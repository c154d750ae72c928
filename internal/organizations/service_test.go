package organizations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/office-lunch/backend/internal/models"
)

type membership struct {
	userID uuid.UUID
	orgID  uuid.UUID
	role   string
}

type fakeStore struct {
	orgs    map[uuid.UUID]*models.Organization
	members []membership
}

func newFakeStore() *fakeStore {
	return &fakeStore{orgs: make(map[uuid.UUID]*models.Organization)}
}

func (f *fakeStore) CreateWithOwner(_ context.Context, org *models.Organization, ownerID uuid.UUID) error {
	org.ID = uuid.New()
	cp := *org
	f.orgs[org.ID] = &cp
	f.members = append(f.members, membership{userID: ownerID, orgID: org.ID, role: models.OrgRoleOwner})
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	org, ok := f.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *org
	return &cp, nil
}

func (f *fakeStore) ListForUser(_ context.Context, userID uuid.UUID) ([]models.OrganizationWithRole, error) {
	var list []models.OrganizationWithRole
	for _, m := range f.members {
		if m.userID == userID {
			list = append(list, models.OrganizationWithRole{Organization: *f.orgs[m.orgID], MemberRole: m.role})
		}
	}
	return list, nil
}

func (f *fakeStore) AddMember(_ context.Context, orgID, userID uuid.UUID, role string) error {
	for _, m := range f.members {
		if m.userID == userID && m.orgID == orgID {
			return nil // conflict, do nothing
		}
	}
	f.members = append(f.members, membership{userID: userID, orgID: orgID, role: role})
	return nil
}

func (f *fakeStore) IsMember(_ context.Context, userID, orgID uuid.UUID) (bool, error) {
	for _, m := range f.members {
		if m.userID == userID && m.orgID == orgID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) IsAdminAnywhere(_ context.Context, userID uuid.UUID) (bool, error) {
	for _, m := range f.members {
		if m.userID == userID && (m.role == models.OrgRoleAdmin || m.role == models.OrgRoleOwner) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) IsOrgAdmin(_ context.Context, userID, orgID uuid.UUID) (bool, error) {
	for _, m := range f.members {
		if m.userID == userID && m.orgID == orgID && (m.role == models.OrgRoleAdmin || m.role == models.OrgRoleOwner) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) IsSystemAdmin(context.Context, uuid.UUID) (bool, error) { return false, nil }

func (f *fakeStore) ListUsersSharingOrgs(context.Context, uuid.UUID) ([]SharedUser, error) {
	return nil, nil
}

func (f *fakeStore) RemoveFromSharedOrgs(_ context.Context, adminID, targetID uuid.UUID) (int, error) {
	shared := make(map[uuid.UUID]bool)
	for _, m := range f.members {
		if m.userID == adminID {
			shared[m.orgID] = true
		}
	}
	var kept []membership
	removed := 0
	for _, m := range f.members {
		if m.userID == targetID && shared[m.orgID] {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	f.members = kept
	return removed, nil
}

func (f *fakeStore) UpdateRoleInSharedOrgs(_ context.Context, adminID, targetID uuid.UUID, role string) (int, error) {
	administered := make(map[uuid.UUID]bool)
	for _, m := range f.members {
		if m.userID == adminID && (m.role == models.OrgRoleAdmin || m.role == models.OrgRoleOwner) {
			administered[m.orgID] = true
		}
	}
	updated := 0
	for i, m := range f.members {
		if m.userID == targetID && administered[m.orgID] && m.role != models.OrgRoleOwner {
			f.members[i].role = role
			updated++
		}
	}
	return updated, nil
}

func (f *fakeStore) FindByWorkEmailDomain(_ context.Context, domain string) ([]models.Organization, error) {
	var list []models.Organization
	for _, org := range f.orgs {
		if org.WorkEmailDomain == domain {
			list = append(list, *org)
		}
	}
	return list, nil
}

func (f *fakeStore) UpdateWorkEmailDomain(_ context.Context, orgID uuid.UUID, domain string) error {
	org, ok := f.orgs[orgID]
	if !ok {
		return ErrNotFound
	}
	org.WorkEmailDomain = domain
	return nil
}

func (f *fakeStore) ListUsersWithoutOrganization(context.Context) ([]models.UserPublic, error) {
	return nil, nil
}

func (f *fakeStore) countMemberships(userID, orgID uuid.UUID) int {
	n := 0
	for _, m := range f.members {
		if m.userID == userID && m.orgID == orgID {
			n++
		}
	}
	return n
}

func TestCreateForUser(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	userID := uuid.New()

	org, err := svc.CreateForUser(context.Background(), userID, "Jane@Example.COM", "Jane")
	if err != nil {
		t.Fatalf("CreateForUser: %v", err)
	}
	if org.Name != "Jane's Organization" {
		t.Errorf("name = %q", org.Name)
	}
	wantSlug := "example.com-" + strings.ToLower(userID.String()[:8])
	if org.Slug != wantSlug {
		t.Errorf("slug = %q, want %q", org.Slug, wantSlug)
	}
	if got := store.countMemberships(userID, org.ID); got != 1 {
		t.Errorf("owner memberships = %d, want 1", got)
	}
	list, _ := store.ListForUser(context.Background(), userID)
	if len(list) != 1 || list[0].MemberRole != models.OrgRoleOwner {
		t.Errorf("owner role not recorded: %+v", list)
	}
}

func TestAddMemberIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	owner, joiner := uuid.New(), uuid.New()

	org, err := svc.CreateForUser(context.Background(), owner, "o@co.com", "O")
	if err != nil {
		t.Fatalf("CreateForUser: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := svc.AddMember(context.Background(), org.ID, joiner, models.OrgRoleMember); err != nil {
			t.Fatalf("AddMember: %v", err)
		}
	}
	if got := store.countMemberships(joiner, org.ID); got != 1 {
		t.Errorf("memberships = %d, want exactly 1", got)
	}
}

func TestAddMemberRejectsUnknownRole(t *testing.T) {
	svc := NewService(newFakeStore())
	err := svc.AddMember(context.Background(), uuid.New(), uuid.New(), "superuser")
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("error = %v, want ErrInvalidRole", err)
	}
}

func TestAutoJoinByDomain(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	owner, newcomer := uuid.New(), uuid.New()

	org, err := svc.CreateForUser(context.Background(), owner, "boss@co.com", "Boss")
	if err != nil {
		t.Fatalf("CreateForUser: %v", err)
	}
	if err := svc.UpdateWorkEmailDomain(context.Background(), org.ID, "co.com"); err != nil {
		t.Fatalf("UpdateWorkEmailDomain: %v", err)
	}

	// Case-insensitive match, idempotent across repeats.
	for i := 0; i < 2; i++ {
		joined, err := svc.AutoJoinByDomain(context.Background(), newcomer, "alice@CO.COM")
		if err != nil {
			t.Fatalf("AutoJoinByDomain: %v", err)
		}
		if joined != 1 {
			t.Errorf("joined = %d, want 1", joined)
		}
	}
	if got := store.countMemberships(newcomer, org.ID); got != 1 {
		t.Errorf("memberships = %d, want exactly 1", got)
	}

	// Non-matching domain joins nothing.
	joined, err := svc.AutoJoinByDomain(context.Background(), uuid.New(), "bob@other.org")
	if err != nil || joined != 0 {
		t.Errorf("foreign domain: joined=%d err=%v", joined, err)
	}
}

func TestUpdateRoleInSharedOrgsNeverTouchesOwner(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	adminID, ownerID := uuid.New(), uuid.New()

	org, err := svc.CreateForUser(context.Background(), ownerID, "owner@co.com", "Owner")
	if err != nil {
		t.Fatalf("CreateForUser: %v", err)
	}
	if err := svc.AddMember(context.Background(), org.ID, adminID, models.OrgRoleAdmin); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	n, err := svc.UpdateRoleInSharedOrgs(context.Background(), adminID, ownerID, models.OrgRoleMember)
	if err != nil {
		t.Fatalf("UpdateRoleInSharedOrgs: %v", err)
	}
	if n != 0 {
		t.Errorf("updated = %d, want 0 (owner untouched)", n)
	}

	if _, err := svc.UpdateRoleInSharedOrgs(context.Background(), adminID, ownerID, models.OrgRoleOwner); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("promoting to owner error = %v, want ErrInvalidRole", err)
	}
}

func TestValidateWorkDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"  ", "", false},
		{"example.com", "example.com", false},
		{"EXAMPLE.COM", "example.com", false},
		{" sub.example.co.uk ", "sub.example.co.uk", false},
		{"a.co", "a.co", false},
		{"a.b", "", true},          // too short
		{"co", "", true},           // no dot, too short
		{"nodots", "", true},       // no dot
		{"has space.com", "", true},
		{"user@co.com", "", true},
		{"-bad.com", "", true},
		{"bad-.com", "", true},
		{"co.com-", "", true},
	}
	for _, tt := range tests {
		got, err := ValidateWorkDomain(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDomain) {
				t.Errorf("ValidateWorkDomain(%q) err = %v, want ErrInvalidDomain", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ValidateWorkDomain(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateWorkDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
