package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/office-lunch/backend/internal/models"
	"github.com/office-lunch/backend/internal/organizations"
)

type fakeStore struct {
	byEmail map[string]*models.User
	names   map[uuid.UUID]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{byEmail: make(map[string]*models.User), names: make(map[uuid.UUID]string)}
}

func (f *fakeStore) Create(_ context.Context, u *models.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return ErrDuplicateEmail
	}
	u.ID = uuid.New()
	cp := *u
	f.byEmail[u.Email] = &cp
	f.names[u.ID] = u.Name
	return nil
}

func (f *fakeStore) UpdateName(_ context.Context, id uuid.UUID, name string) (bool, error) {
	if _, ok := f.names[id]; !ok {
		return false, nil
	}
	f.names[id] = name
	return true, nil
}

type addedMember struct {
	orgID  uuid.UUID
	userID uuid.UUID
	role   string
}

type fakeDirectory struct {
	added       []addedMember
	removed     int
	roleUpdates int
	lastRole    string
}

func (f *fakeDirectory) AddMember(_ context.Context, orgID, userID uuid.UUID, role string) error {
	f.added = append(f.added, addedMember{orgID: orgID, userID: userID, role: role})
	return nil
}

func (f *fakeDirectory) ListUsersSharingOrgs(context.Context, uuid.UUID) ([]organizations.SharedUser, error) {
	return nil, nil
}

func (f *fakeDirectory) ListUsersWithoutOrganization(context.Context) ([]models.UserPublic, error) {
	return nil, nil
}

func (f *fakeDirectory) RemoveFromSharedOrgs(_ context.Context, _, _ uuid.UUID) (int, error) {
	return f.removed, nil
}

func (f *fakeDirectory) UpdateRoleInSharedOrgs(_ context.Context, _, _ uuid.UUID, role string) (int, error) {
	f.lastRole = role
	return f.roleUpdates, nil
}

func TestCreateProvisionsIntoActiveOrg(t *testing.T) {
	store := newFakeStore()
	dir := &fakeDirectory{}
	svc := NewService(store, dir)
	orgID := uuid.New()

	u, err := svc.Create(context.Background(), orgID, CreateInput{Email: " Jane@Co.COM ", Name: "Jane"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "jane@co.com" {
		t.Errorf("email = %q, want normalized lower-case", u.Email)
	}
	if u.Role != models.RoleUser {
		t.Errorf("role = %q, want default user", u.Role)
	}
	if len(dir.added) != 1 || dir.added[0].orgID != orgID || dir.added[0].role != models.OrgRoleMember {
		t.Errorf("membership not created as member of active org: %+v", dir.added)
	}
}

func TestCreateDefaultsNameFromEmail(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeDirectory{})
	u, err := svc.Create(context.Background(), uuid.New(), CreateInput{Email: "dev@co.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Name != "dev" {
		t.Errorf("name = %q, want local part of email", u.Name)
	}
}

func TestCreateValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeDirectory{})
	orgID := uuid.New()

	if _, err := svc.Create(context.Background(), orgID, CreateInput{Email: "not-an-email"}); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("bad email err = %v, want ErrInvalidEmail", err)
	}
	if _, err := svc.Create(context.Background(), orgID, CreateInput{Email: "a@co.com", Role: "root"}); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("bad role err = %v, want ErrInvalidRole", err)
	}

	if _, err := svc.Create(context.Background(), orgID, CreateInput{Email: "a@co.com"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), orgID, CreateInput{Email: "A@CO.com"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("duplicate err = %v, want ErrDuplicateEmail", err)
	}
}

func TestUpdate(t *testing.T) {
	store := newFakeStore()
	dir := &fakeDirectory{roleUpdates: 1}
	svc := NewService(store, dir)
	adminID := uuid.New()

	u, err := svc.Create(context.Background(), uuid.New(), CreateInput{Email: "a@co.com", Name: "Old"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Update(context.Background(), adminID, u.ID, UpdateInput{Name: "New", OrgRole: models.OrgRoleAdmin}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if store.names[u.ID] != "New" {
		t.Errorf("name = %q, want New", store.names[u.ID])
	}
	if dir.lastRole != models.OrgRoleAdmin {
		t.Errorf("role update = %q, want admin", dir.lastRole)
	}

	if err := svc.Update(context.Background(), adminID, u.ID, UpdateInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty update err = %v, want ErrNotFound", err)
	}
	if err := svc.Update(context.Background(), adminID, uuid.New(), UpdateInput{Name: "X"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user err = %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	dir := &fakeDirectory{removed: 2}
	svc := NewService(newFakeStore(), dir)
	adminID := uuid.New()

	if _, err := svc.Remove(context.Background(), adminID, adminID); !errors.Is(err, ErrSelfRemoval) {
		t.Errorf("self removal err = %v, want ErrSelfRemoval", err)
	}

	n, err := svc.Remove(context.Background(), adminID, uuid.New())
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}

	dir.removed = 0
	if _, err := svc.Remove(context.Background(), adminID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("no shared orgs err = %v, want ErrNotFound", err)
	}
}
