package optin

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/office-lunch/backend/internal/models"
)

// Store is the persistence surface the service needs. Implemented by
// Repository; faked in tests.
type Store interface {
	ListOrgIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Insert(ctx context.Context, userID, orgID uuid.UUID, date string) (bool, error)
	DeleteForDate(ctx context.Context, userID uuid.UUID, date string) (int, error)
	GetStatus(ctx context.Context, userID, orgID uuid.UUID, date string) (*models.OptIn, error)
	OptedInUsers(ctx context.Context, adminID uuid.UUID, date string) ([]models.OptInUser, error)
	NotOptedInUsers(ctx context.Context, adminID uuid.UUID, date string) ([]models.OptInUser, error)
}

// Authorizer answers whether a user may act on another user's status.
// Implemented by the organizations service. Both authorization axes
// count: a platform admin or an org admin/owner anywhere.
type Authorizer interface {
	IsAdminAnywhere(ctx context.Context, userID uuid.UUID) (bool, error)
	IsSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Events receives opt-in changes for the live lunch board. Best effort:
// the service never fails a write because a broadcast did.
type Events interface {
	OptInChanged(orgID, userID uuid.UUID, date string, optedIn bool)
}

// Service implements daily lunch attendance. One row per
// (user, organization, date); presence of the row means opted in. A
// user's opt-in fans out across every organization they belong to, so
// each org's admins see them on that org's board.
type Service struct {
	store  Store
	authz  Authorizer
	events Events
	loc    *time.Location
	now    func() time.Time
}

// NewService creates an opt-in service. events may be nil.
func NewService(store Store, authz Authorizer, events Events, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, authz: authz, events: events, loc: loc, now: time.Now}
}

// Today returns today's date string in the reference timezone. Computed
// once per request so multi-step reports agree on the boundary.
func (s *Service) Today() string {
	return Today(s.loc, s.now())
}

// resolveDate defaults an empty date to today and validates the rest.
func (s *Service) resolveDate(date string) (string, error) {
	if date == "" {
		return s.Today(), nil
	}
	if err := ValidateDate(date); err != nil {
		return "", err
	}
	return date, nil
}

// OptIn marks the user in for the date across all their organizations.
// Idempotent per org via the unique constraint. Returns how many org
// rows now exist for the user and date.
func (s *Service) OptIn(ctx context.Context, userID uuid.UUID, date string) (int, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return 0, err
	}
	orgIDs, err := s.store.ListOrgIDsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(orgIDs) == 0 {
		return 0, ErrNoOrganizations
	}
	for _, orgID := range orgIDs {
		inserted, err := s.store.Insert(ctx, userID, orgID, date)
		if err != nil {
			return 0, err
		}
		if inserted {
			s.publish(orgID, userID, date, true)
		}
	}
	return len(orgIDs), nil
}

// OptOut removes the user's opt-in rows for the date. Returns how many
// rows were removed; zero is not an error.
func (s *Service) OptOut(ctx context.Context, userID uuid.UUID, date string) (int, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return 0, err
	}
	orgIDs, err := s.store.ListOrgIDsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	removed, err := s.store.DeleteForDate(ctx, userID, date)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		for _, orgID := range orgIDs {
			s.publish(orgID, userID, date, false)
		}
	}
	return removed, nil
}

// Status returns whether the user is opted in for the date in one
// organization, with the opt-in timestamp when present.
func (s *Service) Status(ctx context.Context, userID, orgID uuid.UUID, date string) (bool, *time.Time, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return false, nil, err
	}
	row, err := s.store.GetStatus(ctx, userID, orgID, date)
	if err != nil {
		return false, nil, err
	}
	if row == nil {
		return false, nil, nil
	}
	at := row.CreatedAt
	return true, &at, nil
}

// OptedInUsers lists opted-in users for the date across the admin's
// administered organizations.
func (s *Service) OptedInUsers(ctx context.Context, adminID uuid.UUID, date string) ([]models.OptInUser, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	return s.store.OptedInUsers(ctx, adminID, date)
}

// NotOptedInUsers lists members of the admin's administered organizations
// who have no opt-in row for the date: the membership set minus the
// opted-in set.
func (s *Service) NotOptedInUsers(ctx context.Context, adminID uuid.UUID, date string) ([]models.OptInUser, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	return s.store.NotOptedInUsers(ctx, adminID, date)
}

// OptInForUser is the on-behalf-of variant. The acting user must hold an
// admin role somewhere before the target's status is touched.
func (s *Service) OptInForUser(ctx context.Context, adminID, targetID uuid.UUID, date string) (int, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return 0, err
	}
	return s.OptIn(ctx, targetID, date)
}

// OptOutForUser is the on-behalf-of variant of OptOut.
func (s *Service) OptOutForUser(ctx context.Context, adminID, targetID uuid.UUID, date string) (int, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return 0, err
	}
	return s.OptOut(ctx, targetID, date)
}

func (s *Service) requireAdmin(ctx context.Context, adminID uuid.UUID) error {
	if ok, err := s.authz.IsSystemAdmin(ctx, adminID); err != nil {
		return err
	} else if ok {
		return nil
	}
	ok, err := s.authz.IsAdminAnywhere(ctx, adminID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

func (s *Service) publish(orgID, userID uuid.UUID, date string, optedIn bool) {
	if s.events != nil {
		s.events.OptInChanged(orgID, userID, date, optedIn)
	}
}
