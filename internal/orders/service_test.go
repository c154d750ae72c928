package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/office-lunch/backend/internal/models"
)

type orderKey struct {
	user       uuid.UUID
	restaurant uuid.UUID
}

type fakeStore struct {
	orders         map[orderKey]*models.Order
	restaurantOrgs map[uuid.UUID]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:         make(map[orderKey]*models.Order),
		restaurantOrgs: make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeStore) ListForUser(_ context.Context, userID uuid.UUID, restaurantID *uuid.UUID) ([]models.Order, error) {
	var list []models.Order
	for k, o := range f.orders {
		if k.user != userID {
			continue
		}
		if restaurantID != nil && k.restaurant != *restaurantID {
			continue
		}
		list = append(list, *o)
	}
	return list, nil
}

func (f *fakeStore) Upsert(_ context.Context, o *models.Order) error {
	k := orderKey{user: o.UserID, restaurant: o.RestaurantID}
	if existing, ok := f.orders[k]; ok {
		existing.OrderDetails = o.OrderDetails
		existing.UpdatedAt = time.Now()
		*o = *existing
		return nil
	}
	o.ID = uuid.New()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	f.orders[k] = &cp
	return nil
}

func (f *fakeStore) Delete(_ context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	k := orderKey{user: userID, restaurant: restaurantID}
	if _, ok := f.orders[k]; !ok {
		return false, nil
	}
	delete(f.orders, k)
	return true, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) UpdateDetails(_ context.Context, id uuid.UUID, details string) (bool, error) {
	for _, o := range f.orders {
		if o.ID == id {
			o.OrderDetails = details
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) DeleteByID(_ context.Context, id uuid.UUID) (bool, error) {
	for k, o := range f.orders {
		if o.ID == id {
			delete(f.orders, k)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetRestaurantOrg(_ context.Context, restaurantID uuid.UUID) (uuid.UUID, error) {
	orgID, ok := f.restaurantOrgs[restaurantID]
	if !ok {
		return uuid.Nil, ErrRestaurantNotFound
	}
	return orgID, nil
}

func (f *fakeStore) ListForRestaurant(context.Context, uuid.UUID) ([]models.OrderWithUser, error) {
	return nil, nil
}

func (f *fakeStore) ListForUserWithRestaurants(context.Context, uuid.UUID) ([]models.OrderWithRestaurant, error) {
	return nil, nil
}

func (f *fakeStore) addRestaurant(orgID uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.restaurantOrgs[id] = orgID
	return id
}

func TestUpsertReplacesExistingOrder(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	orgID := uuid.New()
	restaurantID := store.addRestaurant(orgID)
	userID := uuid.New()

	first, err := svc.Upsert(context.Background(), userID, orgID, restaurantID, "  burrito  ")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if first.OrderDetails != "burrito" {
		t.Errorf("details = %q, want trimmed %q", first.OrderDetails, "burrito")
	}

	second, err := svc.Upsert(context.Background(), userID, orgID, restaurantID, "tacos")
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if len(store.orders) != 1 {
		t.Errorf("rows = %d, want exactly 1", len(store.orders))
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new row: %s vs %s", second.ID, first.ID)
	}
	if second.OrderDetails != "tacos" {
		t.Errorf("details = %q, want most recent write", second.OrderDetails)
	}
}

func TestUpsertValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	orgID := uuid.New()
	restaurantID := store.addRestaurant(orgID)

	if _, err := svc.Upsert(context.Background(), uuid.New(), orgID, restaurantID, "   "); !errors.Is(err, ErrEmptyDetails) {
		t.Errorf("blank details err = %v, want ErrEmptyDetails", err)
	}
	if _, err := svc.Upsert(context.Background(), uuid.New(), orgID, uuid.New(), "pizza"); !errors.Is(err, ErrRestaurantNotFound) {
		t.Errorf("unknown restaurant err = %v, want ErrRestaurantNotFound", err)
	}
}

func TestUpsertRejectsForeignOrganization(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	restaurantID := store.addRestaurant(uuid.New())
	otherOrg := uuid.New()

	if _, err := svc.Upsert(context.Background(), uuid.New(), otherOrg, restaurantID, "pizza"); !errors.Is(err, ErrWrongOrganization) {
		t.Errorf("err = %v, want ErrWrongOrganization", err)
	}
	if len(store.orders) != 0 {
		t.Error("cross-tenant order was written")
	}

	if _, err := svc.UpsertForUser(context.Background(), otherOrg, uuid.New(), restaurantID, "pizza"); !errors.Is(err, ErrWrongOrganization) {
		t.Errorf("admin variant err = %v, want ErrWrongOrganization", err)
	}
}

func TestDeleteThenReorderYieldsFreshRow(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	orgID := uuid.New()
	restaurantID := store.addRestaurant(orgID)
	userID := uuid.New()

	first, err := svc.Upsert(context.Background(), userID, orgID, restaurantID, "ramen")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := svc.Delete(context.Background(), userID, restaurantID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), userID, restaurantID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}

	again, err := svc.Upsert(context.Background(), userID, orgID, restaurantID, "ramen")
	if err != nil {
		t.Fatalf("re-order: %v", err)
	}
	if again.ID == first.ID {
		t.Error("re-order reused the deleted row's identity")
	}
}

func TestAdminEditsAreOrgChecked(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	orgID := uuid.New()
	restaurantID := store.addRestaurant(orgID)
	userID := uuid.New()

	order, err := svc.UpsertForUser(context.Background(), orgID, userID, restaurantID, "salad")
	if err != nil {
		t.Fatalf("UpsertForUser: %v", err)
	}

	foreignOrg := uuid.New()
	if err := svc.UpdateByID(context.Background(), foreignOrg, order.ID, "soup"); !errors.Is(err, ErrWrongOrganization) {
		t.Errorf("foreign update err = %v, want ErrWrongOrganization", err)
	}
	if err := svc.DeleteByID(context.Background(), foreignOrg, order.ID); !errors.Is(err, ErrWrongOrganization) {
		t.Errorf("foreign delete err = %v, want ErrWrongOrganization", err)
	}

	if err := svc.UpdateByID(context.Background(), orgID, order.ID, "soup"); err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}
	got, err := store.GetByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.OrderDetails != "soup" {
		t.Errorf("details = %q, want %q", got.OrderDetails, "soup")
	}
	if err := svc.DeleteByID(context.Background(), orgID, order.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
}
