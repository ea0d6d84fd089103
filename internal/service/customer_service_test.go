package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealer-service/internal/domain"
	"github.com/spec-kit/dealer-service/internal/events"
	"github.com/spec-kit/dealer-service/internal/repository"
	"github.com/spec-kit/dealer-service/internal/service"
)

type fakeCustomerRepo struct {
	byEmail map[string]*domain.Customer
	created int
}

func newFakeCustomerRepo(customers ...*domain.Customer) *fakeCustomerRepo {
	repo := &fakeCustomerRepo{byEmail: make(map[string]*domain.Customer)}
	for _, customer := range customers {
		repo.byEmail[customer.Email] = customer
	}
	return repo
}

func (f *fakeCustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	f.created++
	customer.ID = fmt.Sprintf("c-%d", f.created)
	f.byEmail[customer.Email] = customer
	return nil
}

func (f *fakeCustomerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	f.byEmail[customer.Email] = customer
	return nil
}

func (f *fakeCustomerRepo) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeCustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	for _, customer := range f.byEmail {
		if customer.ID == id {
			return customer, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	if customer, ok := f.byEmail[email]; ok {
		return customer, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCustomerRepo) SearchByEmail(ctx context.Context, prefix string, limit int) ([]domain.Customer, error) {
	return nil, nil
}

func (f *fakeCustomerRepo) List(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	return nil, nil
}

type fakeVehicleRepo struct {
	byID     map[string]*domain.Vehicle
	assigned map[string]string
}

func newFakeVehicleRepo(vehicles ...*domain.Vehicle) *fakeVehicleRepo {
	repo := &fakeVehicleRepo{byID: make(map[string]*domain.Vehicle), assigned: make(map[string]string)}
	for _, vehicle := range vehicles {
		repo.byID[vehicle.ID] = vehicle
	}
	return repo
}

func (f *fakeVehicleRepo) Create(ctx context.Context, vehicle *domain.Vehicle) error { return nil }
func (f *fakeVehicleRepo) Update(ctx context.Context, vehicle *domain.Vehicle) error { return nil }
func (f *fakeVehicleRepo) Delete(ctx context.Context, id string) error               { return nil }

func (f *fakeVehicleRepo) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	if vehicle, ok := f.byID[id]; ok {
		return vehicle, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeVehicleRepo) GetByVIN(ctx context.Context, vin string) (*domain.Vehicle, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeVehicleRepo) List(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, error) {
	return nil, nil
}

func (f *fakeVehicleRepo) ListLocations(ctx context.Context) ([]domain.VehicleLocation, error) {
	return nil, nil
}

func (f *fakeVehicleRepo) AssignCustomer(ctx context.Context, vehicleID, customerID string) error {
	f.assigned[vehicleID] = customerID
	return nil
}

func collectEvents(dispatcher events.Dispatcher, types ...events.EventType) *[]events.Event {
	var published []events.Event
	for _, eventType := range types {
		dispatcher.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			published = append(published, event)
			return nil
		})
	}
	return &published
}

func TestAssignCustomerReusesExistingByEmail(t *testing.T) {
	existing := &domain.Customer{ID: "c-1", Email: "ada@dealer.test", FirstName: "Ada"}
	customers := newFakeCustomerRepo(existing)
	vehicles := newFakeVehicleRepo(&domain.Vehicle{ID: "v-1", VIN: "1HG", Status: domain.VehicleStatusAvailable})
	dispatcher := events.NewInMemoryDispatcher()
	published := collectEvents(dispatcher, events.EventCustomerCreated, events.EventVehicleAssigned)

	svc := service.NewCustomerService(customers, vehicles, dispatcher, nil)
	actor := &domain.User{ID: "u-1", FirstName: "Sam", LastName: "Seller"}

	customer, err := svc.AssignCustomer(context.Background(), actor, service.AssignInput{
		VehicleID: "v-1",
		Email:     "ada@dealer.test",
		FirstName: "Different",
	})
	require.NoError(t, err)

	// Matched by email: no duplicate record, existing details win.
	require.Equal(t, "c-1", customer.ID)
	require.Equal(t, "Ada", customer.FirstName)
	require.Zero(t, customers.created)
	require.Equal(t, "c-1", vehicles.assigned["v-1"])

	require.Len(t, *published, 1)
	assignedEvent := (*published)[0]
	require.Equal(t, events.EventVehicleAssigned, assignedEvent.Type)
	require.Equal(t, "vehicle", assignedEvent.EntityType)
	require.Equal(t, "v-1", assignedEvent.EntityID)
	require.Equal(t, "Sam Seller", assignedEvent.Actor.Name)
}

func TestAssignCustomerCreatesWhenMissing(t *testing.T) {
	customers := newFakeCustomerRepo()
	vehicles := newFakeVehicleRepo(&domain.Vehicle{ID: "v-1", VIN: "1HG", Status: domain.VehicleStatusAvailable})
	dispatcher := events.NewInMemoryDispatcher()
	published := collectEvents(dispatcher, events.EventCustomerCreated, events.EventVehicleAssigned)

	svc := service.NewCustomerService(customers, vehicles, dispatcher, nil)

	customer, err := svc.AssignCustomer(context.Background(), nil, service.AssignInput{
		VehicleID:   "v-1",
		Email:       "new@dealer.test",
		FirstName:   "New",
		LastName:    "Buyer",
		PhoneNumber: "555-0101",
	})
	require.NoError(t, err)

	require.Equal(t, 1, customers.created)
	require.Equal(t, customer.ID, vehicles.assigned["v-1"])
	require.Len(t, *published, 2)
	require.Equal(t, events.EventCustomerCreated, (*published)[0].Type)
	require.Equal(t, events.EventVehicleAssigned, (*published)[1].Type)
}

func TestAssignCustomerRejectsSoldVehicle(t *testing.T) {
	customers := newFakeCustomerRepo()
	vehicles := newFakeVehicleRepo(&domain.Vehicle{ID: "v-1", Status: domain.VehicleStatusSold})

	svc := service.NewCustomerService(customers, vehicles, events.NewInMemoryDispatcher(), nil)

	_, err := svc.AssignCustomer(context.Background(), nil, service.AssignInput{
		VehicleID: "v-1",
		Email:     "ada@dealer.test",
	})
	require.ErrorContains(t, err, "already sold")
	require.Zero(t, customers.created)
	require.Empty(t, vehicles.assigned)
}

func TestAssignCustomerUnknownVehicle(t *testing.T) {
	svc := service.NewCustomerService(newFakeCustomerRepo(), newFakeVehicleRepo(), events.NewInMemoryDispatcher(), nil)

	_, err := svc.AssignCustomer(context.Background(), nil, service.AssignInput{
		VehicleID: "missing",
		Email:     "ada@dealer.test",
	})
	require.ErrorContains(t, err, "not found")
}

func TestSearchByEmailBlankInput(t *testing.T) {
	svc := service.NewCustomerService(newFakeCustomerRepo(), newFakeVehicleRepo(), nil, nil)

	candidates, err := svc.SearchByEmail(context.Background(), "   ")
	require.NoError(t, err)
	require.Nil(t, candidates)
}
