package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/dealer-service/internal/domain"
	"github.com/spec-kit/dealer-service/internal/events"
	"github.com/spec-kit/dealer-service/internal/repository"
	apperrors "github.com/spec-kit/dealer-service/pkg/util/errorutil"
)

// CustomerService manages customer records and vehicle assignment.
type CustomerService struct {
	customers  repository.CustomerRepository
	vehicles   repository.VehicleRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewCustomerService builds the service.
func NewCustomerService(customers repository.CustomerRepository, vehicles repository.VehicleRepository, dispatcher events.Dispatcher, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{customers: customers, vehicles: vehicles, dispatcher: dispatcher, logger: logger}
}

// CustomerInput carries customer fields for create/update.
type CustomerInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

// CreateCustomer registers a new customer record.
func (s *CustomerService) CreateCustomer(ctx context.Context, actor *domain.User, input CustomerInput) (*domain.Customer, error) {
	if _, err := s.customers.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("customer email already exists", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	customer := &domain.Customer{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventCustomerCreated, customer.ID, actor, events.CustomerChangedPayload{
		Email: customer.Email,
		Name:  customer.FirstName + " " + customer.LastName,
	})
	return customer, nil
}

// UpdateCustomer applies changes to an existing customer.
func (s *CustomerService) UpdateCustomer(ctx context.Context, actor *domain.User, id string, input CustomerInput) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("customer", nil)
		}
		return nil, err
	}

	customer.FirstName = input.FirstName
	customer.LastName = input.LastName
	customer.Email = input.Email
	customer.PhoneNumber = input.PhoneNumber
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventCustomerUpdated, customer.ID, actor, events.CustomerChangedPayload{
		Email: customer.Email,
		Name:  customer.FirstName + " " + customer.LastName,
	})
	return customer, nil
}

// DeleteCustomer removes a customer record.
func (s *CustomerService) DeleteCustomer(ctx context.Context, actor *domain.User, id string) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("customer", nil)
		}
		return err
	}
	s.publish(ctx, events.EventCustomerDeleted, id, actor, nil)
	return nil
}

// GetCustomer fetches one customer.
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("customer", nil)
		}
		return nil, err
	}
	return customer, nil
}

// ListCustomers returns a page of customers.
func (s *CustomerService) ListCustomers(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	return s.customers.List(ctx, limit, offset)
}

// SearchByEmail resolves an email prefix to candidate customers for the
// assignment autocomplete. Blank input yields no candidates.
func (s *CustomerService) SearchByEmail(ctx context.Context, email string) ([]domain.Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	return s.customers.SearchByEmail(ctx, email, 10)
}

// AssignInput carries the assignment form payload: a vehicle plus either an
// existing customer (matched by email) or details for a new one.
type AssignInput struct {
	VehicleID   string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

// AssignCustomer finds or creates the customer by email and assigns it to the
// vehicle, reserving the unit.
func (s *CustomerService) AssignCustomer(ctx context.Context, actor *domain.User, input AssignInput) (*domain.Customer, error) {
	vehicle, err := s.vehicles.GetByID(ctx, input.VehicleID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("vehicle", nil)
		}
		return nil, err
	}
	if vehicle.Status == domain.VehicleStatusSold {
		return nil, apperrors.NewConflict("vehicle already sold", nil)
	}

	customer, err := s.customers.GetByEmail(ctx, input.Email)
	if err == pgx.ErrNoRows {
		customer = &domain.Customer{
			FirstName:   input.FirstName,
			LastName:    input.LastName,
			Email:       input.Email,
			PhoneNumber: input.PhoneNumber,
		}
		if err := s.customers.Create(ctx, customer); err != nil {
			return nil, err
		}
		s.publish(ctx, events.EventCustomerCreated, customer.ID, actor, events.CustomerChangedPayload{
			Email: customer.Email,
			Name:  customer.FirstName + " " + customer.LastName,
		})
	} else if err != nil {
		return nil, err
	}

	if err := s.vehicles.AssignCustomer(ctx, vehicle.ID, customer.ID); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventVehicleAssigned, vehicle.ID, actor, events.VehicleAssignedPayload{
		CustomerID:    customer.ID,
		CustomerEmail: customer.Email,
		VIN:           vehicle.VIN,
	})
	return customer, nil
}

func (s *CustomerService) publish(ctx context.Context, eventType events.EventType, entityID string, actor *domain.User, payload any) {
	if s.dispatcher == nil {
		return
	}
	entityType := "customer"
	if eventType == events.EventVehicleAssigned {
		entityType = "vehicle"
	}
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Timestamp:  time.Now(),
		Payload:    payload,
	}
	if actor != nil {
		id := actor.ID
		event.Actor = events.Actor{UserID: &id, Name: actor.FullName()}
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("type", string(eventType)), zap.Error(err))
	}
}
