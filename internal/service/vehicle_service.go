package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/dealer-service/internal/domain"
	"github.com/spec-kit/dealer-service/internal/events"
	"github.com/spec-kit/dealer-service/internal/repository"
	apperrors "github.com/spec-kit/dealer-service/pkg/util/errorutil"
)

// VehicleService manages inventory vehicles.
type VehicleService struct {
	vehicles   repository.VehicleRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewVehicleService builds the service.
func NewVehicleService(vehicles repository.VehicleRepository, dispatcher events.Dispatcher, logger *zap.Logger) *VehicleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VehicleService{vehicles: vehicles, dispatcher: dispatcher, logger: logger}
}

// VehicleInput carries vehicle fields for create/update.
type VehicleInput struct {
	VIN       string
	Make      string
	Model     string
	Year      int
	Price     float64
	Status    domain.VehicleStatus
	Latitude  *float64
	Longitude *float64
}

// CreateVehicle adds a unit to inventory.
func (s *VehicleService) CreateVehicle(ctx context.Context, actor *domain.User, input VehicleInput) (*domain.Vehicle, error) {
	if _, err := s.vehicles.GetByVIN(ctx, input.VIN); err == nil {
		return nil, apperrors.NewConflict("VIN already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.VehicleStatusAvailable
	}

	vehicle := &domain.Vehicle{
		VIN:       input.VIN,
		Make:      input.Make,
		Model:     input.Model,
		Year:      input.Year,
		Price:     input.Price,
		Status:    status,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventVehicleCreated, vehicle.ID, actor, events.VehicleChangedPayload{
		VIN:    vehicle.VIN,
		Make:   vehicle.Make,
		Model:  vehicle.Model,
		Status: vehicle.Status,
	})
	return vehicle, nil
}

// UpdateVehicle applies changes to an existing unit.
func (s *VehicleService) UpdateVehicle(ctx context.Context, actor *domain.User, id string, input VehicleInput) (*domain.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("vehicle", nil)
		}
		return nil, err
	}

	vehicle.VIN = input.VIN
	vehicle.Make = input.Make
	vehicle.Model = input.Model
	vehicle.Year = input.Year
	vehicle.Price = input.Price
	if input.Status != "" {
		vehicle.Status = input.Status
	}
	vehicle.Latitude = input.Latitude
	vehicle.Longitude = input.Longitude

	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventVehicleUpdated, vehicle.ID, actor, events.VehicleChangedPayload{
		VIN:    vehicle.VIN,
		Make:   vehicle.Make,
		Model:  vehicle.Model,
		Status: vehicle.Status,
	})
	return vehicle, nil
}

// DeleteVehicle removes a unit from inventory.
func (s *VehicleService) DeleteVehicle(ctx context.Context, actor *domain.User, id string) error {
	if err := s.vehicles.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("vehicle", nil)
		}
		return err
	}
	s.publish(ctx, events.EventVehicleDeleted, id, actor, nil)
	return nil
}

// GetVehicle fetches one vehicle.
func (s *VehicleService) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("vehicle", nil)
		}
		return nil, err
	}
	return vehicle, nil
}

// ListVehicles returns vehicles matching the filter.
func (s *VehicleService) ListVehicles(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, error) {
	return s.vehicles.List(ctx, filter)
}

// ListLocations returns the locator projection for vehicles with coordinates.
func (s *VehicleService) ListLocations(ctx context.Context) ([]domain.VehicleLocation, error) {
	return s.vehicles.ListLocations(ctx)
}

func (s *VehicleService) publish(ctx context.Context, eventType events.EventType, entityID string, actor *domain.User, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityType: "vehicle",
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
