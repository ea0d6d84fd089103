package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/dealer-service/internal/domain"
	"github.com/spec-kit/dealer-service/internal/events"
	"github.com/spec-kit/dealer-service/internal/repository"
)

// ActivityService records audit trail entries for domain events and serves
// the activity history screen.
type ActivityService struct {
	activities repository.ActivityRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(activities repository.ActivityRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{activities: activities, dispatcher: dispatcher, logger: logger}
}

var eventActions = map[events.EventType]domain.ActivityAction{
	events.EventVehicleCreated:  domain.ActionVehicleCreated,
	events.EventVehicleUpdated:  domain.ActionVehicleUpdated,
	events.EventVehicleAssigned: domain.ActionVehicleAssigned,
	events.EventVehicleDeleted:  domain.ActionVehicleDeleted,
	events.EventCustomerCreated: domain.ActionCustomerCreated,
	events.EventCustomerUpdated: domain.ActionCustomerUpdated,
	events.EventCustomerDeleted: domain.ActionCustomerDeleted,
	events.EventUserCreated:     domain.ActionUserCreated,
	events.EventUserUpdated:     domain.ActionUserUpdated,
	events.EventUserLoggedIn:    domain.ActionUserLoggedIn,
}

// RegisterHandlers subscribes the recorder to every auditable event type.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for eventType := range eventActions {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

// List returns activity entries matching the filter, newest first.
func (a *ActivityService) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	return a.activities.List(ctx, filter)
}

func (a *ActivityService) record(ctx context.Context, event events.Event) error {
	action, ok := eventActions[event.Type]
	if !ok {
		return nil
	}

	entityID := event.EntityID
	activity := &domain.Activity{
		ActorID:    event.Actor.UserID,
		ActorName:  event.Actor.Name,
		Action:     action,
		EntityType: event.EntityType,
		EntityID:   &entityID,
		Metadata:   toMetadata(event.Payload),
	}
	if err := a.activities.Create(ctx, activity); err != nil {
		a.logger.Error("record activity", zap.String("event", string(event.Type)), zap.Error(err))
		return err
	}
	return nil
}

// toMetadata flattens an event payload into the jsonb column shape.
func toMetadata(payload any) map[string]any {
	if payload == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}
	return meta
}
