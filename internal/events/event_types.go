package events

import (
	"time"

	"github.com/spec-kit/dealer-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventVehicleCreated  EventType = "vehicle_created"
	EventVehicleUpdated  EventType = "vehicle_updated"
	EventVehicleAssigned EventType = "vehicle_assigned"
	EventVehicleDeleted  EventType = "vehicle_deleted"
	EventCustomerCreated EventType = "customer_created"
	EventCustomerUpdated EventType = "customer_updated"
	EventCustomerDeleted EventType = "customer_deleted"
	EventUserCreated     EventType = "user_created"
	EventUserUpdated     EventType = "user_updated"
	EventUserLoggedIn    EventType = "user_logged_in"
)

// Actor encapsulates actor metadata for an event. Nil UserID means the action
// was unauthenticated (activation, password reset).
type Actor struct {
	UserID *string `json:"user_id,omitempty"`
	Name   string  `json:"name"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// VehicleAssignedPayload payload.
type VehicleAssignedPayload struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	VIN           string `json:"vin"`
}

// VehicleChangedPayload payload for create/update events.
type VehicleChangedPayload struct {
	VIN    string               `json:"vin"`
	Make   string               `json:"make"`
	Model  string               `json:"model"`
	Status domain.VehicleStatus `json:"status"`
}

// CustomerChangedPayload payload.
type CustomerChangedPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserChangedPayload payload.
type UserChangedPayload struct {
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}
