package domain

import "time"

// ActivityAction enumerates auditable actions.
type ActivityAction string

const (
	ActionVehicleCreated  ActivityAction = "vehicle_created"
	ActionVehicleUpdated  ActivityAction = "vehicle_updated"
	ActionVehicleAssigned ActivityAction = "vehicle_assigned"
	ActionVehicleDeleted  ActivityAction = "vehicle_deleted"
	ActionCustomerCreated ActivityAction = "customer_created"
	ActionCustomerUpdated ActivityAction = "customer_updated"
	ActionCustomerDeleted ActivityAction = "customer_deleted"
	ActionUserCreated     ActivityAction = "user_created"
	ActionUserUpdated     ActivityAction = "user_updated"
	ActionUserLoggedIn    ActivityAction = "user_logged_in"
)

// Activity is one audit trail entry. ActorID is nil for unauthenticated
// actions such as account activation.
type Activity struct {
	ID         string
	ActorID    *string
	ActorName  string
	Action     ActivityAction
	EntityType string
	EntityID   *string
	Metadata   map[string]any
	CreatedAt  time.Time
}
