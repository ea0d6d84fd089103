package dto

import "time"

// ActivitySummary is the wire shape for an audit trail entry.
type ActivitySummary struct {
	ID         string         `json:"id"`
	ActorID    *string        `json:"actorId,omitempty"`
	ActorName  string         `json:"actorName"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   *string        `json:"entityId,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
