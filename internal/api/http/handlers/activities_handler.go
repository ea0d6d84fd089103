package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dealer-service/internal/api/dto"
	"github.com/spec-kit/dealer-service/internal/repository"
	"github.com/spec-kit/dealer-service/internal/service"
)

// ActivitiesHandler serves the activity history screen.
type ActivitiesHandler struct {
	activities *service.ActivityService
}

// NewActivitiesHandler constructs handler.
func NewActivitiesHandler(activityService *service.ActivityService) *ActivitiesHandler {
	return &ActivitiesHandler{activities: activityService}
}

// List handles GET /activities.
func (h *ActivitiesHandler) List(c *fiber.Ctx) error {
	filter := repository.ActivityFilter{
		Limit:  parseIntQuery(c, "limit", 100),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if v := c.Query("actorId"); v != "" {
		filter.ActorID = &v
	}
	if v := c.Query("entityType"); v != "" {
		filter.EntityType = &v
	}
	if v := c.Query("entityId"); v != "" {
		filter.EntityID = &v
	}

	activities, err := h.activities.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ActivitySummary, 0, len(activities))
	for _, activity := range activities {
		items = append(items, dto.ActivitySummary{
			ID:         activity.ID,
			ActorID:    activity.ActorID,
			ActorName:  activity.ActorName,
			Action:     string(activity.Action),
			EntityType: activity.EntityType,
			EntityID:   activity.EntityID,
			Metadata:   activity.Metadata,
			CreatedAt:  activity.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
