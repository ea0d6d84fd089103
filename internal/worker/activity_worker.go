package worker

import (
	"github.com/spec-kit/dealer-service/internal/service"
)

// StartActivityWorker registers the audit trail recorder.
func StartActivityWorker(activityService *service.ActivityService) {
	if activityService == nil {
		return
	}
	activityService.RegisterHandlers()
}
