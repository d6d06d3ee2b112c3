package worker

import (
	"github.com/jobtrackhq/jobtrack-service/internal/service"
)

// StartReminderWorker registers follow-up reminder handlers.
func StartReminderWorker(reminderService *service.ReminderService) {
	if reminderService == nil {
		return
	}
	reminderService.RegisterHandlers()
}
