package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/jobtrackhq/jobtrack-service/internal/events"
)

// ReminderService observes application events and surfaces follow-up
// activity in the logs.
type ReminderService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewReminderService creates the service.
func NewReminderService(dispatcher events.Dispatcher, logger *zap.Logger) *ReminderService {
	return &ReminderService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (r *ReminderService) RegisterHandlers() {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.Subscribe(events.EventApplicationCreated, r.handleApplicationCreated)
	r.dispatcher.Subscribe(events.EventApplicationUpdated, r.handleApplicationUpdated)
	r.dispatcher.Subscribe(events.EventApplicationStatusChanged, r.handleStatusChanged)
}

func (r *ReminderService) handleApplicationCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ApplicationCreatedPayload)
	if ok && payload.FollowUpDate != nil {
		r.logger.Info("follow-up scheduled",
			zap.String("application_id", event.ApplicationID),
			zap.Time("follow_up_date", *payload.FollowUpDate))
	}
	return nil
}

func (r *ReminderService) handleApplicationUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ApplicationUpdatedPayload)
	if ok && payload.FollowUpDate != nil {
		r.logger.Info("follow-up rescheduled",
			zap.String("application_id", event.ApplicationID),
			zap.Time("follow_up_date", *payload.FollowUpDate))
	}
	return nil
}

func (r *ReminderService) handleStatusChanged(ctx context.Context, event events.Event) error {
	r.logger.Info("application status changed",
		zap.String("application_id", event.ApplicationID),
		zap.Any("payload", event.Payload))
	return nil
}
