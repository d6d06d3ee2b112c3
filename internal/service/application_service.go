package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jobtrackhq/jobtrack-service/internal/domain"
	"github.com/jobtrackhq/jobtrack-service/internal/events"
	"github.com/jobtrackhq/jobtrack-service/internal/repository"
	apperrors "github.com/jobtrackhq/jobtrack-service/pkg/util/errorutil"
)

// ApplicationService coordinates the application lifecycle. Every operation
// is scoped by the owning user; a record belonging to someone else is
// indistinguishable from an absent one.
type ApplicationService struct {
	applications repository.ApplicationRepository
	dispatcher   events.Dispatcher
}

// ApplicationDependencies bundles requirements for the service.
type ApplicationDependencies struct {
	ApplicationRepo repository.ApplicationRepository
	Dispatcher      events.Dispatcher
}

// ApplicationCreateInput describes a creation payload after boundary
// validation.
type ApplicationCreateInput struct {
	Company       string
	Position      string
	Status        domain.ApplicationStatus
	Priority      domain.ApplicationPriority
	JobURL        string
	Location      string
	Type          domain.JobType
	Salary        domain.Salary
	Notes         string
	AppliedDate   *time.Time
	InterviewDate *time.Time
	FollowUpDate  *time.Time
	Contacts      []domain.Contact
}

// ApplicationUpdateInput describes a partial update; nil pointers leave the
// stored field untouched.
type ApplicationUpdateInput struct {
	Company       *string
	Position      *string
	Status        *domain.ApplicationStatus
	Priority      *domain.ApplicationPriority
	JobURL        *string
	Location      *string
	Type          *domain.JobType
	Salary        *domain.Salary
	Notes         *string
	AppliedDate   repository.OptionalTime
	InterviewDate repository.OptionalTime
	FollowUpDate  repository.OptionalTime
	Contacts      []domain.Contact
}

// ListFilter captures the listing parameters accepted by List.
type ListFilter struct {
	Status   *domain.ApplicationStatus
	Priority *domain.ApplicationPriority
	Search   *string
	Sort     string
	Order    string
}

// NewApplicationService constructs the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	return &ApplicationService{
		applications: deps.ApplicationRepo,
		dispatcher:   deps.Dispatcher,
	}
}

// Create stores a new application with defaults applied and the audit trail
// seeded with the initial status.
func (s *ApplicationService) Create(ctx context.Context, userID string, input ApplicationCreateInput) (*domain.Application, error) {
	now := time.Now()
	app := &domain.Application{
		UserID:        userID,
		Company:       strings.TrimSpace(input.Company),
		Position:      strings.TrimSpace(input.Position),
		Status:        input.Status,
		Priority:      input.Priority,
		JobURL:        input.JobURL,
		Location:      input.Location,
		Type:          input.Type,
		Salary:        input.Salary,
		Notes:         input.Notes,
		AppliedDate:   input.AppliedDate,
		InterviewDate: input.InterviewDate,
		FollowUpDate:  input.FollowUpDate,
		Contacts:      input.Contacts,
	}
	app.ApplyDefaults()
	app.StatusHistory = []domain.StatusChange{{Status: app.Status, ChangedAt: now}}

	if err := s.applications.Create(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:          events.EventApplicationCreated,
		UserID:        userID,
		ApplicationID: app.ID,
		Payload: events.ApplicationCreatedPayload{
			Company:      app.Company,
			Position:     app.Position,
			Status:       app.Status,
			FollowUpDate: app.FollowUpDate,
		},
	})
	return app, nil
}

// Get fetches one application owned by the user.
func (s *ApplicationService) Get(ctx context.Context, userID, id string) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.mapLookupError(err)
	}
	return app, nil
}

// List returns the user's applications under the given filters, sorted by a
// single key with insertion order breaking ties.
func (s *ApplicationService) List(ctx context.Context, userID string, filter ListFilter) ([]domain.Application, error) {
	repoFilter := repository.ApplicationFilter{
		Status:   filter.Status,
		Priority: filter.Priority,
		Search:   filter.Search,
		Sort:     filter.Sort,
		Order:    filter.Order,
	}
	apps, err := s.applications.ListWithFilter(ctx, userID, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

// UpdateFields applies a partial update. A status present in the payload is
// routed through the history-appending path so the audit trail never skips
// a transition, regardless of which endpoint carried the change.
func (s *ApplicationService) UpdateFields(ctx context.Context, userID, id string, input ApplicationUpdateInput) (*domain.Application, error) {
	updates := repository.FieldUpdates{
		Company:       trimmed(input.Company),
		Position:      trimmed(input.Position),
		Status:        input.Status,
		Priority:      input.Priority,
		JobURL:        input.JobURL,
		Location:      input.Location,
		Type:          input.Type,
		Salary:        input.Salary,
		Notes:         input.Notes,
		AppliedDate:   input.AppliedDate,
		InterviewDate: input.InterviewDate,
		FollowUpDate:  input.FollowUpDate,
		Contacts:      input.Contacts,
	}
	if updates.Salary != nil {
		normalized := normalizeSalary(*updates.Salary)
		updates.Salary = &normalized
	}

	app, err := s.applications.UpdateFields(ctx, userID, id, updates)
	if err != nil {
		return nil, s.mapLookupError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:          events.EventApplicationUpdated,
		UserID:        userID,
		ApplicationID: app.ID,
		Payload: events.ApplicationUpdatedPayload{
			FollowUpDate: app.FollowUpDate,
		},
	})
	return app, nil
}

// UpdateStatus sets the new status and appends the audit entry atomically.
func (s *ApplicationService) UpdateStatus(ctx context.Context, userID, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	app, err := s.applications.UpdateStatus(ctx, userID, id, status)
	if err != nil {
		return nil, s.mapLookupError(err)
	}

	var oldStatus domain.ApplicationStatus
	if n := len(app.StatusHistory); n >= 2 {
		oldStatus = app.StatusHistory[n-2].Status
	}
	s.publishEvent(ctx, events.Event{
		Type:          events.EventApplicationStatusChanged,
		UserID:        userID,
		ApplicationID: app.ID,
		Payload: events.ApplicationStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return app, nil
}

// Delete hard-deletes the application; the result reports whether a record
// owned by the user was removed.
func (s *ApplicationService) Delete(ctx context.Context, userID, id string) (bool, error) {
	deleted, err := s.applications.Delete(ctx, userID, id)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	if deleted {
		s.publishEvent(ctx, events.Event{
			Type:          events.EventApplicationDeleted,
			UserID:        userID,
			ApplicationID: id,
		})
	}
	return deleted, nil
}

func (s *ApplicationService) mapLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("Application")
	}
	return apperrors.MapError(err)
}

func (s *ApplicationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func normalizeSalary(salary domain.Salary) domain.Salary {
	if salary.Min < 0 {
		salary.Min = 0
	}
	if salary.Max < 0 {
		salary.Max = 0
	}
	if salary.Currency == "" {
		salary.Currency = domain.DefaultCurrency
	}
	return salary
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	t := strings.TrimSpace(*value)
	return &t
}
