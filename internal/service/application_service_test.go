package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jobtrackhq/jobtrack-service/internal/domain"
	"github.com/jobtrackhq/jobtrack-service/internal/events"
	"github.com/jobtrackhq/jobtrack-service/internal/repository"
	apperrors "github.com/jobtrackhq/jobtrack-service/pkg/util/errorutil"
)

func newTestApplicationService() (*ApplicationService, *memoryApplicationRepo) {
	repo := newMemoryApplicationRepo()
	svc := NewApplicationService(ApplicationDependencies{
		ApplicationRepo: repo,
		Dispatcher:      events.NewInMemoryDispatcher(),
	})
	return svc, repo
}

func TestCreateAppliesDefaultsAndSeedsHistory(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	app, err := svc.Create(ctx, "user-1", ApplicationCreateInput{
		Company:  "Acme",
		Position: "Engineer",
	})
	require.NoError(t, err)
	require.NotEmpty(t, app.ID)
	require.Equal(t, domain.StatusWishlist, app.Status)
	require.Equal(t, domain.PriorityMedium, app.Priority)
	require.Equal(t, domain.TypeFullTime, app.Type)
	require.Equal(t, domain.DefaultCurrency, app.Salary.Currency)
	require.Len(t, app.StatusHistory, 1)
	require.Equal(t, domain.StatusWishlist, app.StatusHistory[0].Status)
	require.WithinDuration(t, time.Now(), app.StatusHistory[0].ChangedAt, time.Minute)
}

func TestCreateTrimsCompanyAndPosition(t *testing.T) {
	svc, _ := newTestApplicationService()

	app, err := svc.Create(context.Background(), "user-1", ApplicationCreateInput{
		Company:  "  Acme  ",
		Position: " Engineer ",
	})
	require.NoError(t, err)
	require.Equal(t, "Acme", app.Company)
	require.Equal(t, "Engineer", app.Position)
}

func TestLifecycleCreateTransitionDelete(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	app, err := svc.Create(ctx, "user-1", ApplicationCreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, "user-1", app.ID, domain.StatusApplied)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApplied, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
	require.Equal(t, domain.StatusWishlist, updated.StatusHistory[0].Status)
	require.Equal(t, domain.StatusApplied, updated.StatusHistory[1].Status)

	deleted, err := svc.Delete(ctx, "user-1", app.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = svc.Get(ctx, "user-1", app.ID)
	requireHTTPStatus(t, err, http.StatusNotFound)
}

func TestStatusHistoryRecordsEveryTransitionInOrder(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	app, err := svc.Create(ctx, "user-1", ApplicationCreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	transitions := []domain.ApplicationStatus{
		domain.StatusApplied,
		domain.StatusInterview,
		domain.StatusOffer,
		domain.StatusAccepted,
	}
	for _, status := range transitions {
		_, err := svc.UpdateStatus(ctx, "user-1", app.ID, status)
		require.NoError(t, err)
	}

	got, err := svc.Get(ctx, "user-1", app.ID)
	require.NoError(t, err)
	require.Len(t, got.StatusHistory, 1+len(transitions))
	require.Equal(t, domain.StatusWishlist, got.StatusHistory[0].Status)
	for i, status := range transitions {
		require.Equal(t, status, got.StatusHistory[i+1].Status)
	}
}

func TestPartialUpdateWithStatusAppendsHistory(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	app, err := svc.Create(ctx, "user-1", ApplicationCreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	status := domain.StatusApplied
	updated, err := svc.UpdateFields(ctx, "user-1", app.ID, ApplicationUpdateInput{Status: &status})
	require.NoError(t, err)
	require.Equal(t, domain.StatusApplied, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
	require.Equal(t, domain.StatusApplied, updated.StatusHistory[1].Status)
}

func TestPartialUpdateLeavesOtherFieldsUntouched(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	followUp := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	app, err := svc.Create(ctx, "user-1", ApplicationCreateInput{
		Company:      "Acme",
		Position:     "Engineer",
		Location:     "Pune",
		FollowUpDate: &followUp,
	})
	require.NoError(t, err)

	notes := "spoke with the recruiter"
	updated, err := svc.UpdateFields(ctx, "user-1", app.ID, ApplicationUpdateInput{Notes: &notes})
	require.NoError(t, err)
	require.Equal(t, notes, updated.Notes)
	require.Equal(t, "Acme", updated.Company)
	require.Equal(t, "Pune", updated.Location)
	require.Equal(t, domain.StatusWishlist, updated.Status)
	require.Len(t, updated.StatusHistory, 1)
	require.NotNil(t, updated.FollowUpDate)
	require.True(t, updated.FollowUpDate.Equal(followUp))
}

func TestPartialUpdateClearsDate(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	followUp := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	app, err := svc.Create(ctx, "user-1", ApplicationCreateInput{
		Company:      "Acme",
		Position:     "Engineer",
		FollowUpDate: &followUp,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateFields(ctx, "user-1", app.ID, ApplicationUpdateInput{
		FollowUpDate: repository.OptionalTime{Set: true},
	})
	require.NoError(t, err)
	require.Nil(t, updated.FollowUpDate)
}

func TestUpdateNormalizesSalary(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	app, err := svc.Create(ctx, "user-1", ApplicationCreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	salary := domain.Salary{Min: -5, Max: 900000}
	updated, err := svc.UpdateFields(ctx, "user-1", app.ID, ApplicationUpdateInput{Salary: &salary})
	require.NoError(t, err)
	require.Equal(t, float64(0), updated.Salary.Min)
	require.Equal(t, float64(900000), updated.Salary.Max)
	require.Equal(t, domain.DefaultCurrency, updated.Salary.Currency)
}

func TestOwnershipScopesEveryOperation(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	app, err := svc.Create(ctx, "user-1", ApplicationCreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "user-2", app.ID)
	requireHTTPStatus(t, err, http.StatusNotFound)

	notes := "mine now"
	_, err = svc.UpdateFields(ctx, "user-2", app.ID, ApplicationUpdateInput{Notes: &notes})
	requireHTTPStatus(t, err, http.StatusNotFound)

	_, err = svc.UpdateStatus(ctx, "user-2", app.ID, domain.StatusApplied)
	requireHTTPStatus(t, err, http.StatusNotFound)

	deleted, err := svc.Delete(ctx, "user-2", app.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	// the record is intact for its owner
	got, err := svc.Get(ctx, "user-1", app.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme", got.Company)
	require.Equal(t, domain.StatusWishlist, got.Status)
}

func TestListNeverMixesUsers(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", ApplicationCreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-2", ApplicationCreateInput{Company: "Globex", Position: "Analyst"})
	require.NoError(t, err)

	apps, err := svc.List(ctx, "user-1", ListFilter{})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Equal(t, "Acme", apps[0].Company)

	apps, err = svc.List(ctx, "user-3", ListFilter{})
	require.NoError(t, err)
	require.Empty(t, apps)
	require.NotNil(t, apps)
}

func TestListFiltersByStatusAndPriority(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	seed := []struct {
		company  string
		status   domain.ApplicationStatus
		priority domain.ApplicationPriority
	}{
		{"Acme", domain.StatusApplied, domain.PriorityHigh},
		{"Globex", domain.StatusApplied, domain.PriorityLow},
		{"Initech", domain.StatusWishlist, domain.PriorityHigh},
	}
	for _, s := range seed {
		_, err := svc.Create(ctx, "user-1", ApplicationCreateInput{
			Company:  s.company,
			Position: "Engineer",
			Status:   s.status,
			Priority: s.priority,
		})
		require.NoError(t, err)
	}

	applied := domain.StatusApplied
	apps, err := svc.List(ctx, "user-1", ListFilter{Status: &applied})
	require.NoError(t, err)
	require.Len(t, apps, 2)

	high := domain.PriorityHigh
	apps, err = svc.List(ctx, "user-1", ListFilter{Status: &applied, Priority: &high})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Equal(t, "Acme", apps[0].Company)
}

func TestListSearchMatchesCompanyOrPosition(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", ApplicationCreateInput{Company: "Acme Labs", Position: "Engineer"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-1", ApplicationCreateInput{Company: "Globex", Position: "Lab Technician"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-1", ApplicationCreateInput{Company: "Initech", Position: "Analyst"})
	require.NoError(t, err)

	search := "LAB"
	apps, err := svc.List(ctx, "user-1", ListFilter{Search: &search, Sort: "company", Order: "asc"})
	require.NoError(t, err)
	require.Len(t, apps, 2)
	require.Equal(t, "Acme Labs", apps[0].Company)
	require.Equal(t, "Globex", apps[1].Company)
}

func TestListSortsByCompanyBothDirections(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	for _, company := range []string{"Globex", "Acme", "Initech"} {
		_, err := svc.Create(ctx, "user-1", ApplicationCreateInput{Company: company, Position: "Engineer"})
		require.NoError(t, err)
	}

	apps, err := svc.List(ctx, "user-1", ListFilter{Sort: "company", Order: "asc"})
	require.NoError(t, err)
	require.Equal(t, []string{"Acme", "Globex", "Initech"}, companies(apps))

	apps, err = svc.List(ctx, "user-1", ListFilter{Sort: "company", Order: "desc"})
	require.NoError(t, err)
	require.Equal(t, []string{"Initech", "Globex", "Acme"}, companies(apps))
}

func TestListEqualSortKeysKeepStorageOrder(t *testing.T) {
	svc, _ := newTestApplicationService()
	ctx := context.Background()

	for _, position := range []string{"First", "Second", "Third"} {
		_, err := svc.Create(ctx, "user-1", ApplicationCreateInput{Company: "Acme", Position: position})
		require.NoError(t, err)
	}

	apps, err := svc.List(ctx, "user-1", ListFilter{Sort: "company", Order: "asc"})
	require.NoError(t, err)
	require.Len(t, apps, 3)
	require.Equal(t, "First", apps[0].Position)
	require.Equal(t, "Second", apps[1].Position)
	require.Equal(t, "Third", apps[2].Position)
}

func TestUpdateStatusPublishesTransitionEvent(t *testing.T) {
	repo := newMemoryApplicationRepo()
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewApplicationService(ApplicationDependencies{
		ApplicationRepo: repo,
		Dispatcher:      dispatcher,
	})
	ctx := context.Background()

	var captured []events.Event
	dispatcher.Subscribe(events.EventApplicationStatusChanged, func(_ context.Context, event events.Event) error {
		captured = append(captured, event)
		return nil
	})

	app, err := svc.Create(ctx, "user-1", ApplicationCreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, "user-1", app.ID, domain.StatusApplied)
	require.NoError(t, err)

	require.Len(t, captured, 1)
	require.Equal(t, "user-1", captured[0].UserID)
	require.Equal(t, app.ID, captured[0].ApplicationID)
	payload, ok := captured[0].Payload.(events.ApplicationStatusChangedPayload)
	require.True(t, ok)
	require.Equal(t, domain.StatusWishlist, payload.OldStatus)
	require.Equal(t, domain.StatusApplied, payload.NewStatus)
}

func companies(apps []domain.Application) []string {
	out := make([]string, 0, len(apps))
	for _, app := range apps {
		out = append(out, app.Company)
	}
	return out
}

func requireHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, status, domainErr.HTTPStatus)
}
