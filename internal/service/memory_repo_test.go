package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jobtrackhq/jobtrack-service/internal/domain"
	"github.com/jobtrackhq/jobtrack-service/internal/repository"
)

// memoryApplicationRepo mirrors the SQL repository's semantics over an
// in-memory slice; slice position stands in for insertion order.
type memoryApplicationRepo struct {
	mu   sync.Mutex
	apps []*domain.Application
}

func newMemoryApplicationRepo() *memoryApplicationRepo {
	return &memoryApplicationRepo{}
}

func (m *memoryApplicationRepo) Create(_ context.Context, app *domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	app.ID = uuid.NewString()
	app.CreatedAt = now
	app.UpdatedAt = now
	stored := cloneApp(app)
	m.apps = append(m.apps, &stored)
	return nil
}

func (m *memoryApplicationRepo) GetByID(_ context.Context, userID, id string) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app := m.find(userID, id)
	if app == nil {
		return nil, pgx.ErrNoRows
	}
	out := cloneApp(app)
	return &out, nil
}

func (m *memoryApplicationRepo) ListWithFilter(_ context.Context, userID string, filter repository.ApplicationFilter) ([]domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []domain.Application
	for _, app := range m.apps {
		if app.UserID != userID {
			continue
		}
		if filter.Status != nil && app.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && app.Priority != *filter.Priority {
			continue
		}
		if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
			needle := strings.ToLower(strings.TrimSpace(*filter.Search))
			if !strings.Contains(strings.ToLower(app.Company), needle) &&
				!strings.Contains(strings.ToLower(app.Position), needle) {
				continue
			}
		}
		result = append(result, cloneApp(app))
	}

	desc := !strings.EqualFold(filter.Order, "asc")
	key := filter.Sort
	sort.SliceStable(result, func(i, j int) bool {
		less := appLess(result[i], result[j], key)
		if desc {
			return appLess(result[j], result[i], key)
		}
		return less
	})
	return result, nil
}

func (m *memoryApplicationRepo) UpdateFields(_ context.Context, userID, id string, updates repository.FieldUpdates) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app := m.find(userID, id)
	if app == nil {
		return nil, pgx.ErrNoRows
	}

	now := time.Now()
	if updates.Company != nil {
		app.Company = *updates.Company
	}
	if updates.Position != nil {
		app.Position = *updates.Position
	}
	if updates.Priority != nil {
		app.Priority = *updates.Priority
	}
	if updates.JobURL != nil {
		app.JobURL = *updates.JobURL
	}
	if updates.Location != nil {
		app.Location = *updates.Location
	}
	if updates.Type != nil {
		app.Type = *updates.Type
	}
	if updates.Salary != nil {
		app.Salary = *updates.Salary
	}
	if updates.Notes != nil {
		app.Notes = *updates.Notes
	}
	if updates.AppliedDate.Set {
		app.AppliedDate = updates.AppliedDate.Time
	}
	if updates.InterviewDate.Set {
		app.InterviewDate = updates.InterviewDate.Time
	}
	if updates.FollowUpDate.Set {
		app.FollowUpDate = updates.FollowUpDate.Time
	}
	if updates.Contacts != nil {
		app.Contacts = append([]domain.Contact{}, updates.Contacts...)
	}
	if updates.Status != nil {
		app.Status = *updates.Status
		app.StatusHistory = append(app.StatusHistory, domain.StatusChange{Status: *updates.Status, ChangedAt: now})
	}
	app.UpdatedAt = now

	out := cloneApp(app)
	return &out, nil
}

func (m *memoryApplicationRepo) UpdateStatus(_ context.Context, userID, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app := m.find(userID, id)
	if app == nil {
		return nil, pgx.ErrNoRows
	}
	now := time.Now()
	app.Status = status
	app.UpdatedAt = now
	app.StatusHistory = append(app.StatusHistory, domain.StatusChange{Status: status, ChangedAt: now})

	out := cloneApp(app)
	return &out, nil
}

func (m *memoryApplicationRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, app := range m.apps {
		if app.ID == id && app.UserID == userID {
			m.apps = append(m.apps[:i], m.apps[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryApplicationRepo) CountByStatus(_ context.Context, userID string) ([]repository.StatusCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[domain.ApplicationStatus]int64{}
	for _, app := range m.apps {
		if app.UserID == userID {
			counts[app.Status]++
		}
	}
	var result []repository.StatusCount
	for status, count := range counts {
		result = append(result, repository.StatusCount{Status: status, Count: count})
	}
	return result, nil
}

func (m *memoryApplicationRepo) CountAll(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, app := range m.apps {
		if app.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *memoryApplicationRepo) ListRecent(_ context.Context, userID string, limit int) ([]domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Application
	// walk newest-first; slice order is insertion order
	for i := len(m.apps) - 1; i >= 0; i-- {
		if m.apps[i].UserID != userID {
			continue
		}
		result = append(result, cloneApp(m.apps[i]))
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *memoryApplicationRepo) ListFollowUps(_ context.Context, userID string) ([]domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Application
	for _, app := range m.apps {
		if app.UserID != userID || app.FollowUpDate == nil {
			continue
		}
		if app.Status == domain.StatusRejected || app.Status == domain.StatusAccepted {
			continue
		}
		result = append(result, cloneApp(app))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].FollowUpDate.Before(*result[j].FollowUpDate)
	})
	return result, nil
}

func (m *memoryApplicationRepo) find(userID, id string) *domain.Application {
	for _, app := range m.apps {
		if app.ID == id && app.UserID == userID {
			return app
		}
	}
	return nil
}

func cloneApp(app *domain.Application) domain.Application {
	out := *app
	out.Contacts = append([]domain.Contact{}, app.Contacts...)
	out.StatusHistory = append([]domain.StatusChange{}, app.StatusHistory...)
	return out
}

func appLess(a, b domain.Application, key string) bool {
	switch key {
	case "company":
		return a.Company < b.Company
	case "position":
		return a.Position < b.Position
	case "status":
		return a.Status < b.Status
	case "priority":
		return a.Priority < b.Priority
	case "updatedAt":
		return a.UpdatedAt.Before(b.UpdatedAt)
	case "appliedDate":
		return timePtrLess(a.AppliedDate, b.AppliedDate)
	case "followUpDate":
		return timePtrLess(a.FollowUpDate, b.FollowUpDate)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func timePtrLess(a, b *time.Time) bool {
	if a == nil || b == nil {
		return b != nil
	}
	return a.Before(*b)
}
