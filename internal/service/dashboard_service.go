package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jobtrackhq/jobtrack-service/internal/domain"
	"github.com/jobtrackhq/jobtrack-service/internal/events"
	"github.com/jobtrackhq/jobtrack-service/internal/repository"
	apperrors "github.com/jobtrackhq/jobtrack-service/pkg/util/errorutil"
)

const recentApplicationsLimit = 5

// DashboardStats is the aggregate view backing the dashboard. StatusCounts
// holds only statuses the user actually has; absent statuses are absent,
// not zero.
type DashboardStats struct {
	StatusCounts       map[domain.ApplicationStatus]int64 `json:"statusCounts"`
	TotalCount         int64                              `json:"totalCount"`
	ResponseRate       int                                `json:"responseRate"`
	RecentApplications []domain.Application               `json:"recentApplications"`
}

// FollowUpGroups buckets follow-ups by due date relative to a reference
// time.
type FollowUpGroups struct {
	Overdue  []domain.Application `json:"overdue"`
	Today    []domain.Application `json:"today"`
	ThisWeek []domain.Application `json:"thisWeek"`
	Later    []domain.Application `json:"later"`
}

// DashboardService derives read-only views over a user's applications.
type DashboardService struct {
	applications repository.ApplicationRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// DashboardDependencies bundles requirements for the service.
type DashboardDependencies struct {
	ApplicationRepo repository.ApplicationRepository
	Cache           *redis.Client
	CacheTTL        time.Duration
	Logger          *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	return &DashboardService{
		applications: deps.ApplicationRepo,
		cache:        deps.Cache,
		cacheTTL:     deps.CacheTTL,
		logger:       deps.Logger,
	}
}

// Stats computes the dashboard aggregates, serving from the per-user cache
// when a fresh copy exists.
func (s *DashboardService) Stats(ctx context.Context, userID string) (*DashboardStats, error) {
	if cached := s.cachedStats(ctx, userID); cached != nil {
		return cached, nil
	}

	counts, err := s.applications.CountByStatus(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	total, err := s.applications.CountAll(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	recent, err := s.applications.ListRecent(ctx, userID, recentApplicationsLimit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if recent == nil {
		recent = []domain.Application{}
	}

	statusCounts := make(map[domain.ApplicationStatus]int64, len(counts))
	for _, count := range counts {
		statusCounts[count.Status] = count.Count
	}

	stats := &DashboardStats{
		StatusCounts:       statusCounts,
		TotalCount:         total,
		ResponseRate:       ResponseRate(statusCounts),
		RecentApplications: recent,
	}
	s.storeStats(ctx, userID, stats)
	return stats, nil
}

// UpcomingFollowUps lists active applications with a follow-up reminder,
// soonest first.
func (s *DashboardService) UpcomingFollowUps(ctx context.Context, userID string) ([]domain.Application, error) {
	apps, err := s.applications.ListFollowUps(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

// ResponseRate derives the percentage of applications that progressed past
// the applied stage, rounded to the nearest whole number. Zero when there is
// nothing to measure.
func ResponseRate(statusCounts map[domain.ApplicationStatus]int64) int {
	interviews := statusCounts[domain.StatusInterview]
	offers := statusCounts[domain.StatusOffer]
	applied := statusCounts[domain.StatusApplied]

	denominator := applied + interviews + offers
	if denominator == 0 {
		return 0
	}
	return int(math.Round(float64(interviews+offers) / float64(denominator) * 100))
}

// GroupFollowUps partitions applications by followUpDate relative to now
// using day-granularity boundaries. Input order is preserved within each
// bucket. Entries without a follow-up date are skipped.
func GroupFollowUps(items []domain.Application, now time.Time) FollowUpGroups {
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfToday := startOfToday.AddDate(0, 0, 1)
	endOfWeek := startOfToday.AddDate(0, 0, 7)

	groups := FollowUpGroups{
		Overdue:  []domain.Application{},
		Today:    []domain.Application{},
		ThisWeek: []domain.Application{},
		Later:    []domain.Application{},
	}
	for _, item := range items {
		if item.FollowUpDate == nil {
			continue
		}
		due := *item.FollowUpDate
		switch {
		case due.Before(startOfToday):
			groups.Overdue = append(groups.Overdue, item)
		case due.Before(endOfToday):
			groups.Today = append(groups.Today, item)
		case due.Before(endOfWeek):
			groups.ThisWeek = append(groups.ThisWeek, item)
		default:
			groups.Later = append(groups.Later, item)
		}
	}
	return groups
}

// RegisterInvalidationHandlers drops the cached stats whenever the user's
// applications change.
func (s *DashboardService) RegisterInvalidationHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	invalidate := func(ctx context.Context, event events.Event) error {
		s.invalidateStats(ctx, event.UserID)
		return nil
	}
	dispatcher.Subscribe(events.EventApplicationCreated, invalidate)
	dispatcher.Subscribe(events.EventApplicationUpdated, invalidate)
	dispatcher.Subscribe(events.EventApplicationStatusChanged, invalidate)
	dispatcher.Subscribe(events.EventApplicationDeleted, invalidate)
}

func statsKey(userID string) string {
	return "jobtrack:stats:" + userID
}

func (s *DashboardService) cachedStats(ctx context.Context, userID string) *DashboardStats {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	var stats DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *DashboardService) storeStats(ctx context.Context, userID string, stats *DashboardStats) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsKey(userID), raw, s.cacheTTL).Err(); err != nil && s.logger != nil {
		s.logger.Debug("stats cache write failed", zap.Error(err))
	}
}

func (s *DashboardService) invalidateStats(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsKey(userID)).Err(); err != nil && s.logger != nil {
		s.logger.Debug("stats cache invalidation failed", zap.Error(err))
	}
}
