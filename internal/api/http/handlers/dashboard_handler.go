package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jobtrackhq/jobtrack-service/internal/auth"
	"github.com/jobtrackhq/jobtrack-service/internal/service"
	apperrors "github.com/jobtrackhq/jobtrack-service/pkg/util/errorutil"
)

// DashboardHandler serves aggregate views.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Stats GET /dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	stats, err := h.service.Stats(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// FollowUps GET /follow-ups. With grouped=true the due-date buckets are
// included alongside the flat list.
func (h *DashboardHandler) FollowUps(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	followUps, err := h.service.UpcomingFollowUps(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	if c.QueryBool("grouped") {
		return c.JSON(fiber.Map{
			"followUps": followUps,
			"groups":    service.GroupFollowUps(followUps, time.Now()),
		})
	}
	return c.JSON(fiber.Map{"followUps": followUps})
}
