package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/jobtrackhq/jobtrack-service/internal/api/dto"
	"github.com/jobtrackhq/jobtrack-service/internal/auth"
	"github.com/jobtrackhq/jobtrack-service/internal/domain"
	"github.com/jobtrackhq/jobtrack-service/internal/repository"
	"github.com/jobtrackhq/jobtrack-service/internal/service"
	apperrors "github.com/jobtrackhq/jobtrack-service/pkg/util/errorutil"
)

// ApplicationsHandler manages application lifecycle endpoints.
type ApplicationsHandler struct {
	service *service.ApplicationService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(applicationService *service.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{service: applicationService}
}

// List GET /applications.
func (h *ApplicationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	apps, err := h.service.List(c.Context(), principal.User.ID, parseListFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"applications": apps})
}

// Board GET /applications/board — applications grouped into Kanban columns.
func (h *ApplicationsHandler) Board(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	apps, err := h.service.List(c.Context(), principal.User.ID, parseListFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"columns": domain.KanbanColumns,
		"board":   domain.GroupByStatus(apps),
	})
}

// Create POST /applications.
func (h *ApplicationsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	var req dto.CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(map[string][]string{"body": {"Invalid payload"}})
	}
	if errs := req.Validate(); !errs.Empty() {
		return apperrors.NewValidationError(errs)
	}

	input := service.ApplicationCreateInput{
		Company:       req.Company,
		Position:      req.Position,
		Status:        domain.ApplicationStatus(req.Status),
		Priority:      domain.ApplicationPriority(req.Priority),
		JobURL:        req.JobURL,
		Location:      req.Location,
		Type:          domain.JobType(req.Type),
		Salary:        dto.ToSalary(req.Salary),
		Notes:         req.Notes,
		AppliedDate:   dto.ParseDate(req.AppliedDate),
		InterviewDate: dto.ParseDate(req.InterviewDate),
		FollowUpDate:  dto.ParseDate(req.FollowUpDate),
		Contacts:      dto.ToContacts(req.Contacts),
	}
	app, err := h.service.Create(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"application": app})
}

// Get GET /applications/:id.
func (h *ApplicationsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	app, err := h.service.Get(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"application": app})
}

// Update PUT /applications/:id — partial field update.
func (h *ApplicationsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	var req dto.UpdateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(map[string][]string{"body": {"Invalid payload"}})
	}
	if errs := req.Validate(); !errs.Empty() {
		return apperrors.NewValidationError(errs)
	}

	app, err := h.service.UpdateFields(c.Context(), principal.User.ID, c.Params("id"), updateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"application": app})
}

// UpdateStatus PATCH /applications/:id/status.
func (h *ApplicationsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(map[string][]string{"body": {"Invalid payload"}})
	}
	if errs := req.Validate(); !errs.Empty() {
		return apperrors.NewValidationError(errs)
	}

	app, err := h.service.UpdateStatus(c.Context(), principal.User.ID, c.Params("id"), domain.ApplicationStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"application": app})
}

// Delete DELETE /applications/:id.
func (h *ApplicationsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	deleted, err := h.service.Delete(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFound("Application")
	}
	return c.JSON(fiber.Map{"message": "Application deleted"})
}

func parseListFilter(c *fiber.Ctx) service.ListFilter {
	filter := service.ListFilter{
		Sort:  c.Query("sort", "createdAt"),
		Order: c.Query("order", "desc"),
	}
	if v := c.Query("status"); v != "" {
		status := domain.ApplicationStatus(v)
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := domain.ApplicationPriority(v)
		filter.Priority = &priority
	}
	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}
	return filter
}

func updateInput(req dto.UpdateApplicationRequest) service.ApplicationUpdateInput {
	input := service.ApplicationUpdateInput{
		Company:  req.Company,
		Position: req.Position,
		JobURL:   req.JobURL,
		Location: req.Location,
		Notes:    req.Notes,
		Contacts: dto.ToContacts(req.Contacts),
	}
	if req.Status != nil {
		status := domain.ApplicationStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := domain.ApplicationPriority(*req.Priority)
		input.Priority = &priority
	}
	if req.Type != nil {
		jobType := domain.JobType(*req.Type)
		input.Type = &jobType
	}
	if req.Salary != nil {
		salary := dto.ToSalary(req.Salary)
		input.Salary = &salary
	}
	if req.AppliedDate != nil {
		input.AppliedDate = repository.OptionalTime{Set: true, Time: dto.ParseDate(*req.AppliedDate)}
	}
	if req.InterviewDate != nil {
		input.InterviewDate = repository.OptionalTime{Set: true, Time: dto.ParseDate(*req.InterviewDate)}
	}
	if req.FollowUpDate != nil {
		input.FollowUpDate = repository.OptionalTime{Set: true, Time: dto.ParseDate(*req.FollowUpDate)}
	}
	return input
}
