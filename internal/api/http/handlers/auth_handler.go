package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jobtrackhq/jobtrack-service/internal/api/dto"
	"github.com/jobtrackhq/jobtrack-service/internal/auth"
	"github.com/jobtrackhq/jobtrack-service/internal/domain"
	"github.com/jobtrackhq/jobtrack-service/internal/service"
	apperrors "github.com/jobtrackhq/jobtrack-service/pkg/util/errorutil"
)

// AuthHandler exposes account endpoints.
type AuthHandler struct {
	auth         *service.AuthService
	secureCookie bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: authService, secureCookie: secureCookie}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(map[string][]string{"body": {"Invalid payload"}})
	}
	if errs := req.Validate(); !errs.Empty() {
		return apperrors.NewValidationError(errs)
	}

	user, token, exp, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setAuthCookie(c, token, exp)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Account created",
		"user":    userResponse(user),
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(map[string][]string{"body": {"Invalid payload"}})
	}
	if errs := req.Validate(); !errs.Empty() {
		return apperrors.NewValidationError(errs)
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setAuthCookie(c, token, exp)
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    userResponse(user),
	})
}

// Logout handles POST /auth/logout by expiring the auth cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.secureCookie,
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	return c.JSON(fiber.Map{"user": userResponse(principal.User)})
}

func (h *AuthHandler) setAuthCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.secureCookie,
	})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
