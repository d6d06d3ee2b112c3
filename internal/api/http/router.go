package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jobtrackhq/jobtrack-service/internal/api/http/handlers"
	"github.com/jobtrackhq/jobtrack-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Applications   *handlers.ApplicationsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	applications := app.Group("/applications", cfg.AuthMiddleware.Handle)
	applications.Get("/", cfg.Applications.List)
	applications.Post("/", cfg.Applications.Create)
	applications.Get("/board", cfg.Applications.Board)
	applications.Get("/:id", cfg.Applications.Get)
	applications.Put("/:id", cfg.Applications.Update)
	applications.Patch("/:id/status", cfg.Applications.UpdateStatus)
	applications.Delete("/:id", cfg.Applications.Delete)

	app.Get("/dashboard/stats", cfg.AuthMiddleware.Handle, cfg.Dashboard.Stats)
	app.Get("/follow-ups", cfg.AuthMiddleware.Handle, cfg.Dashboard.FollowUps)
}
