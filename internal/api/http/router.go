package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/shift-service/internal/api/http/handlers"
	"github.com/spec-kit/shift-service/internal/auth"
	"github.com/spec-kit/shift-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Shifts         *handlers.ShiftsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	app.Post("/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/logout", cfg.Auth.Logout)

	protected.Get("/users", cfg.Users.List)
	protected.Post("/users", cfg.Users.Create)
	protected.Put("/users/:id", cfg.Users.Update)
	protected.Delete("/users/:id", cfg.Users.Delete)

	protected.Get("/shifts", cfg.Shifts.List)
	protected.Post("/shifts", cfg.Shifts.Create)
	protected.Put("/shifts/:id", cfg.Shifts.Update)
	protected.Delete("/shifts/:id", cfg.Shifts.Delete)
}
