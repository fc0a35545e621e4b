package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/queue-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/queue-dashboard/internal/auth"
	"github.com/spec-kit/queue-dashboard/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Queues         *handlers.QueuesHandler
	Users          *handlers.UsersHandler
	Snapshot       *handlers.SnapshotHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if reg := cfg.Metrics.Registry(); reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	app.Post("/auth/login", cfg.Auth.Login)

	readers := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole(auth.RoleOperator, auth.RoleViewer)}
	operators := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole(auth.RoleOperator)}

	// export routes first so "export.xlsx" is not captured by :id
	app.Get("/queues/export.xlsx", with(operators, cfg.Queues.Export)...)
	app.Get("/users/export.xlsx", with(operators, cfg.Users.Export)...)
	app.Post("/snapshot/refresh", with(operators, cfg.Snapshot.Refresh)...)

	app.Get("/queues", with(readers, cfg.Queues.List)...)
	app.Get("/queues/:id", with(readers, cfg.Queues.Get)...)
	app.Get("/users", with(readers, cfg.Users.List)...)
	app.Get("/users/:id", with(readers, cfg.Users.Get)...)
}

func with(chain []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, handler)
}
