package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-workflow/internal/api/http/handlers"
	"github.com/spec-kit/issue-workflow/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Lifecycle      *handlers.LifecycleHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Everything under /api/v1 except the
// auth endpoints requires an authenticated, active user.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	protected := v1.Group("", cfg.AuthMiddleware.Handle)

	protected.Post("/tickets", cfg.Tickets.CreateTicket)
	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Get("/tickets/:id", cfg.Tickets.GetTicket)
	protected.Get("/tickets/:id/history", cfg.Tickets.ListHistory)

	protected.Post("/tickets/:id/assignments", cfg.Lifecycle.Assign)
	protected.Delete("/assignments/:id", cfg.Lifecycle.UnassignByID)
	protected.Delete("/tickets/:id/assignees/:userID", cfg.Lifecycle.UnassignByPair)

	protected.Post("/tickets/:id/escalations", cfg.Lifecycle.Escalate)

	protected.Post("/tickets/:id/resolutions", cfg.Lifecycle.Resolve)
	protected.Post("/tickets/:id/rejections", cfg.Lifecycle.Reject)
	protected.Post("/tickets/:id/re-raises", cfg.Lifecycle.ReRaise)

	protected.Delete("/resolutions/:id", cfg.Lifecycle.DeleteResolution)
	protected.Delete("/rejections/:id", cfg.Lifecycle.DeleteRejection)
	protected.Delete("/re-raises/:id", cfg.Lifecycle.DeleteReRaise)
}
