package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tarot-service/internal/api/http/handlers"
	"github.com/spec-kit/tarot-service/internal/auth"
	"github.com/spec-kit/tarot-service/internal/config"
	"github.com/spec-kit/tarot-service/internal/domain"
	"github.com/spec-kit/tarot-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Bookings       *handlers.BookingsHandler
	Readings       *handlers.ReadingsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Limiter        *ratelimit.Limiter
	RateLimits     config.RateLimitConfig
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Post("/upgrade", cfg.Auth.Upgrade)
	authProtected.Get("/upgrade", cfg.Auth.UpgradeHistory)

	bookings := app.Group("/bookings", cfg.AuthMiddleware.Handle)
	bookings.Post("",
		ratelimit.Middleware(cfg.Limiter, "booking", cfg.RateLimits.BookingCreatePerMinute, time.Minute),
		cfg.Bookings.CreateBooking)
	bookings.Get("", cfg.Bookings.ListBookings)
	bookings.Get("/:id", cfg.Bookings.GetBooking)
	bookings.Patch("/:id/confirm", cfg.Bookings.ConfirmBooking)
	bookings.Patch("/:id/reject", cfg.Bookings.RejectBooking)
	bookings.Patch("/:id/cancel", cfg.Bookings.CancelBooking)

	readings := app.Group("/readings", cfg.AuthMiddleware.Handle)
	readings.Get("", cfg.Readings.ListReadings)
	readings.Post("", cfg.Readings.SaveReading)
	readings.Get("/:id", cfg.Readings.GetReading)
	readings.Delete("", cfg.Readings.ClearReadings)

	app.Post("/interpretations",
		cfg.AuthMiddleware.Handle,
		ratelimit.Middleware(cfg.Limiter, "tarot-ai", cfg.RateLimits.InterpretationPerMinute, time.Minute),
		cfg.Readings.Interpret)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Get("/users/:id", cfg.Admin.GetUser)
	admin.Patch("/users/:id", cfg.Admin.UpdateUserRole)
}
