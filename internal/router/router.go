package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/oppia-go-api/internal/config"
	"github.com/noah-isme/oppia-go-api/internal/handler"
	"github.com/noah-isme/oppia-go-api/internal/middleware"
	"github.com/noah-isme/oppia-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler  *handler.CourseHandler
	ProfileHandler *handler.ProfileHandler
	AdminHandler   *handler.AdminHandler
	HealthProbes   map[string]handler.HealthProbe

	// APIKeyMiddleware authenticates the v3 API.
	APIKeyMiddleware fiber.Handler
	// SessionMiddleware authenticates web pages and loads the current user.
	SessionMiddleware []fiber.Handler
	// AccessLogMiddleware records dashboard visits of authenticated users.
	AccessLogMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))
	app.Get("/metrics", observability.MetricsHandler())

	if deps.CourseHandler != nil {
		course := app.Group("/api/v3/course", orNext(deps.APIKeyMiddleware))
		deps.CourseHandler.Register(course)
	}

	if deps.ProfileHandler != nil {
		profile := app.Group("/profile", chain(deps.SessionMiddleware, orNext(deps.AccessLogMiddleware))...)
		deps.ProfileHandler.Register(profile)
	}

	if deps.AdminHandler != nil {
		admin := app.Group("/admin", chain(deps.SessionMiddleware, middleware.RequireStaff())...)
		deps.AdminHandler.Register(admin)
	}
}

// DownloadLimiter throttles course package downloads per user per minute.
func DownloadLimiter(cfg config.Config) fiber.Handler {
	return middleware.RateLimit("course-download", cfg.DownloadRateLimit, time.Minute)
}

func chain(base []fiber.Handler, extra ...fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(base)+len(extra))
	handlers = append(handlers, base...)
	return append(handlers, extra...)
}

func orNext(h fiber.Handler) fiber.Handler {
	if h == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return h
}
