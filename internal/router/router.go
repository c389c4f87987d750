package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/mealtrack-go-api/internal/config"
	"github.com/noah-isme/mealtrack-go-api/internal/handler"
	"github.com/noah-isme/mealtrack-go-api/internal/middleware"
	"github.com/noah-isme/mealtrack-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	EligibilityHandler *handler.EligibilityHandler
	StudentHandler     *handler.StudentHandler
	ProgramHandler     *handler.ProgramHandler
	ScheduleHandler    *handler.ScheduleHandler
	MealRecordHandler  *handler.MealRecordHandler
	AnalyticsHandler   *handler.AnalyticsHandler
	ActivityHandler    *handler.ActivityHandler
	FeedHandler        *handler.FeedHandler
	SeedHandler        *handler.SeedHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterPublic(api.Group("/auth"))
	}

	// The kitchen terminal scans without an admin token. Rate limited per
	// terminal IP so a stuck scanner cannot hammer the ledger.
	if deps.EligibilityHandler != nil {
		eligibility := api.Group("/eligibility", middleware.RateLimit("eligibility", 120, time.Minute))
		deps.EligibilityHandler.Register(eligibility)
	}

	admin := api.Group("/admin",
		middleware.JWTProtected(cfg.JWTSecret),
		middleware.RequireRole("admin"),
	)

	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterProtected(admin.Group("/auth"))
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(admin.Group("/students"))
	}
	if deps.ProgramHandler != nil {
		deps.ProgramHandler.Register(admin.Group("/programs"))
	}
	if deps.ScheduleHandler != nil {
		deps.ScheduleHandler.Register(admin.Group("/schedules"))
	}
	if deps.MealRecordHandler != nil {
		deps.MealRecordHandler.Register(admin.Group("/meal-records"))
	}
	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(admin.Group("/analytics"))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(admin.Group("/activity"))
	}
	if deps.FeedHandler != nil {
		deps.FeedHandler.Register(admin.Group("/feed"))
	}

	// Seed routes carry their own token guard.
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}
}
