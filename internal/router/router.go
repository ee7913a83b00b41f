package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avaliaedu/avalia-api/internal/config"
	"github.com/avaliaedu/avalia-api/internal/handler"
	"github.com/avaliaedu/avalia-api/internal/middleware"
	"github.com/avaliaedu/avalia-api/internal/models"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	UserHandler        *handler.UserHandler
	InstitutionHandler *handler.InstitutionHandler
	CourseHandler      *handler.CourseHandler
	EvaluationHandler  *handler.EvaluationHandler
	AnalysisHandler    *handler.AnalysisHandler
	JWTMiddleware      fiber.Handler
	AuthRateLimiter    fiber.Handler
}

// Register wires the HTTP routes into the fiber application. Authentication
// always runs before the role gates on protected groups.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		if deps.AuthRateLimiter != nil {
			auth.Use(deps.AuthRateLimiter)
		}
		deps.AuthHandler.Register(auth)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.UserHandler.Register(users)
	}

	if deps.InstitutionHandler != nil {
		institutions := api.Group("/institutions", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.InstitutionHandler.Register(institutions)
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.CourseHandler.Register(courses)
	}

	// Role gates differ per evaluation route; the handler applies them.
	if deps.EvaluationHandler != nil {
		evaluations := api.Group("/evaluations", jwtMiddleware)
		deps.EvaluationHandler.Register(evaluations)
	}

	if deps.AnalysisHandler != nil {
		analysis := api.Group("/analysis", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.AnalysisHandler.Register(analysis)
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
