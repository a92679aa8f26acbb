package api

import (
	"math/rand"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/qa-testbed/testbed-api/internal/api/handler"
	"github.com/qa-testbed/testbed-api/internal/core/service"
	"github.com/qa-testbed/testbed-api/internal/infrastructure/config"
	"github.com/qa-testbed/testbed-api/internal/infrastructure/memory"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rng seeds the simulation endpoints; pass a fixed-seed source for
// deterministic behavior in tests.
func NewRouter(cfg *config.Config, rng *rand.Rand, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("testbed"))

	// --- Dependencies ---
	userRepo := memory.NewUserRepository()
	userService := service.NewUserService(userRepo, log)
	simService := service.NewSimulationService(rng, service.RealSleeper(), log)
	formService := service.NewFormService(log)

	userHandler := handler.NewUserHandler(userService)
	simHandler := handler.NewSimulationHandler(simService)
	formHandler := handler.NewFormHandler(formService)
	healthHandler := handler.NewHealthHandler(cfg.Version)

	// --- Meta ---
	e.GET("/api/health", healthHandler.Health)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Users CRUD ---
	e.GET("/api/users", userHandler.List)
	e.GET("/api/users/:id", userHandler.Get)
	e.POST("/api/users", userHandler.Create)
	e.PUT("/api/users/:id", userHandler.Update)
	e.DELETE("/api/users/:id", userHandler.Delete)
	e.POST("/api/reset", userHandler.Reset)

	// --- Form validation ---
	e.POST("/api/validate", formHandler.Validate)

	// --- Simulation endpoints ---
	e.GET("/api/slow", simHandler.Slow)
	e.GET("/api/unreliable", simHandler.Unreliable)
	e.GET("/api/error", simHandler.Error)
	e.GET("/api/delay", simHandler.Delay)
	e.GET("/api/ratelimit", simHandler.RateLimit)

	return e
}
