package routes

import (
	"github.com/gofiber/fiber/v2"

	"limit-book/src/config"
	"limit-book/src/handlers"
	"limit-book/src/middleware"
)

// SetupRoutes registers every endpoint and returns the availability gate so
// the caller can close intake during shutdown.
func SetupRoutes(app *fiber.App, orderHandler *handlers.OrderHandler, cfg config.Config) *middleware.ServiceAvailability {
	serviceAvailability := middleware.NewServiceAvailability(cfg.Availability)
	app.Use(serviceAvailability.Middleware())
	app.Use(middleware.RequestLogger(cfg.Availability.RequestLoggingOff))

	api := app.Group("/api/v1")

	if !cfg.RateLimit.Disabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
		api.Use(rateLimiter.Middleware())
	}

	api.Post("/orders", orderHandler.SubmitOrder)
	api.Delete("/orders/:id", orderHandler.CancelOrder)
	api.Get("/orders/:id", orderHandler.GetOrderStatus)
	api.Get("/orderbook", orderHandler.GetOrderBook)
	api.Delete("/orderbook", orderHandler.ClearBook)
	api.Get("/trades", orderHandler.GetTrades)
	api.Delete("/trades", orderHandler.ClearTrades)

	app.Get("/health", orderHandler.HealthCheck)
	app.Get("/metrics", orderHandler.Metrics)

	return serviceAvailability
}
