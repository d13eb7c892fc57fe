package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"limit-book/src/config"
	"limit-book/src/engine"
	"limit-book/src/handlers"
	"limit-book/src/logger"
	"limit-book/src/routes"
)

func main() {
	cfg := config.Load(os.Getenv("ENV_FILE"))

	logger.InitLogger(cfg.Log)
	log := logger.GetLogger()

	log.Info().
		Str("symbol", cfg.Engine.Symbol).
		Str("ingress_mode", cfg.Engine.IngressMode).
		Int32("price_scale", cfg.Engine.PriceScale).
		Msg("Initializing limit order book")

	matcher := engine.NewMatcher(cfg.Engine.Symbol)
	ingress, err := engine.NewIngress(engine.IngressMode(cfg.Engine.IngressMode), matcher, cfg.Engine.QueueCapacity)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid engine configuration")
	}

	orderHandler := handlers.NewOrderHandler(ingress, cfg.Engine.PriceScale, cfg.API)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			log.Error().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int("status", code).
				Str("error", err.Error()).
				Msg("Request error")

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	availability := routes.SetupRoutes(app, orderHandler, cfg)

	port := ":" + cfg.Server.Port
	serverError := make(chan error, 1)

	go func() {
		if err := app.Listen(port); err != nil {
			serverError <- err
		}
	}()

	log.Info().
		Str("port", port).
		Strs("endpoints", []string{
			"POST   /api/v1/orders",
			"DELETE /api/v1/orders/:id",
			"GET    /api/v1/orders/:id",
			"GET    /api/v1/orderbook",
			"DELETE /api/v1/orderbook",
			"GET    /api/v1/trades",
			"DELETE /api/v1/trades",
			"GET    /health",
			"GET    /metrics",
		}).
		Msg("Limit order book started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverError:
		log.Error().
			Err(err).
			Str("port", port).
			Msg("Server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal, shutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// stop intake first, then let the engine drain what was already queued
	availability.SetMaintenanceMode(true)
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}

	if err := ingress.Shutdown(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().
				Dur("timeout", cfg.Server.ShutdownTimeout).
				Msg("Timeout exceeded while draining orders")
		} else {
			log.Error().Err(err).Msg("Error during engine shutdown")
		}
	}

	stats := matcher.Stats()
	log.Info().
		Int("resting_orders", stats.RestingOrders).
		Int("trades", stats.Trades).
		Msg("Shutdown complete")

	logger.CloseLogger()
}
