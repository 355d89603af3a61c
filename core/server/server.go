package server

import (
	"errors"

	"stash-pricer/core/logger"
	"stash-pricer/core/middleware/auth"
	"stash-pricer/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// New builds the fiber app with the middleware chain every route shares:
// ray id first so everything is traceable, then request logging, then auth.
func New(cfg Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true, // Startup is logged through zap
		ReadTimeout:           cfg.ReadTimeout,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler,
	})

	app.Use(rayid.New())
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(log, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Use(auth.New(auth.Config{ApiKey: cfg.ApiKey}))

	return app
}

// errorHandler renders errors that escape handlers in the {"error": ...} shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
