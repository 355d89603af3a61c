package builds

import (
	"errors"

	"stash-pricer/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for builds.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the build routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/builds", h.HandleCreate)
	app.Get("/builds/:id", h.HandleGet)
}

// HandleCreate validates and enqueues a build.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	b, err := h.service.Create(c.UserContext(), req)
	if errors.Is(err, ErrInvalidBuild) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		l.Error("Failed to queue build", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

// HandleGet returns a build with its state and results.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	b, err := h.service.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to load build", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(b)
}
