package ingest

import (
	"bytes"

	"stash-pricer/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for ingestion.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the ingest routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/ingest")
	group.Get("/status", h.HandleStatus)
	group.Post("/pages", h.HandlePushPage)
}

// HandleStatus reports the pipeline state, counters and stored cursor.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Report(c.UserContext())
	if err != nil {
		l.Error("Ingest status failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(report)
}

// HandlePushPage applies a page from the request body. The cursor advances
// to the page's next cursor, exactly as for a polled page.
func (h *Handler) HandlePushPage(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	page, err := DecodePage(bytes.NewReader(c.Body()))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if page.NextCursor == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "page has no next cursor",
		})
	}

	res, err := h.service.Push(c.UserContext(), page)
	if err != nil {
		l.Error("Pushed page failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(res)
}
