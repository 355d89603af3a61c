package matching

import (
	"errors"
	"strings"

	"stash-pricer/core/items"
	"stash-pricer/core/logger"
	"stash-pricer/core/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxSearchLimit = 500

// Handler handles HTTP requests for search and matching.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the matching routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/items", h.HandleSearch)
	app.Post("/match", h.HandleMatch)
}

// HandleSearch lists stored items. Query: basetype, category, subcategory,
// name, mods (comma-separated stat ids), limit.
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	f := store.Filter{
		BaseType:    c.Query("basetype"),
		Category:    items.Category(c.Query("category")),
		Subcategory: c.Query("subcategory"),
		Name:        c.Query("name"),
		Limit:       c.QueryInt("limit", 100),
	}
	if f.Limit <= 0 || f.Limit > maxSearchLimit {
		f.Limit = maxSearchLimit
	}
	for _, statID := range strings.Split(c.Query("mods"), ",") {
		if statID = strings.TrimSpace(statID); statID != "" {
			f.StatIDs = append(f.StatIDs, statID)
		}
	}

	found, err := h.service.Search(c.UserContext(), f)
	if err != nil {
		l.Error("Item search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"items": found, "count": len(found)})
}

// HandleMatch builds a required item from the body and returns its first fit.
func (h *Handler) HandleMatch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req MatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	match, err := h.service.Match(c.UserContext(), req)
	var be *BuildError
	switch {
	case errors.As(err, &be):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case err != nil:
		l.Error("Match failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	case match == nil:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no matching item",
		})
	}
	return c.JSON(match)
}
