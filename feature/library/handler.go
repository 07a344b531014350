package library

import (
	"steam-library/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the reconciled library.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the library routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/library")
	group.Get("/", h.HandleReconcile)
	group.Get("/installed", h.HandleInstalled)
}

// HandleReconcile runs a full reconciliation and returns the record list.
// Stage failures do not fail the request: partial results are served with
// the aggregated error attached.
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	res := h.service.Reconcile(c.Context())
	if res.Err != nil {
		l.Warn("reconciliation finished with a stage failure",
			zap.String("stage", res.Err.Stage), zap.Error(res.Err.Err))
	}
	return c.JSON(res)
}

// HandleInstalled returns the installed scan only.
func (h *Handler) HandleInstalled(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	games, err := h.service.Installed(c.Context())
	if err != nil {
		l.Error("installed scan failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"games": games})
}
