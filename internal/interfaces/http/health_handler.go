package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taborder/ussd-api/internal/application/ussd"
	"github.com/taborder/ussd-api/internal/infrastructure/catalog"
	"github.com/taborder/ussd-api/internal/infrastructure/storage"
)

// HealthHandler estado operativo del servicio.
type HealthHandler struct {
	appName  string
	sessions *ussd.SessionManager
	gw       *storage.Gateway
	catalog  *catalog.Provider
}

// NewHealthHandler construye el handler.
func NewHealthHandler(appName string, sessions *ussd.SessionManager, gw *storage.Gateway, cat *catalog.Provider) *HealthHandler {
	return &HealthHandler{appName: appName, sessions: sessions, gw: gw, catalog: cat}
}

// Status GET /health
func (h *HealthHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "ok",
		"service":         h.appName,
		"storage_backend": h.gw.Mode(),
		"active_sessions": h.sessions.Count(),
		"combos":          h.catalog.Count(),
	})
}
