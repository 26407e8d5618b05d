package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taborder/ussd-api/internal/application/ussd"
	"github.com/taborder/ussd-api/pkg/logger"
)

// serviceUnavailable respuesta terminal genérica ante un fallo no manejado.
// Al suscriptor nunca le llega el detalle del error.
const serviceUnavailable = "END Service temporarily unavailable"

// USSDHandler maneja el callback del gateway del operador.
type USSDHandler struct {
	engine *ussd.Engine
	log    *logger.Logger
}

// NewUSSDHandler construye el handler.
func NewUSSDHandler(engine *ussd.Engine, log *logger.Logger) *USSDHandler {
	return &USSDHandler{engine: engine, log: log}
}

// Handle POST /ussd (form: sessionId, phoneNumber, text) -> texto plano CON/END.
func (h *USSDHandler) Handle(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Msg("fallo no manejado en el request USSD")
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			err = c.Status(fiber.StatusInternalServerError).SendString(serviceUnavailable)
		}
	}()

	sessionID := c.FormValue("sessionId")
	phone := c.FormValue("phoneNumber")
	text := c.FormValue("text")

	reply := h.engine.Handle(c.UserContext(), sessionID, phone, text)

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(reply)
}
