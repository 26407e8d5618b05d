package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	USSD   *USSDHandler
	Health *HealthHandler
}

// Router registra las rutas del servicio.
func Router(app *fiber.App, deps RouterDeps) {
	app.Post("/ussd", deps.USSD.Handle)
	app.Get("/health", deps.Health.Status)
}
