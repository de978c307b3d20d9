package routes

import (
	paymentController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/payments"

	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App, ctl *paymentController.Controller, protect fiber.Handler) {
	app.Post("/api/payment-methods", protect, ctl.Create)
	app.Get("/api/payment-methods", protect, ctl.List)
	app.Get("/api/payment-methods/limits", protect, ctl.Limits)
	app.Get("/api/payment-methods/default", protect, ctl.GetDefault)
	app.Get("/api/payment-methods/:id", protect, ctl.GetByID)
	app.Put("/api/payment-methods/:id", protect, ctl.Update)
	app.Delete("/api/payment-methods/:id", protect, ctl.Delete)
	app.Put("/api/payment-methods/:id/default", protect, ctl.SetDefault)
}
