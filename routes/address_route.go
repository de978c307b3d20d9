package routes

import (
	addressController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/addresses"

	"github.com/gofiber/fiber/v2"
)

func AddressRoutes(app *fiber.App, ctl *addressController.Controller, protect fiber.Handler) {
	app.Post("/api/addresses", protect, ctl.Create)
	app.Get("/api/addresses", protect, ctl.List)
	app.Get("/api/addresses/:id", protect, ctl.GetByID)
	app.Put("/api/addresses/:id", protect, ctl.Update)
	app.Delete("/api/addresses/:id", protect, ctl.Delete)
	app.Put("/api/addresses/:id/default", protect, ctl.SetDefault)
}
