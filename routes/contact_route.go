package routes

import (
	contactController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/contact"
	"github.com/UnderratedBeast/UniqueFabric-Backend/middlewares"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"

	"github.com/gofiber/fiber/v2"
)

func ContactRoutes(app *fiber.App, ctl *contactController.Controller, protect fiber.Handler) {
	app.Post("/api/contact", ctl.Create)
	app.Get("/api/contact", protect, middlewares.RequireRoles(models.RoleAdmin), ctl.List)
}
