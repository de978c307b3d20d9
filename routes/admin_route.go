package routes

import (
	adminController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/admin"
	"github.com/UnderratedBeast/UniqueFabric-Backend/middlewares"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"

	"github.com/gofiber/fiber/v2"
)

func AdminUserRoutes(app *fiber.App, ctl *adminController.Controller, protect fiber.Handler) {
	adminOnly := middlewares.RequireRoles(models.RoleAdmin)
	managers := middlewares.RequireRoles(models.RoleAdmin, models.RoleManager)

	app.Get("/api/admin/users", protect, managers, ctl.List)
	app.Post("/api/admin/users", protect, adminOnly, ctl.Create)
	app.Put("/api/admin/users/:id", protect, adminOnly, ctl.Update)
	app.Delete("/api/admin/users/:id", protect, adminOnly, ctl.Delete)
}
