package routes

import (
	orderController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/orders"
	"github.com/UnderratedBeast/UniqueFabric-Backend/middlewares"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"

	"github.com/gofiber/fiber/v2"
)

func OrderRoutes(app *fiber.App, ctl *orderController.Controller, protect fiber.Handler) {
	adminOnly := middlewares.RequireRoles(models.RoleAdmin)
	managers := middlewares.RequireRoles(models.RoleAdmin, models.RoleManager)
	staff := middlewares.RequireRoles(models.RoleAdmin, models.RoleManager, models.RoleStaff)

	app.Post("/api/orders", protect, ctl.Create)
	app.Get("/api/orders/my-orders", protect, ctl.MyOrders)
	app.Get("/api/orders/stats", protect, managers, ctl.Stats)
	app.Get("/api/orders", protect, staff, ctl.GetAll)
	app.Get("/api/orders/:id", protect, ctl.GetByID)
	app.Put("/api/orders/:id/status", protect, staff, ctl.UpdateStatus)
	app.Put("/api/orders/:id/cancel", protect, ctl.Cancel)
	app.Delete("/api/orders/:id", protect, adminOnly, ctl.Delete)
}
