package routes

import (
	productController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/products"
	reviewController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/reviews"
	"github.com/UnderratedBeast/UniqueFabric-Backend/middlewares"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"

	"github.com/gofiber/fiber/v2"
)

func ProductRoutes(app *fiber.App, ctl *productController.Controller, reviews *reviewController.Controller, protect fiber.Handler) {
	adminOnly := middlewares.RequireRoles(models.RoleAdmin)

	app.Get("/api/products", ctl.List)
	app.Get("/api/products/:id", ctl.GetByID)
	app.Post("/api/products", protect, adminOnly, ctl.Create)
	app.Put("/api/products/:id", protect, adminOnly, ctl.Update)
	app.Delete("/api/products/:id", protect, adminOnly, ctl.Delete)

	app.Get("/api/products/:id/reviews", reviews.List)
	app.Post("/api/products/:id/reviews", protect, reviews.Create)
	app.Delete("/api/reviews/:id", protect, reviews.Delete)
}
