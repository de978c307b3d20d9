package routes

import (
	userController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/user"

	"github.com/gofiber/fiber/v2"
)

func UserRoutes(app *fiber.App, ctl *userController.Controller, protect fiber.Handler) {
	app.Post("/api/auth/signup", ctl.SignUp)
	app.Post("/api/auth/signin", ctl.SignIn)
	app.Get("/api/auth/profile", protect, ctl.Profile)
	app.Put("/api/auth/profile", protect, ctl.UpdateProfile)
}
