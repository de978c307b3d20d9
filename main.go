package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/configs"
	adminController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/admin"
	addressController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/addresses"
	contactController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/contact"
	orderController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/orders"
	paymentController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/payments"
	productController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/products"
	reviewController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/reviews"
	userController "github.com/UnderratedBeast/UniqueFabric-Backend/controllers/user"
	"github.com/UnderratedBeast/UniqueFabric-Backend/middlewares"
	"github.com/UnderratedBeast/UniqueFabric-Backend/routes"
	orderService "github.com/UnderratedBeast/UniqueFabric-Backend/services/orders"
	"github.com/UnderratedBeast/UniqueFabric-Backend/store"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	configs.LoadEnv()

	log.SetFormatter(&log.JSONFormatter{})
	if configs.IsDevelopment() {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		log.SetLevel(log.DebugLevel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := configs.ConnectDB(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	db := configs.GetDatabase(client)

	if err := configs.EnsureIndexes(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to ensure indexes")
	}

	users := store.NewUserStore(db)
	products := store.NewProductStore(db)
	orders := store.NewOrderStore(db)
	vault := store.NewPaymentMethodStore(db)
	addresses := store.NewAddressStore(db)
	reviews := store.NewReviewStore(db)
	contacts := store.NewContactStore(db)

	if err := users.EnsureDefaultUsers(ctx, func(password string) (string, error) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return string(hashed), err
	}); err != nil {
		log.WithError(err).Fatal("failed to seed default users")
	}

	txn := store.NewTxnRunner(client, configs.EnvMongoTransactions())
	orderSvc := orderService.NewService(orders, products, vault, addresses, txn)

	app := fiber.New()
	protect := middlewares.Protect(users)

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, pingCancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer pingCancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy", "database": "disconnected",
			})
		}
		return c.JSON(fiber.Map{"status": "healthy", "database": "connected"})
	})

	routes.UserRoutes(app, userController.NewController(users), protect)
	routes.ProductRoutes(app, productController.NewController(products), reviewController.NewController(reviews), protect)
	routes.OrderRoutes(app, orderController.NewController(orderSvc), protect)
	routes.PaymentRoutes(app, paymentController.NewController(vault), protect)
	routes.AddressRoutes(app, addressController.NewController(addresses), protect)
	routes.ContactRoutes(app, contactController.NewController(contacts), protect)
	routes.AdminUserRoutes(app, adminController.NewController(users), protect)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("server shutdown failed")
		}
	}()

	log.WithFields(log.Fields{"port": configs.EnvPort()}).Info("starting server")
	if err := app.Listen(":" + configs.EnvPort()); err != nil {
		log.WithError(err).Fatal("server stopped")
	}

	disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer disconnectCancel()
	if err := client.Disconnect(disconnectCtx); err != nil {
		log.WithError(err).Error("error disconnecting from MongoDB")
	}
}
