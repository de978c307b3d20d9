package orderController

import (
	"context"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/middlewares"
	"github.com/UnderratedBeast/UniqueFabric-Backend/responses"
	orderService "github.com/UnderratedBeast/UniqueFabric-Backend/services/orders"
	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	svc *orderService.Service
}

func NewController(svc *orderService.Service) *Controller {
	return &Controller{svc: svc}
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), 10*time.Second)
}

// Create handles POST /api/orders.
func (ctl *Controller) Create(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	var in orderService.PlaceOrderInput
	if err := c.BodyParser(&in); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}

	order, err := ctl.svc.PlaceOrder(ctx, user, in)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.Created(c, "Order created successfully", &fiber.Map{
		"order": order,
	})
}

// MyOrders handles GET /api/orders/my-orders.
func (ctl *Controller) MyOrders(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	orders, err := ctl.svc.MyOrders(ctx, user.ID)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Orders fetched successfully", &fiber.Map{
		"count":  len(orders),
		"orders": orders,
	})
}

// GetByID handles GET /api/orders/:id.
func (ctl *Controller) GetByID(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	order, err := ctl.svc.GetOrder(ctx, c.Params("id"), user)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Order fetched successfully", &fiber.Map{
		"order": order,
	})
}

// GetAll handles GET /api/orders (back-office).
func (ctl *Controller) GetAll(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := ctl.svc.AllOrders(ctx)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Orders fetched successfully", &fiber.Map{
		"count":  len(orders),
		"orders": orders,
	})
}

// UpdateStatus handles PUT /api/orders/:id/status (back-office).
func (ctl *Controller) UpdateStatus(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var in orderService.UpdateStatusInput
	if err := c.BodyParser(&in); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}

	order, err := ctl.svc.UpdateStatus(ctx, c.Params("id"), in)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Status updated", &fiber.Map{
		"order": order,
	})
}

// Cancel handles PUT /api/orders/:id/cancel (owner or admin).
func (ctl *Controller) Cancel(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	order, err := ctl.svc.CancelOrder(ctx, c.Params("id"), user)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Order cancelled and stock restored", &fiber.Map{
		"order": order,
	})
}

// Delete handles DELETE /api/orders/:id (admin only).
func (ctl *Controller) Delete(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ctl.svc.DeleteOrder(ctx, c.Params("id")); err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Order deleted successfully", nil)
}

// Stats handles GET /api/orders/stats (admin/manager).
func (ctl *Controller) Stats(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := ctl.svc.Stats(ctx)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Stats fetched successfully", &fiber.Map{
		"stats": stats,
	})
}
