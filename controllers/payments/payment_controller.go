package paymentController

import (
	"context"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/middlewares"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"github.com/UnderratedBeast/UniqueFabric-Backend/responses"
	"github.com/UnderratedBeast/UniqueFabric-Backend/store"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Controller struct {
	vault *store.PaymentMethodStore
}

func NewController(vault *store.PaymentMethodStore) *Controller {
	return &Controller{vault: vault}
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), 10*time.Second)
}

// safeView exposes masked card data only.
func safeView(pm *models.PaymentMethod) fiber.Map {
	return fiber.Map{
		"id":               pm.ID.Hex(),
		"cardHolder":       pm.CardHolder,
		"cardType":         pm.CardType,
		"lastFour":         pm.LastFour,
		"maskedCardNumber": pm.MaskedCardNumber(),
		"expiryDate":       pm.FormattedExpiry(),
		"isDefault":        pm.IsDefault,
		"cardLogo":         pm.CardLogo(),
		"createdAt":        pm.CreatedAt,
		"updatedAt":        pm.UpdatedAt,
	}
}

// Create handles POST /api/payment-methods.
func (ctl *Controller) Create(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	var reqBody struct {
		CardNumber string `json:"cardNumber"`
		CardHolder string `json:"cardHolder"`
		ExpiryDate string `json:"expiryDate"`
		CVV        string `json:"cvv"`
		IsDefault  bool   `json:"isDefault"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}

	pm, err := ctl.vault.SaveCard(ctx, user.ID, store.CardInput{
		CardNumber: reqBody.CardNumber,
		CardHolder: reqBody.CardHolder,
		ExpiryDate: reqBody.ExpiryDate,
		CVV:        reqBody.CVV,
		IsDefault:  reqBody.IsDefault,
	})
	if err != nil {
		return responses.Error(c, err)
	}

	count, err := ctl.vault.CountByUser(ctx, user.ID)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.Created(c, "Payment method added successfully", &fiber.Map{
		"data": safeView(pm),
		"metadata": fiber.Map{
			"paymentMethodsCount": count,
			"paymentMethodsLimit": models.PaymentMethodLimit,
			"canAddMore":          count < models.PaymentMethodLimit,
		},
	})
}

// List handles GET /api/payment-methods.
func (ctl *Controller) List(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	methods, err := ctl.vault.FindByUser(ctx, user.ID)
	if err != nil {
		return responses.Error(c, err)
	}

	views := make([]fiber.Map, 0, len(methods))
	for i := range methods {
		views = append(views, safeView(&methods[i]))
	}

	return responses.OK(c, "Payment methods fetched successfully", &fiber.Map{
		"count": len(views),
		"data":  views,
		"metadata": fiber.Map{
			"paymentMethodsCount": len(methods),
			"paymentMethodsLimit": models.PaymentMethodLimit,
			"canAddMore":          len(methods) < models.PaymentMethodLimit,
		},
	})
}

// Limits handles GET /api/payment-methods/limits.
func (ctl *Controller) Limits(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	count, err := ctl.vault.CountByUser(ctx, user.ID)
	if err != nil {
		return responses.Error(c, err)
	}

	remaining := int64(models.PaymentMethodLimit) - count
	if remaining < 0 {
		remaining = 0
	}

	return responses.OK(c, "Payment limits fetched successfully", &fiber.Map{
		"currentCount":   count,
		"limit":          models.PaymentMethodLimit,
		"canAddMore":     count < models.PaymentMethodLimit,
		"remainingSlots": remaining,
	})
}

// GetDefault handles GET /api/payment-methods/default.
func (ctl *Controller) GetDefault(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	pm, err := ctl.vault.FindDefault(ctx, user.ID)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Default payment method fetched successfully", &fiber.Map{
		"data": safeView(pm),
	})
}

// GetByID handles GET /api/payment-methods/:id.
func (ctl *Controller) GetByID(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid payment method ID format")
	}

	pm, err := ctl.vault.FindForUser(ctx, id, user.ID)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Payment method fetched successfully", &fiber.Map{
		"data": safeView(pm),
	})
}

// Update handles PUT /api/payment-methods/:id. Only non-sensitive fields.
func (ctl *Controller) Update(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid payment method ID format")
	}

	var reqBody struct {
		CardHolder *string `json:"cardHolder"`
		IsDefault  *bool   `json:"isDefault"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}

	pm, err := ctl.vault.Update(ctx, id, user.ID, reqBody.CardHolder, reqBody.IsDefault)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Payment method updated successfully", &fiber.Map{
		"data": safeView(pm),
	})
}

// Delete handles DELETE /api/payment-methods/:id.
func (ctl *Controller) Delete(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid payment method ID format")
	}

	if err := ctl.vault.Delete(ctx, id, user.ID); err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Payment method deleted successfully", nil)
}

// SetDefault handles PUT /api/payment-methods/:id/default.
func (ctl *Controller) SetDefault(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid payment method ID format")
	}

	pm, err := ctl.vault.SetDefault(ctx, id, user.ID)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Default payment method updated successfully", &fiber.Map{
		"data": safeView(pm),
	})
}
