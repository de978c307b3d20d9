package addressController

import (
	"context"
	"strings"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/middlewares"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"github.com/UnderratedBeast/UniqueFabric-Backend/responses"
	"github.com/UnderratedBeast/UniqueFabric-Backend/store"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Controller struct {
	addresses *store.AddressStore
}

func NewController(addresses *store.AddressStore) *Controller {
	return &Controller{addresses: addresses}
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), 10*time.Second)
}

type addressBody struct {
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	Country     string `json:"country"`
	IsDefault   bool   `json:"isDefault"`
	AddressType string `json:"addressType"`
}

func (b *addressBody) validate() string {
	required := []struct {
		label string
		value string
	}{
		{"Full name", b.FullName},
		{"Phone", b.Phone},
		{"Street", b.Street},
		{"City", b.City},
		{"State", b.State},
		{"Zip code", b.ZipCode},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return field.label + " is required"
		}
	}
	return ""
}

// Create handles POST /api/addresses. Saving an address that matches an
// existing one on street, city, state and zip returns the existing record.
func (ctl *Controller) Create(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	var reqBody addressBody
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	if msg := reqBody.validate(); msg != "" {
		return responses.BadRequest(c, msg)
	}

	address, err := ctl.addresses.Save(ctx, &models.Address{
		User:        user.ID,
		FullName:    reqBody.FullName,
		Phone:       reqBody.Phone,
		Street:      reqBody.Street,
		City:        reqBody.City,
		State:       reqBody.State,
		ZipCode:     reqBody.ZipCode,
		Country:     reqBody.Country,
		IsDefault:   reqBody.IsDefault,
		AddressType: reqBody.AddressType,
	})
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.Created(c, "Address added successfully", &fiber.Map{
		"data": address,
	})
}

// List handles GET /api/addresses, default address first.
func (ctl *Controller) List(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	addresses, err := ctl.addresses.FindByUser(ctx, user.ID)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Addresses fetched successfully", &fiber.Map{
		"count": len(addresses),
		"data":  addresses,
	})
}

// GetByID handles GET /api/addresses/:id.
func (ctl *Controller) GetByID(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid address ID format")
	}

	address, err := ctl.addresses.FindForUser(ctx, id, user.ID)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Address fetched successfully", &fiber.Map{
		"data": address,
	})
}

// Update handles PUT /api/addresses/:id.
func (ctl *Controller) Update(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid address ID format")
	}

	var reqBody addressBody
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	if msg := reqBody.validate(); msg != "" {
		return responses.BadRequest(c, msg)
	}

	address, err := ctl.addresses.Update(ctx, &models.Address{
		ID:          id,
		User:        user.ID,
		FullName:    reqBody.FullName,
		Phone:       reqBody.Phone,
		Street:      reqBody.Street,
		City:        reqBody.City,
		State:       reqBody.State,
		ZipCode:     reqBody.ZipCode,
		Country:     reqBody.Country,
		IsDefault:   reqBody.IsDefault,
		AddressType: reqBody.AddressType,
	})
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Address updated successfully", &fiber.Map{
		"data": address,
	})
}

// Delete handles DELETE /api/addresses/:id.
func (ctl *Controller) Delete(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid address ID format")
	}

	if err := ctl.addresses.Delete(ctx, id, user.ID); err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Address deleted successfully", nil)
}

// SetDefault handles PUT /api/addresses/:id/default.
func (ctl *Controller) SetDefault(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid address ID format")
	}

	address, err := ctl.addresses.SetDefault(ctx, id, user.ID)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Default address updated successfully", &fiber.Map{
		"data": address,
	})
}
