package contactController

import (
	"context"
	"strings"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"github.com/UnderratedBeast/UniqueFabric-Backend/responses"
	"github.com/UnderratedBeast/UniqueFabric-Backend/store"
	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	contacts *store.ContactStore
}

func NewController(contacts *store.ContactStore) *Controller {
	return &Controller{contacts: contacts}
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), 10*time.Second)
}

// Create handles POST /api/contact. No auth required.
func (ctl *Controller) Create(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var reqBody struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	if strings.TrimSpace(reqBody.Name) == "" ||
		strings.TrimSpace(reqBody.Email) == "" ||
		strings.TrimSpace(reqBody.Message) == "" {
		return responses.BadRequest(c, "Name, email and message are required")
	}

	message := &models.ContactMessage{
		Name:    strings.TrimSpace(reqBody.Name),
		Email:   strings.TrimSpace(reqBody.Email),
		Subject: strings.TrimSpace(reqBody.Subject),
		Message: strings.TrimSpace(reqBody.Message),
	}
	if err := ctl.contacts.Insert(ctx, message); err != nil {
		return responses.Error(c, err)
	}

	return responses.Created(c, "Message sent successfully", &fiber.Map{
		"data": message,
	})
}

// List handles GET /api/contact, newest first. Admin only.
func (ctl *Controller) List(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	messages, err := ctl.contacts.List(ctx)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Messages fetched successfully", &fiber.Map{
		"count": len(messages),
		"data":  messages,
	})
}
