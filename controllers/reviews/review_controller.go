package reviewController

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
	reviews *store.ReviewStore
}

func NewController(reviews *store.ReviewStore) *Controller {
	return &Controller{reviews: reviews}
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), 10*time.Second)
}

// Create handles POST /api/products/:id/reviews.
func (ctl *Controller) Create(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	productID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid product ID format")
	}

	var reqBody struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	if reqBody.Rating < 1 || reqBody.Rating > 5 {
		return responses.BadRequest(c, "Rating must be between 1 and 5")
	}

	review := &models.Review{
		User:     user.ID,
		Product:  productID,
		UserName: user.Name,
		Rating:   reqBody.Rating,
		Comment:  reqBody.Comment,
	}
	if err := ctl.reviews.Insert(ctx, review); err != nil {
		return responses.Error(c, err)
	}

	return responses.Created(c, "Review added successfully", &fiber.Map{
		"data": review,
	})
}

// List handles GET /api/products/:id/reviews.
func (ctl *Controller) List(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	productID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid product ID format")
	}

	reviews, err := ctl.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Reviews fetched successfully", &fiber.Map{
		"count": len(reviews),
		"data":  reviews,
	})
}

// Delete handles DELETE /api/reviews/:id. Users may only remove their own.
func (ctl *Controller) Delete(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid review ID format")
	}

	if err := ctl.reviews.DeleteOwn(ctx, id, user.ID); err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Review deleted successfully", nil)
}
