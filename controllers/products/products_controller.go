package productController

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"github.com/UnderratedBeast/UniqueFabric-Backend/responses"
	"github.com/UnderratedBeast/UniqueFabric-Backend/store"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Controller struct {
	products *store.ProductStore
}

func NewController(products *store.ProductStore) *Controller {
	return &Controller{products: products}
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), 10*time.Second)
}

// List handles GET /api/products with pagination and optional filters.
func (ctl *Controller) List(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	if err != nil {
		page = 1
	}
	limit, err := strconv.ParseInt(c.Query("limit", "10"), 10, 64)
	if err != nil {
		limit = 10
	}

	filter := store.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Featured: c.Query("featured") == "true",
		Page:     page,
		Limit:    limit,
	}

	products, total, err := ctl.products.List(ctx, filter)
	if err != nil {
		return responses.Error(c, err)
	}

	totalPages := (total + limit - 1) / limit

	return responses.OK(c, "Fetched Products", &fiber.Map{
		"currentPage":   page,
		"totalPages":    totalPages,
		"totalProducts": total,
		"products":      products,
	})
}

// GetByID handles GET /api/products/:id.
func (ctl *Controller) GetByID(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid product ID format")
	}

	product, err := ctl.products.FindByID(ctx, id)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Product fetched successfully", &fiber.Map{
		"product": product,
	})
}

// Create handles POST /api/products (admin).
func (ctl *Controller) Create(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var product struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Price       float64  `json:"price"`
		Stock       int      `json:"stock"`
		ImageURL    string   `json:"imageUrl"`
		Images      []string `json:"images"`
		SKU         string   `json:"sku"`
		Color       string   `json:"color"`
		Texture     string   `json:"texture"`
		Featured    bool     `json:"featured"`
	}
	if err := c.BodyParser(&product); err != nil {
		return responses.BadRequest(c, "Error parsing product data")
	}

	if strings.TrimSpace(product.Name) == "" {
		return responses.BadRequest(c, "Product name is required")
	}
	if strings.TrimSpace(product.Category) == "" {
		return responses.BadRequest(c, "Category is required")
	}
	if product.Price < 0 {
		return responses.BadRequest(c, "Price cannot be negative")
	}
	if product.Stock < 0 {
		return responses.BadRequest(c, "Stock cannot be negative")
	}

	newProduct := &models.Product{
		Name:        strings.TrimSpace(product.Name),
		Description: product.Description,
		Category:    strings.TrimSpace(product.Category),
		Price:       product.Price,
		Stock:       product.Stock,
		ImageURL:    product.ImageURL,
		Images:      product.Images,
		SKU:         product.SKU,
		Color:       product.Color,
		Texture:     product.Texture,
		Featured:    product.Featured,
	}
	if err := ctl.products.Insert(ctx, newProduct); err != nil {
		return responses.Error(c, err)
	}

	return responses.Created(c, "Product added successfully", &fiber.Map{
		"product": newProduct,
	})
}

// Update handles PUT /api/products/:id (admin).
func (ctl *Controller) Update(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid product ID format")
	}

	existing, err := ctl.products.FindByID(ctx, id)
	if err != nil {
		return responses.Error(c, err)
	}

	if err := c.BodyParser(existing); err != nil {
		return responses.BadRequest(c, "Error parsing product data")
	}
	existing.ID = id
	if existing.Price < 0 {
		return responses.BadRequest(c, "Price cannot be negative")
	}
	if existing.Stock < 0 {
		return responses.BadRequest(c, "Stock cannot be negative")
	}

	if err := ctl.products.Update(ctx, existing); err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Product updated successfully", &fiber.Map{
		"product": existing,
	})
}

// Delete handles DELETE /api/products/:id (admin).
func (ctl *Controller) Delete(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid product ID format")
	}

	if err := ctl.products.Delete(ctx, id); err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Product deleted successfully", nil)
}
