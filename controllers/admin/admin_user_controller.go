package adminController

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/UnderratedBeast/UniqueFabric-Backend/apperrors"
	"github.com/UnderratedBeast/UniqueFabric-Backend/middlewares"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"github.com/UnderratedBeast/UniqueFabric-Backend/responses"
	"github.com/UnderratedBeast/UniqueFabric-Backend/store"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Controller manages back-office accounts.
type Controller struct {
	users *store.UserStore
}

func NewController(users *store.UserStore) *Controller {
	return &Controller{users: users}
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), 10*time.Second)
}

// List handles GET /api/admin/users. Customers are never included.
func (ctl *Controller) List(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := ctl.users.ListStaff(ctx)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Users fetched successfully", &fiber.Map{
		"count": len(users),
		"users": users,
	})
}

// Create handles POST /api/admin/users. Role defaults to staff.
func (ctl *Controller) Create(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var reqBody struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}

	if strings.TrimSpace(reqBody.Name) == "" {
		return responses.BadRequest(c, "Name is required")
	}
	if strings.TrimSpace(reqBody.Email) == "" {
		return responses.BadRequest(c, "Email is required")
	}
	if utf8.RuneCountInString(reqBody.Password) < 8 {
		return responses.BadRequest(c, "Passwords must be 8 letters long")
	}

	role := reqBody.Role
	if role == "" {
		role = models.RoleStaff
	}
	if _, ok := models.ParseRole(role); !ok {
		return responses.BadRequest(c, "Valid role required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqBody.Password), bcrypt.DefaultCost)
	if err != nil {
		return responses.Error(c, apperrors.Wrap(apperrors.KindInternal, "Error hashing password", err))
	}

	newUser := &models.User{
		Name:     strings.TrimSpace(reqBody.Name),
		Email:    reqBody.Email,
		Password: string(hashedPassword),
		Role:     role,
		Status:   models.UserStatusActive,
	}
	if err := ctl.users.Insert(ctx, newUser); err != nil {
		return responses.Error(c, err)
	}

	return responses.Created(c, "User created successfully", &fiber.Map{
		"user": newUser,
	})
}

// Update handles PUT /api/admin/users/:id. Role and status only.
func (ctl *Controller) Update(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid user ID format")
	}

	var reqBody struct {
		Role   string `json:"role"`
		Status string `json:"status"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}

	set := bson.M{}
	if reqBody.Role != "" {
		role, ok := models.ParseRole(reqBody.Role)
		if !ok {
			return responses.BadRequest(c, "Valid role required")
		}
		set["role"] = role
	}
	if reqBody.Status != "" {
		status, ok := models.ParseUserStatus(reqBody.Status)
		if !ok {
			return responses.BadRequest(c, "Valid status required")
		}
		set["status"] = status
	}
	if len(set) == 0 {
		return responses.BadRequest(c, "Nothing to update")
	}

	user, err := ctl.users.UpdateProfile(ctx, id, set)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "User updated successfully", &fiber.Map{
		"user": user,
	})
}

// Delete handles DELETE /api/admin/users/:id. Admins cannot remove their own
// account.
func (ctl *Controller) Delete(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	actor, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.BadRequest(c, "Invalid user ID format")
	}
	if id == actor.ID {
		return responses.BadRequest(c, "Cannot delete your own account")
	}

	if err := ctl.users.Delete(ctx, id); err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "User deleted successfully", nil)
}
