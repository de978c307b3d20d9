package userController

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/UnderratedBeast/UniqueFabric-Backend/apperrors"
	"github.com/UnderratedBeast/UniqueFabric-Backend/configs"
	"github.com/UnderratedBeast/UniqueFabric-Backend/middlewares"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"github.com/UnderratedBeast/UniqueFabric-Backend/responses"
	"github.com/UnderratedBeast/UniqueFabric-Backend/store"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^(([^<>()[\]\.,;:\s@\"]+(\.[^<>()[\]\.,;:\s@\"]+)*)|(\".+\"))@(([^<>()[\]\.,;:\s@\"]+\.)+[^<>()[\]\.,;:\s@\"]{2,})$`)

type Controller struct {
	users *store.UserStore
}

func NewController(users *store.UserStore) *Controller {
	return &Controller{users: users}
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), 10*time.Second)
}

func signToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"userId": user.ID.Hex(),
		"exp":    time.Now().Add(30 * 24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(configs.EnvJWTSecret()))
}

// SignUp handles POST /api/auth/signup.
func (ctl *Controller) SignUp(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var reqBody struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}

	if strings.TrimSpace(reqBody.Name) == "" {
		return responses.BadRequest(c, "Name is required")
	}
	if utf8.RuneCountInString(reqBody.Password) < 8 {
		return responses.BadRequest(c, "Passwords must be 8 letters long")
	}
	if reqBody.Password != reqBody.ConfirmPassword {
		return responses.BadRequest(c, "Passwords do not match")
	}
	if !emailRegex.MatchString(reqBody.Email) {
		return responses.BadRequest(c, "Please enter a valid email address")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqBody.Password), bcrypt.DefaultCost)
	if err != nil {
		return responses.Error(c, apperrors.Wrap(apperrors.KindInternal, "Error hashing password", err))
	}

	newUser := &models.User{
		Name:     strings.TrimSpace(reqBody.Name),
		Email:    reqBody.Email,
		Password: string(hashedPassword),
		Role:     models.RoleCustomer,
	}
	if err := ctl.users.Insert(ctx, newUser); err != nil {
		if apperrors.IsKind(err, apperrors.KindConflict) {
			return responses.BadRequest(c, "User with same email already exists")
		}
		return responses.Error(c, err)
	}

	token, err := signToken(newUser)
	if err != nil {
		return responses.Error(c, apperrors.Wrap(apperrors.KindInternal, "Error signing token", err))
	}

	return responses.Created(c, "User created successfully", &fiber.Map{
		"token": token,
		"user":  newUser,
	})
}

// SignIn handles POST /api/auth/signin.
func (ctl *Controller) SignIn(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var reqBody struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}

	user, err := ctl.users.FindByEmail(ctx, reqBody.Email)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return responses.BadRequest(c, "Invalid email or password")
		}
		return responses.Error(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqBody.Password)); err != nil {
		return responses.BadRequest(c, "Invalid email or password")
	}

	token, err := signToken(user)
	if err != nil {
		return responses.Error(c, apperrors.Wrap(apperrors.KindInternal, "Error signing token", err))
	}

	return responses.OK(c, "Signed in successfully", &fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Profile handles GET /api/auth/profile.
func (ctl *Controller) Profile(c *fiber.Ctx) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}
	return responses.OK(c, "Profile fetched successfully", &fiber.Map{
		"user": user,
	})
}

// UpdateProfile handles PUT /api/auth/profile.
func (ctl *Controller) UpdateProfile(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return responses.Unauthorized(c, "Not authorized")
	}

	var reqBody struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
		City    string `json:"city"`
		Country string `json:"country"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}

	set := bson.M{}
	if name := strings.TrimSpace(reqBody.Name); name != "" {
		set["name"] = name
	}
	if reqBody.Phone != "" {
		set["phone"] = strings.TrimSpace(reqBody.Phone)
	}
	if reqBody.Address != "" {
		set["address"] = strings.TrimSpace(reqBody.Address)
	}
	if reqBody.City != "" {
		set["city"] = strings.TrimSpace(reqBody.City)
	}
	if reqBody.Country != "" {
		set["country"] = strings.TrimSpace(reqBody.Country)
	}
	if len(set) == 0 {
		return responses.BadRequest(c, "Nothing to update")
	}

	updated, err := ctl.users.UpdateProfile(ctx, user.ID, set)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Profile updated successfully", &fiber.Map{
		"user": updated,
	})
}
